package inventory

import "github.com/your-org/storefront-backend/internal/pkg/apperror"

var (
	ErrInvalidQuantity     = apperror.Validation("invalid_quantity", "Quantity must be greater than zero")
	ErrNegativeStock       = apperror.Validation("negative_stock", "Stock quantity cannot be negative")
	ErrInvalidMovementType = apperror.Validation("invalid_movement_type", "Invalid movement type")
	ErrInvalidProduct      = apperror.Validation("invalid_product", "Invalid product data")
	ErrInsufficientStock   = apperror.BusinessRule("insufficient_stock", "Insufficient stock")
	ErrAlertNotFound       = apperror.NotFound("alert_not_found", "Stock alert not found")
	ErrAlertResolved       = apperror.BusinessRule("alert_resolved", "Stock alert is already resolved")
)
