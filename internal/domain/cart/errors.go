package cart

import "github.com/your-org/storefront-backend/internal/pkg/apperror"

var (
	ErrNoOwner            = apperror.Validation("cart_no_owner", "Session ID is required")
	ErrInvalidQuantity    = apperror.Validation("cart_invalid_quantity", "Quantity must be greater than zero")
	ErrItemNotFound       = apperror.NotFound("cart_item_not_found", "Item not found in cart")
	ErrProductUnavailable = apperror.BusinessRule("cart_product_unavailable", "Product is not available")
	ErrQuantityLimit      = apperror.BusinessRule("cart_quantity_limit", "Quantity outside the allowed range")
	ErrInsufficientStock  = apperror.BusinessRule("cart_insufficient_stock", "Not enough stock")
)
