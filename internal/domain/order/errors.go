package order

import "github.com/your-org/storefront-backend/internal/pkg/apperror"

var (
	ErrOrderNotFound       = apperror.NotFound("order_not_found", "Order not found")
	ErrEmptyOrder          = apperror.Validation("empty_order", "Cart is empty")
	ErrInvalidLine         = apperror.Validation("invalid_order_line", "Invalid order line")
	ErrInvalidOrder        = apperror.Validation("invalid_order", "Invalid order data")
	ErrInvalidStatus       = apperror.Validation("invalid_status", "Invalid order status")
	ErrProductUnavailable  = apperror.BusinessRule("product_unavailable", "Product is no longer available")
	ErrQuantityLimit       = apperror.BusinessRule("quantity_limit", "Quantity is outside the allowed range")
	ErrInvalidTransition   = apperror.BusinessRule("invalid_status_transition", "Invalid status transition")
	ErrNotCancellable      = apperror.BusinessRule("order_not_cancellable", "Order cannot be cancelled")
	ErrInvalidPaymentState = apperror.BusinessRule("invalid_payment_state", "Invalid payment state change")
	ErrGatewayMismatch     = apperror.Validation("gateway_order_mismatch", "Payment does not belong to this order")
)
