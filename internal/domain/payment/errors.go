package payment

import "github.com/your-org/storefront-backend/internal/pkg/apperror"

var (
	ErrGatewayNotConfigured = apperror.BusinessRule("payment_gateway_unavailable", "Online payment is not available")
	ErrNotPayable           = apperror.BusinessRule("order_not_payable", "Order cannot be paid online")
	ErrInvalidSignature     = apperror.Validation("invalid_payment_signature", "Payment signature verification failed")
)
