// internal/domain/payment/service.go
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Gateway is the payment provider
type Gateway interface {
	Configured() bool
	KeyID() string
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*RazorpayOrder, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

// Orders is the part of the order service payments depend on
type Orders interface {
	GetUserOrder(ctx context.Context, userID, id uint) (*order.Order, error)
	AttachGatewayOrder(ctx context.Context, id uint, gatewayOrderID string) (*order.Order, error)
	MarkPaidOnline(ctx context.Context, id uint, gatewayOrderID, paymentID string, actor *uint) (*order.Order, error)
}

// Service starts online payments and confirms them from the checkout widget.
// The webhook confirms the same payments independently; whichever arrives
// first marks the order paid.
type Service struct {
	gateway Gateway
	orders  Orders
	logger  *logrus.Logger
}

// NewService creates a new payment service
func NewService(gateway Gateway, orders Orders, logger *logrus.Logger) *Service {
	return &Service{
		gateway: gateway,
		orders:  orders,
		logger:  logger,
	}
}

// Initiation is what the checkout widget needs to collect a payment
type Initiation struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	KeyID          string `json:"key_id"`
	Amount         int64  `json:"amount"` // paise
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	OrderNumber    string `json:"order_number"`
}

// VerifyRequest carries the widget's success callback
type VerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

var paise = decimal.NewFromInt(100)

// Initiate creates a gateway order for one of the user's unpaid orders and
// attaches its ID to the order. The order number travels in the notes so
// webhooks can find the order.
func (s *Service) Initiate(ctx context.Context, userID, orderID uint) (*Initiation, error) {
	if !s.gateway.Configured() {
		return nil, ErrGatewayNotConfigured
	}

	o, err := s.orders.GetUserOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentMethod != "razorpay" {
		return nil, ErrNotPayable.WithMessage("Order is paid by %s", o.PaymentMethod)
	}
	if o.Status != order.OrderStatusPending {
		return nil, ErrNotPayable.WithMessage("Order is already %s", o.Status)
	}
	if o.PaymentStatus != order.PaymentStatusPending && o.PaymentStatus != order.PaymentStatusFailed {
		return nil, ErrNotPayable.WithMessage("Payment is already %s", o.PaymentStatus)
	}

	amount := o.TotalAmount.Mul(paise).Round(0).IntPart()
	gatewayOrder, err := s.gateway.CreateOrder(ctx, CreateOrderRequest{
		Amount:   amount,
		Currency: o.Currency,
		Receipt:  o.OrderNumber,
		Notes: map[string]string{
			"order_number": o.OrderNumber,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Razorpay order: %w", err)
	}
	if _, err := s.orders.AttachGatewayOrder(ctx, o.ID, gatewayOrder.ID); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":         o.ID,
		"order_number":     o.OrderNumber,
		"gateway_order_id": gatewayOrder.ID,
		"amount_paise":     amount,
	}).Info("Payment initiated")

	return &Initiation{
		GatewayOrderID: gatewayOrder.ID,
		KeyID:          s.gateway.KeyID(),
		Amount:         amount,
		Currency:       o.Currency,
		Receipt:        o.OrderNumber,
		OrderNumber:    o.OrderNumber,
	}, nil
}

// Verify checks the widget's signature and marks the order paid. The signed
// gateway order must be the one attached to this order. A payment the
// webhook already recorded is returned as is.
func (s *Service) Verify(ctx context.Context, userID, orderID uint, req *VerifyRequest) (*order.Order, error) {
	if !s.gateway.Configured() {
		return nil, ErrGatewayNotConfigured
	}
	if !s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.logger.WithFields(logrus.Fields{
			"order_id":   orderID,
			"payment_id": req.RazorpayPaymentID,
		}).Warn("Payment signature mismatch")
		return nil, ErrInvalidSignature
	}

	o, err := s.orders.GetUserOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.GatewayOrderID == "" || o.GatewayOrderID != req.RazorpayOrderID {
		s.logger.WithFields(logrus.Fields{
			"order_id":         orderID,
			"gateway_order_id": req.RazorpayOrderID,
		}).Warn("Payment for another gateway order")
		return nil, order.ErrGatewayMismatch
	}
	if o.PaymentStatus == order.PaymentStatusPaid {
		return o, nil
	}

	paid, err := s.orders.MarkPaidOnline(ctx, o.ID, req.RazorpayOrderID, req.RazorpayPaymentID, &userID)
	if errors.Is(err, order.ErrInvalidPaymentState) {
		// Lost a race with the webhook
		if current, getErr := s.orders.GetUserOrder(ctx, userID, orderID); getErr == nil && current.PaymentStatus == order.PaymentStatusPaid {
			return current, nil
		}
	}
	return paid, err
}
