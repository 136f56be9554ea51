// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
	"github.com/your-org/storefront-backend/internal/pkg/paging"
	"github.com/your-org/storefront-backend/internal/pkg/txn"
)

// StockLedger is the part of the inventory service checkout depends on
type StockLedger interface {
	ReduceStock(ctx context.Context, ch inventory.Change) (*inventory.StockMovement, error)
	ReturnStock(ctx context.Context, ch inventory.Change) (*inventory.StockMovement, error)
}

// CouponEngine is the part of the coupon service checkout depends on
type CouponEngine interface {
	Evaluate(ctx context.Context, code string, userID *uint, subtotal decimal.Decimal) (*coupon.Application, error)
	Redeem(ctx context.Context, code string, userID uint, subtotal decimal.Decimal) (*coupon.Application, error)
	RecordUsage(ctx context.Context, app *coupon.Application, userID, orderID uint) error
	Release(ctx context.Context, couponID, orderID uint) error
}

var paymentMethods = map[string]bool{
	"cod":      true,
	"razorpay": true,
	"wallet":   true,
}

// Service handles order business logic
type Service struct {
	repo     Repository
	products product.Repository
	ledger   StockLedger
	coupons  CouponEngine
	tx       txn.Manager
	config   config.CommerceConfig
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService creates a new order service
func NewService(
	repo Repository,
	products product.Repository,
	ledger StockLedger,
	coupons CouponEngine,
	tx txn.Manager,
	cfg config.CommerceConfig,
	logger *logrus.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		products: products,
		ledger:   ledger,
		coupons:  coupons,
		tx:       tx,
		config:   cfg,
		logger:   logger,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CheckoutContext carries who is checking out. It replaces any implicit
// request/session state: the core only ever sees these values.
type CheckoutContext struct {
	UserID    *uint
	SessionID string
	Email     string
}

// LineRequest is one cart line as handed over by the cart
type LineRequest struct {
	ProductID   uint  `json:"product_id" binding:"required"`
	VariationID *uint `json:"variation_id,omitempty"`
	Quantity    int   `json:"quantity" binding:"required"`
}

// PlaceOrderRequest represents order creation data
type PlaceOrderRequest struct {
	Items           []LineRequest `json:"items"`
	ShippingAddress Address       `json:"shipping_address" binding:"required"`
	BillingAddress  *Address      `json:"billing_address,omitempty"` // Optional, defaults to shipping
	PaymentMethod   string        `json:"payment_method" binding:"required"`
	CouponCode      string        `json:"coupon_code,omitempty"`
	GSTNumber       string        `json:"gst_number,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

// PreviewRequest represents a totals preview
type PreviewRequest struct {
	Items         []LineRequest `json:"items"`
	CouponCode    string        `json:"coupon_code,omitempty"`
	ShippingState string        `json:"shipping_state,omitempty"`
}

// Preview is the checkout summary shown before placing an order
type Preview struct {
	Totals      Totals              `json:"totals"`
	Coupon      *coupon.Application `json:"coupon,omitempty"`
	CouponError string              `json:"coupon_error,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status         OrderStatus `json:"status" binding:"required"`
	Reason         string      `json:"reason"`
	TrackingNumber string      `json:"tracking_number"`
}

// ListRequest represents order list query parameters
type ListRequest struct {
	Page      int         `form:"page,default=1"`
	Limit     int         `form:"limit,default=20"`
	Status    OrderStatus `form:"status"`
	UserID    *uint       `form:"user_id"`
	SortBy    string      `form:"sort_by,default=created_at"`
	SortOrder string      `form:"sort_order,default=desc"`
	DateFrom  *time.Time  `form:"date_from" time_format:"2006-01-02"`
	DateTo    *time.Time  `form:"date_to" time_format:"2006-01-02"`
}

// ListResponse represents orders with pagination
type ListResponse struct {
	Orders     []Order           `json:"orders"`
	Pagination paging.Pagination `json:"pagination"`
}

// Dashboard summarises the back office landing page
type Dashboard struct {
	OrdersByStatus     map[OrderStatus]int64 `json:"orders_by_status"`
	LowStockProducts   int64                 `json:"low_stock_products"`
	OutOfStockProducts int64                 `json:"out_of_stock_products"`
}

// PreviewTotals computes what PlaceOrder would charge, without persisting
// anything. A rejected coupon is reported instead of failing the preview.
func (s *Service) PreviewTotals(ctx context.Context, cc CheckoutContext, req *PreviewRequest) (*Preview, error) {
	lines, warnings, err := s.snapshotLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	preview := &Preview{Warnings: warnings}
	adj := Adjustment{}

	if req.CouponCode != "" {
		app, err := s.coupons.Evaluate(ctx, req.CouponCode, cc.UserID, Subtotal(lines))
		if err != nil {
			msg, ok := apperror.MessageOf(err)
			if !ok {
				return nil, err
			}
			preview.CouponError = msg
		} else {
			preview.Coupon = app
			adj = Adjustment{Discount: app.DiscountAmount, FreeShipping: app.FreeShipping}
		}
	}

	preview.Totals = Calculate(lines, s.pricing(), adj, req.ShippingState)
	return preview, nil
}

// PlaceOrder creates an order from cart lines. Order, items, coupon usage
// and one sale movement per line are written in a single transaction;
// any failure leaves none of them behind.
func (s *Service) PlaceOrder(ctx context.Context, cc CheckoutContext, req *PlaceOrderRequest) (*Order, error) {
	o, err := s.placeOrder(ctx, cc, req)
	if err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindInternal:
			s.metrics.CheckoutFinished("failed")
			s.logger.WithError(err).Error("Checkout failed")
		default:
			s.metrics.CheckoutFinished("rejected")
			s.logger.WithField("reason", apperror.CodeOf(err)).Info("Checkout rejected")
		}
		return nil, err
	}

	s.metrics.CheckoutFinished("placed")
	s.logger.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"total_amount": o.TotalAmount.StringFixed(2),
		"coupon_code":  o.CouponCode,
	}).Info("Order placed")

	return s.repo.GetOrder(ctx, o.ID)
}

func (s *Service) placeOrder(ctx context.Context, cc CheckoutContext, req *PlaceOrderRequest) (*Order, error) {
	if err := validatePlaceOrder(cc, req); err != nil {
		return nil, err
	}

	lines, _, err := s.snapshotLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	var o *Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var app *coupon.Application
		adj := Adjustment{}

		if req.CouponCode != "" {
			if cc.UserID == nil {
				return coupon.ErrSignInRequired
			}
			var err error
			app, err = s.coupons.Redeem(ctx, req.CouponCode, *cc.UserID, Subtotal(lines))
			if err != nil {
				return err
			}
			adj = Adjustment{Discount: app.DiscountAmount, FreeShipping: app.FreeShipping}
		}

		totals := Calculate(lines, s.pricing(), adj, req.ShippingAddress.State)
		now := s.now()

		o = &Order{
			UUID:            uuid.New(),
			OrderNumber:     "PENDING-" + uuid.NewString(),
			UserID:          cc.UserID,
			Email:           strings.TrimSpace(cc.Email),
			Status:          OrderStatusPending,
			PaymentStatus:   PaymentStatusPending,
			PaymentMethod:   req.PaymentMethod,
			Subtotal:        totals.Subtotal,
			ShippingAmount:  totals.ShippingAmount,
			TaxAmount:       totals.TaxAmount,
			DiscountAmount:  totals.DiscountAmount,
			Currency:        s.config.Currency,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  billing,
			IsGSTInvoice:    req.GSTNumber != "",
			GSTNumber:       strings.ToUpper(req.GSTNumber),
			Notes:           req.Notes,
			CreatedAt:       now,
		}
		if app != nil {
			o.CouponID = &app.CouponID
			o.CouponCode = app.Code
		}
		for _, l := range totals.Lines {
			o.Items = append(o.Items, OrderItem{
				ProductID:     l.ProductID,
				VariationID:   l.VariationID,
				ProductName:   l.ProductName,
				ProductSKU:    l.ProductSKU,
				VariationName: l.VariationName,
				UnitPrice:     l.UnitPrice,
				Quantity:      l.Quantity,
				TotalPrice:    l.LineTotal,
				GSTRate:       l.GSTRate,
				GSTAmount:     l.GSTAmount,
				CreatedAt:     now,
			})
		}
		o.RecalculateTotal()

		if err := s.repo.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		o.OrderNumber = GenerateOrderNumber(now, o.ID)
		if err := s.repo.SaveOrder(ctx, o); err != nil {
			return fmt.Errorf("failed to update order number: %w", err)
		}

		if app != nil {
			if err := s.coupons.RecordUsage(ctx, app, *cc.UserID, o.ID); err != nil {
				return err
			}
		}

		for _, item := range o.Items {
			_, err := s.ledger.ReduceStock(ctx, inventory.Change{
				Target:        inventory.Target{ProductID: item.ProductID, VariationID: item.VariationID},
				Quantity:      item.Quantity,
				Type:          inventory.MovementTypeSale,
				Reason:        "Order " + o.OrderNumber,
				Actor:         cc.UserID,
				ReferenceType: inventory.ReferenceOrder,
				ReferenceID:   &o.ID,
			})
			if err != nil {
				return err
			}
		}

		changeType := ChangeTypeCustomer
		if cc.UserID == nil {
			changeType = ChangeTypeSystem
		}
		return s.repo.AppendHistory(ctx, &OrderHistory{
			OrderID:    o.ID,
			Field:      "status",
			NewValue:   string(OrderStatusPending),
			ChangedBy:  cc.UserID,
			ChangeType: changeType,
			Reason:     "Order placed",
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrder retrieves a single order by ID
func (s *Service) GetOrder(ctx context.Context, id uint) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// GetOrderByNumber retrieves a single order by order number
func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	return s.repo.GetOrderByNumber(ctx, number)
}

// GetUserOrder retrieves an order only if it belongs to userID
func (s *Service) GetUserOrder(ctx context.Context, userID, id uint) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID == nil || *o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ListOrders retrieves orders with filtering and pagination
func (s *Service) ListOrders(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Status != "" && !req.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	page, limit := paging.Normalize(req.Page, req.Limit)

	orders, total, err := s.repo.ListOrders(ctx, ListFilter{
		Status:    req.Status,
		UserID:    req.UserID,
		From:      req.DateFrom,
		To:        req.DateTo,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Offset:    paging.Offset(page, limit),
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &ListResponse{
		Orders:     orders,
		Pagination: paging.New(page, limit, total),
	}, nil
}

// UpdateStatus moves an order along the status machine
func (s *Service) UpdateStatus(ctx context.Context, id uint, req *UpdateStatusRequest, actor *uint) (*Order, error) {
	if !req.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	switch req.Status {
	case OrderStatusCancelled:
		return s.CancelOrder(ctx, id, req.Reason, actor, ChangeTypeAdmin)
	case OrderStatusRefunded:
		return nil, ErrInvalidTransition.WithMessage("Refunds are recorded through the payment refund flow")
	}

	var o *Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if o, err = s.repo.LockOrder(ctx, id); err != nil {
			return err
		}
		if !CanTransition(o.Status, req.Status) {
			return ErrInvalidTransition.WithMessage("Cannot change order status from %s to %s", o.Status, req.Status)
		}

		now := s.now()
		if err := s.repo.AppendHistory(ctx, ptr(o.statusChange(req.Status, actor, ChangeTypeAdmin, req.Reason, now))); err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		o.Status = req.Status
		switch req.Status {
		case OrderStatusConfirmed:
			o.ConfirmedAt = &now
		case OrderStatusShipped:
			o.ShippedAt = &now
			if req.TrackingNumber != "" {
				o.TrackingNumber = req.TrackingNumber
			}
		case OrderStatusDelivered:
			o.DeliveredAt = &now
		}
		return s.repo.SaveOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"status":       o.Status,
	}).Info("Order status updated")

	return s.repo.GetOrder(ctx, id)
}

// CancelOrder cancels a pending or confirmed order. Stock the order took out
// goes back through the ledger as return movements; backordered units are
// not restored; a paid order is marked refunded. Coupon
// usage stays consumed unless RESTORE_COUPON_ON_CANCEL is set.
func (s *Service) CancelOrder(ctx context.Context, id uint, reason string, actor *uint, changeType ChangeType) (*Order, error) {
	if reason == "" {
		reason = "Order cancelled"
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.repo.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		if !o.CanBeCancelled() {
			return ErrNotCancellable.WithMessage("Order cannot be cancelled in status %s", o.Status)
		}
		return s.unwind(ctx, o, OrderStatusCancelled, reason, actor, changeType)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": id,
		"reason":   reason,
	}).Info("Order cancelled")

	return s.repo.GetOrder(ctx, id)
}

// MarkPaid records a successful payment; a pending order is confirmed
func (s *Service) MarkPaid(ctx context.Context, id uint, actor *uint) (*Order, error) {
	return s.markPaid(ctx, id, actor, nil)
}

// AttachGatewayOrder remembers the gateway order created to collect payment
// for an unpaid order. A retry after a failed payment replaces it.
func (s *Service) AttachGatewayOrder(ctx context.Context, id uint, gatewayOrderID string) (*Order, error) {
	if gatewayOrderID == "" {
		return nil, ErrGatewayMismatch.WithMessage("Gateway order ID is required")
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.repo.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != OrderStatusPending {
			return ErrInvalidPaymentState.WithMessage("Order is already %s", o.Status)
		}
		if o.PaymentStatus != PaymentStatusPending && o.PaymentStatus != PaymentStatusFailed {
			return ErrInvalidPaymentState.WithMessage("Payment is already %s", o.PaymentStatus)
		}
		o.GatewayOrderID = gatewayOrderID
		return s.repo.SaveOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, id)
}

// MarkPaidOnline records a gateway payment. It is only accepted for the
// gateway order attached to this order.
func (s *Service) MarkPaidOnline(ctx context.Context, id uint, gatewayOrderID, paymentID string, actor *uint) (*Order, error) {
	return s.markPaid(ctx, id, actor, func(o *Order) error {
		if o.GatewayOrderID == "" || o.GatewayOrderID != gatewayOrderID {
			return ErrGatewayMismatch
		}
		o.GatewayPaymentID = paymentID
		return nil
	})
}

func (s *Service) markPaid(ctx context.Context, id uint, actor *uint, accept func(o *Order) error) (*Order, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.repo.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		if o.IsTerminal() {
			return ErrInvalidPaymentState.WithMessage("Order is already %s", o.Status)
		}
		if o.PaymentStatus != PaymentStatusPending && o.PaymentStatus != PaymentStatusFailed {
			return ErrInvalidPaymentState.WithMessage("Cannot mark payment %s as paid", o.PaymentStatus)
		}
		if accept != nil {
			if err := accept(o); err != nil {
				return err
			}
		}

		now := s.now()
		if err := s.repo.AppendHistory(ctx, ptr(o.paymentChange(PaymentStatusPaid, actor, ChangeTypeSystem, "Payment received", now))); err != nil {
			return fmt.Errorf("failed to record payment history: %w", err)
		}
		o.PaymentStatus = PaymentStatusPaid

		if o.Status == OrderStatusPending {
			if err := s.repo.AppendHistory(ctx, ptr(o.statusChange(OrderStatusConfirmed, actor, ChangeTypeSystem, "Payment received", now))); err != nil {
				return fmt.Errorf("failed to record status history: %w", err)
			}
			o.Status = OrderStatusConfirmed
			o.ConfirmedAt = &now
		}
		return s.repo.SaveOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, id)
}

// MarkPaymentFailed records a failed payment attempt
func (s *Service) MarkPaymentFailed(ctx context.Context, id uint, reason string) (*Order, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.repo.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		if o.PaymentStatus != PaymentStatusPending {
			return ErrInvalidPaymentState.WithMessage("Cannot mark payment %s as failed", o.PaymentStatus)
		}

		if err := s.repo.AppendHistory(ctx, ptr(o.paymentChange(PaymentStatusFailed, nil, ChangeTypeSystem, reason, s.now()))); err != nil {
			return fmt.Errorf("failed to record payment history: %w", err)
		}
		o.PaymentStatus = PaymentStatusFailed
		return s.repo.SaveOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, id)
}

// MarkRefunded refunds a paid order that has not started fulfilment. Stock
// is restored and the order ends in status refunded. Refunds after that
// point are returns, which are handled outside this flow.
func (s *Service) MarkRefunded(ctx context.Context, id uint, reason string, actor *uint) (*Order, error) {
	if reason == "" {
		reason = "Payment refunded"
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.repo.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		if o.PaymentStatus != PaymentStatusPaid {
			return ErrInvalidPaymentState.WithMessage("Only paid orders can be refunded")
		}
		if !o.CanBeCancelled() {
			return ErrInvalidPaymentState.WithMessage("Order in status %s can no longer be refunded", o.Status)
		}
		return s.unwind(ctx, o, OrderStatusRefunded, reason, actor, ChangeTypeSystem)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, id)
}

// Dashboard gathers order and stock counters for the back office
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	_, low, err := s.products.ListProducts(ctx, product.ListFilter{
		Statuses: []product.StockStatus{product.StockStatusLowStock},
		Limit:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}

	_, out, err := s.products.ListProducts(ctx, product.ListFilter{
		Statuses: []product.StockStatus{product.StockStatusOutOfStock},
		Limit:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count out of stock products: %w", err)
	}

	return &Dashboard{
		OrdersByStatus:     byStatus,
		LowStockProducts:   low,
		OutOfStockProducts: out,
	}, nil
}

// Private helper methods

// unwind reverses a locked order: stock returns, payment refund and the
// coupon policy, ending in status final
func (s *Service) unwind(ctx context.Context, o *Order, final OrderStatus, reason string, actor *uint, changeType ChangeType) error {
	for _, item := range o.Items {
		_, err := s.ledger.ReturnStock(ctx, inventory.Change{
			Target:        inventory.Target{ProductID: item.ProductID, VariationID: item.VariationID},
			Quantity:      item.Quantity,
			Type:          inventory.MovementTypeReturn,
			Reason:        "Order cancelled",
			Actor:         actor,
			ReferenceType: inventory.ReferenceOrder,
			ReferenceID:   &o.ID,
		})
		if err != nil && !errors.Is(err, product.ErrProductNotFound) {
			return fmt.Errorf("failed to restore stock for %s: %w", item.ProductSKU, err)
		}
	}

	now := s.now()
	if err := s.repo.AppendHistory(ctx, ptr(o.statusChange(final, actor, changeType, reason, now))); err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}
	o.Status = final
	o.CancelledAt = &now

	if o.PaymentStatus == PaymentStatusPaid {
		if err := s.repo.AppendHistory(ctx, ptr(o.paymentChange(PaymentStatusRefunded, actor, changeType, reason, now))); err != nil {
			return fmt.Errorf("failed to record payment history: %w", err)
		}
		o.PaymentStatus = PaymentStatusRefunded
	}

	if s.config.RestoreCouponOnCancel && o.CouponID != nil {
		if err := s.coupons.Release(ctx, *o.CouponID, o.ID); err != nil {
			return err
		}
	}

	return s.repo.SaveOrder(ctx, o)
}

// snapshotLines resolves requested lines against the catalog, copying the
// price, GST rate and names into order lines. Stock shortfalls only warn
// here; the ledger enforces them when the order is placed.
func (s *Service) snapshotLines(ctx context.Context, items []LineRequest) ([]Line, []string, error) {
	if len(items) == 0 {
		return nil, nil, ErrEmptyOrder
	}

	lines := make([]Line, 0, len(items))
	var warnings []string

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, nil, ErrInvalidLine.WithMessage("Quantity must be greater than zero")
		}

		p, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if !p.IsActive {
			return nil, nil, ErrProductUnavailable.WithMessage("'%s' is no longer available", p.Name)
		}
		if item.Quantity < p.MinCartQuantity || item.Quantity > p.MaxCartQuantity {
			return nil, nil, ErrQuantityLimit.WithMessage("Quantity for '%s' must be between %d and %d",
				p.Name, p.MinCartQuantity, p.MaxCartQuantity)
		}

		line := Line{
			ProductID:   p.ID,
			ProductName: p.Name,
			ProductSKU:  p.SKU,
			UnitPrice:   p.Price,
			Quantity:    item.Quantity,
			GSTRate:     p.GSTRate,
		}
		stock := p.Stock()

		if item.VariationID != nil {
			v, ok := p.FindVariation(*item.VariationID)
			if !ok {
				return nil, nil, product.ErrVariationNotFound
			}
			if !v.IsActive {
				return nil, nil, ErrProductUnavailable.WithMessage("'%s - %s' is no longer available", p.Name, v.Name)
			}
			line.VariationID = &v.ID
			line.VariationName = v.Name
			line.ProductSKU = v.SKU
			line.UnitPrice = v.EffectivePrice(p.Price)
			stock = v.Stock(p.TrackInventory)
		}

		if !stock.CanSupply(item.Quantity) {
			warnings = append(warnings, fmt.Sprintf("Only %d left in stock for %s", stock.Quantity, line.ProductSKU))
		}
		lines = append(lines, line)
	}
	return lines, warnings, nil
}

func (s *Service) pricing() Pricing {
	return Pricing{
		ShippingFlatFee:       s.config.ShippingFlatFee,
		FreeShippingThreshold: s.config.FreeShippingThreshold,
		SellerState:           s.config.SellerState,
	}
}

func validatePlaceOrder(cc CheckoutContext, req *PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyOrder
	}
	if strings.TrimSpace(cc.Email) == "" {
		return ErrInvalidOrder.WithMessage("Email is required")
	}
	if !paymentMethods[req.PaymentMethod] {
		return ErrInvalidOrder.WithMessage("Unsupported payment method: %s", req.PaymentMethod)
	}
	if err := validateAddress(req.ShippingAddress); err != nil {
		return err
	}
	if req.BillingAddress != nil {
		if err := validateAddress(*req.BillingAddress); err != nil {
			return err
		}
	}
	if req.GSTNumber != "" && len(req.GSTNumber) != 15 {
		return ErrInvalidOrder.WithMessage("GST number must be 15 characters")
	}
	return nil
}

func validateAddress(a Address) error {
	required := map[string]string{
		"full name":      a.FullName,
		"address line 1": a.AddressLine1,
		"city":           a.City,
		"state":          a.State,
		"postal code":    a.PostalCode,
	}
	for _, field := range []string{"full name", "address line 1", "city", "state", "postal code"} {
		if strings.TrimSpace(required[field]) == "" {
			return ErrInvalidOrder.WithMessage("Address %s is required", field)
		}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
