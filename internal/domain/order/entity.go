// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// ChangeType records who drove a state change
type ChangeType string

const (
	ChangeTypeSystem   ChangeType = "system"
	ChangeTypeAdmin    ChangeType = "admin"
	ChangeTypeCustomer ChangeType = "customer"
)

// validTransitions is the order status machine. Cancellation is only
// reachable through CancelOrder, refunds only through MarkRefunded.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// Order represents the order entity
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	OrderNumber   string        `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID        *uint         `gorm:"index" json:"user_id"` // Nullable for guest orders
	Email         string        `gorm:"not null;size:255" json:"email"`
	Status        OrderStatus   `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	PaymentMethod string        `gorm:"size:50" json:"payment_method"`

	// Online payment references, set once a gateway order is created
	GatewayOrderID   string `gorm:"size:255;index" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string `gorm:"size:255" json:"gateway_payment_id,omitempty"`

	// Financial Information, rupees with paise precision
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"shipping_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Currency       string          `gorm:"size:3;default:'INR'" json:"currency"`

	// Coupon/Discount
	CouponID   *uint  `gorm:"index" json:"coupon_id,omitempty"`
	CouponCode string `gorm:"size:50" json:"coupon_code,omitempty"`

	// Addresses
	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress  Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`

	// GST invoice details
	IsGSTInvoice bool   `gorm:"default:false" json:"is_gst_invoice"`
	GSTNumber    string `gorm:"size:15" json:"gst_number,omitempty"`

	Notes          string `gorm:"type:text" json:"notes"`
	TrackingNumber string `gorm:"size:100" json:"tracking_number"`

	// Timestamps
	ConfirmedAt *time.Time     `json:"confirmed_at"`
	ShippedAt   *time.Time     `json:"shipped_at"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	CancelledAt *time.Time     `json:"cancelled_at"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items   []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"items"`
	History []OrderHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"history,omitempty"`
}

// OrderItem snapshots the product as it was sold. It never reads the live
// catalog again, so later price or name changes do not rewrite history.
type OrderItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	ProductID     uint            `gorm:"not null;index" json:"product_id"`
	VariationID   *uint           `gorm:"index" json:"variation_id,omitempty"`
	ProductName   string          `gorm:"not null;size:255" json:"product_name"`
	ProductSKU    string          `gorm:"not null;size:100" json:"product_sku"`
	VariationName string          `gorm:"size:255" json:"variation_name,omitempty"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	GSTRate       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"gst_rate"`
	GSTAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gst_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderHistory records one status or payment status change
type OrderHistory struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	OrderID    uint       `gorm:"not null;index" json:"order_id"`
	Field      string     `gorm:"size:20;not null" json:"field"` // "status" or "payment_status"
	OldValue   string     `gorm:"size:20" json:"old_value"`
	NewValue   string     `gorm:"size:20;not null" json:"new_value"`
	ChangedBy  *uint      `json:"changed_by,omitempty"`
	ChangeType ChangeType `gorm:"size:20;not null" json:"change_type"`
	Reason     string     `gorm:"type:text" json:"reason"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Address represents shipping/billing address (embedded in Order)
type Address struct {
	FullName     string `gorm:"size:100" json:"full_name" binding:"required"`
	Phone        string `gorm:"size:20" json:"phone" binding:"required"`
	AddressLine1 string `gorm:"size:255" json:"address_line1" binding:"required"`
	AddressLine2 string `gorm:"size:255" json:"address_line2"`
	City         string `gorm:"size:100" json:"city" binding:"required"`
	State        string `gorm:"size:100" json:"state" binding:"required"`
	PostalCode   string `gorm:"size:10" json:"postal_code" binding:"required"`
	Country      string `gorm:"size:2" json:"country"`
}

// TableName overrides
func (Order) TableName() string        { return "orders" }
func (OrderItem) TableName() string    { return "order_items" }
func (OrderHistory) TableName() string { return "order_history" }

// Business methods for Order

// GenerateOrderNumber formats ORD-YYYYMMDD-XXXXX from the order ID
func GenerateOrderNumber(at time.Time, id uint) string {
	return fmt.Sprintf("ORD-%s-%05d", at.Format("20060102"), id)
}

// RecalculateTotal sets TotalAmount from its components, floored at zero
func (o *Order) RecalculateTotal() {
	o.TotalAmount = grandTotal(o.Subtotal, o.ShippingAmount, o.TaxAmount, o.DiscountAmount)
}

// BeforeSave hook keeps the total consistent with its components
func (o *Order) BeforeSave(tx *gorm.DB) error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	o.RecalculateTotal()
	return nil
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// IsTerminal reports whether no further status change is possible
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// IsTerminal reports whether the status ends the order lifecycle
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusRefunded
}

// IsValid reports whether s is a known status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// CanTransition reports whether the status machine allows from -> to
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// statusChange builds a history row for a status change
func (o *Order) statusChange(to OrderStatus, by *uint, changeType ChangeType, reason string, at time.Time) OrderHistory {
	return OrderHistory{
		OrderID:    o.ID,
		Field:      "status",
		OldValue:   string(o.Status),
		NewValue:   string(to),
		ChangedBy:  by,
		ChangeType: changeType,
		Reason:     reason,
		CreatedAt:  at,
	}
}

// paymentChange builds a history row for a payment status change
func (o *Order) paymentChange(to PaymentStatus, by *uint, changeType ChangeType, reason string, at time.Time) OrderHistory {
	return OrderHistory{
		OrderID:    o.ID,
		Field:      "payment_status",
		OldValue:   string(o.PaymentStatus),
		NewValue:   string(to),
		ChangedBy:  by,
		ChangeType: changeType,
		Reason:     reason,
		CreatedAt:  at,
	}
}
