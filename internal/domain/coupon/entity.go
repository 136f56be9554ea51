// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountType represents how a coupon discounts an order
type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "percentage"
	DiscountTypeFixedAmount  DiscountType = "fixed_amount"
	DiscountTypeFreeShipping DiscountType = "free_shipping"
)

// IsValid reports whether t is a known discount type
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountTypePercentage, DiscountTypeFixedAmount, DiscountTypeFreeShipping:
		return true
	}
	return false
}

// Coupon represents a redeemable discount code
type Coupon struct {
	ID                    uint                `gorm:"primaryKey" json:"id"`
	Code                  string              `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name                  string              `gorm:"not null;size:100" json:"name"`
	Description           string              `gorm:"type:text" json:"description"`
	DiscountType          DiscountType        `gorm:"size:20;not null" json:"discount_type"`
	DiscountValue         decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"discount_value"`
	MaximumDiscountAmount decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"maximum_discount_amount"`
	MinimumOrderAmount    decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0" json:"minimum_order_amount"`
	UsageLimit            *int                `json:"usage_limit,omitempty"`
	UsageLimitPerUser     *int                `json:"usage_limit_per_user,omitempty"`
	UsedCount             int                 `gorm:"not null;default:0" json:"used_count"`
	ValidFrom             time.Time           `gorm:"not null" json:"valid_from"`
	ValidUntil            *time.Time          `json:"valid_until,omitempty"`
	IsActive              bool                `gorm:"not null" json:"is_active"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
	DeletedAt             gorm.DeletedAt      `gorm:"index" json:"-"`
}

// CouponUsage records one redemption
type CouponUsage struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CouponID       uint            `gorm:"not null;index:idx_coupon_usage_user" json:"coupon_id"`
	UserID         uint            `gorm:"not null;index:idx_coupon_usage_user" json:"user_id"`
	OrderID        uint            `gorm:"not null;index" json:"order_id"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	UsedAt         time.Time       `gorm:"not null" json:"used_at"`
}

// TableName overrides
func (Coupon) TableName() string      { return "coupons" }
func (CouponUsage) TableName() string { return "coupon_usage" }
