// internal/domain/coupon/engine.go
package coupon

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	codePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{2,49}$`)
	hundred     = decimal.NewFromInt(100)
)

// NormalizeCode upper-cases and trims a code, rejecting malformed input
// before anything is looked up.
func NormalizeCode(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !codePattern.MatchString(normalized) {
		return "", ErrInvalidCodeFormat
	}
	return normalized, nil
}

// Check runs the checks that need nothing but the coupon itself, in
// order: active, validity window, global usage limit, minimum order.
// The per-user limit comes last and is checked by the service.
func (c *Coupon) Check(now time.Time, subtotal decimal.Decimal) error {
	if !c.IsActive {
		return ErrInactive
	}
	if now.Before(c.ValidFrom) {
		return ErrNotYetValid
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return ErrExpired
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return ErrUsageLimit
	}
	if subtotal.LessThan(c.MinimumOrderAmount) {
		return ErrMinimumOrder.WithMessage("Minimum order amount is ₹%s", c.MinimumOrderAmount.StringFixed(2))
	}
	return nil
}

// Discount returns the monetary discount on subtotal. It never exceeds
// the maximum discount cap or the subtotal itself. Free shipping is not
// monetary and returns zero.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(hundred)
		if c.MaximumDiscountAmount.Valid && discount.GreaterThan(c.MaximumDiscountAmount.Decimal) {
			discount = c.MaximumDiscountAmount.Decimal
		}
	case DiscountTypeFixedAmount:
		discount = c.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount.Round(2)
}

// FreeShipping reports whether the coupon zeroes the shipping charge
func (c *Coupon) FreeShipping() bool {
	return c.DiscountType == DiscountTypeFreeShipping
}
