// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
	"github.com/your-org/storefront-backend/internal/pkg/txn"
)

// Service handles coupon validation, redemption and administration
type Service struct {
	repo    Repository
	tx      txn.Manager
	store   CodeStore
	config  config.CommerceConfig
	logger  *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a new coupon service
func NewService(repo Repository, tx txn.Manager, store CodeStore, cfg config.CommerceConfig, logger *logrus.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		tx:      tx,
		store:   store,
		config:  cfg,
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Application is a coupon that passed validation against a subtotal
type Application struct {
	CouponID       uint            `json:"coupon_id"`
	Code           string          `json:"code"`
	DiscountType   DiscountType    `json:"discount_type"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FreeShipping   bool            `json:"free_shipping"`
	Message        string          `json:"message"`
}

// CreateCouponRequest represents coupon creation data
type CreateCouponRequest struct {
	Code                  string           `json:"code" binding:"required"`
	Name                  string           `json:"name" binding:"required"`
	Description           string           `json:"description"`
	DiscountType          DiscountType     `json:"discount_type" binding:"required"`
	DiscountValue         decimal.Decimal  `json:"discount_value"`
	MaximumDiscountAmount *decimal.Decimal `json:"maximum_discount_amount,omitempty"`
	MinimumOrderAmount    decimal.Decimal  `json:"minimum_order_amount"`
	UsageLimit            *int             `json:"usage_limit,omitempty"`
	UsageLimitPerUser     *int             `json:"usage_limit_per_user,omitempty"`
	ValidFrom             *time.Time       `json:"valid_from,omitempty"`
	ValidUntil            *time.Time       `json:"valid_until,omitempty"`
}

// Evaluate validates code for a user and subtotal without changing anything
func (s *Service) Evaluate(ctx context.Context, code string, userID *uint, subtotal decimal.Decimal) (*Application, error) {
	app, err := s.evaluate(ctx, code, userID, subtotal, false)
	if err != nil {
		s.rejected(code, err)
		return nil, err
	}
	return app, nil
}

// Redeem re-validates code under a row lock and consumes one use. It must
// run inside the caller's transaction; RecordUsage then ties the use to
// the order created in that same transaction.
func (s *Service) Redeem(ctx context.Context, code string, userID uint, subtotal decimal.Decimal) (*Application, error) {
	var app *Application
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.evaluate(ctx, code, &userID, subtotal, true)
		return err
	})
	if err != nil {
		s.rejected(code, err)
		return nil, err
	}
	return app, nil
}

// RecordUsage writes the usage row for a redeemed application
func (s *Service) RecordUsage(ctx context.Context, app *Application, userID, orderID uint) error {
	usage := &CouponUsage{
		CouponID:       app.CouponID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: app.DiscountAmount,
		UsedAt:         s.now(),
	}
	if err := s.repo.CreateUsage(ctx, usage); err != nil {
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}
	return nil
}

// Release gives back the use consumed by an order
func (s *Service) Release(ctx context.Context, couponID, orderID uint) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.repo.LockCoupon(ctx, couponID)
		if err != nil {
			return err
		}

		removed, err := s.repo.DeleteUsage(ctx, couponID, orderID)
		if err != nil {
			return fmt.Errorf("failed to remove coupon usage: %w", err)
		}
		if !removed {
			return nil
		}

		if c.UsedCount > 0 {
			c.UsedCount--
		}
		return s.repo.SaveCoupon(ctx, c)
	})
}

// CreateCoupon creates a new coupon
func (s *Service) CreateCoupon(ctx context.Context, req *CreateCouponRequest) (*Coupon, error) {
	c, err := s.newCoupon(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetCouponByCode(ctx, c.Code); err == nil {
		return nil, ErrDuplicateCode
	}
	if err := s.repo.CreateCoupon(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"coupon_id":     c.ID,
		"code":          c.Code,
		"discount_type": c.DiscountType,
	}).Info("Coupon created")

	return c, nil
}

// GetCoupon retrieves a coupon by ID
func (s *Service) GetCoupon(ctx context.Context, id uint) (*Coupon, error) {
	return s.repo.GetCoupon(ctx, id)
}

// ListCoupons retrieves coupons
func (s *Service) ListCoupons(ctx context.Context, activeOnly bool) ([]Coupon, error) {
	coupons, err := s.repo.ListCoupons(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve coupons: %w", err)
	}
	return coupons, nil
}

// DeactivateCoupon switches a coupon off; usage history is kept
func (s *Service) DeactivateCoupon(ctx context.Context, id uint) (*Coupon, error) {
	var c *Coupon
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.LockCoupon(ctx, id)
		if err != nil {
			return err
		}
		c.IsActive = false
		return s.repo.SaveCoupon(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyToCart validates code against the cart subtotal and remembers it
// for the user's checkout
func (s *Service) ApplyToCart(ctx context.Context, userID uint, code string, subtotal decimal.Decimal) (*Application, error) {
	app, err := s.Evaluate(ctx, code, &userID, subtotal)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetJSON(ctx, appliedKey(userID), app.Code, s.config.AppliedCouponTTL); err != nil {
		return nil, fmt.Errorf("failed to store applied coupon: %w", err)
	}
	return app, nil
}

// RemoveFromCart forgets the applied code
func (s *Service) RemoveFromCart(ctx context.Context, userID uint) error {
	return s.store.Del(ctx, appliedKey(userID))
}

// AppliedCode returns the code stored for the user, or "" when none is
func (s *Service) AppliedCode(ctx context.Context, userID uint) (string, error) {
	var code string
	found, err := s.store.GetJSON(ctx, appliedKey(userID), &code)
	if err != nil {
		return "", fmt.Errorf("failed to load applied coupon: %w", err)
	}
	if !found {
		return "", nil
	}
	return code, nil
}

// Private helper methods

func (s *Service) evaluate(ctx context.Context, code string, userID *uint, subtotal decimal.Decimal, consume bool) (*Application, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	if userID == nil {
		return nil, ErrSignInRequired
	}

	c, err := s.repo.GetCouponByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if consume {
		if c, err = s.repo.LockCoupon(ctx, c.ID); err != nil {
			return nil, err
		}
	}

	if err := c.Check(s.now(), subtotal); err != nil {
		return nil, err
	}

	if c.UsageLimitPerUser != nil {
		used, err := s.repo.CountUsages(ctx, c.ID, *userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count coupon usage: %w", err)
		}
		if used >= int64(*c.UsageLimitPerUser) {
			return nil, ErrUserUsageLimit
		}
	}

	if consume {
		c.UsedCount++
		if err := s.repo.SaveCoupon(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to update coupon usage count: %w", err)
		}
	}

	discount := c.Discount(subtotal)
	app := &Application{
		CouponID:       c.ID,
		Code:           c.Code,
		DiscountType:   c.DiscountType,
		DiscountAmount: discount,
		FreeShipping:   c.FreeShipping(),
	}
	if app.FreeShipping {
		app.Message = "Coupon applied! You get free shipping"
	} else {
		app.Message = fmt.Sprintf("Coupon applied! You saved ₹%s", discount.StringFixed(2))
	}
	return app, nil
}

func (s *Service) rejected(code string, err error) {
	reason := apperror.CodeOf(err)
	s.metrics.CouponRejected(reason)
	s.logger.WithFields(logrus.Fields{
		"code":   code,
		"reason": reason,
	}).Debug("Coupon rejected")
}

func (s *Service) newCoupon(req *CreateCouponRequest) (*Coupon, error) {
	code, err := NormalizeCode(req.Code)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidCoupon.WithMessage("Coupon name is required")
	}
	if !req.DiscountType.IsValid() {
		return nil, ErrInvalidCoupon.WithMessage("Invalid discount type: %s", req.DiscountType)
	}

	switch req.DiscountType {
	case DiscountTypePercentage:
		if !req.DiscountValue.IsPositive() || req.DiscountValue.GreaterThan(hundred) {
			return nil, ErrInvalidCoupon.WithMessage("Percentage must be between 0 and 100")
		}
	case DiscountTypeFixedAmount:
		if !req.DiscountValue.IsPositive() {
			return nil, ErrInvalidCoupon.WithMessage("Discount value must be greater than zero")
		}
	}
	if req.MinimumOrderAmount.IsNegative() {
		return nil, ErrInvalidCoupon.WithMessage("Minimum order amount cannot be negative")
	}
	if req.UsageLimit != nil && *req.UsageLimit < 1 {
		return nil, ErrInvalidCoupon.WithMessage("Usage limit must be at least 1")
	}
	if req.UsageLimitPerUser != nil && *req.UsageLimitPerUser < 1 {
		return nil, ErrInvalidCoupon.WithMessage("Per-user usage limit must be at least 1")
	}

	validFrom := s.now()
	if req.ValidFrom != nil {
		validFrom = req.ValidFrom.UTC()
	}
	if req.ValidUntil != nil && !req.ValidUntil.After(validFrom) {
		return nil, ErrInvalidCoupon.WithMessage("Valid until must be after valid from")
	}

	c := &Coupon{
		Code:               code,
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		DiscountType:       req.DiscountType,
		DiscountValue:      req.DiscountValue.Round(2),
		MinimumOrderAmount: req.MinimumOrderAmount.Round(2),
		UsageLimit:         req.UsageLimit,
		UsageLimitPerUser:  req.UsageLimitPerUser,
		ValidFrom:          validFrom,
		ValidUntil:         req.ValidUntil,
		IsActive:           true,
	}
	if req.MaximumDiscountAmount != nil {
		if !req.MaximumDiscountAmount.IsPositive() {
			return nil, ErrInvalidCoupon.WithMessage("Maximum discount must be greater than zero")
		}
		c.MaximumDiscountAmount = decimal.NewNullDecimal(req.MaximumDiscountAmount.Round(2))
	}
	return c, nil
}

func appliedKey(userID uint) string {
	return fmt.Sprintf("applied_coupon:%d", userID)
}
