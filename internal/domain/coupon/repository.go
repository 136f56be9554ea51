// internal/domain/coupon/repository.go
package coupon

import (
	"context"
	"time"
)

// Repository is the persistence contract for coupons and their usage
type Repository interface {
	GetCouponByCode(ctx context.Context, code string) (*Coupon, error)
	GetCoupon(ctx context.Context, id uint) (*Coupon, error)
	// LockCoupon loads the coupon with a row lock so used_count cannot
	// race between check and increment.
	LockCoupon(ctx context.Context, id uint) (*Coupon, error)
	CreateCoupon(ctx context.Context, c *Coupon) error
	SaveCoupon(ctx context.Context, c *Coupon) error
	ListCoupons(ctx context.Context, activeOnly bool) ([]Coupon, error)

	CountUsages(ctx context.Context, couponID, userID uint) (int64, error)
	CreateUsage(ctx context.Context, u *CouponUsage) error
	// DeleteUsage removes the usage of couponID by orderID, reporting
	// whether a row existed.
	DeleteUsage(ctx context.Context, couponID, orderID uint) (bool, error)
}

// CodeStore keeps the code a shopper applied to their cart between requests
type CodeStore interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
