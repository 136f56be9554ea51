// internal/infrastructure/database/postgres/coupon_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponRepository is the gorm implementation of coupon.Repository
type CouponRepository struct {
	baseRepository
}

// NewCouponRepository creates a coupon repository
func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{baseRepository{db: db}}
}

func (r *CouponRepository) GetCouponByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	var c coupon.Coupon
	if err := r.getDB(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, translate(err, coupon.ErrCouponNotFound, "retrieve coupon")
	}
	return &c, nil
}

func (r *CouponRepository) GetCoupon(ctx context.Context, id uint) (*coupon.Coupon, error) {
	var c coupon.Coupon
	if err := r.getDB(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, coupon.ErrCouponNotFound, "retrieve coupon")
	}
	return &c, nil
}

func (r *CouponRepository) LockCoupon(ctx context.Context, id uint) (*coupon.Coupon, error) {
	var c coupon.Coupon
	if err := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
		return nil, translate(err, coupon.ErrCouponNotFound, "lock coupon")
	}
	return &c, nil
}

func (r *CouponRepository) CreateCoupon(ctx context.Context, c *coupon.Coupon) error {
	if err := r.getDB(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return coupon.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

func (r *CouponRepository) SaveCoupon(ctx context.Context, c *coupon.Coupon) error {
	if err := r.getDB(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("failed to save coupon: %w", err)
	}
	return nil
}

func (r *CouponRepository) ListCoupons(ctx context.Context, activeOnly bool) ([]coupon.Coupon, error) {
	query := r.getDB(ctx).Order("id")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var coupons []coupon.Coupon
	if err := query.Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

func (r *CouponRepository) CountUsages(ctx context.Context, couponID, userID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&coupon.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count coupon usage: %w", err)
	}
	return count, nil
}

func (r *CouponRepository) CreateUsage(ctx context.Context, u *coupon.CouponUsage) error {
	if err := r.getDB(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to create coupon usage: %w", err)
	}
	return nil
}

func (r *CouponRepository) DeleteUsage(ctx context.Context, couponID, orderID uint) (bool, error) {
	result := r.getDB(ctx).
		Where("coupon_id = ? AND order_id = ?", couponID, orderID).
		Delete(&coupon.CouponUsage{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete coupon usage: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
