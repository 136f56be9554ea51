package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/your-org/storefront-backend/internal/domain/coupon"
)

// GetCouponByCode loads a coupon by its normalized code
func (s *Store) GetCouponByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	if err := s.fail("GetCouponByCode"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	for _, c := range s.t.coupons {
		if c.Code == code {
			found := c
			return &found, nil
		}
	}
	return nil, coupon.ErrCouponNotFound
}

// GetCoupon loads a coupon by ID
func (s *Store) GetCoupon(ctx context.Context, id uint) (*coupon.Coupon, error) {
	if err := s.fail("GetCoupon"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	c, ok := s.t.coupons[id]
	if !ok {
		return nil, coupon.ErrCouponNotFound
	}
	return &c, nil
}

// LockCoupon loads a coupon; the transaction lock already serializes it
func (s *Store) LockCoupon(ctx context.Context, id uint) (*coupon.Coupon, error) {
	if err := s.fail("LockCoupon"); err != nil {
		return nil, err
	}
	return s.GetCoupon(ctx, id)
}

// CreateCoupon inserts a coupon
func (s *Store) CreateCoupon(ctx context.Context, c *coupon.Coupon) error {
	if err := s.fail("CreateCoupon"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	for _, existing := range s.t.coupons {
		if existing.Code == c.Code {
			return fmt.Errorf("duplicate key value violates unique constraint \"coupons_code_key\"")
		}
	}
	ts := now()
	c.ID = s.nextID("coupons")
	c.CreatedAt, c.UpdatedAt = ts, ts
	s.t.coupons[c.ID] = *c
	return nil
}

// SaveCoupon updates a coupon
func (s *Store) SaveCoupon(ctx context.Context, c *coupon.Coupon) error {
	if err := s.fail("SaveCoupon"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	if _, ok := s.t.coupons[c.ID]; !ok {
		return coupon.ErrCouponNotFound
	}
	c.UpdatedAt = now()
	s.t.coupons[c.ID] = *c
	return nil
}

// ListCoupons returns coupons ordered by ID
func (s *Store) ListCoupons(ctx context.Context, activeOnly bool) ([]coupon.Coupon, error) {
	if err := s.fail("ListCoupons"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	coupons := []coupon.Coupon{}
	for _, c := range s.t.coupons {
		if activeOnly && !c.IsActive {
			continue
		}
		coupons = append(coupons, c)
	}
	sort.Slice(coupons, func(i, j int) bool { return coupons[i].ID < coupons[j].ID })
	return coupons, nil
}

// CountUsages counts the uses of a coupon by one user
func (s *Store) CountUsages(ctx context.Context, couponID, userID uint) (int64, error) {
	if err := s.fail("CountUsages"); err != nil {
		return 0, err
	}
	defer s.lock(ctx)()

	var n int64
	for _, u := range s.t.usages {
		if u.CouponID == couponID && u.UserID == userID {
			n++
		}
	}
	return n, nil
}

// CreateUsage inserts a usage row
func (s *Store) CreateUsage(ctx context.Context, u *coupon.CouponUsage) error {
	if err := s.fail("CreateUsage"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	u.ID = s.nextID("coupon_usage")
	s.t.usages = append(s.t.usages, *u)
	return nil
}

// DeleteUsage removes the usage of a coupon by an order
func (s *Store) DeleteUsage(ctx context.Context, couponID, orderID uint) (bool, error) {
	if err := s.fail("DeleteUsage"); err != nil {
		return false, err
	}
	defer s.lock(ctx)()

	for i, u := range s.t.usages {
		if u.CouponID == couponID && u.OrderID == orderID {
			s.t.usages = append(s.t.usages[:i], s.t.usages[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
