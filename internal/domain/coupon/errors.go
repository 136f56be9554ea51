package coupon

import "github.com/your-org/storefront-backend/internal/pkg/apperror"

var (
	ErrInvalidCodeFormat = apperror.Validation("coupon_invalid_format", "Invalid coupon code format")
	ErrInvalidCoupon     = apperror.Validation("coupon_invalid", "Invalid coupon data")
	ErrCouponNotFound    = apperror.NotFound("coupon_not_found", "Invalid coupon code")
	ErrDuplicateCode     = apperror.Conflict("coupon_duplicate", "A coupon with this code already exists")
	ErrSignInRequired    = apperror.BusinessRule("coupon_sign_in_required", "Sign in to use coupons")

	// Rejections, in the order they are checked
	ErrInactive        = apperror.BusinessRule("coupon_inactive", "Coupon is not active")
	ErrNotYetValid     = apperror.BusinessRule("coupon_not_yet_valid", "Coupon is not yet valid")
	ErrExpired         = apperror.BusinessRule("coupon_expired", "Coupon has expired")
	ErrUsageLimit      = apperror.BusinessRule("coupon_usage_limit", "Coupon usage limit reached")
	ErrMinimumOrder    = apperror.BusinessRule("coupon_min_order", "Minimum order amount not met")
	ErrUserUsageLimit  = apperror.BusinessRule("coupon_user_limit", "Usage limit reached for this user")
	ErrNoCouponApplied = apperror.NotFound("coupon_not_applied", "No coupon applied")
)
