package product

import "github.com/your-org/storefront-backend/internal/pkg/apperror"

var (
	ErrProductNotFound   = apperror.NotFound("product_not_found", "Product not found")
	ErrVariationNotFound = apperror.NotFound("variation_not_found", "Product variation not found")
	ErrDuplicateSKU      = apperror.Conflict("duplicate_sku", "A product with this SKU already exists")
	ErrDuplicateSlug     = apperror.Conflict("duplicate_slug", "A product with this slug already exists")
	ErrInvalidSettings   = apperror.Validation("invalid_product_settings", "Invalid product settings")

	ErrCategoryNotFound  = apperror.NotFound("category_not_found", "Category not found")
	ErrBrandNotFound     = apperror.NotFound("brand_not_found", "Brand not found")
	ErrInvalidCategory   = apperror.Validation("invalid_category", "Invalid category data")
	ErrDuplicateCategory = apperror.Conflict("duplicate_category", "A category with this slug already exists")
	ErrDuplicateBrand    = apperror.Conflict("duplicate_brand", "A brand with this slug already exists")
	ErrCategoryInUse     = apperror.BusinessRule("category_in_use", "Category still has products or subcategories")

	ErrReviewNotFound  = apperror.NotFound("review_not_found", "Review not found")
	ErrInvalidReview   = apperror.Validation("invalid_review", "Invalid review data")
	ErrAlreadyReviewed = apperror.Conflict("already_reviewed", "You have already reviewed this product")
	ErrReviewForbidden = apperror.BusinessRule("review_forbidden", "You cannot change this review")
)
