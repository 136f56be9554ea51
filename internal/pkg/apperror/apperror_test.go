package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	sentinel := BusinessRule("coupon_min_order", "Minimum order amount not met")
	specific := sentinel.WithMessage("Minimum order amount is ₹%s", "500.00")

	assert.True(t, errors.Is(specific, sentinel))
	assert.Equal(t, "Minimum order amount is ₹500.00", specific.Error())
	assert.Equal(t, KindBusinessRule, specific.Kind)
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("checkout failed: %w", NotFound("product_not_found", "Product not found"))
	assert.Equal(t, KindNotFound, KindOf(err))

	msg, ok := MessageOf(err)
	assert.True(t, ok)
	assert.Equal(t, "Product not found", msg)
}

func TestKindOfPlainErrorIsInternal(t *testing.T) {
	err := errors.New("connection reset")
	assert.Equal(t, KindInternal, KindOf(err))

	_, ok := MessageOf(err)
	assert.False(t, ok)
}

func TestDistinctCodesDoNotMatch(t *testing.T) {
	a := Validation("invalid_quantity", "Quantity must be positive")
	b := Validation("invalid_code", "Invalid coupon code format")
	assert.False(t, errors.Is(a, b))
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("redeem: %w", BusinessRule("coupon_expired", "Coupon has expired"))
	assert.Equal(t, "coupon_expired", CodeOf(err))
	assert.Equal(t, "internal", CodeOf(errors.New("boom")))
}
