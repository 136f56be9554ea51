package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

func TestPlanReduction(t *testing.T) {
	tests := []struct {
		name     string
		stock    product.Stock
		quantity int
		want     plan
		wantErr  error
	}{
		{
			name:     "covered",
			stock:    product.Stock{Quantity: 10, Tracked: true},
			quantity: 3,
			want:     plan{before: 10, after: 7, applied: -3},
		},
		{
			name:     "exactly empties",
			stock:    product.Stock{Quantity: 3, Tracked: true},
			quantity: 3,
			want:     plan{before: 3, after: 0, applied: -3},
		},
		{
			name:     "short without backorders",
			stock:    product.Stock{Quantity: 7, Tracked: true},
			quantity: 8,
			wantErr:  ErrInsufficientStock,
		},
		{
			name:     "short with backorders",
			stock:    product.Stock{Quantity: 2, Tracked: true, AllowBackorders: true},
			quantity: 5,
			want:     plan{before: 2, after: 0, applied: -2, backordered: 3},
		},
		{
			name:     "already empty with backorders",
			stock:    product.Stock{Quantity: 0, Tracked: true, AllowBackorders: true},
			quantity: 4,
			want:     plan{before: 0, after: 0, applied: 0, backordered: 4},
		},
		{
			name:     "zero quantity",
			stock:    product.Stock{Quantity: 5, Tracked: true},
			quantity: 0,
			wantErr:  ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := planReduction(tt.stock, tt.quantity, "SKU-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.after, got.before+got.applied)
		})
	}
}

func TestPlanAddition(t *testing.T) {
	got, err := planAddition(product.Stock{Quantity: 4, Tracked: true}, 6)
	require.NoError(t, err)
	assert.Equal(t, plan{before: 4, after: 10, applied: 6}, got)

	_, err = planAddition(product.Stock{Quantity: 4, Tracked: true}, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPlanReturn(t *testing.T) {
	stock := product.Stock{Quantity: 4, Tracked: true}

	got, err := planReturn(stock, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, plan{before: 4, after: 6, applied: 2}, got)

	got, err = planReturn(stock, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, plan{before: 4, after: 5, applied: 1}, got)

	got, err = planReturn(stock, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, plan{before: 4, after: 4}, got)

	_, err = planReturn(stock, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
