package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

func newProduct(sku string, stock int) *product.Product {
	return &product.Product{
		SKU:               sku,
		Name:              sku,
		Slug:              sku,
		Price:             decimal.NewFromInt(100),
		IsActive:          true,
		TrackInventory:    true,
		StockQuantity:     stock,
		LowStockThreshold: 5,
		MinCartQuantity:   1,
		MaxCartQuantity:   10,
	}
}

func TestWithinTxRollsBackEveryTable(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := newProduct("TEE-1", 10)
	require.NoError(t, s.CreateProduct(ctx, p))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		p.StockQuantity = 3
		if err := s.SaveProduct(ctx, p); err != nil {
			return err
		}
		if err := s.AppendMovement(ctx, &inventory.StockMovement{ProductID: p.ID, Quantity: -7, StockBefore: 10, StockAfter: 3}); err != nil {
			return err
		}
		if err := s.CreateProduct(ctx, newProduct("MUG-1", 1)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.StockQuantity)

	total, err := s.SumMovements(ctx, inventory.Target{ProductID: p.ID})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = s.GetProductBySKU(ctx, "MUG-1")
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	next := newProduct("CAP-1", 1)
	require.NoError(t, s.CreateProduct(ctx, next))
	assert.Equal(t, uint(2), next.ID, "sequences roll back too")
}

func TestNestedTxJoinsOuter(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		return s.WithinTx(ctx, func(ctx context.Context) error {
			return s.CreateProduct(ctx, newProduct("TEE-1", 1))
		})
	})
	require.NoError(t, err)

	_, err = s.GetProductBySKU(ctx, "TEE-1")
	assert.NoError(t, err)
}

func TestFailOn(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	s.FailOn("CreateProduct", boom)
	assert.ErrorIs(t, s.CreateProduct(ctx, newProduct("TEE-1", 1)), boom)

	s.FailOn("CreateProduct", nil)
	assert.NoError(t, s.CreateProduct(ctx, newProduct("TEE-1", 1)))
}

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateProduct(ctx, newProduct("TEE-1", 1)))
	assert.Error(t, s.CreateProduct(ctx, newProduct("TEE-1", 1)))
}

func TestSaveProductDerivesStatus(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := newProduct("TEE-1", 10)
	require.NoError(t, s.CreateProduct(ctx, p))

	p.StockQuantity = 0
	require.NoError(t, s.SaveProduct(ctx, p))

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, product.StockStatusOutOfStock, got.StockStatus)
}

func TestKeyValueExpiry(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SetJSON(ctx, "cart:session:a", map[string]int{"n": 1}, time.Hour))
	require.NoError(t, s.SetJSON(ctx, "cart:session:b", "gone", time.Nanosecond))
	time.Sleep(time.Millisecond)

	var got map[string]int
	found, err := s.GetJSON(ctx, "cart:session:a", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, got["n"])

	var expired string
	found, err = s.GetJSON(ctx, "cart:session:b", &expired)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Del(ctx, "cart:session:a"))
	found, err = s.GetJSON(ctx, "cart:session:a", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWindow(t *testing.T) {
	start, end := window(5, 2, 2)
	assert.Equal(t, 2, start)
	assert.Equal(t, 4, end)

	start, end = window(5, 10, 2)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)

	start, end = window(5, 0, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)
}
