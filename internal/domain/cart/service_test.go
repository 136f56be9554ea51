package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/memory"
)

func newService(t *testing.T) (*cart.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	logger, _ := test.NewNullLogger()
	return cart.NewService(store, store, config.CommerceConfig{CartTTL: time.Hour}, logger), store
}

func seed(t *testing.T, store *memory.Store, p product.Product) *product.Product {
	t.Helper()
	p.Slug = p.SKU
	p.IsActive = true
	p.TrackInventory = true
	p.LowStockThreshold = 2
	if p.MinCartQuantity == 0 {
		p.MinCartQuantity = 1
	}
	if p.MaxCartQuantity == 0 {
		p.MaxCartQuantity = 10
	}
	require.NoError(t, store.CreateProduct(context.Background(), &p))
	return &p
}

func guest(id string) cart.Owner { return cart.Owner{SessionID: id} }

func TestAddItemMergesLines(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee", Price: decimal.RequireFromString("199.50"), StockQuantity: 10})

	_, err := svc.AddItem(ctx, guest("s1"), &cart.AddItemRequest{ProductID: tee.ID, Quantity: 2})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, guest("s1"), &cart.AddItemRequest{ProductID: tee.ID, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, 1, view.ItemCount)
	assert.Equal(t, 3, view.TotalQuantity)
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("598.50")))
	assert.True(t, view.Items[0].Available)
}

func TestAddItemChecks(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee", Price: decimal.NewFromInt(100), StockQuantity: 3, MaxCartQuantity: 5})
	off := seed(t, store, product.Product{SKU: "OFF-1", Name: "Retired", Price: decimal.NewFromInt(100), StockQuantity: 3})
	off.IsActive = false
	require.NoError(t, store.SaveProduct(ctx, off))

	tests := []struct {
		name string
		req  cart.AddItemRequest
		want error
	}{
		{"zero quantity", cart.AddItemRequest{ProductID: tee.ID, Quantity: 0}, cart.ErrInvalidQuantity},
		{"over cart maximum", cart.AddItemRequest{ProductID: tee.ID, Quantity: 6}, cart.ErrQuantityLimit},
		{"over stock", cart.AddItemRequest{ProductID: tee.ID, Quantity: 4}, cart.ErrInsufficientStock},
		{"inactive", cart.AddItemRequest{ProductID: off.ID, Quantity: 1}, cart.ErrProductUnavailable},
		{"unknown product", cart.AddItemRequest{ProductID: 999, Quantity: 1}, product.ErrProductNotFound},
		{"unknown variation", cart.AddItemRequest{ProductID: tee.ID, VariationID: ptr(uint(999)), Quantity: 1}, product.ErrVariationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, guest("s1"), &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := svc.AddItem(ctx, cart.Owner{}, &cart.AddItemRequest{ProductID: tee.ID, Quantity: 1})
	assert.ErrorIs(t, err, cart.ErrNoOwner)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee", Price: decimal.NewFromInt(100), StockQuantity: 10})
	mug := seed(t, store, product.Product{SKU: "MUG-1", Name: "Mug", Price: decimal.NewFromInt(50), StockQuantity: 10})
	owner := guest("s1")

	_, err := svc.AddItem(ctx, owner, &cart.AddItemRequest{ProductID: tee.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, owner, &cart.AddItemRequest{ProductID: mug.ID, Quantity: 1})
	require.NoError(t, err)

	view, err := svc.UpdateItem(ctx, owner, tee.ID, &cart.UpdateItemRequest{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, view.TotalQuantity)

	view, err = svc.UpdateItem(ctx, owner, mug.ID, &cart.UpdateItemRequest{Quantity: 0})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, tee.ID, view.Items[0].ProductID)

	_, err = svc.RemoveItem(ctx, owner, mug.ID, nil)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	_, err = svc.UpdateItem(ctx, owner, mug.ID, &cart.UpdateItemRequest{Quantity: 2})
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	require.NoError(t, svc.ClearCart(ctx, owner))
	view, err = svc.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Subtotal.IsZero())
}

func TestViewUsesLiveCatalog(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee", Price: decimal.NewFromInt(100), StockQuantity: 10})
	owner := guest("s1")

	_, err := svc.AddItem(ctx, owner, &cart.AddItemRequest{ProductID: tee.ID, Quantity: 3})
	require.NoError(t, err)

	p, err := store.GetProduct(ctx, tee.ID)
	require.NoError(t, err)
	p.Price = decimal.NewFromInt(120)
	p.StockQuantity = 2
	require.NoError(t, store.SaveProduct(ctx, p))

	view, err := svc.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(360)))
	assert.False(t, view.Items[0].Available)
	assert.Equal(t, product.StockStatusLowStock, view.Items[0].StockStatus)
}

func TestVariationLines(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{
		SKU: "TEE-1", Name: "Tee", Price: decimal.NewFromInt(100), StockQuantity: 10,
		Variations: []product.Variation{
			{SKU: "TEE-1-L", Name: "Large", Price: decimal.NewNullDecimal(decimal.NewFromInt(130)), StockQuantity: 5, IsActive: true},
		},
	})
	large := tee.Variations[0].ID
	owner := guest("s1")

	_, err := svc.AddItem(ctx, owner, &cart.AddItemRequest{ProductID: tee.ID, Quantity: 1})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, owner, &cart.AddItemRequest{ProductID: tee.ID, VariationID: &large, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, view.Items, 2, "a variation is its own line")
	assert.Equal(t, "TEE-1-L", view.Items[1].SKU)
	assert.True(t, view.Items[1].UnitPrice.Equal(decimal.NewFromInt(130)))
	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(360)))

	_, err = svc.AddItem(ctx, owner, &cart.AddItemRequest{ProductID: tee.ID, VariationID: &large, Quantity: 4})
	assert.ErrorIs(t, err, cart.ErrInsufficientStock)

	lines, err := svc.Snapshot(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.NotNil(t, lines[1].VariationID)
	assert.Equal(t, large, *lines[1].VariationID)
	assert.Equal(t, 2, lines[1].Quantity)
}

func TestMergeGuestCart(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee", Price: decimal.NewFromInt(100), StockQuantity: 20, MaxCartQuantity: 5})
	mug := seed(t, store, product.Product{SKU: "MUG-1", Name: "Mug", Price: decimal.NewFromInt(50), StockQuantity: 20})
	user := uint(9)

	_, err := svc.AddItem(ctx, cart.Owner{UserID: &user}, &cart.AddItemRequest{ProductID: tee.ID, Quantity: 3})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest("s1"), &cart.AddItemRequest{ProductID: tee.ID, Quantity: 4})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest("s1"), &cart.AddItemRequest{ProductID: mug.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.MergeGuestCart(ctx, user, "s1"))

	view, err := svc.GetCart(ctx, cart.Owner{UserID: &user})
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 5, view.Items[0].Quantity, "capped at the cart maximum")
	assert.Equal(t, 2, view.Items[1].Quantity)

	guestView, err := svc.GetCart(ctx, guest("s1"))
	require.NoError(t, err)
	assert.Empty(t, guestView.Items)

	require.NoError(t, svc.MergeGuestCart(ctx, user, "empty-session"))
}

func TestUserOwnerWinsOverSession(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee", Price: decimal.NewFromInt(100), StockQuantity: 10})
	user := uint(9)

	_, err := svc.AddItem(ctx, cart.Owner{UserID: &user, SessionID: "s1"}, &cart.AddItemRequest{ProductID: tee.ID, Quantity: 1})
	require.NoError(t, err)

	sessionView, err := svc.GetCart(ctx, guest("s1"))
	require.NoError(t, err)
	assert.Empty(t, sessionView.Items)

	userView, err := svc.GetCart(ctx, cart.Owner{UserID: &user})
	require.NoError(t, err)
	assert.Len(t, userView.Items, 1)
}

func ptr[T any](v T) *T { return &v }
