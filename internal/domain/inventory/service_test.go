package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/memory"
)

func newService(t *testing.T) (*inventory.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	logger, _ := test.NewNullLogger()
	return inventory.NewService(store, store, store, store, logger, nil), store
}

func createProduct(t *testing.T, svc *inventory.Service, req *inventory.CreateProductRequest) *product.Product {
	t.Helper()
	if req.Price.IsZero() {
		req.Price = decimal.NewFromInt(100)
	}
	p, err := svc.CreateProduct(context.Background(), req, nil)
	require.NoError(t, err)
	return p
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestReduceStockRecordsMovement(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{
		SKU: "TEE-1", Name: "Tee", InitialStock: 10, LowStockThreshold: intPtr(5),
	})

	m, err := svc.ReduceStock(ctx, inventory.Change{Target: inventory.Target{ProductID: p.ID}, Quantity: 3})
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, -3, m.Quantity)
	assert.Equal(t, 10, m.StockBefore)
	assert.Equal(t, 7, m.StockAfter)
	assert.Equal(t, inventory.MovementTypeSale, m.MovementType)
	assert.Equal(t, inventory.ReferenceOrder, m.ReferenceType)
	assert.Equal(t, "Sale", m.Reason)

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.StockQuantity)
	assert.Equal(t, product.StockStatusInStock, got.StockStatus)
	assert.Equal(t, 3, got.TotalSold)
}

func TestReduceStockRejectsShortfall(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee", InitialStock: 7})

	_, err := svc.ReduceStock(ctx, inventory.Change{Target: inventory.Target{ProductID: p.ID}, Quantity: 8})
	require.Error(t, err)
	assert.True(t, errors.Is(err, inventory.ErrInsufficientStock))
	assert.Equal(t, "Insufficient stock for TEE-1: available 7, requested 8", err.Error())

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.StockQuantity)

	res, err := svc.ListMovements(ctx, &inventory.MovementListRequest{ProductID: &p.ID})
	require.NoError(t, err)
	assert.Len(t, res.Movements, 1, "only the opening stock movement")
}

func TestReduceStockRejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newService(t)
	p := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee", InitialStock: 5})

	for _, qty := range []int{0, -2} {
		_, err := svc.ReduceStock(context.Background(), inventory.Change{Target: inventory.Target{ProductID: p.ID}, Quantity: qty})
		assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
	}
}

func TestReduceStockBackorderFloorsAtZero(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{
		SKU: "MUG-1", Name: "Mug", InitialStock: 2, AllowBackorders: true,
	})

	m, err := svc.ReduceStock(ctx, inventory.Change{Target: inventory.Target{ProductID: p.ID}, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, -2, m.Quantity)
	assert.Equal(t, 3, m.BackorderedQuantity)
	assert.Equal(t, 0, m.StockAfter)

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
	assert.Equal(t, product.StockStatusOnBackorder, got.StockStatus)
	assert.Equal(t, 5, got.TotalSold)

	rec, err := svc.Reconcile(ctx, inventory.Target{ProductID: p.ID})
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
}

func TestUntrackedProductSkipsLedger(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{
		SKU: "GIFT-500", Name: "Gift card", TrackInventory: boolPtr(false),
	})

	m, err := svc.ReduceStock(ctx, inventory.Change{Target: inventory.Target{ProductID: p.ID}, Quantity: 50})
	require.NoError(t, err)
	assert.Nil(t, m)

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, product.StockStatusInStock, got.StockStatus)

	res, err := svc.ListMovements(ctx, &inventory.MovementListRequest{ProductID: &p.ID})
	require.NoError(t, err)
	assert.Empty(t, res.Movements)
}

func TestAddStockReturnDecrementsTotalSold(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee", InitialStock: 10})
	target := inventory.Target{ProductID: p.ID}

	_, err := svc.ReduceStock(ctx, inventory.Change{Target: target, Quantity: 4})
	require.NoError(t, err)

	m, err := svc.AddStock(ctx, inventory.Change{Target: target, Quantity: 4, Type: inventory.MovementTypeReturn, Reason: "Order cancelled"})
	require.NoError(t, err)
	assert.Equal(t, 4, m.Quantity)
	assert.Equal(t, 6, m.StockBefore)
	assert.Equal(t, 10, m.StockAfter)

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.StockQuantity)
	assert.Equal(t, 0, got.TotalSold)
}

func TestReturnStockRestoresOnlyWhatTheReferenceTook(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee", InitialStock: 2, AllowBackorders: true})
	target := inventory.Target{ProductID: p.ID}
	orderID := uint(41)

	sale, err := svc.ReduceStock(ctx, inventory.Change{Target: target, Quantity: 5, ReferenceID: &orderID})
	require.NoError(t, err)
	assert.Equal(t, -2, sale.Quantity)
	assert.Equal(t, 3, sale.BackorderedQuantity)

	// Stock received for someone else must not be handed back to order 41.
	_, err = svc.AddStock(ctx, inventory.Change{Target: target, Quantity: 4})
	require.NoError(t, err)

	m, err := svc.ReturnStock(ctx, inventory.Change{Target: target, Quantity: 5, ReferenceID: &orderID})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 2, m.Quantity)
	assert.Equal(t, 4, m.StockBefore)
	assert.Equal(t, 6, m.StockAfter)
	assert.Equal(t, inventory.MovementTypeReturn, m.MovementType)

	again, err := svc.ReturnStock(ctx, inventory.Change{Target: target, Quantity: 5, ReferenceID: &orderID})
	require.NoError(t, err)
	assert.Nil(t, again, "a second return finds nothing outstanding")

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.StockQuantity)
	assert.Equal(t, 0, got.TotalSold)

	rec, err := svc.Reconcile(ctx, target)
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
}

func TestReturnStockNeedsReference(t *testing.T) {
	svc, _ := newService(t)
	p := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee", InitialStock: 2})

	_, err := svc.ReturnStock(context.Background(), inventory.Change{Target: inventory.Target{ProductID: p.ID}, Quantity: 1})
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
}

func TestCreateProductSlugs(t *testing.T) {
	svc, _ := newService(t)

	first := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Cotton Tee"})
	second := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-2", Name: "Cotton  Tee!"})
	third := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-3", Name: "cotton tee"})
	symbols := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "GIFT-500", Name: "₹₹₹"})
	explicit := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-4", Name: "Cotton Tee", Slug: "summer-tee"})

	assert.Equal(t, "cotton-tee", first.Slug)
	assert.Equal(t, "cotton-tee-2", second.Slug)
	assert.Equal(t, "cotton-tee-3", third.Slug)
	assert.Equal(t, "gift-500", symbols.Slug)
	assert.Equal(t, "summer-tee", explicit.Slug)
}

func TestSetStockRecordsDelta(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee", InitialStock: 10})
	target := inventory.Target{ProductID: p.ID}

	m, err := svc.SetStock(ctx, inventory.SetStockRequest{Target: target, Quantity: 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, -6, m.Quantity)
	assert.Equal(t, inventory.MovementTypeAdjustment, m.MovementType)
	assert.Equal(t, inventory.ReferenceAdmin, m.ReferenceType)
	assert.Equal(t, "Manual stock adjustment", m.Reason)

	m, err = svc.SetStock(ctx, inventory.SetStockRequest{Target: target, Quantity: 4}, nil)
	require.NoError(t, err)
	assert.Nil(t, m, "no movement for an unchanged quantity")

	_, err = svc.SetStock(ctx, inventory.SetStockRequest{Target: target, Quantity: -1}, nil)
	assert.ErrorIs(t, err, inventory.ErrNegativeStock)
}

func TestSetStockAdjustmentDoesNotCountAsSold(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee", InitialStock: 10})

	_, err := svc.SetStock(ctx, inventory.SetStockRequest{Target: inventory.Target{ProductID: p.ID}, Quantity: 2}, nil)
	require.NoError(t, err)

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalSold)
}

func TestBulkSetStockIsAllOrNothing(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	a := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "A-1", Name: "A", InitialStock: 10})
	b := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "B-1", Name: "B", InitialStock: 10})

	_, err := svc.BulkSetStock(ctx, &inventory.BulkSetStockRequest{
		Adjustments: []inventory.SetStockRequest{
			{Target: inventory.Target{ProductID: a.ID}, Quantity: 20},
			{Target: inventory.Target{ProductID: b.ID}, Quantity: -5},
		},
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrNegativeStock)
	assert.Contains(t, err.Error(), "product 2")

	got, err := store.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.StockQuantity)

	movements, err := svc.BulkSetStock(ctx, &inventory.BulkSetStockRequest{
		Reason: "Stock take",
		Adjustments: []inventory.SetStockRequest{
			{Target: inventory.Target{ProductID: a.ID}, Quantity: 20},
			{Target: inventory.Target{ProductID: b.ID}, Quantity: 10},
		},
	}, nil)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "Stock take", movements[0].Reason)
}

func TestFailedMovementRollsBackStock(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee", InitialStock: 10})

	store.FailOn("AppendMovement", errors.New("disk full"))
	_, err := svc.ReduceStock(ctx, inventory.Change{Target: inventory.Target{ProductID: p.ID}, Quantity: 3})
	require.Error(t, err)
	store.FailOn("AppendMovement", nil)

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.StockQuantity)
	assert.Equal(t, 0, got.TotalSold)

	rec, err := svc.Reconcile(ctx, inventory.Target{ProductID: p.ID})
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
	assert.Equal(t, 10, rec.LedgerTotal)
}

func TestConcurrentReductionsNeverOversell(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee", InitialStock: 10})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ReduceStock(ctx, inventory.Change{Target: inventory.Target{ProductID: p.ID}, Quantity: 1})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, accepted)

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
	assert.Equal(t, product.StockStatusOutOfStock, got.StockStatus)

	rec, err := svc.Reconcile(ctx, inventory.Target{ProductID: p.ID})
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
}

func TestVariationStockIsSeparate(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{
		SKU: "TEE-1", Name: "Tee", InitialStock: 5,
		Variations: []inventory.CreateVariationRequest{
			{SKU: "TEE-1-M", Name: "Medium", InitialStock: 8},
		},
	})
	require.Len(t, p.Variations, 1)
	vid := p.Variations[0].ID
	target := inventory.Target{ProductID: p.ID, VariationID: &vid}

	m, err := svc.ReduceStock(ctx, inventory.Change{Target: target, Quantity: 2})
	require.NoError(t, err)
	require.NotNil(t, m.VariationID)
	assert.Equal(t, vid, *m.VariationID)

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)
	assert.Equal(t, 6, got.Variations[0].StockQuantity)

	for _, tgt := range []inventory.Target{{ProductID: p.ID}, target} {
		rec, err := svc.Reconcile(ctx, tgt)
		require.NoError(t, err)
		assert.True(t, rec.Balanced)
	}

	missing := uint(999)
	_, err = svc.ReduceStock(ctx, inventory.Change{Target: inventory.Target{ProductID: p.ID, VariationID: &missing}, Quantity: 1})
	assert.ErrorIs(t, err, product.ErrVariationNotFound)
}

func TestAlertsFollowStockStatus(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{
		SKU: "TEE-1", Name: "Tee", InitialStock: 10, LowStockThreshold: intPtr(5),
	})
	target := inventory.Target{ProductID: p.ID}

	_, err := svc.ReduceStock(ctx, inventory.Change{Target: target, Quantity: 6})
	require.NoError(t, err)

	alerts, err := svc.ListAlerts(ctx, true)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, inventory.AlertTypeLowStock, alerts[0].AlertType)
	assert.Equal(t, 4, alerts[0].CurrentStock)

	_, err = svc.ReduceStock(ctx, inventory.Change{Target: target, Quantity: 4})
	require.NoError(t, err)

	alerts, err = svc.ListAlerts(ctx, true)
	require.NoError(t, err)
	require.Len(t, alerts, 1, "the open alert is updated, not duplicated")
	assert.Equal(t, inventory.AlertTypeOutOfStock, alerts[0].AlertType)

	_, err = svc.AddStock(ctx, inventory.Change{Target: target, Quantity: 20})
	require.NoError(t, err)

	alerts, err = svc.ListAlerts(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	all, err := svc.ListAlerts(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsResolved)
}

func TestResolveAlert(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee", InitialStock: 2})

	alerts, err := svc.ListAlerts(ctx, true)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, p.ID, alerts[0].ProductID)

	admin := uint(7)
	resolved, err := svc.ResolveAlert(ctx, alerts[0].ID, &admin)
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, admin, *resolved.ResolvedBy)

	_, err = svc.ResolveAlert(ctx, alerts[0].ID, &admin)
	assert.ErrorIs(t, err, inventory.ErrAlertResolved)

	_, err = svc.ResolveAlert(ctx, 999, &admin)
	assert.ErrorIs(t, err, inventory.ErrAlertNotFound)
}

func TestCreateProductBooksOpeningStock(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	admin := uint(1)

	p, err := svc.CreateProduct(ctx, &inventory.CreateProductRequest{
		SKU:          "HEADPHONE-1",
		Name:         "Wireless Headphones",
		Price:        decimal.RequireFromString("2499"),
		InitialStock: 25,
	}, &admin)
	require.NoError(t, err)

	assert.Equal(t, "wireless-headphones", p.Slug)
	assert.True(t, p.GSTRate.Equal(decimal.NewFromInt(18)))
	assert.Equal(t, 5, p.LowStockThreshold)
	assert.Equal(t, 1, p.MinCartQuantity)
	assert.Equal(t, 10, p.MaxCartQuantity)
	assert.Equal(t, 25, p.StockQuantity)

	res, err := svc.ListMovements(ctx, &inventory.MovementListRequest{ProductID: &p.ID})
	require.NoError(t, err)
	require.Len(t, res.Movements, 1)
	m := res.Movements[0]
	assert.Equal(t, inventory.MovementTypePurchase, m.MovementType)
	assert.Equal(t, "Opening stock", m.Reason)
	assert.Equal(t, 25, m.Quantity)
	require.NotNil(t, m.PerformedBy)
	assert.Equal(t, admin, *m.PerformedBy)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	createProduct(t, svc, &inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee"})

	tests := []struct {
		name string
		req  inventory.CreateProductRequest
		want error
	}{
		{"duplicate sku", inventory.CreateProductRequest{SKU: "TEE-1", Name: "Tee again", Price: decimal.NewFromInt(10)}, product.ErrDuplicateSKU},
		{"missing name", inventory.CreateProductRequest{SKU: "X-1", Price: decimal.NewFromInt(10)}, inventory.ErrInvalidProduct},
		{"zero price", inventory.CreateProductRequest{SKU: "X-1", Name: "X"}, inventory.ErrInvalidProduct},
		{"negative stock", inventory.CreateProductRequest{SKU: "X-1", Name: "X", Price: decimal.NewFromInt(10), InitialStock: -1}, inventory.ErrNegativeStock},
		{"untracked with stock", inventory.CreateProductRequest{SKU: "X-1", Name: "X", Price: decimal.NewFromInt(10), InitialStock: 3, TrackInventory: boolPtr(false)}, inventory.ErrInvalidProduct},
		{"bad cart limits", inventory.CreateProductRequest{SKU: "X-1", Name: "X", Price: decimal.NewFromInt(10), MinCartQuantity: 5, MaxCartQuantity: 2}, inventory.ErrInvalidProduct},
		{"negative threshold", inventory.CreateProductRequest{SKU: "X-1", Name: "X", Price: decimal.NewFromInt(10), LowStockThreshold: intPtr(-1)}, inventory.ErrInvalidProduct},
		{"negative variation threshold", inventory.CreateProductRequest{SKU: "X-1", Name: "X", Price: decimal.NewFromInt(10), Variations: []inventory.CreateVariationRequest{
			{SKU: "X-1-S", Name: "Small", LowStockThreshold: intPtr(-1)},
		}}, inventory.ErrInvalidProduct},
		{"taken slug", inventory.CreateProductRequest{SKU: "X-1", Name: "X", Slug: "tee", Price: decimal.NewFromInt(10)}, product.ErrDuplicateSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, &tt.req, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListMovementsRejectsUnknownType(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.ListMovements(context.Background(), &inventory.MovementListRequest{Type: "theft"})
	assert.ErrorIs(t, err, inventory.ErrInvalidMovementType)
}
