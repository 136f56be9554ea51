package product_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/memory"
)

func newCategoryService(t *testing.T) (*product.CategoryService, *memory.Store) {
	t.Helper()
	store := memory.New()
	logger, _ := test.NewNullLogger()
	return product.NewCategoryService(store, store, store, logger), store
}

func TestCreateCategory(t *testing.T) {
	svc, _ := newCategoryService(t)
	ctx := context.Background()

	men, err := svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Men's Wear"})
	require.NoError(t, err)
	assert.Equal(t, "men-s-wear", men.Slug)
	assert.True(t, men.IsActive)

	_, err = svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Mens wear", Slug: "men-s-wear"})
	assert.ErrorIs(t, err, product.ErrDuplicateCategory)

	missing := uint(99)
	_, err = svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Shirts", ParentID: &missing})
	assert.ErrorIs(t, err, product.ErrCategoryNotFound)

	_, err = svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "  "})
	assert.ErrorIs(t, err, product.ErrInvalidCategory)

	hidden := false
	draft, err := svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Draft", IsActive: &hidden})
	require.NoError(t, err)
	assert.False(t, draft.IsActive)
}

func TestUpdateCategoryRejectsCycles(t *testing.T) {
	svc, _ := newCategoryService(t)
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Clothing"})
	require.NoError(t, err)
	child, err := svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Tops", ParentID: &root.ID})
	require.NoError(t, err)
	grandchild, err := svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Tees", ParentID: &child.ID})
	require.NoError(t, err)

	_, err = svc.UpdateCategory(ctx, root.ID, &product.CategoryUpdateRequest{ParentID: &root.ID})
	assert.ErrorIs(t, err, product.ErrInvalidCategory)

	_, err = svc.UpdateCategory(ctx, root.ID, &product.CategoryUpdateRequest{ParentID: &grandchild.ID})
	assert.ErrorIs(t, err, product.ErrInvalidCategory)

	moved, err := svc.UpdateCategory(ctx, grandchild.ID, &product.CategoryUpdateRequest{ParentID: &root.ID})
	require.NoError(t, err)
	assert.Equal(t, root.ID, *moved.ParentID)

	moved, err = svc.UpdateCategory(ctx, grandchild.ID, &product.CategoryUpdateRequest{MakeRoot: true})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
}

func TestCategoryTreeHidesInactiveBranches(t *testing.T) {
	svc, _ := newCategoryService(t)
	ctx := context.Background()

	hidden := false
	clothing, err := svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Clothing", SortOrder: 2})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Electronics", SortOrder: 1})
	require.NoError(t, err)
	archive, err := svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Archive", ParentID: &clothing.ID, IsActive: &hidden})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Old Tees", ParentID: &archive.ID})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Tops", ParentID: &clothing.ID})
	require.NoError(t, err)

	tree, err := svc.GetCategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "electronics", tree[0].Slug)
	assert.Equal(t, "clothing", tree[1].Slug)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "tops", tree[1].Children[0].Slug)

	_, err = svc.GetCategoryBySlug(ctx, "archive")
	assert.ErrorIs(t, err, product.ErrCategoryNotFound)
}

func TestDeleteCategoryInUse(t *testing.T) {
	svc, store := newCategoryService(t)
	ctx := context.Background()

	clothing, err := svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Clothing"})
	require.NoError(t, err)
	tops, err := svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Tops", ParentID: &clothing.ID})
	require.NoError(t, err)
	seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee", CategoryID: &tops.ID})

	err = svc.DeleteCategory(ctx, clothing.ID)
	assert.ErrorIs(t, err, product.ErrCategoryInUse)

	err = svc.DeleteCategory(ctx, tops.ID)
	assert.ErrorIs(t, err, product.ErrCategoryInUse)

	empty, err := svc.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Empty"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCategory(ctx, empty.ID))
	_, err = svc.GetCategory(ctx, empty.ID)
	assert.ErrorIs(t, err, product.ErrCategoryNotFound)
}

func TestBrands(t *testing.T) {
	svc, _ := newCategoryService(t)
	ctx := context.Background()

	boat, err := svc.CreateBrand(ctx, &product.BrandRequest{Name: "boAt", IsIndianBrand: true, SortOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, "boat", boat.Slug)
	assert.True(t, boat.IsActive)

	_, err = svc.CreateBrand(ctx, &product.BrandRequest{Name: "BOAT"})
	assert.ErrorIs(t, err, product.ErrDuplicateBrand)

	hidden := false
	_, err = svc.CreateBrand(ctx, &product.BrandRequest{Name: "Khadi", SortOrder: 1, IsActive: &hidden})
	require.NoError(t, err)

	active, err := svc.ListBrands(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "boat", active[0].Slug)

	all, err := svc.ListBrands(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "khadi", all[0].Slug)

	_, err = svc.UpdateBrand(ctx, boat.ID, &product.BrandRequest{Name: "Khadi"})
	assert.ErrorIs(t, err, product.ErrDuplicateBrand)

	renamed, err := svc.UpdateBrand(ctx, boat.ID, &product.BrandRequest{Name: "boAt Lifestyle", IsIndianBrand: true})
	require.NoError(t, err)
	assert.Equal(t, "boat-lifestyle", renamed.Slug)
}

func TestListProductsByCategoryAndBrand(t *testing.T) {
	store := memory.New()
	logger, _ := test.NewNullLogger()
	svc := product.NewService(store, store, store, logger)
	categories := product.NewCategoryService(store, store, store, logger)
	ctx := context.Background()

	clothing, err := categories.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Clothing"})
	require.NoError(t, err)
	tops, err := categories.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Tops", ParentID: &clothing.ID})
	require.NoError(t, err)
	brand, err := categories.CreateBrand(ctx, &product.BrandRequest{Name: "Khadi"})
	require.NoError(t, err)

	seed(t, store, product.Product{SKU: "JEANS-1", Name: "Jeans", CategoryID: &clothing.ID})
	seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee", CategoryID: &tops.ID, BrandID: &brand.ID})
	seed(t, store, product.Product{SKU: "MUG-1", Name: "Mug", BrandID: &brand.ID})

	res, err := svc.ListProducts(ctx, &product.ListRequest{CategoryID: &clothing.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Pagination.Total)

	res, err = svc.ListProducts(ctx, &product.ListRequest{CategoryID: &clothing.ID, BrandID: &brand.ID})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "TEE-1", res.Products[0].SKU)

	res, err = svc.ListProducts(ctx, &product.ListRequest{BrandID: &brand.ID})
	require.NoError(t, err)
	assert.Len(t, res.Products, 2)

	missing := uint(99)
	_, err = svc.ListProducts(ctx, &product.ListRequest{CategoryID: &missing})
	assert.ErrorIs(t, err, product.ErrCategoryNotFound)
}

func TestUpdateSettingsClassification(t *testing.T) {
	store := memory.New()
	logger, _ := test.NewNullLogger()
	svc := product.NewService(store, store, store, logger)
	categories := product.NewCategoryService(store, store, store, logger)
	ctx := context.Background()

	clothing, err := categories.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Clothing"})
	require.NoError(t, err)
	p := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee"})

	updated, err := svc.UpdateSettings(ctx, p.ID, &product.UpdateSettingsRequest{CategoryID: &clothing.ID})
	require.NoError(t, err)
	assert.Equal(t, clothing.ID, *updated.CategoryID)

	missing := uint(99)
	_, err = svc.UpdateSettings(ctx, p.ID, &product.UpdateSettingsRequest{BrandID: &missing})
	assert.ErrorIs(t, err, product.ErrBrandNotFound)

	updated, err = svc.UpdateSettings(ctx, p.ID, &product.UpdateSettingsRequest{CategoryID: ptr(uint(0))})
	require.NoError(t, err)
	assert.Nil(t, updated.CategoryID)
}
