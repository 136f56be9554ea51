package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/memory"
)

type catalogEnv struct {
	store      *memory.Store
	router     *gin.Engine
	inventory  *inventory.Service
	categories *product.CategoryService
	reviews    *product.ReviewService
}

func newCatalogEnv(t *testing.T) *catalogEnv {
	t.Helper()
	store := memory.New()
	logger, _ := test.NewNullLogger()

	env := &catalogEnv{
		store:      store,
		inventory:  inventory.NewService(store, store, store, store, logger, nil),
		categories: product.NewCategoryService(store, store, store, logger),
		reviews:    product.NewReviewService(store, store, store, logger),
	}
	productHandler := NewProductHandler(product.NewService(store, store, store, logger))
	categoryHandler := NewCategoryHandler(env.categories)
	reviewHandler := NewReviewHandler(env.reviews)

	// X-User-ID stands in for the JWT middleware
	signedIn := func(c *gin.Context) {
		var id uint
		if _, err := fmt.Sscan(c.GetHeader("X-User-ID"), &id); err == nil {
			c.Set("user_id", id)
		}
		c.Next()
	}

	r := gin.New()
	r.Use(signedIn)
	r.GET("/products", productHandler.ListProducts)
	r.GET("/categories", categoryHandler.GetCategoryTree)
	r.GET("/categories/:slug", categoryHandler.GetCategoryBySlug)
	r.GET("/products/:id/reviews", reviewHandler.ListProductReviews)
	r.GET("/products/:id/reviews/summary", reviewHandler.GetReviewSummary)
	r.POST("/products/:id/reviews", reviewHandler.CreateReview)
	r.POST("/reviews/:id/helpful", reviewHandler.VoteHelpful)
	env.router = r
	return env
}

func (e *catalogEnv) do(method, path, body string, userID uint) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-User-ID", fmt.Sprint(userID))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *catalogEnv) createProduct(t *testing.T, sku string, categoryID *uint) *product.Product {
	t.Helper()
	p, err := e.inventory.CreateProduct(context.Background(), &inventory.CreateProductRequest{
		SKU: sku, Name: sku, Price: decimal.NewFromInt(100), InitialStock: 5, CategoryID: categoryID,
	}, nil)
	require.NoError(t, err)
	return p
}

func TestListProductsByCategoryIncludesSubcategories(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	clothing, err := env.categories.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Clothing"})
	require.NoError(t, err)
	tops, err := env.categories.CreateCategory(ctx, &product.CategoryCreateRequest{Name: "Tops", ParentID: &clothing.ID})
	require.NoError(t, err)

	env.createProduct(t, "JEANS-1", &clothing.ID)
	env.createProduct(t, "TEE-1", &tops.ID)
	env.createProduct(t, "MUG-1", nil)

	list := func(query string) []string {
		w := env.do(http.MethodGet, "/products?"+query, "", 0)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp product.ListResponse
		decodeData(t, w, &resp)
		var skus []string
		for _, p := range resp.Products {
			skus = append(skus, p.SKU)
		}
		return skus
	}

	assert.Equal(t, []string{"JEANS-1", "TEE-1"}, list(fmt.Sprintf("category_id=%d", clothing.ID)))
	assert.Equal(t, []string{"TEE-1"}, list(fmt.Sprintf("category_id=%d", tops.ID)))
	assert.Len(t, list(""), 3)

	w := env.do(http.MethodGet, "/products?category_id=999", "", 0)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/categories", "", 0)
	require.Equal(t, http.StatusOK, w.Code)
	var tree []product.CategoryTree
	decodeData(t, w, &tree)
	require.Len(t, tree, 1)
	assert.Equal(t, "clothing", tree[0].Slug)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "tops", tree[0].Children[0].Slug)

	w = env.do(http.MethodGet, "/categories/tops", "", 0)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	env := newCatalogEnv(t)
	missing := uint(42)

	_, err := env.inventory.CreateProduct(context.Background(), &inventory.CreateProductRequest{
		SKU: "TEE-1", Name: "Tee", Price: decimal.NewFromInt(100), CategoryID: &missing,
	}, nil)
	assert.ErrorIs(t, err, product.ErrCategoryNotFound)
}

func TestReviewEndpoints(t *testing.T) {
	env := newCatalogEnv(t)
	p := env.createProduct(t, "TEE-1", nil)
	reviewsPath := fmt.Sprintf("/products/%d/reviews", p.ID)

	w := env.do(http.MethodPost, reviewsPath, `{"rating":6}`, 7)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, reviewsPath, `{"rating":4,"title":"Soft","comment":"Fits well"}`, 7)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var review product.Review
	decodeData(t, w, &review)
	assert.Equal(t, product.ReviewStatusPending, review.Status)
	assert.False(t, review.IsVerifiedPurchase)

	w = env.do(http.MethodPost, reviewsPath, `{"rating":5}`, 7)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Pending reviews stay hidden
	w = env.do(http.MethodGet, reviewsPath, "", 0)
	require.Equal(t, http.StatusOK, w.Code)
	var listed product.ReviewListResponse
	decodeData(t, w, &listed)
	assert.Empty(t, listed.Reviews)

	_, err := env.reviews.ModerateReview(context.Background(), review.ID, product.ReviewStatusApproved)
	require.NoError(t, err)

	w = env.do(http.MethodGet, reviewsPath, "", 0)
	decodeData(t, w, &listed)
	require.Len(t, listed.Reviews, 1)

	helpfulPath := fmt.Sprintf("/reviews/%d/helpful", review.ID)
	w = env.do(http.MethodPost, helpfulPath, `{"helpful":true}`, 7)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodPost, helpfulPath, `{"helpful":true}`, 8)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &review)
	assert.Equal(t, 1, review.HelpfulCount)

	w = env.do(http.MethodGet, reviewsPath+"/summary", "", 0)
	require.Equal(t, http.StatusOK, w.Code)
	var summary product.ReviewSummary
	decodeData(t, w, &summary)
	assert.Equal(t, int64(1), summary.TotalReviews)
	assert.Equal(t, 4.0, summary.AverageRating)
	assert.Equal(t, 1, summary.Distribution[4])
}
