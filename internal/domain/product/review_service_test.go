package product_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/memory"
)

func newReviewService(t *testing.T) (*product.ReviewService, *memory.Store) {
	t.Helper()
	store := memory.New()
	logger, _ := test.NewNullLogger()
	return product.NewReviewService(store, store, store, logger), store
}

func placeOrder(t *testing.T, store *memory.Store, number string, userID uint, p *product.Product, status order.OrderStatus) {
	t.Helper()
	require.NoError(t, store.CreateOrder(context.Background(), &order.Order{
		OrderNumber: number,
		UserID:      &userID,
		Email:       "buyer@example.com",
		Status:      status,
		Subtotal:    decimal.NewFromInt(100),
		Items: []order.OrderItem{{
			ProductID: p.ID, ProductName: p.Name, ProductSKU: p.SKU,
			UnitPrice: decimal.NewFromInt(100), Quantity: 1, TotalPrice: decimal.NewFromInt(100),
		}},
	}))
}

func TestCreateReviewVerifiedPurchase(t *testing.T) {
	svc, store := newReviewService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee"})

	placeOrder(t, store, "ORD-1", 7, tee, order.OrderStatusShipped)
	placeOrder(t, store, "ORD-2", 8, tee, order.OrderStatusDelivered)

	shipped, err := svc.CreateReview(ctx, 7, tee.ID, &product.ReviewRequest{Rating: 3})
	require.NoError(t, err)
	assert.False(t, shipped.IsVerifiedPurchase)
	assert.Nil(t, shipped.OrderItemID)
	assert.Equal(t, product.ReviewStatusPending, shipped.Status)

	delivered, err := svc.CreateReview(ctx, 8, tee.ID, &product.ReviewRequest{Rating: 5, Title: " Great "})
	require.NoError(t, err)
	assert.True(t, delivered.IsVerifiedPurchase)
	require.NotNil(t, delivered.OrderItemID)
	assert.Equal(t, "Great", delivered.Title)

	_, err = svc.CreateReview(ctx, 8, tee.ID, &product.ReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, product.ErrAlreadyReviewed)
}

func TestCreateReviewValidation(t *testing.T) {
	svc, store := newReviewService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee"})
	retired := seed(t, store, product.Product{SKU: "MUG-1", Name: "Mug"})
	retired.IsActive = false
	require.NoError(t, store.SaveProduct(ctx, retired))

	tests := []struct {
		name      string
		productID uint
		rating    int
		want      error
	}{
		{"rating too low", tee.ID, 0, product.ErrInvalidReview},
		{"rating too high", tee.ID, 6, product.ErrInvalidReview},
		{"unknown product", 99, 4, product.ErrProductNotFound},
		{"inactive product", retired.ID, 4, product.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateReview(ctx, 7, tt.productID, &product.ReviewRequest{Rating: tt.rating})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateReviewReturnsToModeration(t *testing.T) {
	svc, store := newReviewService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee"})

	r, err := svc.CreateReview(ctx, 7, tee.ID, &product.ReviewRequest{Rating: 2})
	require.NoError(t, err)
	_, err = svc.ModerateReview(ctx, r.ID, product.ReviewStatusApproved)
	require.NoError(t, err)

	_, err = svc.UpdateReview(ctx, 8, r.ID, &product.ReviewUpdateRequest{Rating: ptr(5)})
	assert.ErrorIs(t, err, product.ErrReviewForbidden)

	_, err = svc.UpdateReview(ctx, 7, r.ID, &product.ReviewUpdateRequest{Rating: ptr(9)})
	assert.ErrorIs(t, err, product.ErrInvalidReview)

	updated, err := svc.UpdateReview(ctx, 7, r.ID, &product.ReviewUpdateRequest{Rating: ptr(4), Comment: ptr("Better after a wash")})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, product.ReviewStatusPending, updated.Status)
}

func TestDeleteReview(t *testing.T) {
	svc, store := newReviewService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee"})

	mine, err := svc.CreateReview(ctx, 7, tee.ID, &product.ReviewRequest{Rating: 4})
	require.NoError(t, err)
	theirs, err := svc.CreateReview(ctx, 8, tee.ID, &product.ReviewRequest{Rating: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteReview(ctx, 7, theirs.ID, false), product.ErrReviewForbidden)
	require.NoError(t, svc.DeleteReview(ctx, 7, mine.ID, false))
	require.NoError(t, svc.DeleteReview(ctx, 1, theirs.ID, true))

	_, err = store.GetReview(ctx, theirs.ID)
	assert.ErrorIs(t, err, product.ErrReviewNotFound)

	// Deleting frees the slot for a new review
	_, err = svc.CreateReview(ctx, 7, tee.ID, &product.ReviewRequest{Rating: 5})
	assert.NoError(t, err)
}

func TestVoteHelpful(t *testing.T) {
	svc, store := newReviewService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee"})

	r, err := svc.CreateReview(ctx, 7, tee.ID, &product.ReviewRequest{Rating: 4})
	require.NoError(t, err)

	_, err = svc.VoteHelpful(ctx, 8, r.ID, true)
	assert.ErrorIs(t, err, product.ErrReviewNotFound, "pending reviews take no votes")

	_, err = svc.ModerateReview(ctx, r.ID, product.ReviewStatusApproved)
	require.NoError(t, err)

	_, err = svc.VoteHelpful(ctx, 7, r.ID, true)
	assert.ErrorIs(t, err, product.ErrReviewForbidden)

	voted, err := svc.VoteHelpful(ctx, 8, r.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.HelpfulCount)

	voted, err = svc.VoteHelpful(ctx, 9, r.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, voted.HelpfulCount)

	// Changing a vote replaces it
	voted, err = svc.VoteHelpful(ctx, 8, r.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.HelpfulCount)
}

func TestReviewListingAndSummary(t *testing.T) {
	svc, store := newReviewService(t)
	ctx := context.Background()
	tee := seed(t, store, product.Product{SKU: "TEE-1", Name: "Tee"})
	placeOrder(t, store, "ORD-1", 7, tee, order.OrderStatusDelivered)

	ratings := map[uint]int{7: 5, 8: 4, 9: 1}
	ids := map[uint]uint{}
	for _, user := range []uint{7, 8, 9} {
		r, err := svc.CreateReview(ctx, user, tee.ID, &product.ReviewRequest{Rating: ratings[user]})
		require.NoError(t, err)
		ids[user] = r.ID
	}
	_, err := svc.ModerateReview(ctx, ids[7], product.ReviewStatusApproved)
	require.NoError(t, err)
	_, err = svc.ModerateReview(ctx, ids[8], product.ReviewStatusApproved)
	require.NoError(t, err)
	_, err = svc.ModerateReview(ctx, ids[9], product.ReviewStatusRejected)
	require.NoError(t, err)

	_, err = svc.ModerateReview(ctx, ids[9], product.ReviewStatusPending)
	assert.ErrorIs(t, err, product.ErrInvalidReview)

	public, err := svc.ListProductReviews(ctx, tee.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, public.Reviews, 2)
	assert.Equal(t, ids[8], public.Reviews[0].ID, "newest first")

	rejected := product.ReviewStatusRejected
	moderation, err := svc.ListReviews(ctx, &product.ReviewListRequest{Status: &rejected})
	require.NoError(t, err)
	require.Len(t, moderation.Reviews, 1)
	assert.Equal(t, ids[9], moderation.Reviews[0].ID)

	summary, err := svc.GetSummary(ctx, tee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalReviews)
	assert.Equal(t, 4.5, summary.AverageRating)
	assert.Equal(t, int64(1), summary.VerifiedCount)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 1}, summary.Distribution)

	_, err = svc.GetSummary(ctx, 99)
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}
