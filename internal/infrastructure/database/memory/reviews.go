package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CreateReview inserts r; a user holds one review per product
func (s *Store) CreateReview(ctx context.Context, r *product.Review) error {
	if err := s.fail("CreateReview"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	for _, existing := range s.t.reviews {
		if existing.UserID == r.UserID && existing.ProductID == r.ProductID {
			return fmt.Errorf("duplicate key value violates unique constraint \"idx_review_user_product\"")
		}
	}
	ts := now()
	r.ID = s.nextID("product_reviews")
	r.CreatedAt, r.UpdatedAt = ts, ts
	s.t.reviews[r.ID] = *r
	return nil
}

// GetReview loads a review by ID
func (s *Store) GetReview(ctx context.Context, id uint) (*product.Review, error) {
	if err := s.fail("GetReview"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	r, ok := s.t.reviews[id]
	if !ok {
		return nil, product.ErrReviewNotFound
	}
	return &r, nil
}

// FindUserReview returns the user's review of a product, or nil
func (s *Store) FindUserReview(ctx context.Context, userID, productID uint) (*product.Review, error) {
	if err := s.fail("FindUserReview"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	for _, r := range s.t.reviews {
		if r.UserID == userID && r.ProductID == productID {
			return &r, nil
		}
	}
	return nil, nil
}

// SaveReview updates a review row
func (s *Store) SaveReview(ctx context.Context, r *product.Review) error {
	if err := s.fail("SaveReview"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	if _, ok := s.t.reviews[r.ID]; !ok {
		return product.ErrReviewNotFound
	}
	r.UpdatedAt = now()
	s.t.reviews[r.ID] = *r
	return nil
}

// DeleteReview removes a review and its votes
func (s *Store) DeleteReview(ctx context.Context, id uint) error {
	if err := s.fail("DeleteReview"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	if _, ok := s.t.reviews[id]; !ok {
		return product.ErrReviewNotFound
	}
	delete(s.t.reviews, id)

	kept := s.t.votes[:0]
	for _, v := range s.t.votes {
		if v.ReviewID != id {
			kept = append(kept, v)
		}
	}
	s.t.votes = kept
	return nil
}

// ListReviews filters reviews newest first
func (s *Store) ListReviews(ctx context.Context, filter product.ReviewFilter) ([]product.Review, int64, error) {
	if err := s.fail("ListReviews"); err != nil {
		return nil, 0, err
	}
	defer s.lock(ctx)()

	var matched []product.Review
	for _, r := range s.t.reviews {
		if filter.ProductID != nil && r.ProductID != *filter.ProductID {
			continue
		}
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	start, end := window(len(matched), filter.Offset, filter.Limit)
	return append([]product.Review{}, matched[start:end]...), int64(len(matched)), nil
}

// SummarizeReviews aggregates the approved reviews of a product
func (s *Store) SummarizeReviews(ctx context.Context, productID uint) (*product.ReviewSummary, error) {
	if err := s.fail("SummarizeReviews"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	summary := &product.ReviewSummary{ProductID: productID, Distribution: emptyDistribution()}
	total := 0
	for _, r := range s.t.reviews {
		if r.ProductID != productID || r.Status != product.ReviewStatusApproved {
			continue
		}
		summary.TotalReviews++
		summary.Distribution[r.Rating]++
		total += r.Rating
		if r.IsVerifiedPurchase {
			summary.VerifiedCount++
		}
	}
	if summary.TotalReviews > 0 {
		summary.AverageRating = roundRating(float64(total) / float64(summary.TotalReviews))
	}
	return summary, nil
}

// UpsertVote records or replaces the user's vote on a review
func (s *Store) UpsertVote(ctx context.Context, v *product.ReviewVote) error {
	if err := s.fail("UpsertVote"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	ts := now()
	for i := range s.t.votes {
		existing := &s.t.votes[i]
		if existing.ReviewID == v.ReviewID && existing.UserID == v.UserID {
			existing.Helpful = v.Helpful
			existing.UpdatedAt = ts
			*v = *existing
			return nil
		}
	}
	v.ID = s.nextID("review_helpfulness")
	v.CreatedAt, v.UpdatedAt = ts, ts
	s.t.votes = append(s.t.votes, *v)
	return nil
}

// CountHelpful counts the helpful votes on a review
func (s *Store) CountHelpful(ctx context.Context, reviewID uint) (int, error) {
	if err := s.fail("CountHelpful"); err != nil {
		return 0, err
	}
	defer s.lock(ctx)()

	count := 0
	for _, v := range s.t.votes {
		if v.ReviewID == reviewID && v.Helpful {
			count++
		}
	}
	return count, nil
}

// FindDeliveredItem returns an order item for the product on one of the
// user's delivered orders
func (s *Store) FindDeliveredItem(ctx context.Context, userID, productID uint) (*uint, error) {
	if err := s.fail("FindDeliveredItem"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	for _, item := range s.t.items {
		if item.ProductID != productID {
			continue
		}
		o, ok := s.t.orders[item.OrderID]
		if !ok || o.Status != order.OrderStatusDelivered || o.UserID == nil || *o.UserID != userID {
			continue
		}
		id := item.ID
		return &id, nil
	}
	return nil, nil
}

func emptyDistribution() map[int]int {
	return map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
}

func roundRating(avg float64) float64 {
	return float64(int(avg*100+0.5)) / 100
}
