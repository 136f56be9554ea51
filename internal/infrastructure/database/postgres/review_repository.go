// internal/infrastructure/database/postgres/review_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewRepository is the gorm implementation of product.ReviewRepository
type ReviewRepository struct {
	baseRepository
}

// NewReviewRepository creates a review repository
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{baseRepository{db: db}}
}

func (r *ReviewRepository) CreateReview(ctx context.Context, review *product.Review) error {
	if err := r.getDB(ctx).Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return product.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) GetReview(ctx context.Context, id uint) (*product.Review, error) {
	var review product.Review
	if err := r.getDB(ctx).First(&review, id).Error; err != nil {
		return nil, translate(err, product.ErrReviewNotFound, "retrieve review")
	}
	return &review, nil
}

func (r *ReviewRepository) FindUserReview(ctx context.Context, userID, productID uint) (*product.Review, error) {
	var review product.Review
	err := r.getDB(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve review: %w", err)
	}
	return &review, nil
}

func (r *ReviewRepository) SaveReview(ctx context.Context, review *product.Review) error {
	if err := r.getDB(ctx).Save(review).Error; err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) DeleteReview(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	if err := db.Where("review_id = ?", id).Delete(&product.ReviewVote{}).Error; err != nil {
		return fmt.Errorf("failed to delete review votes: %w", err)
	}
	result := db.Delete(&product.Review{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return product.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) ListReviews(ctx context.Context, filter product.ReviewFilter) ([]product.Review, int64, error) {
	query := r.getDB(ctx).Model(&product.Review{})
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []product.Review
	query = query.Order("id DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *ReviewRepository) SummarizeReviews(ctx context.Context, productID uint) (*product.ReviewSummary, error) {
	var rows []struct {
		Rating   int
		Verified bool
		Count    int64
	}
	err := r.getDB(ctx).Model(&product.Review{}).
		Select("rating, is_verified_purchase AS verified, COUNT(*) AS count").
		Where("product_id = ? AND status = ?", productID, product.ReviewStatusApproved).
		Group("rating, is_verified_purchase").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize reviews: %w", err)
	}

	summary := &product.ReviewSummary{
		ProductID:    productID,
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	var total int64
	for _, row := range rows {
		summary.TotalReviews += row.Count
		summary.Distribution[row.Rating] += int(row.Count)
		total += int64(row.Rating) * row.Count
		if row.Verified {
			summary.VerifiedCount += row.Count
		}
	}
	if summary.TotalReviews > 0 {
		avg := float64(total) / float64(summary.TotalReviews)
		summary.AverageRating = math.Round(avg*100) / 100
	}
	return summary, nil
}

// UpsertVote relies on the unique (review_id, user_id) index
func (r *ReviewRepository) UpsertVote(ctx context.Context, v *product.ReviewVote) error {
	err := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "review_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"helpful", "updated_at"}),
	}).Create(v).Error
	if err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}

func (r *ReviewRepository) CountHelpful(ctx context.Context, reviewID uint) (int, error) {
	var count int64
	err := r.getDB(ctx).Model(&product.ReviewVote{}).
		Where("review_id = ? AND helpful = ?", reviewID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return int(count), nil
}

func (r *ReviewRepository) FindDeliveredItem(ctx context.Context, userID, productID uint) (*uint, error) {
	var ids []uint
	err := r.getDB(ctx).Model(&order.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, order.OrderStatusDelivered, productID).
		Order("order_items.id").
		Limit(1).
		Pluck("order_items.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check delivered orders: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}
