// internal/domain/product/review.go
package product

import (
	"context"
	"time"
)

// ReviewStatus is the moderation state of a review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// reviewEditWindow bounds how long after posting an author may edit
const reviewEditWindow = 30 * 24 * time.Hour

// Review is a customer's rating of a product
type Review struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ProductID uint `gorm:"not null;index;uniqueIndex:idx_review_user_product" json:"product_id"`
	UserID    uint `gorm:"not null;index;uniqueIndex:idx_review_user_product" json:"user_id"`
	// OrderItemID is the delivered purchase backing a verified review
	OrderItemID        *uint        `gorm:"index" json:"order_item_id,omitempty"`
	Rating             int          `gorm:"not null" json:"rating"`
	Title              string       `gorm:"size:255" json:"title"`
	Comment            string       `gorm:"type:text" json:"comment"`
	Status             ReviewStatus `gorm:"size:20;not null;index" json:"status"`
	IsVerifiedPurchase bool         `gorm:"not null" json:"is_verified_purchase"`
	HelpfulCount       int          `gorm:"not null" json:"helpful_count"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// ReviewVote records whether a user found a review helpful
type ReviewVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReviewID  uint      `gorm:"not null;uniqueIndex:idx_vote_review_user" json:"review_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_vote_review_user" json:"user_id"`
	Helpful   bool      `gorm:"not null" json:"helpful"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string     { return "product_reviews" }
func (ReviewVote) TableName() string { return "review_helpfulness" }

// CanBeEditedBy reports whether userID may still edit the review
func (r *Review) CanBeEditedBy(userID uint, now time.Time) bool {
	return r.UserID == userID && now.Sub(r.CreatedAt) <= reviewEditWindow
}

// ReviewFilter narrows a review listing
type ReviewFilter struct {
	ProductID *uint
	UserID    *uint
	Status    *ReviewStatus
	Offset    int
	Limit     int
}

// ReviewSummary aggregates the approved reviews of a product
type ReviewSummary struct {
	ProductID     uint        `json:"product_id"`
	TotalReviews  int64       `json:"total_reviews"`
	AverageRating float64     `json:"average_rating"`
	Distribution  map[int]int `json:"rating_distribution"`
	VerifiedCount int64       `json:"verified_count"`
}

// ReviewRepository is the persistence contract for reviews.
// Lookups return ErrReviewNotFound on a miss.
type ReviewRepository interface {
	CreateReview(ctx context.Context, r *Review) error
	GetReview(ctx context.Context, id uint) (*Review, error)
	// FindUserReview returns nil without error when the user has not
	// reviewed the product
	FindUserReview(ctx context.Context, userID, productID uint) (*Review, error)
	SaveReview(ctx context.Context, r *Review) error
	DeleteReview(ctx context.Context, id uint) error
	// ListReviews returns reviews newest first
	ListReviews(ctx context.Context, filter ReviewFilter) ([]Review, int64, error)
	SummarizeReviews(ctx context.Context, productID uint) (*ReviewSummary, error)
	UpsertVote(ctx context.Context, v *ReviewVote) error
	CountHelpful(ctx context.Context, reviewID uint) (int, error)
	// FindDeliveredItem returns the ID of an order item for productID on
	// one of userID's delivered orders, or nil when there is none
	FindDeliveredItem(ctx context.Context, userID, productID uint) (*uint, error)
}
