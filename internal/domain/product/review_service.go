// internal/domain/product/review_service.go
package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/paging"
	"github.com/your-org/storefront-backend/internal/pkg/txn"
)

// ReviewService handles product reviews and their moderation
type ReviewService struct {
	repo     ReviewRepository
	products Repository
	tx       txn.Manager
	logger   *logrus.Logger
	now      func() time.Time
}

// NewReviewService creates a new review service
func NewReviewService(repo ReviewRepository, products Repository, tx txn.Manager, logger *logrus.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		products: products,
		tx:       tx,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ReviewRequest represents review creation data
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// ReviewUpdateRequest represents an author's edit
type ReviewUpdateRequest struct {
	Rating  *int    `json:"rating"`
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

// ReviewListRequest represents review list query parameters
type ReviewListRequest struct {
	Page      int           `form:"page,default=1"`
	Limit     int           `form:"limit,default=20"`
	Status    *ReviewStatus `form:"status"`
	ProductID *uint         `form:"product_id"`
}

// ReviewListResponse represents reviews with pagination
type ReviewListResponse struct {
	Reviews    []Review          `json:"reviews"`
	Pagination paging.Pagination `json:"pagination"`
}

func validRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidReview.WithMessage("Rating must be between 1 and 5")
	}
	return nil
}

// CreateReview posts a review awaiting moderation. A user reviews a product
// once; the review is marked verified when the user has a delivered order
// containing the product.
func (s *ReviewService) CreateReview(ctx context.Context, userID, productID uint, req *ReviewRequest) (*Review, error) {
	if err := validRating(req.Rating); err != nil {
		return nil, err
	}

	review := &Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Title:     strings.TrimSpace(req.Title),
		Comment:   strings.TrimSpace(req.Comment),
		Status:    ReviewStatusPending,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.products.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return ErrProductNotFound
		}

		existing, err := s.repo.FindUserReview(ctx, userID, productID)
		if err != nil {
			return fmt.Errorf("failed to check existing review: %w", err)
		}
		if existing != nil {
			return ErrAlreadyReviewed
		}

		itemID, err := s.repo.FindDeliveredItem(ctx, userID, productID)
		if err != nil {
			return fmt.Errorf("failed to check purchase: %w", err)
		}
		review.OrderItemID = itemID
		review.IsVerifiedPurchase = itemID != nil

		return s.repo.CreateReview(ctx, review)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"review_id":  review.ID,
		"product_id": productID,
		"user_id":    userID,
		"verified":   review.IsVerifiedPurchase,
	}).Info("Review submitted")

	return review, nil
}

// UpdateReview lets the author edit within the edit window. An edited
// review goes back to moderation.
func (s *ReviewService) UpdateReview(ctx context.Context, userID, reviewID uint, req *ReviewUpdateRequest) (*Review, error) {
	var updated *Review

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if !r.CanBeEditedBy(userID, s.now()) {
			return ErrReviewForbidden
		}

		if req.Rating != nil {
			if err := validRating(*req.Rating); err != nil {
				return err
			}
			r.Rating = *req.Rating
		}
		if req.Title != nil {
			r.Title = strings.TrimSpace(*req.Title)
		}
		if req.Comment != nil {
			r.Comment = strings.TrimSpace(*req.Comment)
		}
		r.Status = ReviewStatusPending

		if err := s.repo.SaveReview(ctx, r); err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteReview removes a review. Only its author or an admin may do so.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID uint, isAdmin bool) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if r.UserID != userID && !isAdmin {
			return ErrReviewForbidden
		}
		return s.repo.DeleteReview(ctx, reviewID)
	})
}

// VoteHelpful records a user's vote and recounts the review's helpful total
func (s *ReviewService) VoteHelpful(ctx context.Context, userID, reviewID uint, helpful bool) (*Review, error) {
	var voted *Review

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if r.Status != ReviewStatusApproved {
			return ErrReviewNotFound
		}
		if r.UserID == userID {
			return ErrReviewForbidden.WithMessage("You cannot vote on your own review")
		}

		if err := s.repo.UpsertVote(ctx, &ReviewVote{ReviewID: reviewID, UserID: userID, Helpful: helpful}); err != nil {
			return fmt.Errorf("failed to record vote: %w", err)
		}

		count, err := s.repo.CountHelpful(ctx, reviewID)
		if err != nil {
			return fmt.Errorf("failed to count votes: %w", err)
		}
		r.HelpfulCount = count
		if err := s.repo.SaveReview(ctx, r); err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		voted = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return voted, nil
}

// ListProductReviews returns the approved reviews of a product
func (s *ReviewService) ListProductReviews(ctx context.Context, productID uint, page, limit int) (*ReviewListResponse, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	approved := ReviewStatusApproved
	return s.list(ctx, ReviewFilter{ProductID: &productID, Status: &approved}, page, limit)
}

// ListReviews returns reviews for moderation
func (s *ReviewService) ListReviews(ctx context.Context, req *ReviewListRequest) (*ReviewListResponse, error) {
	return s.list(ctx, ReviewFilter{ProductID: req.ProductID, Status: req.Status}, req.Page, req.Limit)
}

func (s *ReviewService) list(ctx context.Context, filter ReviewFilter, page, limit int) (*ReviewListResponse, error) {
	page, limit = paging.Normalize(page, limit)
	filter.Offset = paging.Offset(page, limit)
	filter.Limit = limit

	reviews, total, err := s.repo.ListReviews(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	return &ReviewListResponse{
		Reviews:    reviews,
		Pagination: paging.New(page, limit, total),
	}, nil
}

// GetSummary aggregates a product's approved reviews
func (s *ReviewService) GetSummary(ctx context.Context, productID uint) (*ReviewSummary, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	summary, err := s.repo.SummarizeReviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize reviews: %w", err)
	}
	return summary, nil
}

// ModerateReview approves or rejects a review
func (s *ReviewService) ModerateReview(ctx context.Context, reviewID uint, status ReviewStatus) (*Review, error) {
	if status != ReviewStatusApproved && status != ReviewStatusRejected {
		return nil, ErrInvalidReview.WithMessage("Status must be approved or rejected")
	}

	var moderated *Review
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetReview(ctx, reviewID)
		if err != nil {
			return err
		}
		r.Status = status
		if err := s.repo.SaveReview(ctx, r); err != nil {
			return fmt.Errorf("failed to moderate review: %w", err)
		}
		moderated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"review_id": reviewID,
		"status":    status,
	}).Info("Review moderated")

	return moderated, nil
}
