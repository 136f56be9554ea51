// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	reviewService *product.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *product.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ListProductReviews handles GET /products/:id/reviews
func (h *ReviewHandler) ListProductReviews(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	response, err := h.reviewService.ListProductReviews(c.Request.Context(), productID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Reviews retrieved successfully", response)
}

// GetReviewSummary handles GET /products/:id/reviews/summary
func (h *ReviewHandler) GetReviewSummary(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	summary, err := h.reviewService.GetSummary(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Review summary retrieved successfully", summary)
}

// CreateReview handles POST /products/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req product.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), userID, productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Review submitted for moderation", review)
}

// UpdateReview handles PUT /reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req product.ReviewUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Review updated successfully", review)
}

// DeleteReview handles DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	err := h.reviewService.DeleteReview(c.Request.Context(), userID, id, middleware.IsAdminFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

// VoteHelpful handles POST /reviews/:id/helpful
func (h *ReviewHandler) VoteHelpful(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Helpful *bool `json:"helpful" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviewService.VoteHelpful(c.Request.Context(), userID, id, *req.Helpful)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Vote recorded", review)
}

// --- ADMIN ENDPOINTS ---

// AdminListReviews handles GET /admin/reviews
func (h *ReviewHandler) AdminListReviews(c *gin.Context) {
	var req product.ReviewListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.reviewService.ListReviews(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Reviews retrieved successfully", response)
}

// ModerateReview handles PUT /admin/reviews/:id/status
func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status product.ReviewStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviewService.ModerateReview(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Review moderated successfully", review)
}
