package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CouponHandler handles coupon administration and cart coupons
type CouponHandler struct {
	couponService *coupon.Service
	cartService   *cart.Service
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponService *coupon.Service, cartService *cart.Service) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		cartService:   cartService,
	}
}

type couponCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// ValidateCoupon handles POST /coupons/validate against the current cart
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req couponCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.GetCart(c.Request.Context(), cartOwner(c, false))
	if err != nil {
		respondError(c, err)
		return
	}

	app, err := h.couponService.Evaluate(c.Request.Context(), req.Code, actor(c), view.Subtotal)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, app.Message, app)
}

// ApplyCoupon handles POST /cart/coupon
func (h *CouponHandler) ApplyCoupon(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Please sign in to use coupons",
		})
		return
	}

	var req couponCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.GetCart(c.Request.Context(), cart.Owner{UserID: &userID})
	if err != nil {
		respondError(c, err)
		return
	}

	app, err := h.couponService.ApplyToCart(c.Request.Context(), userID, req.Code, view.Subtotal)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, app.Message, app)
}

// RemoveCoupon handles DELETE /cart/coupon
func (h *CouponHandler) RemoveCoupon(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	if err := h.couponService.RemoveFromCart(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon removed",
	})
}

// --- ADMIN ENDPOINTS ---

// CreateCoupon handles POST /admin/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req coupon.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.couponService.CreateCoupon(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Coupon created successfully", created)
}

// ListCoupons handles GET /admin/coupons?active=true
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	coupons, err := h.couponService.ListCoupons(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Coupons retrieved successfully", coupons)
}

// GetCoupon handles GET /admin/coupons/:id
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	found, err := h.couponService.GetCoupon(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Coupon retrieved successfully", found)
}

// DeactivateCoupon handles POST /admin/coupons/:id/deactivate
func (h *CouponHandler) DeactivateCoupon(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	updated, err := h.couponService.DeactivateCoupon(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Coupon deactivated", updated)
}
