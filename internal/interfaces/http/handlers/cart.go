// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints for guests and signed-in users
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.GetCart(c.Request.Context(), cartOwner(c, true))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart retrieved successfully", view)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.AddItem(c.Request.Context(), cartOwner(c, true), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item added to cart", view)
}

// UpdateItem handles PUT /cart/items/:product_id. Quantity 0 removes the line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.UpdateItem(c.Request.Context(), cartOwner(c, false), productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart updated", view)
}

// RemoveItem handles DELETE /cart/items/:product_id?variation_id=
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}
	variationID, ok := parseOptionalID(c, "variation_id")
	if !ok {
		return
	}

	view, err := h.cartService.RemoveItem(c.Request.Context(), cartOwner(c, false), productID, variationID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item removed from cart", view)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), cartOwner(c, false)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}

// MergeCart handles POST /cart/merge: the guest cart named by X-Session-ID
// moves into the signed-in user's cart
func (h *CartHandler) MergeCart(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		respondError(c, cart.ErrNoOwner)
		return
	}

	if err := h.cartService.MergeGuestCart(c.Request.Context(), userID, sessionID); err != nil {
		respondError(c, err)
		return
	}

	view, err := h.cartService.GetCart(c.Request.Context(), cart.Owner{UserID: &userID})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart merged successfully", view)
}
