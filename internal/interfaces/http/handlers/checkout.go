// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler turns the current cart into an order
type CheckoutHandler struct {
	cartService   *cart.Service
	couponService *coupon.Service
	orderService  *order.Service
	logger        *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(cartService *cart.Service, couponService *coupon.Service, orderService *order.Service, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		cartService:   cartService,
		couponService: couponService,
		orderService:  orderService,
		logger:        logger,
	}
}

type previewRequest struct {
	CouponCode    string `json:"coupon_code"`
	ShippingState string `json:"shipping_state"`
}

type placeOrderRequest struct {
	Email           string         `json:"email"` // Guests only; signed-in users use their account email
	ShippingAddress order.Address  `json:"shipping_address" binding:"required"`
	BillingAddress  *order.Address `json:"billing_address,omitempty"`
	PaymentMethod   string         `json:"payment_method" binding:"required"`
	CouponCode      string         `json:"coupon_code,omitempty"`
	GSTNumber       string         `json:"gst_number,omitempty"`
	Notes           string         `json:"notes,omitempty"`
}

// Preview handles POST /checkout/preview
func (h *CheckoutHandler) Preview(c *gin.Context) {
	var req previewRequest
	// An empty body previews without a coupon
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	owner := cartOwner(c, false)
	items, err := h.cartService.Snapshot(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	code, err := h.couponCode(c, owner, req.CouponCode)
	if err != nil {
		respondError(c, err)
		return
	}

	preview, err := h.orderService.PreviewTotals(c.Request.Context(), order.CheckoutContext{
		UserID:    owner.UserID,
		SessionID: owner.SessionID,
	}, &order.PreviewRequest{
		Items:         items,
		CouponCode:    code,
		ShippingState: req.ShippingState,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Checkout preview calculated", preview)
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	owner := cartOwner(c, false)
	items, err := h.cartService.Snapshot(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	code, err := h.couponCode(c, owner, req.CouponCode)
	if err != nil {
		respondError(c, err)
		return
	}

	cc := order.CheckoutContext{
		UserID:    owner.UserID,
		SessionID: owner.SessionID,
		Email:     req.Email,
	}
	if email, ok := middleware.GetUserEmailFromContext(c); ok && email != "" {
		cc.Email = email
	}

	placed, err := h.orderService.PlaceOrder(c.Request.Context(), cc, &order.PlaceOrderRequest{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      code,
		GSTNumber:       req.GSTNumber,
		Notes:           req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// The order is committed; leftovers in the cart are only cosmetic
	if err := h.cartService.ClearCart(c.Request.Context(), owner); err != nil {
		h.logger.WithError(err).WithField("order_id", placed.ID).Warn("Failed to clear cart after checkout")
	}
	if owner.UserID != nil {
		if err := h.couponService.RemoveFromCart(c.Request.Context(), *owner.UserID); err != nil {
			h.logger.WithError(err).WithField("order_id", placed.ID).Warn("Failed to clear applied coupon after checkout")
		}
	}

	respondOK(c, http.StatusCreated, "Order placed successfully", placed)
}

// couponCode prefers the code in the request, then the one applied to the
// signed-in user's cart
func (h *CheckoutHandler) couponCode(c *gin.Context, owner cart.Owner, requested string) (string, error) {
	if requested != "" || owner.UserID == nil {
		return requested, nil
	}
	return h.couponService.AppliedCode(c.Request.Context(), *owner.UserID)
}
