// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// PaymentHandler starts online payments and receives gateway callbacks
type PaymentHandler struct {
	paymentService *payment.Service
	orderService   *order.Service
	config         *config.Config
	logger         *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payment.Service, orderService *order.Service, cfg *config.Config, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		orderService:   orderService,
		config:         cfg,
		logger:         logger,
	}
}

// InitiatePayment handles POST /orders/:id/pay
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	initiation, err := h.paymentService.Initiate(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Payment initiated", initiation)
}

// VerifyPayment handles POST /orders/:id/pay/verify, the checkout widget's
// success callback
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req payment.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	paid, err := h.paymentService.Verify(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Payment verified successfully", paid)
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	Notes            json.RawMessage `json:"notes"`
	ErrorDescription string          `json:"error_description"`
}

// orderNumber reads notes.order_number. The gateway sends an empty array
// instead of an object when there are no notes.
func (p paymentEntity) orderNumber() string {
	var notes map[string]interface{}
	if err := json.Unmarshal(p.Notes, &notes); err != nil {
		return ""
	}
	number, _ := notes["order_number"].(string)
	return number
}

// WebhookHandler handles POST /webhooks/razorpay
func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	// Read the request body
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	// Get signature from header
	signature := c.GetHeader("X-Razorpay-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing signature header",
		})
		return
	}

	// Verify webhook signature
	if !h.verifyWebhookSignature(body, signature) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid signature",
		})
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Event == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid JSON payload",
		})
		return
	}

	entity := event.Payload.Payment.Entity
	log := h.logger.WithFields(logrus.Fields{
		"event":            event.Event,
		"payment_id":       entity.ID,
		"gateway_order_id": entity.OrderID,
	})

	number := entity.orderNumber()
	if number == "" {
		log.Warn("Webhook without order number, ignoring")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	log = log.WithField("order_number", number)

	err = h.apply(c.Request.Context(), event.Event, number, entity)
	switch {
	case errors.Is(err, errUnhandledEvent):
		log.Info("Unhandled webhook event")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	case err != nil && apperror.KindOf(err) != apperror.KindInternal:
		// Replays and out-of-order deliveries; retrying will not help
		log.WithError(err).Warn("Webhook not applied")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	case err != nil:
		// 5xx makes the gateway retry
		log.WithError(err).Error("Failed to apply webhook")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process webhook",
		})
	default:
		log.Info("Webhook applied")
		c.JSON(http.StatusOK, gin.H{"status": "received"})
	}
}

var errUnhandledEvent = errors.New("unhandled webhook event")

func (h *PaymentHandler) apply(ctx context.Context, event, number string, entity paymentEntity) error {
	o, err := h.orderService.GetOrderByNumber(ctx, number)
	if err != nil {
		return err
	}

	switch event {
	case "payment.captured", "order.paid":
		_, err = h.orderService.MarkPaidOnline(ctx, o.ID, entity.OrderID, entity.ID, nil)
	case "payment.failed":
		reason := entity.ErrorDescription
		if reason == "" {
			reason = "Payment failed"
		}
		_, err = h.orderService.MarkPaymentFailed(ctx, o.ID, reason)
	case "refund.processed":
		_, err = h.orderService.MarkRefunded(ctx, o.ID, "Refund processed by gateway", nil)
	default:
		return errUnhandledEvent
	}
	return err
}

// verifyWebhookSignature verifies Razorpay webhook signature
func (h *PaymentHandler) verifyWebhookSignature(body []byte, signature string) bool {
	if h.config.Payment.WebhookSecret == "" {
		// If webhook secret not configured, skip verification in development
		return h.config.IsDevelopment()
	}

	mac := hmac.New(sha256.New, []byte(h.config.Payment.WebhookSecret))
	mac.Write(body)
	expectedSignature := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}
