// internal/domain/payment/razorpay.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/your-org/storefront-backend/internal/config"
)

// RazorpayOrder is the gateway-side order a payment is made against
type RazorpayOrder struct {
	ID        string            `json:"id"`
	Entity    string            `json:"entity"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt"`
	Status    string            `json:"status"`
	Notes     map[string]string `json:"notes"`
	CreatedAt int64             `json:"created_at"`
}

// CreateOrderRequest is the body of POST /orders. Amount is in paise.
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// RazorpayClient talks to the Razorpay orders API
type RazorpayClient struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewRazorpayClient creates a client from payment configuration
func NewRazorpayClient(cfg config.PaymentConfig) *RazorpayClient {
	return &RazorpayClient{
		keyID:      cfg.RazorpayKeyID,
		keySecret:  cfg.RazorpayKeySecret,
		baseURL:    cfg.RazorpayBaseURL,
		httpClient: &http.Client{Timeout: cfg.GatewayTimeout},
	}
}

// KeyID is the public key handed to the checkout widget
func (r *RazorpayClient) KeyID() string {
	return r.keyID
}

// Configured reports whether API credentials are set
func (r *RazorpayClient) Configured() bool {
	return r.keyID != "" && r.keySecret != ""
}

// CreateOrder creates an order in Razorpay
func (r *RazorpayClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*RazorpayOrder, error) {
	response, err := r.makeAPICall(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return nil, err
	}

	var razorpayOrder RazorpayOrder
	if err := json.Unmarshal(response, &razorpayOrder); err != nil {
		return nil, fmt.Errorf("failed to parse Razorpay order response: %w", err)
	}
	return &razorpayOrder, nil
}

// VerifySignature checks the signature the checkout widget returns:
// hex(HMAC-SHA256(order_id + "|" + payment_id, key_secret))
func (r *RazorpayClient) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(r.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// makeAPICall makes HTTP calls to Razorpay API
func (r *RazorpayClient) makeAPICall(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	var reqBody []byte
	if data != nil {
		var err error
		if reqBody, err = json.Marshal(data); err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API call failed with status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
