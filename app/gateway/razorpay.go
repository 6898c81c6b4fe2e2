package gateway

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/R4Flutter/RentDone/app/config"
)

// RazorpayClient talks to the Razorpay REST API and validates inbound
// signatures. Credentials come from the config object built at startup.
type RazorpayClient struct {
	cfg        config.RazorpayConfig
	httpClient *http.Client
}

func NewRazorpayClient(cfg config.RazorpayConfig) *RazorpayClient {
	return &RazorpayClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether order creation credentials are present.
func (c *RazorpayClient) Configured() bool {
	return c.cfg.KeyID != "" && c.cfg.KeySecret != ""
}

// WebhookConfigured reports whether the webhook secret is present.
func (c *RazorpayClient) WebhookConfigured() bool {
	return c.cfg.WebhookSecret != ""
}

// KeyID returns the public key id handed to clients for checkout.
func (c *RazorpayClient) KeyID() string {
	return c.cfg.KeyID
}

// Order is the subset of the Razorpay order entity the backend cares about.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// CreateOrder opens a gateway order for the given amount in minor units
// (paise). The payment id travels in the order notes so the webhook can
// resolve the payment without a database lookup.
func (c *RazorpayClient) CreateOrder(amountPaise int64, currency, receipt, paymentID string) (*Order, error) {
	body, err := json.Marshal(orderRequest{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
		Notes:    map[string]string{"paymentId": paymentID},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.KeyID + ":" + c.cfg.KeySecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("razorpay order failed: %s", string(raw))
	}

	order := &Order{}
	if err := json.Unmarshal(raw, order); err != nil {
		return nil, fmt.Errorf("razorpay order failed: invalid response: %v", err)
	}
	return order, nil
}

// VerifyCheckoutSignature recomputes the HMAC-SHA256 of
// "{orderId}|{gatewayPaymentId}" with the key secret and compares it against
// the client-supplied signature in constant time.
func (c *RazorpayClient) VerifyCheckoutSignature(orderID, gatewayPaymentID, signature string) bool {
	return verifyHMAC([]byte(orderID+"|"+gatewayPaymentID), signature, c.cfg.KeySecret)
}

// VerifyWebhookSignature validates the X-Razorpay-Signature header against
// the raw, unparsed request body. The bytes must be exactly what arrived on
// the wire: re-serializing the parsed payload would invalidate the
// signature.
func (c *RazorpayClient) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return verifyHMAC(rawBody, signature, c.cfg.WebhookSecret)
}

func verifyHMAC(message []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookEvent is the envelope Razorpay posts to the webhook endpoint.
type WebhookEvent struct {
	Event   string         `json:"event"`
	Payload WebhookPayload `json:"payload"`
}

type WebhookPayload struct {
	Payment *WebhookEntity `json:"payment"`
	Order   *WebhookEntity `json:"order"`
}

type WebhookEntity struct {
	Entity EntityBody `json:"entity"`
}

// EntityBody holds the fields shared by payment and order entities. Notes is
// kept raw because Razorpay serializes empty notes as an array.
type EntityBody struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	ErrorDescription string          `json:"error_description"`
	Notes            json.RawMessage `json:"notes"`
}

// IsCaptured reports whether the event settles a payment.
func (e *WebhookEvent) IsCaptured() bool {
	return e.Event == "payment.captured" || e.Event == "order.paid"
}

// IsFailed reports whether the event is a payment failure.
func (e *WebhookEvent) IsFailed() bool {
	return e.Event == "payment.failed"
}

// PaymentID extracts our payment id from the event notes, checking the
// payment entity first and falling back to the order entity.
func (e *WebhookEvent) PaymentID() string {
	if e.Payload.Payment != nil {
		if id := noteValue(e.Payload.Payment.Entity.Notes, "paymentId", "payment_id"); id != "" {
			return id
		}
	}
	if e.Payload.Order != nil {
		if id := noteValue(e.Payload.Order.Entity.Notes, "paymentId", "payment_id"); id != "" {
			return id
		}
	}
	return ""
}

// GatewayOrderID returns the gateway order reference carried by the event.
func (e *WebhookEvent) GatewayOrderID() string {
	if e.Payload.Payment != nil && e.Payload.Payment.Entity.OrderID != "" {
		return e.Payload.Payment.Entity.OrderID
	}
	if e.Payload.Order != nil {
		return e.Payload.Order.Entity.ID
	}
	return ""
}

// GatewayPaymentID returns the gateway's own payment entity id.
func (e *WebhookEvent) GatewayPaymentID() string {
	if e.Payload.Payment != nil {
		return e.Payload.Payment.Entity.ID
	}
	return ""
}

// FailureReason returns the gateway's error description for failed events.
func (e *WebhookEvent) FailureReason() string {
	if e.Payload.Payment != nil && e.Payload.Payment.Entity.ErrorDescription != "" {
		return e.Payload.Payment.Entity.ErrorDescription
	}
	return "unknown reason"
}

func noteValue(raw json.RawMessage, keys ...string) string {
	if len(raw) == 0 {
		return ""
	}
	notes := map[string]interface{}{}
	if err := json.Unmarshal(raw, &notes); err != nil {
		return ""
	}
	for _, key := range keys {
		if v, ok := notes[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
