package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R4Flutter/RentDone/app/config"
)

func signHex(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyCheckoutSignature(t *testing.T) {
	client := NewRazorpayClient(config.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "s3cret"})

	valid := signHex("s3cret", []byte("order_ABC|pay_XYZ"))
	assert.True(t, client.VerifyCheckoutSignature("order_ABC", "pay_XYZ", valid))

	assert.False(t, client.VerifyCheckoutSignature("order_ABC", "pay_XYZ", valid[:len(valid)-1]+"0"))
	assert.False(t, client.VerifyCheckoutSignature("order_OTHER", "pay_XYZ", valid))
	assert.False(t, client.VerifyCheckoutSignature("order_ABC", "pay_XYZ", ""))
}

func TestVerifyCheckoutSignatureUnconfiguredSecret(t *testing.T) {
	client := NewRazorpayClient(config.RazorpayConfig{KeyID: "rzp_test_key"})
	valid := signHex("", []byte("order_ABC|pay_XYZ"))
	assert.False(t, client.VerifyCheckoutSignature("order_ABC", "pay_XYZ", valid))
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := NewRazorpayClient(config.RazorpayConfig{WebhookSecret: "whsec"})
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	assert.True(t, client.VerifyWebhookSignature(body, signHex("whsec", body)))
	assert.False(t, client.VerifyWebhookSignature(body, signHex("wrong", body)))

	// Any mutation of the raw bytes invalidates the signature.
	tampered := []byte(`{"event":"payment.captured","payload":{} }`)
	assert.False(t, client.VerifyWebhookSignature(tampered, signHex("whsec", body)))
}

func TestCreateOrder(t *testing.T) {
	var gotAuth string
	var gotBody orderRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/orders", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_123","amount":500000,"currency":"INR","status":"created"}`))
	}))
	defer server.Close()

	client := NewRazorpayClient(config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "s3cret",
		BaseURL:   server.URL,
	})

	order, err := client.CreateOrder(500000, "INR", "lease1_2026_08", "lease1_2026_08")
	require.NoError(t, err)
	assert.Equal(t, "order_123", order.ID)
	assert.Equal(t, int64(500000), order.Amount)
	assert.Equal(t, "INR", order.Currency)

	assert.Equal(t, "Basic cnpwX3Rlc3Rfa2V5OnMzY3JldA==", gotAuth)
	assert.Equal(t, int64(500000), gotBody.Amount)
	assert.Equal(t, "lease1_2026_08", gotBody.Notes["paymentId"])
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"description":"Amount exceeds maximum"}}`))
	}))
	defer server.Close()

	client := NewRazorpayClient(config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "s3cret",
		BaseURL:   server.URL,
	})

	_, err := client.CreateOrder(1, "INR", "r", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "razorpay order failed")
}

func TestWebhookEventPaymentID(t *testing.T) {
	raw := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {"entity": {"id": "pay_1", "order_id": "order_1", "notes": {"paymentId": "lease1_2026_08"}}}
		}
	}`)
	var event WebhookEvent
	require.NoError(t, json.Unmarshal(raw, &event))

	assert.True(t, event.IsCaptured())
	assert.Equal(t, "lease1_2026_08", event.PaymentID())
	assert.Equal(t, "order_1", event.GatewayOrderID())
	assert.Equal(t, "pay_1", event.GatewayPaymentID())
}

func TestWebhookEventNotesFallbacks(t *testing.T) {
	// Empty notes arrive as an array, not an object.
	raw := []byte(`{
		"event": "order.paid",
		"payload": {
			"payment": {"entity": {"id": "pay_2", "order_id": "order_2", "notes": []}},
			"order": {"entity": {"id": "order_2", "notes": {"payment_id": "lease2_2026_08"}}}
		}
	}`)
	var event WebhookEvent
	require.NoError(t, json.Unmarshal(raw, &event))

	assert.True(t, event.IsCaptured())
	assert.Equal(t, "lease2_2026_08", event.PaymentID())
	assert.Equal(t, "order_2", event.GatewayOrderID())
}

func TestWebhookEventFailure(t *testing.T) {
	raw := []byte(`{
		"event": "payment.failed",
		"payload": {
			"payment": {"entity": {"id": "pay_3", "error_description": "Card declined", "notes": {"paymentId": "lease3_2026_08"}}}
		}
	}`)
	var event WebhookEvent
	require.NoError(t, json.Unmarshal(raw, &event))

	assert.True(t, event.IsFailed())
	assert.False(t, event.IsCaptured())
	assert.Equal(t, "Card declined", event.FailureReason())
}
