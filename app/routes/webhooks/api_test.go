package webhooks

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R4Flutter/RentDone/app/config"
	"github.com/R4Flutter/RentDone/app/gateway"
	"github.com/R4Flutter/RentDone/app/services"
)

const testWebhookSecret = "whsec_test"

func newWebhookApp(secret string) *fiber.App {
	razorpay := gateway.NewRazorpayClient(config.RazorpayConfig{WebhookSecret: secret})
	push := services.NewPushSender(config.PushConfig{})

	app := fiber.New()
	app.Post("/webhooks/razorpay", func(c *fiber.Ctx) error {
		return RazorpayWebhookAPI(c, nil, razorpay, push)
	})
	return app
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	app := newWebhookApp(testWebhookSecret)

	req := httptest.NewRequest("POST", "/webhooks/razorpay", bytes.NewReader([]byte(`{}`)))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app := newWebhookApp(testWebhookSecret)
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	req := httptest.NewRequest("POST", "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sign("wrong-secret", body))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestWebhookFailsClosedWithoutSecret(t *testing.T) {
	app := newWebhookApp("")
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	req := httptest.NewRequest("POST", "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sign(testWebhookSecret, body))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestWebhookAcknowledgesUnparseableBody(t *testing.T) {
	app := newWebhookApp(testWebhookSecret)
	body := []byte(`not json at all`)

	req := httptest.NewRequest("POST", "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sign(testWebhookSecret, body))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assertReceived(t, resp.Body)
}

func TestWebhookAcknowledgesUnresolvableEvent(t *testing.T) {
	app := newWebhookApp(testWebhookSecret)

	// Captured event carrying no payment reference at all: nothing to
	// settle, but the gateway still gets its ack.
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"notes":[]}}}}`)

	req := httptest.NewRequest("POST", "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sign(testWebhookSecret, body))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assertReceived(t, resp.Body)
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	app := newWebhookApp(testWebhookSecret)
	body := []byte(`{"event":"refund.processed","payload":{}}`)

	req := httptest.NewRequest("POST", "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sign(testWebhookSecret, body))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assertReceived(t, resp.Body)
}

func assertReceived(t *testing.T, body io.Reader) {
	t.Helper()
	var parsed map[string]bool
	require.NoError(t, json.NewDecoder(body).Decode(&parsed))
	assert.True(t, parsed["received"])
}
