package services

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R4Flutter/RentDone/app/config"
)

func newTestSender(t *testing.T, handler http.HandlerFunc, maxRetries int) (*WhatsAppSender, *[]time.Duration) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var slept []time.Duration
	sender := &WhatsAppSender{
		cfg: config.WhatsAppConfig{
			Token:         "token",
			PhoneNumberID: "12345",
			APIVersion:    "v21.0",
			MaxRetries:    maxRetries,
		},
		baseURL:    server.URL,
		httpClient: server.Client(),
		sleep:      func(d time.Duration) { slept = append(slept, d) },
	}
	return sender, &slept
}

func TestSendMessageSuccess(t *testing.T) {
	sender, slept := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"messages":[{"id":"wamid.abc"}]}`))
	}, 3)

	result := sender.SendMessage("919876543210", "Rent due", nil)
	assert.True(t, result.OK)
	assert.Equal(t, "wamid.abc", result.ProviderMessageID)
	assert.Empty(t, *slept)
}

func TestSendMessageRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	sender, slept := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"messages":[{"id":"wamid.retry"}]}`))
	}, 3)

	result := sender.SendMessage("919876543210", "Rent due", nil)
	assert.True(t, result.OK)
	assert.Equal(t, 3, attempts)
	require.Len(t, *slept, 2)
	assert.Equal(t, 500*time.Millisecond, (*slept)[0])
	assert.Equal(t, 2000*time.Millisecond, (*slept)[1])
}

func TestSendMessageGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	sender, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"server on fire"}`))
	}, 2)

	result := sender.SendMessage("919876543210", "Rent due", nil)
	assert.False(t, result.OK)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, http.StatusInternalServerError, result.Status)
	assert.Contains(t, result.ErrorBody, "server on fire")
}

func TestSendMessageDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	sender, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid recipient"}`))
	}, 3)

	result := sender.SendMessage("bad", "Rent due", nil)
	assert.False(t, result.OK)
	assert.Equal(t, 1, attempts)
}

func TestSendMessageMissingConfig(t *testing.T) {
	sender := NewWhatsAppSender(config.WhatsAppConfig{})
	result := sender.SendMessage("919876543210", "Rent due", nil)
	assert.False(t, result.OK)
	assert.Equal(t, "Missing WhatsApp config", result.ErrorBody)
}

func TestNormalizeIndianPhone(t *testing.T) {
	assert.Equal(t, "919876543210", NormalizeIndianPhone("9876543210"))
	assert.Equal(t, "919876543210", NormalizeIndianPhone("+91 98765 43210"))
	assert.Equal(t, "919876543210", NormalizeIndianPhone("91-9876543210"))
	assert.Equal(t, "", NormalizeIndianPhone("12345"))
	assert.Equal(t, "", NormalizeIndianPhone(""))
	assert.Equal(t, "", NormalizeIndianPhone("449876543210"))
}

func TestBuildUPILink(t *testing.T) {
	link := BuildUPILink("owner@upi", 12500, "Asha Properties", "Rent 2026-08")
	assert.True(t, len(link) > len("upi://pay?"))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "upi", parsed.Scheme)

	query := parsed.Query()
	assert.Equal(t, "owner@upi", query.Get("pa"))
	assert.Equal(t, "12500", query.Get("am"))
	assert.Equal(t, "INR", query.Get("cu"))
	assert.Equal(t, "Rent 2026-08", query.Get("tn"))
}
