package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/R4Flutter/RentDone/app/config"
)

// WhatsAppSender delivers messages through the Meta Graph API with bounded
// retries on transient failures.
type WhatsAppSender struct {
	cfg        config.WhatsAppConfig
	baseURL    string
	httpClient *http.Client
	sleep      func(time.Duration)
}

func NewWhatsAppSender(cfg config.WhatsAppConfig) *WhatsAppSender {
	return &WhatsAppSender{
		cfg:        cfg,
		baseURL:    "https://graph.facebook.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sleep:      time.Sleep,
	}
}

// SendResult reports the outcome of a delivery attempt.
type SendResult struct {
	OK                bool
	Status            int
	ProviderMessageID string
	ErrorBody         string
}

// SendMessage posts either a template message (when a template is
// configured) or a plain text message. Retries on 429 and 5xx with
// quadratic backoff, up to the configured attempt limit.
func (s *WhatsAppSender) SendMessage(to, body string, templateParams []string) SendResult {
	if s.cfg.Token == "" || s.cfg.PhoneNumberID == "" {
		log.Println("WhatsApp config missing. Set WHATSAPP_TOKEN and WHATSAPP_PHONE_NUMBER_ID.")
		return SendResult{ErrorBody: "Missing WhatsApp config"}
	}

	payload := s.buildPayload(to, body, templateParams)
	maxRetries := s.cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		status, raw, err := s.post(payload)
		if err != nil {
			log.Printf("WhatsApp send failed: %v (to=%s, attempt=%d)", err, to, attempt)
			if attempt >= maxRetries {
				return SendResult{ErrorBody: err.Error()}
			}
			s.sleep(time.Duration(500*attempt*attempt) * time.Millisecond)
			continue
		}

		if status >= 200 && status < 300 {
			return SendResult{OK: true, Status: status, ProviderMessageID: providerMessageID(raw)}
		}

		errorBody := string(raw)
		if errorBody == "" {
			errorBody = "Unknown WhatsApp API error"
		}
		log.Printf("WhatsApp send failed: status=%d body=%s to=%s attempt=%d", status, errorBody, to, attempt)

		retryable := status == http.StatusTooManyRequests || status >= 500
		if !retryable || attempt >= maxRetries {
			return SendResult{Status: status, ErrorBody: errorBody}
		}
		s.sleep(time.Duration(500*attempt*attempt) * time.Millisecond)
	}

	return SendResult{ErrorBody: "Unexpected send flow"}
}

func (s *WhatsAppSender) buildPayload(to, body string, templateParams []string) map[string]interface{} {
	if s.cfg.TemplateName == "" {
		return map[string]interface{}{
			"messaging_product": "whatsapp",
			"to":                to,
			"type":              "text",
			"text":              map[string]string{"body": body},
		}
	}

	parameters := make([]map[string]string, 0, len(templateParams))
	for _, value := range templateParams {
		parameters = append(parameters, map[string]string{"type": "text", "text": value})
	}
	return map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":     s.cfg.TemplateName,
			"language": map[string]string{"code": s.cfg.TemplateLanguage},
			"components": []map[string]interface{}{
				{"type": "body", "parameters": parameters},
			},
		},
	}
}

func (s *WhatsAppSender) post(payload map[string]interface{}) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/%s/messages", s.baseURL, s.cfg.APIVersion, s.cfg.PhoneNumberID)
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}

func providerMessageID(raw []byte) string {
	var parsed struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ""
	}
	if len(parsed.Messages) == 0 {
		return ""
	}
	return parsed.Messages[0].ID
}

// NormalizeIndianPhone reduces a phone value to digits and returns it in
// 91-prefixed form, or "" when the number cannot be a valid Indian mobile.
func NormalizeIndianPhone(value string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)

	switch {
	case len(digits) == 10:
		return "91" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return digits
	default:
		return ""
	}
}

// BuildUPILink builds a upi://pay deep link for the given payee and amount.
func BuildUPILink(upiID string, amount float64, payeeName, note string) string {
	query := url.Values{}
	query.Set("pa", upiID)
	query.Set("pn", payeeName)
	query.Set("am", fmt.Sprintf("%g", amount))
	query.Set("cu", "INR")
	query.Set("tn", note)
	return "upi://pay?" + query.Encode()
}
