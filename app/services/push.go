package services

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/R4Flutter/RentDone/app/config"
	"github.com/R4Flutter/RentDone/app/database"
)

// pushChunkSize is FCM's per-request token limit.
const pushChunkSize = 500

// PushSender fans a notification out to every registered device token.
type PushSender struct {
	cfg        config.PushConfig
	endpoint   string
	httpClient *http.Client
}

func NewPushSender(cfg config.PushConfig) *PushSender {
	return &PushSender{
		cfg:        cfg,
		endpoint:   "https://fcm.googleapis.com/fcm/send",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendToAll delivers a notification to all registered tokens in chunks.
// Delivery is best effort: failures are logged, never propagated, since no
// stored state depends on a push arriving.
func (s *PushSender) SendToAll(db *sql.DB, title, body string) {
	if s.cfg.ServerKey == "" {
		log.Println("Push config missing. Set FCM_SERVER_KEY to enable push notifications.")
		return
	}

	tokens, err := database.ListPushTokens(db)
	if err != nil {
		log.Printf("Failed to list push tokens: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	for start := 0; start < len(tokens); start += pushChunkSize {
		end := start + pushChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		if err := s.send(tokens[start:end], title, body); err != nil {
			log.Printf("Push send failed for chunk starting at %d: %v", start, err)
		}
	}
}

func (s *PushSender) send(tokens []string, title, body string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"registration_ids": tokens,
		"notification": map[string]string{
			"title": title,
			"body":  body,
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "key="+s.cfg.ServerKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}
