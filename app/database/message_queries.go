package database

import (
	"database/sql"

	"github.com/R4Flutter/RentDone/app/models"
)

// CreateMessageIfAbsent inserts a notification message keyed by its
// deterministic ID. Returns false without error when the message already
// exists, which is what makes repeated job runs and webhook redeliveries
// safe.
func CreateMessageIfAbsent(db *sql.DB, m *models.Message) (bool, error) {
	res, err := db.Exec(`
		INSERT INTO messages (
			id, type, channel, title, body, severity, owner_id, tenant_id, payment_id, period_key,
			provider_message_id, provider_status, provider_error, read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, false, NOW())
		ON CONFLICT (id) DO NOTHING
	`, m.ID, m.Type, m.Channel, m.Title, m.Body, m.Severity,
		m.OwnerID, m.TenantID, m.PaymentID, m.PeriodKey,
		m.ProviderMessageID, m.ProviderStatus, m.ProviderError)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MessageExists reports whether a message with the given ID has been written.
func MessageExists(db *sql.DB, messageID string) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM messages WHERE id = $1)`, messageID).Scan(&exists)
	return exists, err
}

// CreateReminderIfAbsent inserts a per-tenant reminder record. Returns false
// when the reminder already fired for the period.
func CreateReminderIfAbsent(db *sql.DB, r *models.Reminder) (bool, error) {
	res, err := db.Exec(`
		INSERT INTO reminders (id, tenant_id, type, period_key, title, body, due_day, days_before_due, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', NOW())
		ON CONFLICT (id) DO NOTHING
	`, r.ID, r.TenantID, r.Type, r.PeriodKey, r.Title, r.Body, r.DueDay, r.DaysBeforeDue)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListPushTokens returns all registered device push tokens.
func ListPushTokens(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT token FROM fcm_tokens`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
