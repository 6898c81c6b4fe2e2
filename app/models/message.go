package models

import "time"

// Message is an in-app notification record. Deterministic IDs like
// "{paymentId}_overdue" make repeated job runs idempotent: creating an
// already-existing message is a silent no-op. Failure notices use a fresh
// UUID-suffixed ID instead, since repeat deliveries should not collide.
type Message struct {
	ID                string          `json:"id" gorm:"primaryKey"`
	Type              MessageType     `json:"type" gorm:"type:varchar(30);index"`
	Channel           MessageChannel  `json:"channel,omitempty" gorm:"type:varchar(20)"`
	Title             string          `json:"title"`
	Body              string          `json:"body"`
	Severity          MessageSeverity `json:"severity" gorm:"type:varchar(20)"`
	OwnerID           *string         `json:"owner_id,omitempty" gorm:"index;type:uuid"`
	TenantID          *string         `json:"tenant_id,omitempty" gorm:"index;type:uuid"`
	PaymentID         *string         `json:"payment_id,omitempty" gorm:"index"`
	PeriodKey         *string         `json:"period_key,omitempty"`
	ProviderMessageID *string         `json:"provider_message_id,omitempty"`
	ProviderStatus    *int            `json:"provider_status,omitempty"`
	ProviderError     *string         `json:"provider_error,omitempty"`
	Read              bool            `json:"read" gorm:"default:false"`
	CreatedAt         time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// Reminder is a per-tenant reminder record, keyed deterministically per
// period so each reminder fires at most once.
type Reminder struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	TenantID      string    `json:"tenant_id" gorm:"not null;index;type:uuid"`
	Type          string    `json:"type" gorm:"type:varchar(40)"`
	PeriodKey     string    `json:"period_key"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	DueDay        int       `json:"due_day"`
	DaysBeforeDue int       `json:"days_before_due"`
	Status        string    `json:"status" gorm:"type:varchar(20);default:'pending'"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}
