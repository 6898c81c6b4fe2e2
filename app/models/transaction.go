package models

import "time"

// Transaction is one ledger entry per gateway payment attempt, keyed by the
// caller-supplied idempotency key. A retried intent request carrying the same
// key finds this row and is answered from it instead of opening a second
// gateway order. Status moves initiated -> success exactly once, and only the
// verification transaction performs that move.
type Transaction struct {
	ID                    string            `json:"id" gorm:"primaryKey"`
	PaymentID             string            `json:"payment_id" gorm:"not null;index"`
	LeaseID               string            `json:"lease_id" gorm:"index"`
	TenantID              string            `json:"tenant_id" gorm:"index;type:uuid"`
	OwnerID               string            `json:"owner_id" gorm:"type:uuid"`
	Amount                float64           `json:"amount" gorm:"not null;type:numeric"`
	Currency              string            `json:"currency" gorm:"not null;default:'INR'"`
	Gateway               Gateway           `json:"gateway" gorm:"type:varchar(20)"`
	Status                TransactionStatus `json:"status" gorm:"not null;default:'initiated';type:varchar(20)"`
	GatewayPaymentID      *string           `json:"gateway_payment_id,omitempty"`
	GatewayOrderID        *string           `json:"gateway_order_id,omitempty"`
	VerificationSignature *string           `json:"verification_signature,omitempty"`
	CompletedAt           *time.Time        `json:"completed_at,omitempty"`
	CreatedAt             time.Time         `json:"created_at" gorm:"autoCreateTime"`
}
