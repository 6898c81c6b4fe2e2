package models

import (
	"fmt"
	"time"
)

// Payment represents one billing period for a lease. The ID is the
// deterministic composite key "{leaseId}_{year}_{month}" (or
// "{tenantId}_{periodKey}" for schedule-generated rows), which makes the row
// itself the concurrency boundary for intent creation: there can only ever be
// one payment per lease and period.
type Payment struct {
	ID              string        `json:"id" gorm:"primaryKey"`
	LeaseID         string        `json:"lease_id" gorm:"index"`
	TenantID        string        `json:"tenant_id" gorm:"not null;index;type:uuid"`
	OwnerID         string        `json:"owner_id" gorm:"index;type:uuid"`
	PropertyID      string        `json:"property_id" gorm:"index;type:uuid"`
	RoomID          *string       `json:"room_id,omitempty"`
	Month           int           `json:"month"`
	Year            int           `json:"year"`
	PeriodKey       string        `json:"period_key" gorm:"index"`
	BaseAmount      float64       `json:"base_amount" gorm:"type:numeric"`
	LateFeeAmount   float64       `json:"late_fee_amount" gorm:"type:numeric;default:0"`
	TotalAmount     float64       `json:"total_amount" gorm:"not null;type:numeric"`
	Currency        string        `json:"currency" gorm:"not null;default:'INR'"`
	Status          PaymentStatus `json:"status" gorm:"not null;default:'pending';index;type:varchar(20)"`
	Method          string        `json:"method" gorm:"type:varchar(20);default:'unknown'"`
	Gateway         Gateway       `json:"gateway,omitempty" gorm:"type:varchar(20)"`
	TransactionID   *string       `json:"transaction_id,omitempty" gorm:"index"`
	RazorpayOrderID *string       `json:"razorpay_order_id,omitempty" gorm:"index"`
	RazorpayKeyID   *string       `json:"razorpay_key_id,omitempty"`
	DueDate         time.Time     `json:"due_date" gorm:"index"`
	PaidAt          *time.Time    `json:"paid_at,omitempty" gorm:"index"`
	CreatedAt       time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// PaymentPeriodID builds the deterministic payment key for a lease period.
func PaymentPeriodID(leaseID string, year, month int) string {
	return fmt.Sprintf("%s_%d_%02d", leaseID, year, month)
}
