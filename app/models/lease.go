package models

import "time"

// Lease binds a tenant to a property for a rent amount and due day.
type Lease struct {
	ID                string      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TenantID          string      `json:"tenant_id" gorm:"not null;index;type:uuid"`
	OwnerID           string      `json:"owner_id" gorm:"not null;index;type:uuid"`
	PropertyID        string      `json:"property_id" gorm:"not null;index;type:uuid"`
	RentAmount        float64     `json:"rent_amount" gorm:"not null;type:numeric"`
	Currency          string      `json:"currency" gorm:"not null;default:'INR'"`
	LateFeePercentage float64     `json:"late_fee_percentage" gorm:"type:numeric;default:0"`
	RentDueDay        int         `json:"rent_due_day" gorm:"default:1"`
	DueDate           time.Time   `json:"due_date"`
	Status            LeaseStatus `json:"status" gorm:"not null;default:'active';index;type:varchar(20)"`
	CreatedAt         time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}
