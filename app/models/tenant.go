package models

import "time"

// Tenant represents a renter. AuthUID links the tenant profile to the auth
// account; profiles created before the tenant signed up are linked later by
// the account-linking endpoint.
type Tenant struct {
	ID               string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	AuthUID          *string    `json:"auth_uid,omitempty" gorm:"index"`
	OwnerID          string     `json:"owner_id" gorm:"index;type:uuid"`
	PropertyID       string     `json:"property_id" gorm:"index;type:uuid"`
	RoomID           *string    `json:"room_id,omitempty"`
	RoomNumber       string     `json:"room_number" gorm:"default:'-'"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email" gorm:"index"`
	EmailLowercase   string     `json:"email_lowercase" gorm:"index"`
	Phone            string     `json:"phone" gorm:"type:varchar(20)"`
	WhatsAppPhone    string     `json:"whatsapp_phone" gorm:"type:varchar(20)"`
	UpiID            string     `json:"upi_id"`
	RentAmount       float64    `json:"rent_amount" gorm:"type:numeric;default:0"`
	RentDueDay       int        `json:"rent_due_day" gorm:"default:1"`
	DueAmount        float64    `json:"due_amount" gorm:"type:numeric;default:0"`
	TotalPaid        float64    `json:"total_paid" gorm:"type:numeric;default:0"`
	IsActive         bool       `json:"is_active" gorm:"default:true;index"`
	OnboardingStatus string     `json:"onboarding_status" gorm:"default:'active'"`
	Source           string     `json:"source,omitempty"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

// RoomDetails carries per-room overrides for a tenant's rent terms.
type RoomDetails struct {
	TenantID    string  `json:"tenant_id" gorm:"primaryKey;type:uuid"`
	MonthlyRent float64 `json:"monthly_rent" gorm:"type:numeric"`
	RentDueDay  int     `json:"rent_due_day"`
}

// OwnerPaymentProfile holds an owner's bank details, appended to rent
// reminders when complete.
type OwnerPaymentProfile struct {
	OwnerID               string `json:"owner_id" gorm:"primaryKey;type:uuid"`
	BankName              string `json:"bank_name"`
	BankAccountHolderName string `json:"bank_account_holder_name"`
	BankAccountNumber     string `json:"bank_account_number"`
	BankIfsc              string `json:"bank_ifsc"`
}
