package models

import "time"

// User is an auth account. Owners manage properties and tenants; tenant
// accounts are linked to a Tenant profile via TenantID.
type User struct {
	ID                     string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email                  string     `json:"email" gorm:"index"`
	EmailLowercase         string     `json:"email_lowercase" gorm:"index"`
	Password               string     `json:"-"`
	Name                   string     `json:"name"`
	Phone                  string     `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Role                   UserRole   `json:"role" gorm:"type:varchar(20);index"`
	TenantID               *string    `json:"tenant_id,omitempty" gorm:"type:uuid"`
	PhotoURL               string     `json:"photo_url,omitempty"`
	GravatarURL            string     `json:"gravatar_url,omitempty"`
	PreviousEmail          *string    `json:"previous_email,omitempty"`
	EmailConflictResolvedAt *time.Time `json:"email_conflict_resolved_at,omitempty"`
	IsActive               bool       `json:"is_active" gorm:"default:true"`
	CreatedAt              time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt              time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}
