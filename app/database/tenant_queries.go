package database

import (
	"database/sql"
	"fmt"

	"github.com/R4Flutter/RentDone/app/models"
)

const tenantColumns = `id, auth_uid, COALESCE(owner_id::text, ''), COALESCE(property_id::text, ''), room_id,
	room_number, full_name, email, email_lowercase, phone, whatsapp_phone, upi_id,
	rent_amount, rent_due_day, due_amount, total_paid, is_active, onboarding_status, source,
	created_at, updated_at, deleted_at`

func scanTenant(row interface{ Scan(...interface{}) error }) (*models.Tenant, error) {
	t := &models.Tenant{}
	err := row.Scan(
		&t.ID, &t.AuthUID, &t.OwnerID, &t.PropertyID, &t.RoomID,
		&t.RoomNumber, &t.FullName, &t.Email, &t.EmailLowercase,
		&t.Phone, &t.WhatsAppPhone, &t.UpiID,
		&t.RentAmount, &t.RentDueDay, &t.DueAmount, &t.TotalPaid,
		&t.IsActive, &t.OnboardingStatus, &t.Source,
		&t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func GetTenantByID(db *sql.DB, tenantID string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1 AND deleted_at IS NULL`
	return scanTenant(db.QueryRow(query, tenantID))
}

// FindTenantForAccount looks up the tenant profile for an auth account,
// trying auth uid, lowercase email, then raw email in that order.
func FindTenantForAccount(db *sql.DB, authUID, email, emailLowercase string) (*models.Tenant, error) {
	lookups := []struct {
		column string
		value  string
	}{
		{"auth_uid", authUID},
		{"email_lowercase", emailLowercase},
		{"email", email},
	}

	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		query := `SELECT ` + tenantColumns + ` FROM tenants WHERE ` + l.column + ` = $1 AND deleted_at IS NULL LIMIT 1`
		t, err := scanTenant(db.QueryRow(query, l.value))
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, sql.ErrNoRows
}

// ListActiveTenants returns every active tenant, for the monthly charge
// generation job.
func ListActiveTenants(db *sql.DB) ([]*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE is_active = true AND deleted_at IS NULL`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// ListTenants returns all tenant profiles, deleted ones excluded.
func ListTenants(db *sql.DB) ([]*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE deleted_at IS NULL`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// GetRoomDetails returns the per-room rent overrides for a tenant, or nil if
// none exist.
func GetRoomDetails(db *sql.DB, tenantID string) (*models.RoomDetails, error) {
	rd := &models.RoomDetails{}
	err := db.QueryRow(`SELECT tenant_id, monthly_rent, rent_due_day FROM room_details WHERE tenant_id = $1`, tenantID).
		Scan(&rd.TenantID, &rd.MonthlyRent, &rd.RentDueDay)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rd, nil
}

// GetOwnerPaymentProfile returns an owner's bank details, or nil if none are
// on file.
func GetOwnerPaymentProfile(db *sql.DB, ownerID string) (*models.OwnerPaymentProfile, error) {
	p := &models.OwnerPaymentProfile{}
	err := db.QueryRow(`SELECT owner_id, bank_name, bank_account_holder_name, bank_account_number, bank_ifsc
						FROM owner_payment_profiles WHERE owner_id = $1`, ownerID).
		Scan(&p.OwnerID, &p.BankName, &p.BankAccountHolderName, &p.BankAccountNumber, &p.BankIfsc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateSelfOnboardedTenant provisions a placeholder tenant profile for an
// account that signed up before an owner assigned them anywhere.
func CreateSelfOnboardedTenant(db *sql.DB, t *models.Tenant) error {
	_, err := db.Exec(`
		INSERT INTO tenants (
			id, auth_uid, full_name, email, email_lowercase, phone,
			room_number, due_amount, total_paid, is_active, onboarding_status, source,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, '-', 0, 0, false, 'pending_assignment', 'self_onboarding', NOW(), NOW())
		ON CONFLICT (id) DO NOTHING
	`, t.ID, t.AuthUID, t.FullName, t.Email, t.EmailLowercase, t.Phone)
	if err != nil {
		return fmt.Errorf("failed to create tenant profile: %v", err)
	}
	return nil
}

// LinkTenantAccount binds the tenant profile and the user row to each other
// in a single transaction.
func LinkTenantAccount(db *sql.DB, tenantID, userID, email, emailLowercase string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE tenants SET auth_uid = $2, email = $3, email_lowercase = $4, updated_at = NOW()
		WHERE id = $1
	`, tenantID, userID, email, emailLowercase)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE users SET tenant_id = $2, email = $3, email_lowercase = $4, updated_at = NOW()
		WHERE id = $1
	`, userID, tenantID, email, emailLowercase)
	if err != nil {
		return err
	}

	return tx.Commit()
}
