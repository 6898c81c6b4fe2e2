package database

import (
	"database/sql"
	"log"
)

// RunMigrations creates the schema and applies one-off data fixes.
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL DEFAULT '',
			email_lowercase TEXT NOT NULL DEFAULT '',
			password TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			phone VARCHAR(20) NOT NULL DEFAULT '',
			role VARCHAR(20) NOT NULL DEFAULT 'tenant',
			tenant_id UUID,
			photo_url TEXT NOT NULL DEFAULT '',
			gravatar_url TEXT NOT NULL DEFAULT '',
			previous_email TEXT,
			email_conflict_resolved_at TIMESTAMPTZ,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email_lowercase ON users (email_lowercase)`,
		`CREATE TABLE IF NOT EXISTS properties (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id UUID NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS tenants (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			auth_uid TEXT,
			owner_id UUID,
			property_id UUID,
			room_id TEXT,
			room_number TEXT NOT NULL DEFAULT '-',
			full_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			email_lowercase TEXT NOT NULL DEFAULT '',
			phone VARCHAR(20) NOT NULL DEFAULT '',
			whatsapp_phone VARCHAR(20) NOT NULL DEFAULT '',
			upi_id TEXT NOT NULL DEFAULT '',
			rent_amount NUMERIC NOT NULL DEFAULT 0,
			rent_due_day INT NOT NULL DEFAULT 1,
			due_amount NUMERIC NOT NULL DEFAULT 0,
			total_paid NUMERIC NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT true,
			onboarding_status TEXT NOT NULL DEFAULT 'active',
			source TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tenants_auth_uid ON tenants (auth_uid)`,
		`CREATE INDEX IF NOT EXISTS idx_tenants_property ON tenants (property_id)`,
		`CREATE TABLE IF NOT EXISTS room_details (
			tenant_id UUID PRIMARY KEY,
			monthly_rent NUMERIC NOT NULL DEFAULT 0,
			rent_due_day INT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS owner_payment_profiles (
			owner_id UUID PRIMARY KEY,
			bank_name TEXT NOT NULL DEFAULT '',
			bank_account_holder_name TEXT NOT NULL DEFAULT '',
			bank_account_number TEXT NOT NULL DEFAULT '',
			bank_ifsc TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS leases (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tenant_id UUID NOT NULL,
			owner_id UUID NOT NULL,
			property_id UUID NOT NULL,
			rent_amount NUMERIC NOT NULL DEFAULT 0,
			currency VARCHAR(3) NOT NULL DEFAULT 'INR',
			late_fee_percentage NUMERIC NOT NULL DEFAULT 0,
			rent_due_day INT NOT NULL DEFAULT 1,
			due_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leases_property ON leases (property_id)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			lease_id TEXT NOT NULL DEFAULT '',
			tenant_id UUID,
			owner_id UUID,
			property_id UUID,
			room_id TEXT,
			month INT NOT NULL DEFAULT 0,
			year INT NOT NULL DEFAULT 0,
			period_key TEXT NOT NULL DEFAULT '',
			base_amount NUMERIC NOT NULL DEFAULT 0,
			late_fee_amount NUMERIC NOT NULL DEFAULT 0,
			total_amount NUMERIC NOT NULL DEFAULT 0,
			currency VARCHAR(3) NOT NULL DEFAULT 'INR',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			method VARCHAR(20) NOT NULL DEFAULT 'unknown',
			gateway VARCHAR(20) NOT NULL DEFAULT '',
			transaction_id TEXT,
			razorpay_order_id TEXT,
			razorpay_key_id TEXT,
			due_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			paid_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_status_due ON payments (status, due_date)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_period ON payments (period_key)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments (razorpay_order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_property ON payments (property_id)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			payment_id TEXT NOT NULL,
			lease_id TEXT NOT NULL DEFAULT '',
			tenant_id UUID,
			owner_id UUID,
			amount NUMERIC NOT NULL DEFAULT 0,
			currency VARCHAR(3) NOT NULL DEFAULT 'INR',
			gateway VARCHAR(20) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'initiated',
			gateway_payment_id TEXT,
			gateway_order_id TEXT,
			verification_signature TEXT,
			completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_payment ON transactions (payment_id)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			type VARCHAR(30) NOT NULL DEFAULT '',
			channel VARCHAR(20) NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			severity VARCHAR(20) NOT NULL DEFAULT 'info',
			owner_id UUID,
			tenant_id UUID,
			payment_id TEXT,
			period_key TEXT,
			provider_message_id TEXT,
			provider_status INT,
			provider_error TEXT,
			read BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_owner ON messages (owner_id)`,
		`CREATE TABLE IF NOT EXISTS reminders (
			id TEXT PRIMARY KEY,
			tenant_id UUID NOT NULL,
			type VARCHAR(40) NOT NULL DEFAULT '',
			period_key TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			due_day INT NOT NULL DEFAULT 0,
			days_before_due INT NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			token TEXT PRIMARY KEY,
			user_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			log.Printf("Migration statement failed: %v", err)
			return err
		}
	}

	if err := normalizeLegacyStatuses(db); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// normalizeLegacyStatuses rewrites the legacy "success" payment status to
// "paid" so the runtime only ever sees a single terminal value.
func normalizeLegacyStatuses(db *sql.DB) error {
	res, err := db.Exec(`UPDATE payments SET status = 'paid' WHERE status = 'success'`)
	if err != nil {
		log.Printf("Failed to normalize legacy payment statuses: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Printf("Normalized %d legacy payment status rows", n)
	}
	return nil
}
