package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/R4Flutter/RentDone/app/models"
)

// ErrPaymentSettled is returned when a write targets a payment whose status
// is already terminal.
var ErrPaymentSettled = errors.New("payment already completed for this period")

const paymentColumns = `id, lease_id, COALESCE(tenant_id::text, ''), COALESCE(owner_id::text, ''),
	COALESCE(property_id::text, ''), room_id, month, year, period_key,
	base_amount, late_fee_amount, total_amount, currency, status, method, gateway,
	transaction_id, razorpay_order_id, razorpay_key_id, due_date, paid_at, created_at, updated_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID, &p.LeaseID, &p.TenantID, &p.OwnerID, &p.PropertyID, &p.RoomID,
		&p.Month, &p.Year, &p.PeriodKey,
		&p.BaseAmount, &p.LateFeeAmount, &p.TotalAmount, &p.Currency,
		&p.Status, &p.Method, &p.Gateway,
		&p.TransactionID, &p.RazorpayOrderID, &p.RazorpayKeyID,
		&p.DueDate, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func GetPaymentByID(db *sql.DB, paymentID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(db.QueryRow(query, paymentID))
}

// FindPaymentIDByOrderID resolves a payment from its gateway order reference.
// Used by the webhook path when the event notes carry no payment id.
func FindPaymentIDByOrderID(db *sql.DB, orderID string) (string, error) {
	var id string
	err := db.QueryRow(`SELECT id FROM payments WHERE razorpay_order_id = $1 LIMIT 1`, orderID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreatePaymentIntent writes the payment record and its ledger entry in one
// transaction. The payment's terminal status is re-checked under a row lock
// immediately before the write, which closes the window between the
// handler's initial read and the commit: of two concurrent intent requests
// for the same period, only the first can pass this check once the other has
// settled.
func CreatePaymentIntent(db *sql.DB, payment *models.Payment, entry *models.Transaction) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status models.PaymentStatus
	err = tx.QueryRow(`SELECT status FROM payments WHERE id = $1 FOR UPDATE`, payment.ID).Scan(&status)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if err == nil && status.IsSettled() {
		return ErrPaymentSettled
	}

	_, err = tx.Exec(`
		INSERT INTO payments (
			id, lease_id, tenant_id, owner_id, property_id, month, year, period_key,
			base_amount, late_fee_amount, total_amount, currency, status, gateway,
			transaction_id, due_date, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'pending', $13, $14, $15, NOW(), NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			base_amount = EXCLUDED.base_amount,
			late_fee_amount = EXCLUDED.late_fee_amount,
			total_amount = EXCLUDED.total_amount,
			currency = EXCLUDED.currency,
			gateway = EXCLUDED.gateway,
			transaction_id = EXCLUDED.transaction_id,
			updated_at = NOW()
	`, payment.ID, payment.LeaseID, nullable(payment.TenantID), nullable(payment.OwnerID),
		nullable(payment.PropertyID), payment.Month, payment.Year, payment.PeriodKey,
		payment.BaseAmount, payment.LateFeeAmount, payment.TotalAmount, payment.Currency,
		payment.Gateway, payment.TransactionID, payment.DueDate)
	if err != nil {
		return fmt.Errorf("failed to upsert payment: %v", err)
	}

	_, err = tx.Exec(`
		INSERT INTO transactions (
			id, payment_id, lease_id, tenant_id, owner_id, amount, currency, gateway, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'initiated', NOW())
	`, entry.ID, entry.PaymentID, entry.LeaseID, nullable(entry.TenantID), nullable(entry.OwnerID),
		entry.Amount, entry.Currency, entry.Gateway)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %v", err)
	}

	return tx.Commit()
}

// SetGatewayOrder persists the created gateway order reference onto the
// payment record.
func SetGatewayOrder(db *sql.DB, paymentID, orderID, keyID string) error {
	_, err := db.Exec(`
		UPDATE payments
		SET gateway = 'razorpay', method = 'online', razorpay_order_id = $2, razorpay_key_id = $3, updated_at = NOW()
		WHERE id = $1
	`, paymentID, orderID, keyID)
	return err
}

// SettlePayment atomically transitions the payment to paid and its ledger
// entry to success. The ledger status is the single-writer gate: it is
// re-read under a row lock, and if a concurrent verification got there first,
// or no ledger entry exists under this id at all, the call is a no-op
// returning false. Both writes commit together or not at all.
func SettlePayment(db *sql.DB, paymentID, transactionID, gatewayPaymentID, orderID, signature string) (bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var status models.TransactionStatus
	err = tx.QueryRow(`SELECT status FROM transactions WHERE id = $1 FOR UPDATE`, transactionID).Scan(&status)
	if err == sql.ErrNoRows {
		return false, tx.Commit()
	}
	if err != nil {
		return false, err
	}
	if status == models.TransactionSuccess {
		return false, tx.Commit()
	}

	// The payment guard mirrors the webhook merge: when the webhook got
	// here first the ledger still transitions below, but no payment row
	// changes, so the caller must not notify again.
	payRes, err := tx.Exec(`
		UPDATE payments
		SET status = 'paid', method = 'online', transaction_id = $2, razorpay_order_id = $3,
			paid_at = COALESCE(paid_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND status <> 'paid'
	`, paymentID, transactionID, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to settle payment: %v", err)
	}

	res, err := tx.Exec(`
		UPDATE transactions
		SET status = 'success', gateway_payment_id = $2, gateway_order_id = $3,
			verification_signature = $4, completed_at = NOW()
		WHERE id = $1
	`, transactionID, gatewayPaymentID, orderID, signature)
	if err != nil {
		return false, fmt.Errorf("failed to complete transaction: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		// Ledger row gone between the lock and the write; abandon both
		// updates rather than settle without a ledger transition.
		return false, nil
	}

	transitioned, err := payRes.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return transitioned > 0, nil
}

// ApplyWebhookSettlement merge-writes a payment to paid from a webhook
// delivery. The status guard makes redelivery convergent: the first delivery
// transitions the row (returning true so the caller can notify), repeats
// match zero rows and change nothing. An existing transaction_id is the link
// to the idempotency-keyed ledger entry and is never overwritten; the gateway
// reference only fills the column on ledger-less scheduled payments. The
// ledger itself is deliberately untouched here; it transitions only through
// SettlePayment.
func ApplyWebhookSettlement(db *sql.DB, paymentID, gatewayPaymentID, orderID string) (bool, error) {
	res, err := db.Exec(`
		UPDATE payments
		SET status = 'paid', method = 'online', transaction_id = COALESCE(transaction_id, $2),
			razorpay_order_id = COALESCE(razorpay_order_id, $3),
			paid_at = COALESCE(paid_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND status <> 'paid'
	`, paymentID, nullable(gatewayPaymentID), nullable(orderID))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreatePaymentIfAbsent inserts a schedule-generated payment row. The
// deterministic key plus ON CONFLICT DO NOTHING gives create-if-absent
// semantics, so re-running the monthly job never duplicates a period.
func CreatePaymentIfAbsent(db *sql.DB, p *models.Payment) (bool, error) {
	res, err := db.Exec(`
		INSERT INTO payments (
			id, tenant_id, owner_id, property_id, room_id, period_key,
			base_amount, total_amount, status, method, due_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', 'unknown', $9, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING
	`, p.ID, nullable(p.TenantID), nullable(p.OwnerID), nullable(p.PropertyID), p.RoomID,
		p.PeriodKey, p.BaseAmount, p.TotalAmount, p.DueDate)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListPendingPaymentsDueBefore returns pending payments whose due date has
// passed, for the overdue sweep.
func ListPendingPaymentsDueBefore(db *sql.DB, cutoff time.Time) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = 'pending' AND due_date < $1`
	return listPayments(db, query, cutoff)
}

// ListPendingPaymentsDueBetween returns pending payments due inside a window,
// for the due-today reminder run.
func ListPendingPaymentsDueBetween(db *sql.DB, start, end time.Time) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = 'pending' AND due_date >= $1 AND due_date < $2`
	return listPayments(db, query, start, end)
}

// ListPaymentsByPeriod returns every payment for a period key, for the
// monthly status digest.
func ListPaymentsByPeriod(db *sql.DB, periodKey string) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE period_key = $1`
	return listPayments(db, query, periodKey)
}

func listPayments(db *sql.DB, query string, args ...interface{}) ([]*models.Payment, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// MarkPaymentOverdue moves a pending payment to overdue. Settled rows are
// never touched: the status list keeps the transition monotonic.
func MarkPaymentOverdue(db *sql.DB, paymentID string) error {
	_, err := db.Exec(`
		UPDATE payments SET status = 'overdue', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, paymentID)
	return err
}

// nullable maps an empty string to NULL so empty foreign keys don't fail the
// uuid columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
