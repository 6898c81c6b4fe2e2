package database

import (
	"database/sql"

	"github.com/R4Flutter/RentDone/app/models"
)

func GetTransactionByID(db *sql.DB, transactionID string) (*models.Transaction, error) {
	t := &models.Transaction{}
	query := `SELECT id, payment_id, lease_id, COALESCE(tenant_id::text, ''), COALESCE(owner_id::text, ''),
			  amount, currency, gateway, status, gateway_payment_id, gateway_order_id,
			  verification_signature, completed_at, created_at
			  FROM transactions WHERE id = $1`

	err := db.QueryRow(query, transactionID).Scan(
		&t.ID, &t.PaymentID, &t.LeaseID, &t.TenantID, &t.OwnerID,
		&t.Amount, &t.Currency, &t.Gateway, &t.Status,
		&t.GatewayPaymentID, &t.GatewayOrderID,
		&t.VerificationSignature, &t.CompletedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// TransactionExists reports whether a ledger entry exists for the given
// idempotency key.
func TransactionExists(db *sql.DB, transactionID string) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, transactionID).Scan(&exists)
	return exists, err
}
