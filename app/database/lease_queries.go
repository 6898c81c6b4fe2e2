package database

import (
	"database/sql"

	"github.com/R4Flutter/RentDone/app/models"
)

func GetLeaseByID(db *sql.DB, leaseID string) (*models.Lease, error) {
	lease := &models.Lease{}
	query := `SELECT id, tenant_id, owner_id, property_id, rent_amount, currency,
			  late_fee_percentage, rent_due_day, due_date, status, created_at, updated_at
			  FROM leases WHERE id = $1`

	err := db.QueryRow(query, leaseID).Scan(
		&lease.ID, &lease.TenantID, &lease.OwnerID, &lease.PropertyID,
		&lease.RentAmount, &lease.Currency, &lease.LateFeePercentage,
		&lease.RentDueDay, &lease.DueDate, &lease.Status,
		&lease.CreatedAt, &lease.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return lease, nil
}
