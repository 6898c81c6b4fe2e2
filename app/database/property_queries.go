package database

import (
	"database/sql"

	"github.com/R4Flutter/RentDone/app/models"
)

func GetPropertyByID(db *sql.DB, propertyID string) (*models.Property, error) {
	p := &models.Property{}
	query := `SELECT id, COALESCE(owner_id::text, ''), name, address, created_at, updated_at
			  FROM properties WHERE id = $1`

	err := db.QueryRow(query, propertyID).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Address, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// PropertyHasTenantsOfOwner is the ownership probe for legacy properties
// missing owner_id: the property counts as the caller's if any of their
// tenants live there.
func PropertyHasTenantsOfOwner(db *sql.DB, propertyID, ownerID string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM tenants WHERE property_id = $1 AND owner_id = $2)
	`, propertyID, ownerID).Scan(&exists)
	return exists, err
}

// deleteChunkSize bounds each cascade DELETE so a large property never holds
// long row locks in one statement.
const deleteChunkSize = 400

// DeletePropertyCascade removes a property and everything keyed to it:
// tenants, payments and leases are deleted in chunks, then the property row
// itself.
func DeletePropertyCascade(db *sql.DB, propertyID string) error {
	tables := []string{"tenants", "payments", "leases"}
	for _, table := range tables {
		if err := deleteByPropertyInChunks(db, table, propertyID); err != nil {
			return err
		}
	}
	_, err := db.Exec(`DELETE FROM properties WHERE id = $1`, propertyID)
	return err
}

func deleteByPropertyInChunks(db *sql.DB, table, propertyID string) error {
	query := `DELETE FROM ` + table + ` WHERE ctid IN (
		SELECT ctid FROM ` + table + ` WHERE property_id = $1 LIMIT $2
	)`
	for {
		res, err := db.Exec(query, propertyID, deleteChunkSize)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n < deleteChunkSize {
			return nil
		}
	}
}
