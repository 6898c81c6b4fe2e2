package properties

import (
	"database/sql"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/R4Flutter/RentDone/app/database"
)

// DeletePropertyCascadeAPI removes a property together with its tenants,
// leases and payments. Ownership is checked on the property row first; older
// rows predate owner_id, so a tenant probe decides those.
func DeletePropertyCascadeAPI(c *fiber.Ctx, db *sql.DB) error {
	propertyID := c.Params("id")
	if propertyID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "propertyId is required", "code": "invalid-argument"})
	}

	callerID := c.Locals("user_id").(string)

	property, err := database.GetPropertyByID(db, propertyID)
	if err != nil {
		if err == sql.ErrNoRows {
			// Already gone; deletion is idempotent.
			return c.JSON(fiber.Map{"ok": true, "deleted": false})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	owned := property.OwnerID == callerID
	if property.OwnerID == "" {
		owned, err = database.PropertyHasTenantsOfOwner(db, propertyID, callerID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Database error"})
		}
	}
	if !owned {
		return c.Status(403).JSON(fiber.Map{"error": "Property does not belong to caller", "code": "permission-denied"})
	}

	if err := database.DeletePropertyCascade(db, propertyID); err != nil {
		log.Printf("Cascade delete failed for property %s: %v", propertyID, err)
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{"ok": true, "deleted": true})
}
