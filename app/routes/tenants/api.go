package tenants

import (
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/R4Flutter/RentDone/app/config"
	"github.com/R4Flutter/RentDone/app/database"
	"github.com/R4Flutter/RentDone/app/models"
)

// LinkTenantAccountAPI binds the caller's auth account to their tenant
// profile. Owners often create tenant records before the tenant ever signs
// up, so the lookup falls back from auth uid to email. If no profile exists
// at all, a placeholder is provisioned and left for the owner to assign.
func LinkTenantAccountAPI(c *fiber.Ctx, db *sql.DB) error {
	userID := c.Locals("user_id").(string)
	email, _ := c.Locals("user_email").(string)
	name, _ := c.Locals("user_name").(string)
	emailLowercase := strings.ToLower(strings.TrimSpace(email))

	tenant, err := database.FindTenantForAccount(db, userID, email, emailLowercase)
	if err != nil && err != sql.ErrNoRows {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	if tenant == nil {
		tenant = &models.Tenant{
			ID:             uuid.NewString(),
			AuthUID:        &userID,
			FullName:       name,
			Email:          email,
			EmailLowercase: emailLowercase,
		}
		if err := database.CreateSelfOnboardedTenant(db, tenant); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Database error"})
		}
		return c.JSON(fiber.Map{
			"ok":       true,
			"linked":   false,
			"tenantId": tenant.ID,
			"status":   "pending_assignment",
		})
	}

	if tenant.AuthUID != nil && *tenant.AuthUID != "" && *tenant.AuthUID != userID {
		return c.Status(409).JSON(fiber.Map{
			"error": "Tenant profile is linked to another account",
			"code":  "failed-precondition",
		})
	}

	if err := database.LinkTenantAccount(db, tenant.ID, userID, email, emailLowercase); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{
		"ok":       true,
		"linked":   true,
		"tenantId": tenant.ID,
		"status":   tenant.OnboardingStatus,
	})
}

// UploadSignatureRequest asks for a signed direct-upload ticket.
type UploadSignatureRequest struct {
	Folder   string `json:"folder"`
	PublicID string `json:"publicId"`
}

// CreateImageUploadSignatureAPI signs a Cloudinary direct upload so the
// client can push images without ever seeing the API secret. The string to
// sign is the sorted upload params joined with '&', followed by the secret.
func CreateImageUploadSignatureAPI(c *fiber.Ctx, cfg *config.Config) error {
	if cfg.Cloudinary.APISecret == "" || cfg.Cloudinary.APIKey == "" {
		return c.Status(409).JSON(fiber.Map{"error": "Cloudinary keys not configured", "code": "failed-precondition"})
	}

	var req UploadSignatureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request", "code": "invalid-argument"})
	}
	if req.Folder == "" {
		req.Folder = "rentdone"
	}
	if req.PublicID == "" {
		req.PublicID = uuid.NewString()
	}

	timestamp := time.Now().Unix()
	toSign := fmt.Sprintf("folder=%s&public_id=%s&timestamp=%d%s",
		req.Folder, req.PublicID, timestamp, cfg.Cloudinary.APISecret)
	digest := sha1.Sum([]byte(toSign))

	return c.JSON(fiber.Map{
		"signature": hex.EncodeToString(digest[:]),
		"timestamp": timestamp,
		"folder":    req.Folder,
		"publicId":  req.PublicID,
		"apiKey":    cfg.Cloudinary.APIKey,
		"cloudName": cfg.Cloudinary.CloudName,
	})
}
