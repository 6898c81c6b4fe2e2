package users

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/R4Flutter/RentDone/app/database"
)

// FindDuplicateEmailsAPI reports every email shared by more than one account.
func FindDuplicateEmailsAPI(c *fiber.Ctx, db *sql.DB) error {
	groups, err := database.FindDuplicateEmails(db)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(fiber.Map{"groups": groups, "count": len(groups)})
}

// ResolveRequest names the duplicated email and the account that keeps it.
type ResolveRequest struct {
	Email      string `json:"email"`
	KeepUserID string `json:"keepUserId"`
}

// ResolveDuplicateEmailAPI clears a shared email from every account except
// the chosen one. The cleared accounts keep the old value in previous_email.
func ResolveDuplicateEmailAPI(c *fiber.Ctx, db *sql.DB) error {
	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request", "code": "invalid-argument"})
	}
	if req.Email == "" || req.KeepUserID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email and keepUserId are required", "code": "invalid-argument"})
	}

	emailLowercase := strings.ToLower(strings.TrimSpace(req.Email))
	accounts, err := database.ListUsersByEmailLowercase(db, emailLowercase)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	keepFound := false
	for _, u := range accounts {
		if u.ID == req.KeepUserID {
			keepFound = true
			break
		}
	}
	if !keepFound {
		return c.Status(404).JSON(fiber.Map{"error": "keepUserId does not use this email", "code": "not-found"})
	}

	cleared := 0
	for _, u := range accounts {
		if u.ID == req.KeepUserID {
			continue
		}
		if err := database.ClearUserEmail(db, u.ID); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Database error"})
		}
		cleared++
	}

	return c.JSON(fiber.Map{"ok": true, "cleared": cleared})
}

// CleanupDuplicateEmailsAPI resolves every duplicate group automatically:
// the oldest account keeps the email, the rest are cleared.
func CleanupDuplicateEmailsAPI(c *fiber.Ctx, db *sql.DB) error {
	groups, err := database.FindDuplicateEmails(db)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	cleared := 0
	for _, group := range groups {
		for _, u := range group.Users[1:] {
			if err := database.ClearUserEmail(db, u.ID); err != nil {
				log.Printf("Failed to clear duplicate email for user %s: %v", u.ID, err)
				continue
			}
			cleared++
		}
	}

	return c.JSON(fiber.Map{"ok": true, "groups": len(groups), "cleared": cleared})
}

// GravatarURL derives the identicon-backed avatar URL for an email.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	digest := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=400&d=identicon", hex.EncodeToString(digest[:]))
}

// MigrateGravatarsAPI backfills avatar URLs for every user missing one.
func MigrateGravatarsAPI(c *fiber.Ctx, db *sql.DB) error {
	missing, err := database.ListUsersMissingGravatar(db)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	updated := 0
	for _, u := range missing {
		if err := database.SetUserGravatar(db, u.ID, GravatarURL(u.Email)); err != nil {
			log.Printf("Failed to set gravatar for user %s: %v", u.ID, err)
			continue
		}
		updated++
	}

	return c.JSON(fiber.Map{"ok": true, "updated": updated, "scanned": len(missing)})
}

// RefreshRequest names the single account to refresh.
type RefreshRequest struct {
	UserID string `json:"userId"`
}

// RefreshGravatarAPI re-derives one user's avatar URL, for use after an
// email change.
func RefreshGravatarAPI(c *fiber.Ctx, db *sql.DB) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request", "code": "invalid-argument"})
	}
	if req.UserID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "userId is required", "code": "invalid-argument"})
	}

	user, err := database.GetUserByID(db, req.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "User not found", "code": "not-found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}
	if user.Email == "" {
		return c.Status(409).JSON(fiber.Map{"error": "User has no email on file", "code": "failed-precondition"})
	}

	url := GravatarURL(user.Email)
	if err := database.SetUserGravatar(db, user.ID, url); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}
	if err := database.TouchUser(db, user.ID, time.Now()); err != nil {
		log.Printf("Failed to touch user %s: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{"ok": true, "gravatarUrl": url})
}
