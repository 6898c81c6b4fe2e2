package users

import (
	"github.com/gofiber/fiber/v2"

	"github.com/R4Flutter/RentDone/app/config"
)

// SetupUsersRoutes sets up the account hygiene routes. These are operator
// tooling, gated by the admin key header instead of a user session.
func SetupUsersRoutes(app *fiber.App, cfg *config.Config) {
	adminAPI := app.Group("/api/admin/users")
	adminAPI.Use(AdminKeyMiddleware(cfg))

	adminAPI.Get("/duplicate-emails", func(c *fiber.Ctx) error {
		return FindDuplicateEmailsAPI(c, config.GetDB())
	})
	adminAPI.Post("/duplicate-emails/resolve", func(c *fiber.Ctx) error {
		return ResolveDuplicateEmailAPI(c, config.GetDB())
	})
	adminAPI.Post("/duplicate-emails/cleanup", func(c *fiber.Ctx) error {
		return CleanupDuplicateEmailsAPI(c, config.GetDB())
	})
	adminAPI.Post("/gravatars/migrate", func(c *fiber.Ctx) error {
		return MigrateGravatarsAPI(c, config.GetDB())
	})
	adminAPI.Post("/gravatars/refresh", func(c *fiber.Ctx) error {
		return RefreshGravatarAPI(c, config.GetDB())
	})
}

// AdminKeyMiddleware rejects requests missing the operator admin key.
func AdminKeyMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminKey == "" {
			return c.Status(409).JSON(fiber.Map{"error": "Admin key not configured", "code": "failed-precondition"})
		}
		if c.Get("X-Admin-Key") != cfg.AdminKey {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid admin key", "code": "unauthenticated"})
		}
		return c.Next()
	}
}
