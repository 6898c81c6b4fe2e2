package tenants

import (
	"github.com/gofiber/fiber/v2"

	"github.com/R4Flutter/RentDone/app/config"
	"github.com/R4Flutter/RentDone/app/routes/auth"
)

// SetupTenantsRoutes sets up the tenant account routes
func SetupTenantsRoutes(app *fiber.App, cfg *config.Config) {
	tenantsAPI := app.Group("/api/tenants")
	tenantsAPI.Use(auth.AuthMiddleware)

	tenantsAPI.Post("/link", func(c *fiber.Ctx) error {
		return LinkTenantAccountAPI(c, config.GetDB())
	})

	tenantsAPI.Post("/upload-signature", func(c *fiber.Ctx) error {
		return CreateImageUploadSignatureAPI(c, cfg)
	})
}
