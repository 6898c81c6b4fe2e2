package properties

import (
	"github.com/gofiber/fiber/v2"

	"github.com/R4Flutter/RentDone/app/config"
	"github.com/R4Flutter/RentDone/app/models"
	"github.com/R4Flutter/RentDone/app/routes/auth"
)

// SetupPropertiesRoutes sets up the property lifecycle routes
func SetupPropertiesRoutes(app *fiber.App, cfg *config.Config) {
	propertiesAPI := app.Group("/api/properties")
	propertiesAPI.Use(auth.AuthMiddleware)
	propertiesAPI.Use(auth.RoleMiddleware(models.RoleOwner))

	propertiesAPI.Delete("/:id", func(c *fiber.Ctx) error {
		return DeletePropertyCascadeAPI(c, config.GetDB())
	})
}
