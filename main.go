package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/R4Flutter/RentDone/app/config"
	"github.com/R4Flutter/RentDone/app/database"
	"github.com/R4Flutter/RentDone/app/routes/auth"
	"github.com/R4Flutter/RentDone/app/routes/payments"
	"github.com/R4Flutter/RentDone/app/routes/properties"
	"github.com/R4Flutter/RentDone/app/routes/tenants"
	"github.com/R4Flutter/RentDone/app/routes/users"
	"github.com/R4Flutter/RentDone/app/routes/webhooks"
	"github.com/R4Flutter/RentDone/app/services"
)

// apiErrorHandler renders every unhandled error as the standard JSON error
// envelope.
func apiErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

func main() {
	// Set global time zone to India Standard Time. Billing boundaries,
	// due dates and reminder windows are all computed in local time.
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		log.Printf("Warning: Failed to load Asia/Kolkata location, falling back to UTC+5:30: %v", err)
		time.Local = time.FixedZone("IST", 5*60*60+30*60)
	} else {
		time.Local = loc
	}
	log.Printf("Application time zone set to: %s", time.Local.String())

	// Initialize database
	config.InitDB()
	defer config.GetDB().Close()

	// Run database migrations
	if err := database.RunMigrations(config.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	cfg := config.Get()

	// Start background scheduler
	services.StartScheduler(config.GetDB(), cfg)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: apiErrorHandler,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	// Setup auth routes
	auth.SetupAuthRoutes(app)

	// Setup payment intent and verification routes
	payments.SetupPaymentsRoutes(app, cfg)

	// Setup gateway webhook routes
	webhooks.SetupWebhookRoutes(app, cfg)

	// Setup tenant account routes
	tenants.SetupTenantsRoutes(app, cfg)

	// Setup property lifecycle routes
	properties.SetupPropertiesRoutes(app, cfg)

	// Setup account hygiene routes
	users.SetupUsersRoutes(app, cfg)

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	})

	// Start server
	log.Println("Server starting on :8080")
	log.Fatal(app.Listen(":8080"))
}
