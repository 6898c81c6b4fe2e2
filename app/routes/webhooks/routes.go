package webhooks

import (
	"github.com/gofiber/fiber/v2"

	"github.com/R4Flutter/RentDone/app/config"
	"github.com/R4Flutter/RentDone/app/gateway"
	"github.com/R4Flutter/RentDone/app/services"
)

// SetupWebhookRoutes sets up the gateway webhook endpoints. These are
// unauthenticated: the signature header is the only trust boundary.
func SetupWebhookRoutes(app *fiber.App, cfg *config.Config) {
	razorpay := gateway.NewRazorpayClient(cfg.Razorpay)
	push := services.NewPushSender(cfg.Push)

	app.Post("/webhooks/razorpay", func(c *fiber.Ctx) error {
		return RazorpayWebhookAPI(c, config.GetDB(), razorpay, push)
	})

	app.Post("/webhooks/stripe", func(c *fiber.Ctx) error {
		return c.Status(501).SendString("Stripe webhook not configured")
	})
}
