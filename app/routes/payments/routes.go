package payments

import (
	"github.com/gofiber/fiber/v2"

	"github.com/R4Flutter/RentDone/app/config"
	"github.com/R4Flutter/RentDone/app/gateway"
	"github.com/R4Flutter/RentDone/app/routes/auth"
	"github.com/R4Flutter/RentDone/app/services"
)

// SetupPaymentsRoutes sets up the payment intent and verification routes
func SetupPaymentsRoutes(app *fiber.App, cfg *config.Config) {
	razorpay := gateway.NewRazorpayClient(cfg.Razorpay)
	push := services.NewPushSender(cfg.Push)

	paymentsAPI := app.Group("/api/payments")
	paymentsAPI.Use(auth.AuthMiddleware)

	paymentsAPI.Post("/intent", func(c *fiber.Ctx) error {
		return CreatePaymentIntentAPI(c, config.GetDB(), razorpay)
	})

	paymentsAPI.Post("/verify", func(c *fiber.Ctx) error {
		return VerifyPaymentAPI(c, config.GetDB(), razorpay, push)
	})
}
