package webhooks

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/R4Flutter/RentDone/app/database"
	"github.com/R4Flutter/RentDone/app/gateway"
	"github.com/R4Flutter/RentDone/app/models"
	"github.com/R4Flutter/RentDone/app/services"
)

// RazorpayWebhookAPI ingests asynchronous gateway events. The signature is
// verified over the raw request bytes before anything is parsed or written.
// After it passes, the response is always {received:true}, even when the
// referenced payment cannot be resolved, so the gateway never enters a retry
// storm over our internal state.
func RazorpayWebhookAPI(c *fiber.Ctx, db *sql.DB, razorpay *gateway.RazorpayClient, push *services.PushSender) error {
	if !razorpay.WebhookConfigured() {
		return c.Status(500).SendString("Webhook secret not configured")
	}

	rawBody := c.Body()
	signature := c.Get("X-Razorpay-Signature")
	if !razorpay.VerifyWebhookSignature(rawBody, signature) {
		return c.Status(401).SendString("Invalid signature")
	}

	var event gateway.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		// Signed but unparseable; acknowledge and move on.
		return c.JSON(fiber.Map{"received": true})
	}

	switch {
	case event.IsCaptured():
		handleCaptured(db, push, &event)
	case event.IsFailed():
		handleFailed(db, &event)
	}

	return c.JSON(fiber.Map{"received": true})
}

func handleCaptured(db *sql.DB, push *services.PushSender, event *gateway.WebhookEvent) {
	paymentID := event.PaymentID()
	orderID := event.GatewayOrderID()

	if paymentID == "" && orderID != "" {
		resolved, err := database.FindPaymentIDByOrderID(db, orderID)
		if err == nil {
			paymentID = resolved
		} else if err != sql.ErrNoRows {
			log.Printf("Webhook order lookup failed for %s: %v", orderID, err)
		}
	}
	if paymentID == "" {
		return
	}

	settled, err := database.ApplyWebhookSettlement(db, paymentID, event.GatewayPaymentID(), orderID)
	if err != nil {
		log.Printf("Webhook settlement failed for %s: %v", paymentID, err)
		return
	}
	if settled {
		services.NotifyPaymentPaid(db, push, paymentID)
	}
}

// handleFailed records a one-off failure notice. The key is fresh per
// delivery: failure notices have no settlement effect, so repeats are
// allowed to pile up instead of colliding.
func handleFailed(db *sql.DB, event *gateway.WebhookEvent) {
	paymentID := event.PaymentID()
	if paymentID == "" {
		return
	}

	msg := &models.Message{
		ID:        fmt.Sprintf("%s_failed_%s", paymentID, uuid.NewString()),
		Type:      models.MessageReminder,
		Title:     "Payment failed",
		Body:      fmt.Sprintf("Razorpay payment failed (%s).", event.FailureReason()),
		Severity:  models.SeverityWarn,
		PaymentID: &paymentID,
	}
	if _, err := database.CreateMessageIfAbsent(db, msg); err != nil {
		log.Printf("Failed to record payment failure for %s: %v", paymentID, err)
	}
}
