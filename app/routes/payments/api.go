package payments

import (
	"database/sql"
	"log"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/R4Flutter/RentDone/app/database"
	"github.com/R4Flutter/RentDone/app/gateway"
	"github.com/R4Flutter/RentDone/app/models"
	"github.com/R4Flutter/RentDone/app/services"
)

// IntentRequest is the payment-intent RPC input.
type IntentRequest struct {
	LeaseID        string `json:"leaseId"`
	Month          int    `json:"month"`
	Year           int    `json:"year"`
	Gateway        string `json:"gateway"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// IntentResponse is the payable order handed back to the client.
type IntentResponse struct {
	PaymentID      string  `json:"paymentId"`
	Gateway        string  `json:"gateway"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	IdempotencyKey string  `json:"idempotencyKey"`
	OrderID        *string `json:"orderId"`
	ClientSecret   *string `json:"clientSecret"`
	KeyID          *string `json:"keyId"`
}

// VerifyRequest is the client-initiated verification RPC input.
type VerifyRequest struct {
	PaymentID string `json:"paymentId"`
	Gateway   string `json:"gateway"`
	Payload   struct {
		OrderID       string `json:"orderId"`
		PaymentID     string `json:"paymentId"`
		Signature     string `json:"signature"`
		TransactionID string `json:"transactionId"`
	} `json:"payload"`
}

// CreatePaymentIntentAPI opens (or replays) a payment intent for one billing
// period. The deterministic payment key plus the idempotency-keyed ledger
// entry make the call safe to retry: a repeated request returns the stored
// order instead of charging twice.
func CreatePaymentIntentAPI(c *fiber.Ctx, db *sql.DB, razorpay *gateway.RazorpayClient) error {
	var req IntentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request", "code": "invalid-argument"})
	}

	gatewayName := strings.ToLower(req.Gateway)
	if gatewayName == "" {
		gatewayName = string(models.GatewayRazorpay)
	}

	if req.LeaseID == "" || req.Month == 0 || req.Year == 0 || req.IdempotencyKey == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "leaseId, month, year and idempotencyKey are required",
			"code":  "invalid-argument",
		})
	}

	callerID := c.Locals("user_id").(string)

	lease, err := database.GetLeaseByID(db, req.LeaseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Lease not found", "code": "not-found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	if lease.TenantID != "" && lease.TenantID != callerID {
		return c.Status(403).JSON(fiber.Map{"error": "Lease does not belong to tenant", "code": "permission-denied"})
	}
	if lease.Status != models.LeaseActive {
		return c.Status(409).JSON(fiber.Map{"error": "Lease is not active", "code": "failed-precondition"})
	}

	paymentID := models.PaymentPeriodID(req.LeaseID, req.Year, req.Month)

	// A settled period is a hard stop regardless of the idempotency key.
	existing, err := database.GetPaymentByID(db, paymentID)
	if err != nil && err != sql.ErrNoRows {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}
	if existing != nil && existing.Status.IsSettled() {
		return c.Status(409).JSON(fiber.Map{
			"error": "Payment already completed for this period",
			"code":  "failed-precondition",
		})
	}

	exists, err := database.TransactionExists(db, req.IdempotencyKey)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}
	if exists {
		return replayIntent(c, db, razorpay, paymentID, req.IdempotencyKey, gatewayName)
	}

	baseAmount := lease.RentAmount
	lateFee := services.LateFee(baseAmount, lease.LateFeePercentage, lease.DueDate, time.Now())
	totalAmount := baseAmount + lateFee

	payment := &models.Payment{
		ID:            paymentID,
		LeaseID:       req.LeaseID,
		TenantID:      leaseTenant(lease, callerID),
		OwnerID:       lease.OwnerID,
		PropertyID:    lease.PropertyID,
		Month:         req.Month,
		Year:          req.Year,
		PeriodKey:     periodKey(req.Year, req.Month),
		BaseAmount:    baseAmount,
		LateFeeAmount: lateFee,
		TotalAmount:   totalAmount,
		Currency:      lease.Currency,
		Gateway:       models.Gateway(gatewayName),
		TransactionID: &req.IdempotencyKey,
		DueDate:       lease.DueDate,
	}
	entry := &models.Transaction{
		ID:        req.IdempotencyKey,
		PaymentID: paymentID,
		LeaseID:   req.LeaseID,
		TenantID:  payment.TenantID,
		OwnerID:   lease.OwnerID,
		Amount:    totalAmount,
		Currency:  lease.Currency,
		Gateway:   models.Gateway(gatewayName),
	}

	if err := database.CreatePaymentIntent(db, payment, entry); err != nil {
		if err == database.ErrPaymentSettled {
			return c.Status(409).JSON(fiber.Map{
				"error": "Payment already completed for this period",
				"code":  "failed-precondition",
			})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	switch models.Gateway(gatewayName) {
	case models.GatewayRazorpay:
		return createRazorpayOrder(c, db, razorpay, payment, req.IdempotencyKey)
	case models.GatewayStripe:
		return c.Status(409).JSON(fiber.Map{"error": "Stripe intent creation not configured", "code": "failed-precondition"})
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Unsupported payment gateway", "code": "invalid-argument"})
	}
}

// replayIntent answers a retried request from stored state. When the earlier
// attempt crashed after the intent transaction but before the gateway call,
// the payment has no order reference yet; in that case a fresh gateway order
// is created for the same idempotency key rather than returning stale empty
// order data.
func replayIntent(c *fiber.Ctx, db *sql.DB, razorpay *gateway.RazorpayClient, paymentID, idempotencyKey, gatewayName string) error {
	payment, err := database.GetPaymentByID(db, paymentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Payment not found", "code": "not-found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	if models.Gateway(gatewayName) == models.GatewayRazorpay && payment.RazorpayOrderID == nil {
		return createRazorpayOrder(c, db, razorpay, payment, idempotencyKey)
	}

	return c.JSON(IntentResponse{
		PaymentID:      paymentID,
		Gateway:        gatewayName,
		Amount:         payment.TotalAmount,
		Currency:       payment.Currency,
		IdempotencyKey: idempotencyKey,
		OrderID:        payment.RazorpayOrderID,
		KeyID:          payment.RazorpayKeyID,
	})
}

func createRazorpayOrder(c *fiber.Ctx, db *sql.DB, razorpay *gateway.RazorpayClient, payment *models.Payment, idempotencyKey string) error {
	if !razorpay.Configured() {
		return c.Status(409).JSON(fiber.Map{"error": "Razorpay keys not configured", "code": "failed-precondition"})
	}

	// Round, don't truncate: fractional late-fee percentages can leave the
	// total a hair under an exact paise boundary.
	amountPaise := int64(math.Round(payment.TotalAmount * 100))
	order, err := razorpay.CreateOrder(amountPaise, payment.Currency, payment.ID, payment.ID)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": err.Error(), "code": "internal"})
	}

	if err := database.SetGatewayOrder(db, payment.ID, order.ID, razorpay.KeyID()); err != nil {
		log.Printf("Failed to persist order reference for %s: %v", payment.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	keyID := razorpay.KeyID()
	return c.JSON(IntentResponse{
		PaymentID:      payment.ID,
		Gateway:        string(models.GatewayRazorpay),
		Amount:         float64(order.Amount),
		Currency:       order.Currency,
		IdempotencyKey: idempotencyKey,
		OrderID:        &order.ID,
		KeyID:          &keyID,
	})
}

// VerifyPaymentAPI settles a payment from the client-supplied gateway
// confirmation. A ledger entry already marked success short-circuits to
// {ok:true}; otherwise the signature is checked and the payment and ledger
// transition together inside one transaction.
func VerifyPaymentAPI(c *fiber.Ctx, db *sql.DB, razorpay *gateway.RazorpayClient, push *services.PushSender) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request", "code": "invalid-argument"})
	}

	gatewayName := strings.ToLower(req.Gateway)
	if req.PaymentID == "" || gatewayName == "" {
		return c.Status(400).JSON(fiber.Map{"error": "paymentId and gateway are required", "code": "invalid-argument"})
	}

	payment, err := database.GetPaymentByID(db, req.PaymentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Payment not found", "code": "not-found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	transactionID := ""
	if payment.TransactionID != nil {
		transactionID = *payment.TransactionID
	}
	if transactionID == "" {
		transactionID = req.Payload.TransactionID
	}
	if transactionID == "" {
		return c.Status(409).JSON(fiber.Map{"error": "Transaction not found for payment", "code": "failed-precondition"})
	}

	entry, err := database.GetTransactionByID(db, transactionID)
	if err != nil && err != sql.ErrNoRows {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}
	if entry != nil && entry.Status == models.TransactionSuccess {
		return c.JSON(fiber.Map{"ok": true})
	}

	switch models.Gateway(gatewayName) {
	case models.GatewayRazorpay:
		// continue below
	case models.GatewayStripe:
		return c.Status(409).JSON(fiber.Map{"error": "Stripe verification not configured", "code": "failed-precondition"})
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Unsupported payment gateway", "code": "invalid-argument"})
	}

	if req.Payload.OrderID == "" || req.Payload.PaymentID == "" || req.Payload.Signature == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Missing Razorpay verification data", "code": "invalid-argument"})
	}

	if !razorpay.Configured() {
		return c.Status(409).JSON(fiber.Map{"error": "Razorpay keys not configured", "code": "failed-precondition"})
	}

	if !razorpay.VerifyCheckoutSignature(req.Payload.OrderID, req.Payload.PaymentID, req.Payload.Signature) {
		return c.Status(403).JSON(fiber.Map{"error": "Invalid Razorpay signature", "code": "permission-denied"})
	}

	settled, err := database.SettlePayment(db, req.PaymentID, transactionID,
		req.Payload.PaymentID, req.Payload.OrderID, req.Payload.Signature)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}
	if settled {
		services.NotifyPaymentPaid(db, push, req.PaymentID)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func leaseTenant(lease *models.Lease, callerID string) string {
	if lease.TenantID != "" {
		return lease.TenantID
	}
	return callerID
}

func periodKey(year, month int) string {
	return services.MonthKey(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local))
}
