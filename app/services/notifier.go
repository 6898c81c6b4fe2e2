package services

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/R4Flutter/RentDone/app/database"
	"github.com/R4Flutter/RentDone/app/models"
)

// NotifyPaymentPaid writes the receipt message and pushes "Payment received"
// for a payment that just settled. Callers invoke it only when a settlement
// actually transitioned state, so a redelivered webhook or a second verify
// call never produces a duplicate receipt; the deterministic message key
// backstops that.
func NotifyPaymentPaid(db *sql.DB, push *PushSender, paymentID string) {
	payment, err := database.GetPaymentByID(db, paymentID)
	if err != nil {
		log.Printf("Failed to load payment %s for receipt: %v", paymentID, err)
		return
	}

	tenantName := "Tenant"
	ownerID := payment.OwnerID
	if payment.TenantID != "" {
		if tenant, err := database.GetTenantByID(db, payment.TenantID); err == nil {
			if tenant.FullName != "" {
				tenantName = tenant.FullName
			}
			if ownerID == "" {
				ownerID = tenant.OwnerID
			}
		}
	}

	body := fmt.Sprintf("%s paid Rs %g for %s.", tenantName, payment.TotalAmount, payment.PeriodKey)
	msg := &models.Message{
		ID:       payment.ID + "_paid",
		Type:     models.MessageReceipt,
		Title:    "Payment received",
		Body:     body,
		Severity: models.SeverityInfo,
	}
	setRefs(msg, ownerID, payment.TenantID, payment.ID)
	if _, err := database.CreateMessageIfAbsent(db, msg); err != nil {
		log.Printf("Failed to create receipt message for %s: %v", payment.ID, err)
	}

	push.SendToAll(db, "Payment received", body)
}
