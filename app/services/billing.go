package services

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/R4Flutter/RentDone/app/database"
	"github.com/R4Flutter/RentDone/app/models"
)

// MonthKey formats a date as the "YYYY-MM" period key.
func MonthKey(date time.Time) string {
	return fmt.Sprintf("%d-%02d", date.Year(), int(date.Month()))
}

// PreviousMonthKey returns the period key of the month before the given date.
func PreviousMonthKey(date time.Time) string {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	return MonthKey(first.AddDate(0, -1, 0))
}

// DueDateFor builds the due date for a period, clamping the configured due
// day into the month's actual length. Rent is considered due at 09:00 local.
func DueDateFor(year int, month time.Month, dueDay int) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
	if dueDay < 1 {
		dueDay = 1
	}
	if dueDay > lastDay {
		dueDay = lastDay
	}
	return time.Date(year, month, dueDay, 9, 0, 0, 0, time.Local)
}

// LateFee computes the late fee owed on a base amount: round(base * pct/100)
// once the due date has passed, zero before it.
func LateFee(baseAmount, lateFeePercentage float64, dueDate, now time.Time) float64 {
	if !now.After(dueDate) {
		return 0
	}
	return math.Round(baseAmount * lateFeePercentage / 100)
}

// GenerateMonthlyPayments creates one pending payment per active tenant for
// the current period. Keys are deterministic, so a re-run after a partial
// failure only fills in the missing rows.
func GenerateMonthlyPayments(db *sql.DB) error {
	now := time.Now()
	period := MonthKey(now)
	log.Printf("Generating monthly payments for %s...", period)

	tenants, err := database.ListActiveTenants(db)
	if err != nil {
		return fmt.Errorf("failed to list active tenants: %v", err)
	}

	created := 0
	for _, tenant := range tenants {
		payment := &models.Payment{
			ID:          fmt.Sprintf("%s_%s", tenant.ID, period),
			TenantID:    tenant.ID,
			OwnerID:     tenant.OwnerID,
			PropertyID:  tenant.PropertyID,
			RoomID:      tenant.RoomID,
			PeriodKey:   period,
			BaseAmount:  tenant.RentAmount,
			TotalAmount: tenant.RentAmount,
			DueDate:     DueDateFor(now.Year(), now.Month(), tenant.RentDueDay),
		}
		ok, err := database.CreatePaymentIfAbsent(db, payment)
		if err != nil {
			log.Printf("Failed to create payment %s: %v", payment.ID, err)
			continue
		}
		if ok {
			created++
		}
	}

	log.Printf("Monthly payment generation completed. Created %d records.", created)
	return nil
}

// MarkOverdueAndNotify moves pending payments past their due date to overdue
// and writes one critical message per payment, then pushes a summary.
func MarkOverdueAndNotify(db *sql.DB, push *PushSender) error {
	log.Println("Starting overdue payment sweep...")

	payments, err := database.ListPendingPaymentsDueBefore(db, time.Now())
	if err != nil {
		return fmt.Errorf("failed to query overdue payments: %v", err)
	}
	if len(payments) == 0 {
		return nil
	}

	for _, p := range payments {
		if err := database.MarkPaymentOverdue(db, p.ID); err != nil {
			log.Printf("Failed to mark payment %s overdue: %v", p.ID, err)
			continue
		}

		tenantName := "Tenant"
		ownerID := p.OwnerID
		if p.TenantID != "" {
			if tenant, err := database.GetTenantByID(db, p.TenantID); err == nil {
				if tenant.FullName != "" {
					tenantName = tenant.FullName
				}
				if ownerID == "" {
					ownerID = tenant.OwnerID
				}
			}
		}

		msg := &models.Message{
			ID:       p.ID + "_overdue",
			Type:     models.MessageOverdue,
			Title:    "Rent overdue",
			Body:     fmt.Sprintf("%s has not paid for %s.", tenantName, p.PeriodKey),
			Severity: models.SeverityCritical,
		}
		setRefs(msg, ownerID, p.TenantID, p.ID)
		if _, err := database.CreateMessageIfAbsent(db, msg); err != nil {
			log.Printf("Failed to create overdue message for %s: %v", p.ID, err)
		}
	}

	push.SendToAll(db, "Overdue payments", fmt.Sprintf("You have %d overdue payment(s).", len(payments)))
	log.Printf("Overdue sweep completed. Marked %d payments.", len(payments))
	return nil
}

// SendMonthlyRentStatusNotifications writes a paid/unpaid digest message per
// payment of the previous period, keyed by the run month so each monthly run
// fires once.
func SendMonthlyRentStatusNotifications(db *sql.DB) error {
	period := PreviousMonthKey(time.Now())
	runKey := MonthKey(time.Now())
	log.Printf("Sending monthly rent status notifications for %s...", period)

	payments, err := database.ListPaymentsByPeriod(db, period)
	if err != nil {
		return fmt.Errorf("failed to list payments for %s: %v", period, err)
	}

	sent := 0
	for _, p := range payments {
		tenantName := "Tenant"
		ownerID := p.OwnerID
		if p.TenantID != "" {
			if tenant, err := database.GetTenantByID(db, p.TenantID); err == nil {
				if tenant.FullName != "" {
					tenantName = tenant.FullName
				}
				if ownerID == "" {
					ownerID = tenant.OwnerID
				}
			}
		}
		if ownerID == "" {
			continue
		}

		statusLabel := "Not paid"
		severity := models.SeverityWarn
		if p.Status.IsSettled() {
			statusLabel = "Paid"
			severity = models.SeverityInfo
		}

		msg := &models.Message{
			ID:        fmt.Sprintf("%s_monthly_status_%s", p.ID, runKey),
			Type:      models.MessageMonthlyStatus,
			Title:     "Monthly rent status",
			Body:      fmt.Sprintf("%s rent for %s: %s.", tenantName, period, statusLabel),
			Severity:  severity,
			PeriodKey: &p.PeriodKey,
		}
		setRefs(msg, ownerID, p.TenantID, p.ID)
		ok, err := database.CreateMessageIfAbsent(db, msg)
		if err != nil {
			log.Printf("Failed to create monthly status message for %s: %v", p.ID, err)
			continue
		}
		if ok {
			sent++
		}
	}

	log.Printf("Monthly rent status completed. Created %d messages.", sent)
	return nil
}

// setRefs fills the nullable reference fields on a message.
func setRefs(m *models.Message, ownerID, tenantID, paymentID string) {
	if ownerID != "" {
		m.OwnerID = &ownerID
	}
	if tenantID != "" {
		m.TenantID = &tenantID
	}
	if paymentID != "" {
		m.PaymentID = &paymentID
	}
}
