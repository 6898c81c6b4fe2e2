package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/R4Flutter/RentDone/app/database"
	"github.com/R4Flutter/RentDone/app/models"
)

// SendRentDueWhatsAppReminders messages every tenant whose rent falls due
// today. A "{paymentId}_wa_due" message marks a reminder as sent, so the
// five daily runs deliver at most once per payment; send failures are
// recorded under a fresh timestamped key and retried on the next run.
func SendRentDueWhatsAppReminders(db *sql.DB, wa *WhatsAppSender, businessName string, enabled bool) error {
	if !enabled {
		log.Println("WhatsApp reminders are disabled via config.")
		return nil
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	payments, err := database.ListPendingPaymentsDueBetween(db, start, end)
	if err != nil {
		return fmt.Errorf("failed to query due payments: %v", err)
	}

	for _, payment := range payments {
		reminderID := payment.ID + "_wa_due"
		sentAlready, err := database.MessageExists(db, reminderID)
		if err != nil || sentAlready {
			continue
		}
		if payment.TenantID == "" {
			continue
		}

		tenant, err := database.GetTenantByID(db, payment.TenantID)
		if err != nil {
			continue
		}

		ownerID := payment.OwnerID
		if ownerID == "" {
			ownerID = tenant.OwnerID
		}

		phone := tenant.WhatsAppPhone
		if phone == "" {
			phone = tenant.Phone
		}
		to := NormalizeIndianPhone(phone)
		if to == "" || tenant.UpiID == "" {
			continue
		}

		bankSnippet := ""
		if ownerID != "" {
			if profile, err := database.GetOwnerPaymentProfile(db, ownerID); err == nil && profile != nil {
				if profile.BankName != "" && profile.BankAccountHolderName != "" &&
					profile.BankAccountNumber != "" && profile.BankIfsc != "" {
					bankSnippet = fmt.Sprintf(
						"\n\nBank Transfer Details:\nName: %s\nBank: %s\nA/C: %s\nIFSC: %s",
						profile.BankAccountHolderName, profile.BankName,
						profile.BankAccountNumber, profile.BankIfsc)
				}
			}
		}

		amount := payment.TotalAmount
		if amount == 0 {
			amount = tenant.RentAmount
		}
		period := payment.PeriodKey
		if period == "" {
			period = MonthKey(now)
		}
		tenantName := tenant.FullName
		if tenantName == "" {
			tenantName = "Tenant"
		}
		upiLink := BuildUPILink(tenant.UpiID, amount, businessName, "Rent "+period)

		body := fmt.Sprintf("Hi %s, your rent for %s is due today.\nAmount: Rs %g\nPay now: %s%s",
			tenantName, period, amount, upiLink, bankSnippet)

		sent := wa.SendMessage(to, body, []string{tenantName, period, fmt.Sprintf("%g", amount), upiLink})
		if !sent.OK {
			failMsg := &models.Message{
				ID:             fmt.Sprintf("%s_wa_due_failed_%d", payment.ID, time.Now().UnixMilli()),
				Type:           models.MessageReminder,
				Channel:        models.ChannelWhatsApp,
				Title:          "Rent due reminder failed",
				Body:           fmt.Sprintf("WhatsApp reminder failed for %s.", to),
				Severity:       models.SeverityWarn,
				ProviderStatus: &sent.Status,
				ProviderError:  &sent.ErrorBody,
			}
			setRefs(failMsg, ownerID, payment.TenantID, payment.ID)
			if _, err := database.CreateMessageIfAbsent(db, failMsg); err != nil {
				log.Printf("Failed to record reminder failure for %s: %v", payment.ID, err)
			}
			continue
		}

		sentMsg := &models.Message{
			ID:             reminderID,
			Type:           models.MessageReminder,
			Channel:        models.ChannelWhatsApp,
			Title:          "Rent due reminder sent",
			Body:           fmt.Sprintf("WhatsApp reminder sent to %s for %s.", to, period),
			Severity:       models.SeverityInfo,
			ProviderStatus: &sent.Status,
		}
		if sent.ProviderMessageID != "" {
			sentMsg.ProviderMessageID = &sent.ProviderMessageID
		}
		setRefs(sentMsg, ownerID, payment.TenantID, payment.ID)
		if _, err := database.CreateMessageIfAbsent(db, sentMsg); err != nil {
			log.Printf("Failed to record reminder for %s: %v", payment.ID, err)
		}
	}

	return nil
}

// SendTenantPreDueReminders writes an in-app reminder for tenants whose rent
// falls due in exactly three days, honoring per-room overrides and skipping
// tenants who already paid or were already reminded for the period.
func SendTenantPreDueReminders(db *sql.DB) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	tenants, err := database.ListTenants(db)
	if err != nil {
		return fmt.Errorf("failed to list tenants: %v", err)
	}

	for _, tenant := range tenants {
		dueDay := tenant.RentDueDay
		monthlyRent := tenant.RentAmount

		if rd, err := database.GetRoomDetails(db, tenant.ID); err == nil && rd != nil {
			if rd.RentDueDay > 0 {
				dueDay = rd.RentDueDay
			}
			if rd.MonthlyRent > 0 {
				monthlyRent = rd.MonthlyRent
			}
		}

		if dueDay < 1 || dueDay > 31 {
			continue
		}

		lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
		safeDueDay := dueDay
		if safeDueDay > lastDay {
			safeDueDay = lastDay
		}
		dueDate := time.Date(now.Year(), now.Month(), safeDueDay, 0, 0, 0, 0, now.Location())
		daysUntilDue := int(dueDate.Sub(today).Hours() / 24)
		if daysUntilDue != 3 {
			continue
		}

		periodKey := MonthKey(dueDate)

		// Skip if the period's payment is already settled.
		if payment, err := database.GetPaymentByID(db, fmt.Sprintf("%s_%s", tenant.ID, periodKey)); err == nil {
			if payment.Status.IsSettled() {
				continue
			}
		}

		amount := monthlyRent
		if amount <= 0 {
			amount = tenant.DueAmount
		}
		body := fmt.Sprintf("Your rent is due in 3 days (due day %d).", safeDueDay)
		if amount > 0 {
			body += fmt.Sprintf(" Amount: Rs %g.", amount)
		}

		reminderID := fmt.Sprintf("%s_%s_dminus3", tenant.ID, periodKey)
		created, err := database.CreateReminderIfAbsent(db, &models.Reminder{
			ID:            reminderID,
			TenantID:      tenant.ID,
			Type:          "rent_due_pre_reminder",
			PeriodKey:     periodKey,
			Title:         "Rent Payment Reminder",
			Body:          body,
			DueDay:        safeDueDay,
			DaysBeforeDue: 3,
		})
		if err != nil {
			log.Printf("Failed to create pre-due reminder for tenant %s: %v", tenant.ID, err)
			continue
		}
		if !created {
			continue
		}

		msg := &models.Message{
			ID:        reminderID + "_msg",
			Type:      models.MessageReminder,
			Channel:   models.ChannelInApp,
			Title:     "Rent Payment Reminder",
			Body:      body,
			Severity:  models.SeverityInfo,
			PeriodKey: &periodKey,
		}
		setRefs(msg, tenant.OwnerID, tenant.ID, "")
		if _, err := database.CreateMessageIfAbsent(db, msg); err != nil {
			log.Printf("Failed to create pre-due message for tenant %s: %v", tenant.ID, err)
		}
	}

	return nil
}
