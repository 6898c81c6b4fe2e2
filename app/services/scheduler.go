package services

import (
	"database/sql"
	"log"
	"time"

	"github.com/R4Flutter/RentDone/app/config"
)

// StartScheduler starts the background job scheduler. A minute ticker checks
// the clock and fires the recurring jobs at their scheduled times:
// monthly charge generation at 00:00 on the 1st, the overdue sweep and
// pre-due reminders at 09:00 daily, WhatsApp due reminders at 09:00, 12:00,
// 15:00, 18:00 and 21:00, and the monthly status digest at 10:15 on the 1st.
func StartScheduler(db *sql.DB, cfg *config.Config) {
	wa := NewWhatsAppSender(cfg.WhatsApp)
	push := NewPushSender(cfg.Push)

	go func() {
		log.Println("Scheduler started...")
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now()

			if now.Day() == 1 && now.Hour() == 0 && now.Minute() == 0 {
				log.Println("Triggering scheduled tasks [monthly generation]...")
				if err := GenerateMonthlyPayments(db); err != nil {
					log.Printf("Error generating monthly payments: %v", err)
				}
			}

			if now.Hour() == 9 && now.Minute() == 0 {
				log.Println("Triggering scheduled tasks [09:00]...")
				if err := MarkOverdueAndNotify(db, push); err != nil {
					log.Printf("Error running overdue sweep: %v", err)
				}
				if err := SendTenantPreDueReminders(db); err != nil {
					log.Printf("Error sending pre-due reminders: %v", err)
				}
			}

			switch now.Hour() {
			case 9, 12, 15, 18, 21:
				if now.Minute() == 0 {
					if err := SendRentDueWhatsAppReminders(db, wa, cfg.WhatsApp.BusinessName, cfg.WhatsApp.RemindersEnabled); err != nil {
						log.Printf("Error sending WhatsApp reminders: %v", err)
					}
				}
			}

			if now.Day() == 1 && now.Hour() == 10 && now.Minute() == 15 {
				if err := SendMonthlyRentStatusNotifications(db); err != nil {
					log.Printf("Error sending monthly status notifications: %v", err)
				}
			}
		}
	}()
}
