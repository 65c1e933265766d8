package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"certificados/models"
	"certificados/services"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[DELIVERY-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// InitializeDeliveryScheduler starts the opt-in redelivery sweep. Issued
// certificates are never touched; the sweep only re-attempts the email leg.
func InitializeDeliveryScheduler(db *gorm.DB, workflow *services.IssuanceWorkflow) *cron.Cron {
	logScheduler("Initializing delivery retry scheduler...")

	c := cron.New()
	c.AddFunc("0 * * * *", func() {
		ProcessFailedDeliveries(db, workflow)
	})
	c.Start()

	logScheduler("Delivery retry scheduler started - runs hourly")
	return c
}

// ProcessFailedDeliveries re-sends certificates whose latest delivery attempt
// today failed and was not followed by a success.
func ProcessFailedDeliveries(db *gorm.DB, workflow *services.IssuanceWorkflow) {
	since := now.BeginningOfDay()

	var failed []models.DeliveryLog
	if err := db.
		Where("succeeded = ? AND created_at >= ?", false, since).
		Order("created_at asc").
		Find(&failed).Error; err != nil {
		logScheduler("Error fetching failed deliveries: " + err.Error())
		return
	}

	logScheduler(fmt.Sprintf("Found %d failed delivery attempts since midnight", len(failed)))

	seen := make(map[uint]bool)
	for _, entry := range failed {
		if seen[entry.CertificateID] {
			continue
		}
		seen[entry.CertificateID] = true

		// Skip certificates delivered after the failed attempt.
		var delivered int64
		if err := db.Model(&models.DeliveryLog{}).
			Where("certificate_id = ? AND succeeded = ? AND created_at > ?", entry.CertificateID, true, entry.CreatedAt).
			Count(&delivered).Error; err != nil {
			logScheduler("Error checking delivery history: " + err.Error())
			continue
		}
		if delivered > 0 {
			continue
		}

		outcome, err := workflow.Redeliver(context.Background(), entry.CertificateID)
		if err != nil {
			logScheduler(fmt.Sprintf("Redelivery error for certificate %d: %v", entry.CertificateID, err))
			continue
		}
		if outcome.Status == services.DeliveryDelivered {
			logScheduler(fmt.Sprintf("Certificate %d redelivered", entry.CertificateID))
		}
	}
}
