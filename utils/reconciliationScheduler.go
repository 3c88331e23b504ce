package utils

import (
	"aims/config"
	"aims/database"
	"aims/models"
	"aims/services"
	"log"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
)

// InitializeReconciliationScheduler sets up the periodic reconciliation pass
// for pending online payments, plus a nightly collections digest log.
func InitializeReconciliationScheduler() {
	log.Println("[RECONCILER] Initializing reconciliation scheduler...")

	c := cron.New()

	spec := config.AppConfig.ReconcileCron
	if _, err := c.AddFunc(spec, func() {
		RunReconciliationPass()
	}); err != nil {
		log.Printf("[RECONCILER] Invalid cron spec %q: %v", spec, err)
		return
	}

	// Log the day's collections at 9 PM
	c.AddFunc("0 21 * * *", func() {
		LogDailyCollections()
	})

	c.Start()
	log.Printf("[RECONCILER] Reconciliation scheduler started - spec %q", spec)
}

// RunReconciliationPass settles pending online transactions against the
// gateway and notifies students about flips. Safe to invoke concurrently
// with the cron-driven pass; settled rows are skipped via the status guard.
func RunReconciliationPass() *services.ReconcileResult {
	db := database.Database.Db
	gateway := NewGatewayClient()

	result, err := services.ReconcilePending(db, gateway)
	if err != nil {
		log.Printf("[RECONCILER] Reconciliation pass failed: %v", err)
		return nil
	}

	log.Printf("[RECONCILER] Pass complete: checked=%d updated=%d failed=%d",
		result.Checked, result.Updated, result.Failed)

	for _, txn := range result.Flipped {
		email, name := studentContactFor(&txn)
		SendPaymentSettledEmail(email, name, txn.Amount, txn.ReceiptNo,
			txn.Status == models.PaymentStatusSuccess)
	}
	return result
}

// studentContactFor resolves the student behind a transaction for
// notification purposes.
func studentContactFor(txn *models.PaymentTransaction) (string, string) {
	db := database.Database.Db

	if txn.AdmissionID != nil {
		var admission models.Admission
		if err := db.First(&admission, *txn.AdmissionID).Error; err == nil {
			return admission.Student.Email, admission.Student.Name
		}
		return "", ""
	}
	if txn.JoiningID != nil {
		var joining models.Joining
		if err := db.First(&joining, *txn.JoiningID).Error; err == nil {
			return joining.Student.Email, joining.Student.Name
		}
	}
	return "", ""
}

// LogDailyCollections logs the amount collected today, split by mode.
func LogDailyCollections() {
	db := database.Database.Db
	dayStart := now.BeginningOfDay()
	dayEnd := now.EndOfDay()

	type modeTotal struct {
		Mode  models.PaymentMode
		Total float64
		Count int64
	}
	var totals []modeTotal
	if err := db.Model(&models.PaymentTransaction{}).
		Select("mode, SUM(amount) as total, COUNT(*) as count").
		Where("status = ? AND processed_at BETWEEN ? AND ?",
			models.PaymentStatusSuccess, dayStart, dayEnd).
		Group("mode").
		Scan(&totals).Error; err != nil {
		log.Printf("[RECONCILER] Failed to compute daily collections: %v", err)
		return
	}

	if len(totals) == 0 {
		log.Printf("[RECONCILER] Daily collections for %s: none", dayStart.Format("2006-01-02"))
		return
	}
	for _, t := range totals {
		log.Printf("[RECONCILER] Daily collections for %s: %s x%d = INR %.2f",
			dayStart.Format("2006-01-02"), t.Mode, t.Count, t.Total)
	}
}
