package services

import (
	"aims/models"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

// GatewayStatusFetcher is the slice of the payment gateway the reconciler
// needs: the authoritative status for one order.
type GatewayStatusFetcher interface {
	FetchOrderStatus(orderID string) (string, error)
}

// ReconcileResult reports one reconciliation pass. Failed counts gateway
// queries that errored or timed out; those rows stay PENDING for the next
// pass rather than being guessed FAILED.
type ReconcileResult struct {
	Checked int                         `json:"checked"`
	Updated int                         `json:"updated"`
	Failed  int                         `json:"failed"`
	Flipped []models.PaymentTransaction `json:"flipped,omitempty"`
}

// Gateway order states and what they settle to locally. Anything not listed
// (created, attempted) is still in flight and stays PENDING.
func mapGatewayStatus(status string) (models.PaymentStatus, bool) {
	switch strings.ToLower(status) {
	case "paid", "captured":
		return models.PaymentStatusSuccess, true
	case "failed", "expired", "cancelled":
		return models.PaymentStatusFailed, true
	default:
		return "", false
	}
}

// ReconcilePending settles ONLINE transactions stuck PENDING against the
// gateway's authoritative status. Idempotent by construction: the status flip
// is a guarded update that only matches rows still PENDING, so a rerun, a
// concurrent pass, or a racing gateway webhook all collapse to "first valid
// transition wins, the rest are no-ops".
func ReconcilePending(db *gorm.DB, gateway GatewayStatusFetcher) (*ReconcileResult, error) {
	var pending []models.PaymentTransaction
	if err := db.Where("mode = ? AND status = ?",
		models.PaymentModeOnline, models.PaymentStatusPending).
		Find(&pending).Error; err != nil {
		return nil, &PersistenceError{Op: "load pending transactions", Err: err}
	}

	result := &ReconcileResult{Checked: len(pending)}

	for _, txn := range pending {
		gatewayStatus, err := gateway.FetchOrderStatus(txn.GatewayOrderID)
		if err != nil {
			// Left PENDING on purpose: a dead gateway is not a failed payment.
			log.Printf("[RECONCILER] gateway query failed for order %s (txn %d): %v",
				txn.GatewayOrderID, txn.ID, err)
			result.Failed++
			continue
		}

		newStatus, settled := mapGatewayStatus(gatewayStatus)
		if !settled {
			continue
		}

		updates := map[string]interface{}{"status": newStatus}
		now := time.Now()
		if newStatus == models.PaymentStatusSuccess {
			updates["verified_at"] = now
		} else {
			updates["failure_reason"] = "gateway reported " + strings.ToLower(gatewayStatus)
		}

		res := db.Model(&models.PaymentTransaction{}).
			Where("id = ? AND status = ?", txn.ID, models.PaymentStatusPending).
			Updates(updates)
		if res.Error != nil {
			log.Printf("[RECONCILER] failed to settle txn %d: %v", txn.ID, res.Error)
			result.Failed++
			continue
		}
		if res.RowsAffected == 0 {
			// Someone else settled it first; nothing to do.
			continue
		}

		txn.Status = newStatus
		if newStatus == models.PaymentStatusSuccess {
			txn.VerifiedAt = &now
		}
		if _, err := refreshEntitySummary(db, &txn); err != nil {
			log.Printf("[RECONCILER] summary refresh failed for txn %d: %v", txn.ID, err)
		}

		result.Updated++
		result.Flipped = append(result.Flipped, txn)
	}

	return result, nil
}
