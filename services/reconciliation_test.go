package services_test

import (
	"aims/models"
	"aims/services"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway answers status queries from a fixed table; orders listed in
// errs simulate a gateway that is down or timing out.
type stubGateway struct {
	statuses map[string]string
	errs     map[string]error
}

func (s *stubGateway) FetchOrderStatus(orderID string) (string, error) {
	if err, ok := s.errs[orderID]; ok {
		return "", err
	}
	if status, ok := s.statuses[orderID]; ok {
		return status, nil
	}
	return "", errors.New("unknown order")
}

func onlinePayment(joiningID uint, amount float64, orderID string) *services.RecordTransactionInput {
	return &services.RecordTransactionInput{
		JoiningID:      &joiningID,
		Amount:         amount,
		Mode:           models.PaymentModeOnline,
		CollectedBy:    7,
		GatewayOrderID: orderID,
	}
}

func TestReconcilePending_SettlesAgainstGateway(t *testing.T) {
	db := newTestDB(t)
	seedFee(t, db, "B.Tech", "CSE", "MGMT", 50000)

	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	for _, orderID := range []string{"ord_paid", "ord_failed", "ord_inflight", "ord_down"} {
		_, _, err := services.RecordTransaction(db, onlinePayment(joining.ID, 10000, orderID))
		require.NoError(t, err)
	}

	gateway := &stubGateway{
		statuses: map[string]string{
			"ord_paid":     "paid",
			"ord_failed":   "expired",
			"ord_inflight": "created",
		},
		errs: map[string]error{
			"ord_down": errors.New("connection refused"),
		},
	}

	result, err := services.ReconcilePending(db, gateway)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Checked)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 1, result.Failed)

	statusOf := func(orderID string) models.PaymentStatus {
		var txn models.PaymentTransaction
		require.NoError(t, db.Where("gateway_order_id = ?", orderID).First(&txn).Error)
		return txn.Status
	}
	assert.Equal(t, models.PaymentStatusSuccess, statusOf("ord_paid"))
	assert.Equal(t, models.PaymentStatusFailed, statusOf("ord_failed"))
	// In-flight and unreachable orders stay pending, never guessed FAILED
	assert.Equal(t, models.PaymentStatusPending, statusOf("ord_inflight"))
	assert.Equal(t, models.PaymentStatusPending, statusOf("ord_down"))

	var settled models.PaymentTransaction
	require.NoError(t, db.Where("gateway_order_id = ?", "ord_paid").First(&settled).Error)
	assert.NotNil(t, settled.VerifiedAt)

	// Confirmed money shows up in the entity summary
	summary, err := services.Summarize(db, &joining.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(10000), summary.TotalPaid)
	assert.Equal(t, int64(2), summary.PendingCount)
}

func TestReconcilePending_Idempotent(t *testing.T) {
	db := newTestDB(t)

	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	_, _, err = services.RecordTransaction(db, onlinePayment(joining.ID, 5000, "ord_1"))
	require.NoError(t, err)

	gateway := &stubGateway{statuses: map[string]string{"ord_1": "paid"}}

	first, err := services.ReconcilePending(db, gateway)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Updated)

	// Second pass with no gateway change is a no-op
	second, err := services.ReconcilePending(db, gateway)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Checked)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 0, second.Failed)
}

func TestReconcilePending_OnlyTouchesOnlinePending(t *testing.T) {
	db := newTestDB(t)

	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	// Cash rows are born settled and never reconciled
	_, _, err = services.RecordTransaction(db, cashPayment(&joining.ID, nil, 1000))
	require.NoError(t, err)

	gateway := &stubGateway{}
	result, err := services.ReconcilePending(db, gateway)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Checked)
}

func TestReconcilePending_ReportsFlips(t *testing.T) {
	db := newTestDB(t)

	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	_, _, err = services.RecordTransaction(db, onlinePayment(joining.ID, 5000, "ord_ok"))
	require.NoError(t, err)
	_, _, err = services.RecordTransaction(db, onlinePayment(joining.ID, 5000, "ord_bad"))
	require.NoError(t, err)

	gateway := &stubGateway{statuses: map[string]string{
		"ord_ok":  "paid",
		"ord_bad": "failed",
	}}

	result, err := services.ReconcilePending(db, gateway)
	require.NoError(t, err)
	require.Len(t, result.Flipped, 2)

	flipped := map[string]models.PaymentStatus{}
	for _, txn := range result.Flipped {
		flipped[txn.GatewayOrderID] = txn.Status
	}
	assert.Equal(t, models.PaymentStatusSuccess, flipped["ord_ok"])
	assert.Equal(t, models.PaymentStatusFailed, flipped["ord_bad"])
}
