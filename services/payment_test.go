package services_test

import (
	"aims/models"
	"aims/services"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSummary(t *testing.T) {
	txns := []models.PaymentTransaction{
		{Amount: 20000, Status: models.PaymentStatusSuccess},
		{Amount: 5000, Status: models.PaymentStatusFailed},
		{Amount: 10000, Status: models.PaymentStatusPending},
	}

	summary := services.ComputeSummary(50000, txns)

	// Only SUCCESS rows count; PENDING surfaces as a count, not money
	assert.Equal(t, float64(20000), summary.TotalPaid)
	assert.Equal(t, float64(30000), summary.Balance)
	assert.Equal(t, models.PaymentSummaryPartial, summary.Status)
	assert.Equal(t, int64(1), summary.PendingCount)
	assert.False(t, summary.OverCollected)
}

func TestComputeSummary_Empty(t *testing.T) {
	summary := services.ComputeSummary(50000, nil)
	assert.Equal(t, models.PaymentSummaryNotStarted, summary.Status)
	assert.Equal(t, float64(50000), summary.Balance)
}

func TestComputeSummary_NoFeeConfigured(t *testing.T) {
	// Zero fee and no money collected reads NOT_STARTED, never paid-by-vacuity
	summary := services.ComputeSummary(0, nil)
	assert.Equal(t, models.PaymentSummaryNotStarted, summary.Status)
	assert.Equal(t, float64(0), summary.Balance)
	assert.False(t, summary.OverCollected)
}

func TestComputeSummary_OverCollected(t *testing.T) {
	// Fee configuration dropped after money came in: flag, don't clamp
	txns := []models.PaymentTransaction{
		{Amount: 50000, Status: models.PaymentStatusSuccess},
	}
	summary := services.ComputeSummary(40000, txns)
	assert.Equal(t, float64(-10000), summary.Balance)
	assert.True(t, summary.OverCollected)
	assert.Equal(t, models.PaymentSummaryPaid, summary.Status)
}

func TestRecordTransaction_Validation(t *testing.T) {
	db := newTestDB(t)
	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	var valErr *services.ValidationError

	// Both refs set
	_, _, err = services.RecordTransaction(db, &services.RecordTransactionInput{
		JoiningID:   &joining.ID,
		AdmissionID: uintPtr(1),
		Amount:      100,
		Mode:        models.PaymentModeCash,
		Succeeded:   true,
	})
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields, "reference")

	// Zero amount
	_, _, err = services.RecordTransaction(db, &services.RecordTransactionInput{
		JoiningID: &joining.ID,
		Mode:      models.PaymentModeCash,
		Succeeded: true,
	})
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields, "amount")

	// Online without a gateway order
	_, _, err = services.RecordTransaction(db, &services.RecordTransactionInput{
		JoiningID: &joining.ID,
		Amount:    100,
		Mode:      models.PaymentModeOnline,
	})
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields, "gatewayOrderId")
}

func TestRecordTransaction_UnknownEntity(t *testing.T) {
	db := newTestDB(t)

	_, _, err := services.RecordTransaction(db, cashPayment(uintPtr(404), nil, 100))
	var notFound *services.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "joining", notFound.Entity)
}

func TestRecordTransaction_SummaryMatchesLedger(t *testing.T) {
	db := newTestDB(t)
	seedFee(t, db, "B.Tech", "CSE", "MGMT", 50000)

	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	amounts := []float64{5000, 7500, 12500}
	var expected float64
	for _, amount := range amounts {
		_, summary, err := services.RecordTransaction(db, cashPayment(&joining.ID, nil, amount))
		require.NoError(t, err)
		expected += amount
		assert.Equal(t, expected, summary.TotalPaid)
		assert.Equal(t, 50000-expected, summary.Balance)
	}

	// A failed collection never counts
	_, summary, err := services.RecordTransaction(db, &services.RecordTransactionInput{
		JoiningID:     &joining.ID,
		Amount:        9999,
		Mode:          models.PaymentModeUpiQr,
		CollectedBy:   7,
		Succeeded:     false,
		FailureReason: "QR scan abandoned",
	})
	require.NoError(t, err)
	assert.Equal(t, expected, summary.TotalPaid)

	// Recomputed summary equals hand-computed sum
	fresh, err := services.Summarize(db, &joining.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, expected, fresh.TotalPaid)
	assert.Equal(t, models.PaymentSummaryPartial, fresh.Status)
}

func TestRecordTransaction_CachesSummaryOnEntity(t *testing.T) {
	db := newTestDB(t)
	seedFee(t, db, "B.Tech", "CSE", "MGMT", 50000)

	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	_, _, err = services.RecordTransaction(db, cashPayment(&joining.ID, nil, 20000))
	require.NoError(t, err)

	var raw models.Joining
	require.NoError(t, db.First(&raw, joining.ID).Error)
	assert.Equal(t, float64(20000), raw.TotalPaid)
	assert.Equal(t, models.PaymentSummaryPartial, raw.PaymentStatus)
}

// Full collection scenario: partial payment before approval, admission keeps
// the joining's ledger, balance clears against the admission.
func TestPaymentScenario_JoiningToAdmission(t *testing.T) {
	db := newTestDB(t)
	seedFee(t, db, "B.Tech", "CSE", "MGMT", 50000)

	joining := newPendingJoining(t, db, "Asha")

	_, summary, err := services.RecordTransaction(db, cashPayment(&joining.ID, nil, 20000))
	require.NoError(t, err)
	assert.Equal(t, float64(20000), summary.TotalPaid)
	assert.Equal(t, float64(30000), summary.Balance)
	assert.Equal(t, models.PaymentSummaryPartial, summary.Status)

	_, admission, _, err := services.Approve(db, joining.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, uint(1), admission.AdmissionNumber)

	// Admission inherits the joining's payments
	assert.Equal(t, float64(20000), admission.TotalPaid)
	assert.Equal(t, float64(30000), admission.Balance)
	assert.Equal(t, models.PaymentSummaryPartial, admission.PaymentStatus)

	// Clearing the balance against the admission
	_, summary, err = services.RecordTransaction(db, cashPayment(nil, &admission.ID, 30000))
	require.NoError(t, err)
	assert.Equal(t, float64(50000), summary.TotalPaid)
	assert.Equal(t, float64(0), summary.Balance)
	assert.Equal(t, models.PaymentSummaryPaid, summary.Status)

	// The old joining-referenced rows still count for the admission
	fresh, err := services.GetAdmission(db, admission.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentSummaryPaid, fresh.PaymentStatus)
}

func TestFeeLookup_QuotaFallback(t *testing.T) {
	db := newTestDB(t)
	seedFee(t, db, "B.Tech", "CSE", "", 60000)

	// No MGMT-specific fee configured; the branch default applies
	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	summary, err := services.Summarize(db, &joining.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(60000), summary.TotalFee)
}

func TestListTransactions(t *testing.T) {
	db := newTestDB(t)

	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	for _, amount := range []float64{100, 200, 300} {
		_, _, err := services.RecordTransaction(db, cashPayment(&joining.ID, nil, amount))
		require.NoError(t, err)
	}

	txns, total, err := services.ListTransactions(db, &joining.ID, nil, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, txns, 2)
}
