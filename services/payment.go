package services

import (
	"aims/models"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordTransactionInput describes one payment attempt against exactly one
// of joining/admission. CASH and UPI_QR arrive already resolved: the caller
// says whether collection succeeded. ONLINE arrives with the gateway order
// correlation and is written PENDING for the reconciler to settle.
type RecordTransactionInput struct {
	JoiningID   *uint
	AdmissionID *uint
	Amount      float64
	Mode        models.PaymentMode
	CollectedBy uint

	// CASH / UPI_QR
	Succeeded     bool
	FailureReason string

	// ONLINE
	GatewayOrderID string
	ReferenceID    string
}

// RecordTransaction appends one row to the payment ledger and recomputes the
// entity's cached summary in the same transaction, so a read right after the
// write already sees the new totals.
func RecordTransaction(db *gorm.DB, in *RecordTransactionInput) (*models.PaymentTransaction, *models.PaymentSummary, error) {
	fields := make(map[string]string)
	if (in.JoiningID == nil) == (in.AdmissionID == nil) {
		fields["reference"] = "Exactly one of joiningId or admissionId is required!"
	}
	if in.Amount <= 0 {
		fields["amount"] = "Amount must be greater than 0!"
	}
	switch in.Mode {
	case models.PaymentModeCash, models.PaymentModeUpiQr:
	case models.PaymentModeOnline:
		if in.GatewayOrderID == "" {
			fields["gatewayOrderId"] = "Gateway order ID is required for online payments!"
		}
	default:
		fields["mode"] = "Mode must be CASH, ONLINE or UPI_QR!"
	}
	if len(fields) > 0 {
		return nil, nil, &ValidationError{Fields: fields}
	}

	txn := models.PaymentTransaction{
		JoiningID:      in.JoiningID,
		AdmissionID:    in.AdmissionID,
		Amount:         in.Amount,
		Currency:       "INR",
		Mode:           in.Mode,
		CollectedBy:    in.CollectedBy,
		ReceiptNo:      uuid.NewString(),
		GatewayOrderID: in.GatewayOrderID,
		ReferenceID:    in.ReferenceID,
		ProcessedAt:    time.Now(),
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, nil, &PersistenceError{Op: "begin payment", Err: tx.Error}
	}

	// Resolve the entity inside the transaction and denormalize the lead id.
	if in.JoiningID != nil {
		var joining models.Joining
		if err := tx.First(&joining, *in.JoiningID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, &NotFoundError{Entity: "joining", ID: *in.JoiningID}
			}
			return nil, nil, &PersistenceError{Op: "load joining", Err: err}
		}
		txn.LeadID = joining.LeadID
	} else {
		var admission models.Admission
		if err := tx.First(&admission, *in.AdmissionID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, &NotFoundError{Entity: "admission", ID: *in.AdmissionID}
			}
			return nil, nil, &PersistenceError{Op: "load admission", Err: err}
		}
		if admission.Status == models.AdmissionStatusWithdrawn {
			tx.Rollback()
			return nil, nil, &InvalidStateError{
				Entity:  "admission",
				ID:      admission.ID,
				Current: string(admission.Status),
				Action:  "record payment against",
			}
		}
		txn.LeadID = admission.LeadID
	}

	switch in.Mode {
	case models.PaymentModeOnline:
		txn.Status = models.PaymentStatusPending
	default:
		if in.Succeeded {
			now := time.Now()
			txn.Status = models.PaymentStatusSuccess
			txn.VerifiedAt = &now
		} else {
			txn.Status = models.PaymentStatusFailed
			txn.FailureReason = in.FailureReason
		}
	}

	if err := tx.Create(&txn).Error; err != nil {
		tx.Rollback()
		return nil, nil, &PersistenceError{Op: "create payment transaction", Err: err}
	}

	summary, err := refreshEntitySummary(tx, &txn)
	if err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, nil, &PersistenceError{Op: "commit payment", Err: err}
	}
	return &txn, summary, nil
}

// Summarize recomputes the payment summary for a joining or an admission
// straight from the ledger.
func Summarize(db *gorm.DB, joiningID, admissionID *uint) (*models.PaymentSummary, error) {
	if (joiningID == nil) == (admissionID == nil) {
		return nil, &ValidationError{Fields: map[string]string{
			"reference": "Exactly one of joiningId or admissionId is required!",
		}}
	}
	if joiningID != nil {
		var joining models.Joining
		if err := db.First(&joining, *joiningID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "joining", ID: *joiningID}
			}
			return nil, &PersistenceError{Op: "load joining", Err: err}
		}
		return summarizeJoining(db, &joining)
	}

	var admission models.Admission
	if err := db.First(&admission, *admissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "admission", ID: *admissionID}
		}
		return nil, &PersistenceError{Op: "load admission", Err: err}
	}
	return summarizeAdmission(db, &admission)
}

// ComputeSummary is the pure aggregation: only SUCCESS rows count toward
// totalPaid, PENDING rows are surfaced as a count, and a negative balance is
// flagged rather than clamped.
func ComputeSummary(totalFee float64, txns []models.PaymentTransaction) models.PaymentSummary {
	summary := models.PaymentSummary{
		TotalFee: totalFee,
		Status:   models.PaymentSummaryNotStarted,
	}
	for _, t := range txns {
		switch t.Status {
		case models.PaymentStatusSuccess:
			summary.TotalPaid += t.Amount
		case models.PaymentStatusPending:
			summary.PendingCount++
		}
	}
	summary.Balance = summary.TotalFee - summary.TotalPaid
	if summary.Balance < 0 {
		summary.OverCollected = true
	}
	switch {
	case summary.TotalPaid > 0 && summary.Balance <= 0:
		summary.Status = models.PaymentSummaryPaid
	case summary.TotalPaid > 0:
		summary.Status = models.PaymentSummaryPartial
	}
	return summary
}

func summarizeJoining(db *gorm.DB, j *models.Joining) (*models.PaymentSummary, error) {
	var txns []models.PaymentTransaction
	if err := db.Where("joining_id = ?", j.ID).Find(&txns).Error; err != nil {
		return nil, &PersistenceError{Op: "load joining transactions", Err: err}
	}
	fee, err := feeFor(db, &j.Course)
	if err != nil {
		return nil, err
	}
	summary := ComputeSummary(fee, txns)
	return &summary, nil
}

// summarizeAdmission counts the admission's own rows plus the rows collected
// against the originating joining, which keep their joining reference for
// audit but belong to the same student.
func summarizeAdmission(db *gorm.DB, a *models.Admission) (*models.PaymentSummary, error) {
	var txns []models.PaymentTransaction
	if err := db.Where("admission_id = ? OR joining_id = ?", a.ID, a.JoiningID).
		Find(&txns).Error; err != nil {
		return nil, &PersistenceError{Op: "load admission transactions", Err: err}
	}
	fee, err := feeFor(db, &a.Course)
	if err != nil {
		return nil, err
	}
	summary := ComputeSummary(fee, txns)
	return &summary, nil
}

// feeFor resolves the configured total fee for a course selection. An exact
// quota match wins over the branch default (empty quota). No configuration
// means fee 0, which summary math treats as nothing owed.
func feeFor(db *gorm.DB, course *models.CourseInfo) (float64, error) {
	if course.Course == "" || course.Branch == "" {
		return 0, nil
	}

	var fee models.FeeStructure
	err := db.Where("course = ? AND branch = ? AND quota = ? AND is_deleted = false",
		course.Course, course.Branch, course.Quota).First(&fee).Error
	if err == nil {
		return fee.TotalFee, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, &PersistenceError{Op: "load fee structure", Err: err}
	}

	err = db.Where("course = ? AND branch = ? AND quota = '' AND is_deleted = false",
		course.Course, course.Branch).First(&fee).Error
	if err == nil {
		return fee.TotalFee, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, &PersistenceError{Op: "load fee structure", Err: err}
	}
	return 0, nil
}

// refreshEntitySummary recomputes and writes back the cached summary columns
// for the entity a transaction belongs to.
func refreshEntitySummary(db *gorm.DB, txn *models.PaymentTransaction) (*models.PaymentSummary, error) {
	if txn.AdmissionID != nil {
		var admission models.Admission
		if err := db.First(&admission, *txn.AdmissionID).Error; err != nil {
			return nil, &PersistenceError{Op: "load admission", Err: err}
		}
		summary, err := summarizeAdmission(db, &admission)
		if err != nil {
			return nil, err
		}
		if err := db.Model(&models.Admission{}).Where("id = ?", admission.ID).
			Updates(map[string]interface{}{
				"total_fee":      summary.TotalFee,
				"total_paid":     summary.TotalPaid,
				"balance":        summary.Balance,
				"payment_status": summary.Status,
			}).Error; err != nil {
			return nil, &PersistenceError{Op: "cache admission summary", Err: err}
		}
		return summary, nil
	}

	var joining models.Joining
	if err := db.First(&joining, *txn.JoiningID).Error; err != nil {
		return nil, &PersistenceError{Op: "load joining", Err: err}
	}
	summary, err := summarizeJoining(db, &joining)
	if err != nil {
		return nil, err
	}
	if err := db.Model(&models.Joining{}).Where("id = ?", joining.ID).
		Updates(map[string]interface{}{
			"total_fee":      summary.TotalFee,
			"total_paid":     summary.TotalPaid,
			"balance":        summary.Balance,
			"payment_status": summary.Status,
		}).Error; err != nil {
		return nil, &PersistenceError{Op: "cache joining summary", Err: err}
	}

	// An approved joining's ledger also feeds the admission's aggregate.
	var admission models.Admission
	if err := db.Where("joining_id = ?", joining.ID).First(&admission).Error; err == nil {
		admSummary, err := summarizeAdmission(db, &admission)
		if err != nil {
			return nil, err
		}
		if err := db.Model(&models.Admission{}).Where("id = ?", admission.ID).
			Updates(map[string]interface{}{
				"total_fee":      admSummary.TotalFee,
				"total_paid":     admSummary.TotalPaid,
				"balance":        admSummary.Balance,
				"payment_status": admSummary.Status,
			}).Error; err != nil {
			return nil, &PersistenceError{Op: "cache admission summary", Err: err}
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &PersistenceError{Op: "load admission", Err: err}
	}
	return summary, nil
}

// ListTransactions returns a page of ledger rows for one entity, newest first.
func ListTransactions(db *gorm.DB, joiningID, admissionID *uint, page, limit int) ([]models.PaymentTransaction, int64, error) {
	if (joiningID == nil) == (admissionID == nil) {
		return nil, 0, &ValidationError{Fields: map[string]string{
			"reference": "Exactly one of joiningId or admissionId is required!",
		}}
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := db.Model(&models.PaymentTransaction{})
	if joiningID != nil {
		query = query.Where("joining_id = ?", *joiningID)
	} else {
		query = query.Where("admission_id = ?", *admissionID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, &PersistenceError{Op: "count transactions", Err: err}
	}

	var txns []models.PaymentTransaction
	if err := query.Order("processed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, 0, &PersistenceError{Op: "list transactions", Err: err}
	}
	return txns, total, nil
}
