package services

import (
	"aims/models"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Approve runs the exactly-once conversion of a PENDING_APPROVAL joining into
// a numbered Admission. The whole thing is one transaction: claim the joining
// row, allocate the next admission number under a row lock, snapshot the form.
// If any step fails the transaction rolls back and the joining stays
// PENDING_APPROVAL. A concurrent caller that loses the claim gets the
// admission the winner created, with the same number, instead of an error.
// The bool reports whether this call did the conversion, so callers only
// notify the student once.
func Approve(db *gorm.DB, id uint, approvedBy uint) (*models.Joining, *models.Admission, bool, error) {
	approvedAt := time.Now()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, nil, false, &PersistenceError{Op: "begin approval", Err: tx.Error}
	}

	// Atomic claim: first writer wins, everyone else matches zero rows.
	res := tx.Model(&models.Joining{}).
		Where("id = ? AND status = ?", id, models.JoiningStatusPendingApproval).
		Updates(map[string]interface{}{
			"status":      models.JoiningStatusApproved,
			"approved_at": approvedAt,
			"approved_by": approvedBy,
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, nil, false, &PersistenceError{Op: "claim joining", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		joining, admission, err := approvalAlreadySettled(db, id)
		return joining, admission, false, err
	}

	var joining models.Joining
	if err := tx.First(&joining, id).Error; err != nil {
		tx.Rollback()
		return nil, nil, false, &PersistenceError{Op: "load claimed joining", Err: err}
	}

	// 1:1 guard. The claim makes a duplicate impossible in normal flow, but a
	// stray admission row must still abort rather than double-convert.
	var existing models.Admission
	if err := tx.Where("joining_id = ?", id).First(&existing).Error; err == nil {
		tx.Rollback()
		return nil, nil, false, &ConflictError{Reason: "admission already exists for this joining"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return nil, nil, false, &PersistenceError{Op: "check existing admission", Err: err}
	}

	number, err := nextAdmissionNumber(tx)
	if err != nil {
		tx.Rollback()
		return nil, nil, false, err
	}

	summary, err := summarizeJoining(tx, &joining)
	if err != nil {
		tx.Rollback()
		return nil, nil, false, err
	}

	admission := snapshotAdmission(&joining, number, summary)
	if err := tx.Create(admission).Error; err != nil {
		tx.Rollback()
		return nil, nil, false, &PersistenceError{Op: "create admission", Err: err}
	}

	joining.TotalFee = summary.TotalFee
	joining.TotalPaid = summary.TotalPaid
	joining.Balance = summary.Balance
	joining.PaymentStatus = summary.Status
	joining.Status = models.JoiningStatusApproved
	joining.ApprovedAt = &approvedAt
	joining.ApprovedBy = approvedBy
	if err := tx.Save(&joining).Error; err != nil {
		tx.Rollback()
		return nil, nil, false, &PersistenceError{Op: "save joining summary", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, nil, false, &PersistenceError{Op: "commit approval", Err: err}
	}
	return &joining, admission, true, nil
}

// approvalAlreadySettled handles the loser of a concurrent approve: if the
// joining ended up APPROVED, return the existing admission as if this caller
// had won; any other status is a plain invalid transition.
func approvalAlreadySettled(db *gorm.DB, id uint) (*models.Joining, *models.Admission, error) {
	var joining models.Joining
	if err := db.First(&joining, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Entity: "joining", ID: id}
		}
		return nil, nil, &PersistenceError{Op: "load joining", Err: err}
	}

	if joining.Status == models.JoiningStatusApproved {
		var admission models.Admission
		if err := db.Where("joining_id = ?", id).First(&admission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, &ConflictError{Reason: "joining approved but admission record is missing"}
			}
			return nil, nil, &PersistenceError{Op: "load admission", Err: err}
		}
		return &joining, &admission, nil
	}

	return nil, nil, &InvalidStateError{
		Entity:  "joining",
		ID:      id,
		Current: string(joining.Status),
		Action:  "approve",
	}
}

// nextAdmissionNumber increments the shared counter row under FOR UPDATE.
// Aborted transactions may leave gaps; duplicates cannot happen.
func nextAdmissionNumber(tx *gorm.DB) (uint, error) {
	var seq models.NumberSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", models.SequenceAdmissionNumber).
		First(&seq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Normally seeded at migration time.
			seq = models.NumberSequence{Name: models.SequenceAdmissionNumber}
			if err := tx.Create(&seq).Error; err != nil {
				return 0, &PersistenceError{Op: "seed number sequence", Err: err}
			}
		} else {
			return 0, &PersistenceError{Op: "lock number sequence", Err: err}
		}
	}

	seq.Value++
	if err := tx.Model(&models.NumberSequence{}).
		Where("id = ?", seq.ID).
		Update("value", seq.Value).Error; err != nil {
		return 0, &PersistenceError{Op: "advance number sequence", Err: err}
	}
	return seq.Value, nil
}

// snapshotAdmission deep-copies the joining's form sections into a fresh
// admission. JSON sections are value types, so assignment is a real copy.
func snapshotAdmission(j *models.Joining, number uint, summary *models.PaymentSummary) *models.Admission {
	return &models.Admission{
		JoiningID:        j.ID,
		LeadID:           j.LeadID,
		AdmissionNumber:  number,
		Status:           models.AdmissionStatusActive,
		Student:          j.Student,
		Course:           j.Course,
		Parents:          j.Parents,
		Address:          j.Address,
		Reservation:      j.Reservation,
		Qualifications:   j.Qualifications,
		EducationHistory: j.EducationHistory,
		Siblings:         j.Siblings,
		Documents:        j.Documents,
		TotalFee:         summary.TotalFee,
		TotalPaid:        summary.TotalPaid,
		Balance:          summary.Balance,
		PaymentStatus:    summary.Status,
	}
}

// GetAdmission loads an admission with its summary recomputed from the ledger.
func GetAdmission(db *gorm.DB, id uint) (*models.Admission, error) {
	var admission models.Admission
	if err := db.First(&admission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "admission", ID: id}
		}
		return nil, &PersistenceError{Op: "load admission", Err: err}
	}

	summary, err := summarizeAdmission(db, &admission)
	if err != nil {
		return nil, err
	}
	admission.TotalFee = summary.TotalFee
	admission.TotalPaid = summary.TotalPaid
	admission.Balance = summary.Balance
	admission.PaymentStatus = summary.Status
	return &admission, nil
}

// ListAdmissions returns a page of admissions, newest number first.
func ListAdmissions(db *gorm.DB, page, limit int) ([]models.Admission, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int64
	if err := db.Model(&models.Admission{}).Count(&total).Error; err != nil {
		return nil, 0, &PersistenceError{Op: "count admissions", Err: err}
	}

	var admissions []models.Admission
	if err := db.Order("admission_number DESC").
		Offset(offset).
		Limit(limit).
		Find(&admissions).Error; err != nil {
		return nil, 0, &PersistenceError{Op: "list admissions", Err: err}
	}
	return admissions, total, nil
}

// Withdraw flags an ACTIVE admission WITHDRAWN. Terminal and administrative:
// the record and its ledger stay readable, no further payments are accepted.
func Withdraw(db *gorm.DB, id uint, reason string) (*models.Admission, error) {
	withdrawnAt := time.Now()
	res := db.Model(&models.Admission{}).
		Where("id = ? AND status = ?", id, models.AdmissionStatusActive).
		Updates(map[string]interface{}{
			"status":          models.AdmissionStatusWithdrawn,
			"withdrawn_at":    withdrawnAt,
			"withdraw_reason": reason,
		})
	if res.Error != nil {
		return nil, &PersistenceError{Op: "withdraw admission", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		var admission models.Admission
		if err := db.First(&admission, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "admission", ID: id}
			}
			return nil, &PersistenceError{Op: "load admission", Err: err}
		}
		return nil, &InvalidStateError{
			Entity:  "admission",
			ID:      id,
			Current: string(admission.Status),
			Action:  "withdraw",
		}
	}
	return GetAdmission(db, id)
}
