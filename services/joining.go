package services

import (
	"aims/models"
	"errors"
	"time"

	"gorm.io/gorm"
)

// JoiningInput carries the form sections for create/update. Nil sections are
// left untouched on update, so operators can save one tab at a time.
type JoiningInput struct {
	LeadID           *uint
	Student          *models.StudentInfo
	Course           *models.CourseInfo
	Parents          *models.ParentInfo
	Address          *models.AddressInfo
	Reservation      *models.ReservationInfo
	Qualifications   *[]models.QualificationInfo
	EducationHistory *[]models.EducationRecord
	Siblings         *[]models.SiblingInfo
	Documents        *map[string]models.DocumentState
}

func applyJoiningInput(j *models.Joining, in *JoiningInput) {
	if in.Student != nil {
		j.Student = *in.Student
	}
	if in.Course != nil {
		j.Course = *in.Course
	}
	if in.Parents != nil {
		j.Parents = newJSON(*in.Parents)
	}
	if in.Address != nil {
		j.Address = newJSON(*in.Address)
	}
	if in.Reservation != nil {
		j.Reservation = newJSON(*in.Reservation)
	}
	if in.Qualifications != nil {
		j.Qualifications = newJSON(*in.Qualifications)
	}
	if in.EducationHistory != nil {
		j.EducationHistory = newJSON(*in.EducationHistory)
	}
	if in.Siblings != nil {
		j.Siblings = newJSON(*in.Siblings)
	}
	if in.Documents != nil {
		j.Documents = newJSON(*in.Documents)
	}
}

// CreateDraft opens a new joining form in DRAFT. When a lead is referenced it
// must already be CONFIRMED by the lead service; leads themselves are never
// mutated here.
func CreateDraft(db *gorm.DB, in *JoiningInput) (*models.Joining, error) {
	if in.LeadID != nil {
		var lead models.Lead
		if err := db.Where("id = ? AND is_deleted = false", *in.LeadID).First(&lead).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "lead", ID: *in.LeadID}
			}
			return nil, &PersistenceError{Op: "load lead", Err: err}
		}
		if lead.LeadStatus != models.LeadStatusConfirmed {
			return nil, &InvalidStateError{
				Entity:  "lead",
				ID:      lead.ID,
				Current: string(lead.LeadStatus),
				Action:  "open joining for",
			}
		}
	}

	joining := models.Joining{
		LeadID: in.LeadID,
		Status: models.JoiningStatusDraft,
	}
	applyJoiningInput(&joining, in)

	if err := db.Create(&joining).Error; err != nil {
		return nil, &PersistenceError{Op: "create joining", Err: err}
	}
	return &joining, nil
}

// UpdateDraft patches form sections. Content edits are only legal while the
// joining is still DRAFT.
func UpdateDraft(db *gorm.DB, id uint, in *JoiningInput) (*models.Joining, error) {
	joining, err := GetJoining(db, id)
	if err != nil {
		return nil, err
	}
	if joining.Status != models.JoiningStatusDraft {
		return nil, &InvalidStateError{
			Entity:  "joining",
			ID:      id,
			Current: string(joining.Status),
			Action:  "update",
		}
	}

	applyJoiningInput(joining, in)
	if err := db.Save(joining).Error; err != nil {
		return nil, &PersistenceError{Op: "update joining", Err: err}
	}
	return joining, nil
}

// SubmitForApproval moves DRAFT to PENDING_APPROVAL after checking the
// mandatory fields a reviewer needs: the student's name and a course
// selection. On validation failure the joining stays DRAFT.
func SubmitForApproval(db *gorm.DB, id uint, submittedBy uint) (*models.Joining, error) {
	joining, err := GetJoining(db, id)
	if err != nil {
		return nil, err
	}
	if joining.Status != models.JoiningStatusDraft {
		return nil, &InvalidStateError{
			Entity:  "joining",
			ID:      id,
			Current: string(joining.Status),
			Action:  "submit",
		}
	}

	fields := make(map[string]string)
	if joining.Student.Name == "" {
		fields["studentInfo.name"] = "Student name is required!"
	}
	if joining.Course.Course == "" {
		fields["courseInfo.course"] = "Course selection is required!"
	}
	if joining.Course.Branch == "" {
		fields["courseInfo.branch"] = "Branch selection is required!"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	submittedAt := time.Now()
	res := db.Model(&models.Joining{}).
		Where("id = ? AND status = ?", id, models.JoiningStatusDraft).
		Updates(map[string]interface{}{
			"status":       models.JoiningStatusPendingApproval,
			"submitted_at": submittedAt,
			"submitted_by": submittedBy,
		})
	if res.Error != nil {
		return nil, &PersistenceError{Op: "submit joining", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		// Lost a race with another transition; report the state we find now.
		return nil, staleStateError(db, id, "submit")
	}

	return GetJoining(db, id)
}

// Reject sends a PENDING_APPROVAL joining back to DRAFT for correction.
// This is the only backward edge in the lifecycle. The submission stamps are
// kept for audit; a resubmit overwrites them.
func Reject(db *gorm.DB, id uint, reason string) (*models.Joining, error) {
	joining, err := GetJoining(db, id)
	if err != nil {
		return nil, err
	}
	if joining.Status != models.JoiningStatusPendingApproval {
		return nil, &InvalidStateError{
			Entity:  "joining",
			ID:      id,
			Current: string(joining.Status),
			Action:  "reject",
		}
	}

	res := db.Model(&models.Joining{}).
		Where("id = ? AND status = ?", id, models.JoiningStatusPendingApproval).
		Updates(map[string]interface{}{
			"status":        models.JoiningStatusDraft,
			"reject_reason": reason,
		})
	if res.Error != nil {
		return nil, &PersistenceError{Op: "reject joining", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return nil, staleStateError(db, id, "reject")
	}

	return GetJoining(db, id)
}

// GetJoining loads a joining and refreshes its cached payment summary from
// the ledger, so reads never serve a stale aggregate.
func GetJoining(db *gorm.DB, id uint) (*models.Joining, error) {
	var joining models.Joining
	if err := db.First(&joining, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "joining", ID: id}
		}
		return nil, &PersistenceError{Op: "load joining", Err: err}
	}

	summary, err := summarizeJoining(db, &joining)
	if err != nil {
		return nil, err
	}
	joining.TotalFee = summary.TotalFee
	joining.TotalPaid = summary.TotalPaid
	joining.Balance = summary.Balance
	joining.PaymentStatus = summary.Status
	return &joining, nil
}

// staleStateError re-reads a joining after a guarded update matched no rows
// and reports the status that beat us to it.
func staleStateError(db *gorm.DB, id uint, action string) error {
	var joining models.Joining
	if err := db.First(&joining, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "joining", ID: id}
		}
		return &PersistenceError{Op: action + " joining", Err: err}
	}
	return &InvalidStateError{
		Entity:  "joining",
		ID:      id,
		Current: string(joining.Status),
		Action:  action,
	}
}
