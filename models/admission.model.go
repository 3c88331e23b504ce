package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdmissionStatus defines the state of an admission record
type AdmissionStatus string

const (
	AdmissionStatusActive    AdmissionStatus = "ACTIVE"
	AdmissionStatusWithdrawn AdmissionStatus = "WITHDRAWN"
)

// SequenceAdmissionNumber is the counter that hands out admission numbers.
const SequenceAdmissionNumber = "admission_number"

// Admission is the immutable, numbered record created exactly once per
// approved joining. The unique index on JoiningID enforces the 1:1; the
// unique index on AdmissionNumber makes duplicate allocation impossible.
// The payload columns are a snapshot of the joining at approval time and
// are never edited afterwards.
type Admission struct {
	gorm.Model
	JoiningID       uint            `gorm:"uniqueIndex;not null" json:"joiningId"`
	LeadID          *uint           `gorm:"index" json:"leadId"`
	AdmissionNumber uint            `gorm:"uniqueIndex;not null" json:"admissionNumber"`
	Status          AdmissionStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`

	Student StudentInfo `gorm:"embedded;embeddedPrefix:student_" json:"studentInfo"`
	Course  CourseInfo  `gorm:"embedded;embeddedPrefix:course_" json:"courseInfo"`

	Parents          datatypes.JSONType[ParentInfo]              `json:"parents"`
	Address          datatypes.JSONType[AddressInfo]             `json:"address"`
	Reservation      datatypes.JSONType[ReservationInfo]         `json:"reservation"`
	Qualifications   datatypes.JSONType[[]QualificationInfo]     `json:"qualifications"`
	EducationHistory datatypes.JSONType[[]EducationRecord]       `json:"educationHistory"`
	Siblings         datatypes.JSONType[[]SiblingInfo]           `json:"siblings"`
	Documents        datatypes.JSONType[map[string]DocumentState] `json:"documents"`

	// Cached payment summary, recomputed from the ledger on every write
	TotalFee      float64              `gorm:"default:0" json:"totalFee"`
	TotalPaid     float64              `gorm:"default:0" json:"totalPaid"`
	Balance       float64              `gorm:"default:0" json:"balance"`
	PaymentStatus PaymentSummaryStatus `gorm:"type:varchar(20);default:'NOT_STARTED'" json:"paymentStatus"`

	WithdrawnAt    *time.Time `json:"withdrawnAt"`
	WithdrawReason string     `gorm:"type:text" json:"withdrawReason"`
}

func (Admission) TableName() string {
	return "admissions"
}

// NumberSequence is a named, DB-backed counter. Incremented under a row lock
// so concurrent approvals across processes never see the same value.
type NumberSequence struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"uniqueIndex;not null"`
	Value uint   `gorm:"not null;default:0"`
}

func (NumberSequence) TableName() string {
	return "number_sequences"
}
