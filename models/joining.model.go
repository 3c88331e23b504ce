package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JoiningStatus defines the lifecycle state of a joining form
type JoiningStatus string

const (
	JoiningStatusDraft           JoiningStatus = "DRAFT"
	JoiningStatusPendingApproval JoiningStatus = "PENDING_APPROVAL"
	JoiningStatusApproved        JoiningStatus = "APPROVED"
)

// DocumentState tracks collection of a single document type
type DocumentState string

const (
	DocumentPending  DocumentState = "PENDING"
	DocumentReceived DocumentState = "RECEIVED"
)

// StudentInfo is the applicant's identity section. Name is the one field
// approval cannot proceed without.
type StudentInfo struct {
	Name          string `json:"name"`
	DateOfBirth   string `json:"dateOfBirth"`
	Gender        string `json:"gender"`
	Email         string `json:"email" validate:"omitempty,email"`
	Mobile        string `json:"mobile" validate:"omitempty,len=10,numeric"`
	AadhaarNumber string `json:"aadhaarNumber" validate:"omitempty,len=12,numeric"`
	BloodGroup    string `json:"bloodGroup"`
}

// CourseInfo is the course selection section; course+branch+quota resolve
// the fee structure.
type CourseInfo struct {
	Course       string `json:"course"`
	Branch       string `json:"branch"`
	Quota        string `json:"quota"`
	AcademicYear string `json:"academicYear"`
}

type ParentInfo struct {
	FatherName       string `json:"fatherName"`
	FatherMobile     string `json:"fatherMobile" validate:"omitempty,len=10,numeric"`
	FatherOccupation string `json:"fatherOccupation"`
	MotherName       string `json:"motherName"`
	MotherMobile     string `json:"motherMobile" validate:"omitempty,len=10,numeric"`
	MotherOccupation string `json:"motherOccupation"`
	GuardianName     string `json:"guardianName"`
	GuardianMobile   string `json:"guardianMobile" validate:"omitempty,len=10,numeric"`
	AnnualIncome     string `json:"annualIncome"`
}

type AddressInfo struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	City     string `json:"city"`
	District string `json:"district"`
	State    string `json:"state"`
	PinCode  string `json:"pinCode" validate:"omitempty,len=6,numeric"`
}

type ReservationInfo struct {
	Category    string `json:"category"`
	Caste       string `json:"caste"`
	Religion    string `json:"religion"`
	Nationality string `json:"nationality"`
}

type QualificationInfo struct {
	Exam          string  `json:"exam"`
	Board         string  `json:"board"`
	YearOfPassing int     `json:"yearOfPassing"`
	MarksPercent  float64 `json:"marksPercent"`
	HallTicketNo  string  `json:"hallTicketNo"`
}

type EducationRecord struct {
	Institution   string  `json:"institution"`
	Course        string  `json:"course"`
	Board         string  `json:"board"`
	YearOfPassing int     `json:"yearOfPassing"`
	Percentage    float64 `json:"percentage"`
}

type SiblingInfo struct {
	Name        string `json:"name"`
	Relation    string `json:"relation"`
	Age         int    `json:"age"`
	Institution string `json:"institution"`
}

// Joining is the multi-section application form. Content is editable only in
// DRAFT; PENDING_APPROVAL freezes it; APPROVED is terminal and hands ownership
// to the Admission snapshot. The summary columns are a cache derived from the
// payment ledger, never authoritative on their own.
type Joining struct {
	gorm.Model
	LeadID *uint         `gorm:"index" json:"leadId"`
	Status JoiningStatus `gorm:"type:varchar(30);not null;default:'DRAFT';index" json:"status"`

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

	SubmittedAt  *time.Time `json:"submittedAt"`
	SubmittedBy  uint       `gorm:"default:0" json:"submittedBy"`
	ApprovedAt   *time.Time `json:"approvedAt"`
	ApprovedBy   uint       `gorm:"default:0" json:"approvedBy"`
	RejectReason string     `gorm:"type:text" json:"rejectReason"`
}

func (Joining) TableName() string {
	return "joinings"
}
