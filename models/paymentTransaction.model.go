package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentMode defines how a payment was collected
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "CASH"
	PaymentModeOnline PaymentMode = "ONLINE"
	PaymentModeUpiQr  PaymentMode = "UPI_QR"
)

// PaymentStatus defines the status of a payment transaction
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// PaymentSummaryStatus is the derived collection state for one entity
type PaymentSummaryStatus string

const (
	PaymentSummaryNotStarted PaymentSummaryStatus = "NOT_STARTED"
	PaymentSummaryPartial    PaymentSummaryStatus = "PARTIAL"
	PaymentSummaryPaid       PaymentSummaryStatus = "PAID"
)

// PaymentTransaction is one row per payment attempt, referencing exactly one
// of joining/admission. Rows are append-only: once status leaves PENDING it
// never changes again. CASH and UPI_QR rows are written already resolved;
// only ONLINE rows may sit PENDING awaiting gateway reconciliation.
type PaymentTransaction struct {
	gorm.Model
	JoiningID   *uint `gorm:"index" json:"joiningId"`
	AdmissionID *uint `gorm:"index" json:"admissionId"`
	LeadID      *uint `gorm:"index" json:"leadId"` // denormalized for search

	Amount      float64       `gorm:"not null" json:"amount"`
	Currency    string        `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`
	Mode        PaymentMode   `gorm:"type:varchar(20);not null" json:"mode"`
	Status      PaymentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CollectedBy uint          `gorm:"default:0" json:"collectedBy"`
	ReceiptNo   string        `gorm:"type:varchar(64);uniqueIndex" json:"receiptNo"`

	// Gateway correlation (ONLINE mode only)
	GatewayOrderID string `gorm:"type:varchar(100);index" json:"gatewayOrderId"`
	ReferenceID    string `gorm:"type:varchar(100)" json:"referenceId"`
	FailureReason  string `gorm:"type:text" json:"failureReason"`

	ProcessedAt time.Time  `gorm:"not null" json:"processedAt"`
	VerifiedAt  *time.Time `json:"verifiedAt"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

// PaymentSummary is the derived aggregate over one entity's ledger. It is
// recomputed from transactions on every write and read, never stored as
// ground truth. PendingCount surfaces "reconciliation in progress" instead
// of silently showing stale totals.
type PaymentSummary struct {
	TotalFee      float64              `json:"totalFee"`
	TotalPaid     float64              `json:"totalPaid"`
	Balance       float64              `json:"balance"`
	Status        PaymentSummaryStatus `json:"status"`
	PendingCount  int64                `json:"pendingCount"`
	OverCollected bool                 `json:"overCollected"` // balance went negative, e.g. fee config changed after payment
}
