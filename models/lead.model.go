package models

import (
	"gorm.io/gorm"
)

// LeadStatus values mirror the lead service. Only CONFIRMED matters here:
// it gates joining creation. This core never writes to leads.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusFollowUp  LeadStatus = "FOLLOW_UP"
	LeadStatusConfirmed LeadStatus = "CONFIRMED"
	LeadStatusClosed    LeadStatus = "CLOSED"
)

type Lead struct {
	gorm.Model
	Name       string     `json:"name"`
	Mobile     string     `json:"mobile"`
	Email      string     `json:"email"`
	Course     string     `json:"course"`
	LeadStatus LeadStatus `gorm:"type:varchar(30);not null;default:'NEW';index" json:"leadStatus"`
	IsDeleted  bool       `gorm:"default:false"`
}

func (Lead) TableName() string {
	return "leads"
}
