package models

import (
	"gorm.io/gorm"
)

// FeeStructure maps course+branch+quota to the total fee. Maintained by the
// fee-configuration module outside this core; read-only input to the
// payment summary.
type FeeStructure struct {
	gorm.Model
	Course    string  `gorm:"not null;uniqueIndex:idx_fee_combo" json:"course"`
	Branch    string  `gorm:"not null;uniqueIndex:idx_fee_combo" json:"branch"`
	Quota     string  `gorm:"default:'';uniqueIndex:idx_fee_combo" json:"quota"`
	TotalFee  float64 `gorm:"not null" json:"totalFee"`
	IsDeleted bool    `gorm:"default:false"`
}

func (FeeStructure) TableName() string {
	return "fee_structures"
}
