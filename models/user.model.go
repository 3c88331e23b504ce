package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name      string    `gorm:"default:''"`
	Email     string    `gorm:"unique;not null"`
	Mobile    string    `gorm:"default:''"`
	Role      string    `gorm:"default:'OPERATOR'"` // OPERATOR, REVIEWER, ADMIN
	Branch    string    `gorm:"default:''"`
	LastLogin time.Time `gorm:"default:NULL"`
	IsDeleted bool      `gorm:"default:false"`
}
