package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanModel represents the database persistence model for billing plans.
// This is the anti-corruption layer between domain and database.
type PlanModel struct {
	ID             uint   `gorm:"primarykey"`
	Name           string `gorm:"uniqueIndex;not null;size:100"`
	Description    string `gorm:"size:500"`
	MessageLimit   int    `gorm:"not null"`
	PriceCents     int64  `gorm:"not null;default:0"`
	Currency       string `gorm:"not null;size:3;default:USD"`
	Active         bool   `gorm:"not null;default:true;index"`
	Features       datatypes.JSON
	PaymentLinkURL string `gorm:"size:500"`
	SortOrder      int    `gorm:"default:0"`
	Version        int    `gorm:"not null;default:1"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (PlanModel) TableName() string {
	return "billing_plans"
}
