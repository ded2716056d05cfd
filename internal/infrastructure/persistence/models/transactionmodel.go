package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TransactionModel represents the database persistence model for billing
// transactions. TransactionID is the gateway-facing identifier and carries a
// unique index so settlement lookups are exact.
type TransactionModel struct {
	ID              uint   `gorm:"primarykey"`
	TransactionID   string `gorm:"uniqueIndex;not null;size:64"`
	AccountID       uint   `gorm:"index;not null"`
	PlanID          uint   `gorm:"index;not null"`
	TransactionType string `gorm:"not null;size:20"`
	Status          string `gorm:"not null;size:20;index;default:pending"`
	AmountCents     int64  `gorm:"not null"`
	Currency        string `gorm:"not null;size:3;default:USD"`
	Gateway         string `gorm:"not null;size:30"`
	GatewayResponse datatypes.JSON
	ProcessedAt     *time.Time
	Metadata        datatypes.JSON
	Version         int       `gorm:"not null;default:1"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (TransactionModel) TableName() string {
	return "billing_transactions"
}

// BeforeCreate hook for GORM
func (t *TransactionModel) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = "pending"
	}
	return nil
}
