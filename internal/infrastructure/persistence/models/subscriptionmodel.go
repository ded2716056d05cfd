package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubscriptionModel represents the database persistence model for account
// subscriptions. One row per account; the account_id unique index enforces it.
type SubscriptionModel struct {
	ID            uint      `gorm:"primarykey"`
	AccountID     uint      `gorm:"uniqueIndex;not null"`
	PlanID        uint      `gorm:"index;not null"`
	Status        string    `gorm:"not null;size:20;index;default:active"`
	PeriodStart   time.Time `gorm:"not null"`
	PeriodEnd     time.Time `gorm:"not null;index"`
	MessagesLimit int       `gorm:"not null"`
	MessagesUsed  int       `gorm:"not null;default:0"`
	LastResetAt   time.Time `gorm:"not null"`
	Metadata      datatypes.JSON
	Version       int `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return "account_subscriptions"
}
