package models

import (
	"time"

	"gorm.io/datatypes"
)

// ConsumptionLogModel represents the append-only message consumption ledger.
// The message_id unique index makes per-message consumption idempotent.
type ConsumptionLogModel struct {
	ID              uint      `gorm:"primarykey"`
	AccountID       uint      `gorm:"index:idx_consumption_account_date;not null"`
	MessageID       uint      `gorm:"uniqueIndex;not null"`
	ConversationID  uint      `gorm:"index"`
	MessageKind     string    `gorm:"not null;size:20"`
	Source          string    `gorm:"not null;size:20;index"`
	ConsumptionDate time.Time `gorm:"index:idx_consumption_account_date;not null"`
	RemainingAfter  int       `gorm:"not null"`
	Metadata        datatypes.JSON
	CreatedAt       time.Time
}

// TableName specifies the table name for GORM
func (ConsumptionLogModel) TableName() string {
	return "message_consumption_logs"
}
