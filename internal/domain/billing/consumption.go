package billing

import (
	"fmt"
	"time"

	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/shared/biztime"
)

// ConsumptionRecord is one quota-consuming message, keyed by the message
// identity to prevent double counting. Records are append-only: never mutated
// or deleted.
type ConsumptionRecord struct {
	id              uint
	accountID       uint
	messageID       uint
	conversationID  uint
	messageKind     vo.MessageKind
	source          vo.ConsumptionSource
	consumptionDate time.Time
	remainingAfter  int
	metadata        map[string]interface{}
	createdAt       time.Time
}

// NewConsumptionRecord records a consumed message. remainingAfter is the
// quota left on the subscription immediately after the atomic decrement.
func NewConsumptionRecord(
	accountID, messageID, conversationID uint,
	kind vo.MessageKind,
	source vo.ConsumptionSource,
	remainingAfter int,
	metadata map[string]interface{},
) (*ConsumptionRecord, error) {
	if accountID == 0 {
		return nil, fmt.Errorf("account ID is required")
	}
	if messageID == 0 {
		return nil, fmt.Errorf("message ID is required")
	}
	if conversationID == 0 {
		return nil, fmt.Errorf("conversation ID is required")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid message kind: %s", kind)
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("invalid consumption source: %s", source)
	}
	if remainingAfter < 0 {
		return nil, fmt.Errorf("remaining after cannot be negative")
	}
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	now := biztime.NowUTC()
	return &ConsumptionRecord{
		accountID:       accountID,
		messageID:       messageID,
		conversationID:  conversationID,
		messageKind:     kind,
		source:          source,
		consumptionDate: biztime.DateInBiz(now),
		remainingAfter:  remainingAfter,
		metadata:        metadata,
		createdAt:       now,
	}, nil
}

// ReconstructConsumptionRecord reconstructs a record from persistence.
func ReconstructConsumptionRecord(
	id, accountID, messageID, conversationID uint,
	kind vo.MessageKind,
	source vo.ConsumptionSource,
	consumptionDate time.Time,
	remainingAfter int,
	metadata map[string]interface{},
	createdAt time.Time,
) (*ConsumptionRecord, error) {
	if id == 0 {
		return nil, fmt.Errorf("consumption record ID cannot be zero")
	}
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &ConsumptionRecord{
		id:              id,
		accountID:       accountID,
		messageID:       messageID,
		conversationID:  conversationID,
		messageKind:     kind,
		source:          source,
		consumptionDate: consumptionDate,
		remainingAfter:  remainingAfter,
		metadata:        metadata,
		createdAt:       createdAt,
	}, nil
}

func (c *ConsumptionRecord) ID() uint {
	return c.id
}

func (c *ConsumptionRecord) AccountID() uint {
	return c.accountID
}

func (c *ConsumptionRecord) MessageID() uint {
	return c.messageID
}

func (c *ConsumptionRecord) ConversationID() uint {
	return c.conversationID
}

func (c *ConsumptionRecord) MessageKind() vo.MessageKind {
	return c.messageKind
}

func (c *ConsumptionRecord) Source() vo.ConsumptionSource {
	return c.source
}

func (c *ConsumptionRecord) ConsumptionDate() time.Time {
	return c.consumptionDate
}

func (c *ConsumptionRecord) RemainingAfter() int {
	return c.remainingAfter
}

func (c *ConsumptionRecord) Metadata() map[string]interface{} {
	return c.metadata
}

func (c *ConsumptionRecord) CreatedAt() time.Time {
	return c.createdAt
}

// SetID sets the row ID after persistence (used by repository after Create)
func (c *ConsumptionRecord) SetID(id uint) {
	c.id = id
}
