package billing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/shared/biztime"
)

// DefaultGateway is used when a caller does not name a payment gateway.
const DefaultGateway = "wompi"

// Transaction is one payment attempt. It opens pending with amount and
// currency copied from the plan at that moment: a transaction is immutable
// evidence of what was charged, regardless of later plan edits. It reaches a
// terminal state exactly once.
type Transaction struct {
	id              uint
	transactionID   string
	accountID       uint
	planID          uint
	transactionType vo.TransactionType
	status          vo.TransactionStatus
	amount          vo.Money
	gateway         string
	gatewayResponse map[string]interface{}
	processedAt     *time.Time
	metadata        map[string]interface{}
	version         int
	createdAt       time.Time
	updatedAt       time.Time
}

// GenerateTransactionID allocates a globally unique transaction identifier.
// A collision on the unique index is a fatal generation bug, not a retryable
// condition.
func GenerateTransactionID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate transaction ID: %w", err)
	}
	return fmt.Sprintf("TXN_%s_%d",
		strings.ToUpper(hex.EncodeToString(buf)),
		biztime.NowUTC().Unix(),
	), nil
}

// NewTransaction opens a pending transaction for an account against a plan.
func NewTransaction(accountID uint, plan *Plan, txType vo.TransactionType, gateway string, metadata map[string]interface{}) (*Transaction, error) {
	if accountID == 0 {
		return nil, fmt.Errorf("account ID is required")
	}
	if plan == nil {
		return nil, fmt.Errorf("plan is required")
	}
	if plan.ID() == 0 {
		return nil, fmt.Errorf("plan must be persisted before opening a transaction")
	}
	if !txType.IsValid() {
		return nil, fmt.Errorf("invalid transaction type: %s", txType)
	}
	if !plan.Price().IsPositive() {
		return nil, fmt.Errorf("transaction amount must be positive")
	}
	if gateway == "" {
		gateway = DefaultGateway
	}
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	transactionID, err := GenerateTransactionID()
	if err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	return &Transaction{
		transactionID:   transactionID,
		accountID:       accountID,
		planID:          plan.ID(),
		transactionType: txType,
		status:          vo.TransactionStatusPending,
		amount:          plan.Price(),
		gateway:         gateway,
		metadata:        metadata,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructTransaction reconstructs a transaction from persistence.
func ReconstructTransaction(
	id uint,
	transactionID string,
	accountID, planID uint,
	transactionType vo.TransactionType,
	status vo.TransactionStatus,
	amount vo.Money,
	gateway string,
	gatewayResponse map[string]interface{},
	processedAt *time.Time,
	metadata map[string]interface{},
	version int,
	createdAt, updatedAt time.Time,
) (*Transaction, error) {
	if id == 0 {
		return nil, fmt.Errorf("transaction ID cannot be zero")
	}
	if transactionID == "" {
		return nil, fmt.Errorf("transaction identifier is required")
	}
	if !transactionType.IsValid() {
		return nil, fmt.Errorf("invalid transaction type: %s", transactionType)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid transaction status: %s", status)
	}
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &Transaction{
		id:              id,
		transactionID:   transactionID,
		accountID:       accountID,
		planID:          planID,
		transactionType: transactionType,
		status:          status,
		amount:          amount,
		gateway:         gateway,
		gatewayResponse: gatewayResponse,
		processedAt:     processedAt,
		metadata:        metadata,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

func (t *Transaction) ID() uint {
	return t.id
}

// TransactionID returns the globally unique gateway-facing identifier.
func (t *Transaction) TransactionID() string {
	return t.transactionID
}

func (t *Transaction) AccountID() uint {
	return t.accountID
}

func (t *Transaction) PlanID() uint {
	return t.planID
}

func (t *Transaction) Type() vo.TransactionType {
	return t.transactionType
}

func (t *Transaction) Status() vo.TransactionStatus {
	return t.status
}

func (t *Transaction) Amount() vo.Money {
	return t.amount
}

func (t *Transaction) Gateway() string {
	return t.gateway
}

func (t *Transaction) GatewayResponse() map[string]interface{} {
	return t.gatewayResponse
}

func (t *Transaction) ProcessedAt() *time.Time {
	return t.processedAt
}

func (t *Transaction) Metadata() map[string]interface{} {
	return t.metadata
}

func (t *Transaction) Version() int {
	return t.version
}

func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Transaction) UpdatedAt() time.Time {
	return t.updatedAt
}

// SetID sets the row ID after persistence (used by repository after Create)
func (t *Transaction) SetID(id uint) {
	t.id = id
}

func (t *Transaction) IsUpgrade() bool {
	return t.transactionType == vo.TransactionTypeUpgrade
}

func (t *Transaction) IsSuccessful() bool {
	return t.status == vo.TransactionStatusCompleted
}

// CanRefund reports whether the transaction is a completed purchase processed
// within the last 30 days.
func (t *Transaction) CanRefund() bool {
	if t.status != vo.TransactionStatusCompleted {
		return false
	}
	if t.transactionType != vo.TransactionTypePurchase {
		return false
	}
	if t.processedAt == nil {
		return false
	}
	return t.processedAt.After(biztime.NowUTC().AddDate(0, 0, -30))
}

// FormattedAmount renders the charged amount for reports.
func (t *Transaction) FormattedAmount() string {
	return t.amount.Formatted()
}

// MarkCompleted settles the transaction, stamping processed_at and storing
// the raw gateway payload. Settling an already-terminal transaction returns
// ErrDuplicateSettlement; callers treat it as "return the prior result".
func (t *Transaction) MarkCompleted(gatewayResponse map[string]interface{}) error {
	if t.status.IsFinal() {
		return ErrDuplicateSettlement
	}

	now := biztime.NowUTC()
	t.status = vo.TransactionStatusCompleted
	t.processedAt = &now
	if gatewayResponse == nil {
		gatewayResponse = make(map[string]interface{})
	}
	t.gatewayResponse = gatewayResponse
	t.touch()
	return nil
}

// MarkFailed settles the transaction as failed, recording the reason in the
// gateway payload. Same idempotency semantics as MarkCompleted.
func (t *Transaction) MarkFailed(reason string) error {
	if t.status.IsFinal() {
		return ErrDuplicateSettlement
	}

	now := biztime.NowUTC()
	t.status = vo.TransactionStatusFailed
	t.processedAt = &now
	t.gatewayResponse = map[string]interface{}{"error": reason}
	t.touch()
	return nil
}

// MarkCancelled voids a pending transaction, typically by operator
// intervention on an abandoned attempt.
func (t *Transaction) MarkCancelled() error {
	if t.status == vo.TransactionStatusCancelled {
		return nil
	}
	if t.status.IsFinal() {
		return ErrDuplicateSettlement
	}

	now := biztime.NowUTC()
	t.status = vo.TransactionStatusCancelled
	t.processedAt = &now
	t.touch()
	return nil
}

// SetMetadata sets a metadata key-value pair.
func (t *Transaction) SetMetadata(key string, value interface{}) {
	if t.metadata == nil {
		t.metadata = make(map[string]interface{})
	}
	t.metadata[key] = value
	t.touch()
}

func (t *Transaction) touch() {
	t.updatedAt = biztime.NowUTC()
	t.version++
}
