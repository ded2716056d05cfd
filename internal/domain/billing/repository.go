package billing

import (
	"context"
	"time"

	vo "mensajio/internal/domain/billing/valueobjects"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id uint) (*Plan, error)
	GetByName(ctx context.Context, name string) (*Plan, error)
	Update(ctx context.Context, plan *Plan) error
	// Delete refuses with ErrPlanInUse while any subscription or transaction
	// references the plan.
	Delete(ctx context.Context, id uint) error

	ListActive(ctx context.Context) ([]*Plan, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// ConsumeOutcome is the result of an atomic quota consumption attempt.
type ConsumeOutcome struct {
	Allowed   bool
	Remaining int
	// Refusal carries ErrQuotaExceeded or ErrSubscriptionInactive when
	// Allowed is false.
	Refusal error
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	GetByAccountID(ctx context.Context, accountID uint) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error

	// ConsumeQuota performs the atomic conditional increment for one account:
	// a single UPDATE guarded on status and remaining quota. It never does a
	// read-then-write pair, so concurrent callers cannot overshoot the limit.
	ConsumeQuota(ctx context.Context, accountID uint) (*ConsumeOutcome, error)

	// FindRenewable returns ids of active subscriptions whose period has
	// closed, in batches for the reset sweep.
	FindRenewable(ctx context.Context, now time.Time, offset, limit int) ([]uint, error)

	// FindExceededActive returns ids of active subscriptions with
	// used >= limit, in batches for the suspension sweep.
	FindExceededActive(ctx context.Context, offset, limit int) ([]uint, error)

	CountByPlanID(ctx context.Context, planID uint) (int64, error)
	CountByStatus(ctx context.Context, status vo.SubscriptionStatus) (int64, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)
	Update(ctx context.Context, tx *Transaction) error

	// SettleTerminal writes the terminal state guarded on the row still being
	// pending. It returns false when another writer already settled the row,
	// in which case the caller rereads and treats the delivery as duplicate.
	SettleTerminal(ctx context.Context, tx *Transaction) (bool, error)

	GetRecentByAccountID(ctx context.Context, accountID uint, limit int) ([]*Transaction, error)
	CountByPlanID(ctx context.Context, planID uint) (int64, error)
}

// SourceBreakdown maps consumption source to message count.
type SourceBreakdown map[vo.ConsumptionSource]int64

// DailyCount is one day of consumption for the trend series.
type DailyCount struct {
	Date  time.Time
	Count int64
}

type ConsumptionLogRepository interface {
	// Append inserts a record; a duplicate message id is refused with
	// ErrDuplicateConsumption.
	Append(ctx context.Context, record *ConsumptionRecord) error

	GetByMessageID(ctx context.Context, messageID uint) (*ConsumptionRecord, error)
	CountByAccountAndRange(ctx context.Context, accountID uint, from, to time.Time) (int64, error)
	CountBySource(ctx context.Context, accountID uint, from, to time.Time) (SourceBreakdown, error)
	DailyTrend(ctx context.Context, accountID uint, days int) ([]DailyCount, error)
}
