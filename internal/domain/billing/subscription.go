package billing

import (
	"fmt"
	"time"

	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/shared/biztime"
)

// Subscription is the quota ledger entry for an account: exactly one per
// account. It tracks the current plan, the billing period, and the message
// quota counters. Quota consumption itself happens as an atomic conditional
// update in the repository; the aggregate models every other transition.
type Subscription struct {
	id            uint
	accountID     uint
	planID        uint
	status        vo.SubscriptionStatus
	periodStart   time.Time
	periodEnd     time.Time
	messagesLimit int
	messagesUsed  int
	lastResetAt   time.Time
	metadata      map[string]interface{}
	version       int
	createdAt     time.Time
	updatedAt     time.Time
}

// NewSubscription creates the subscription for an account on its initial
// plan. The period opens on the current business-timezone calendar month.
func NewSubscription(accountID uint, plan *Plan) (*Subscription, error) {
	if accountID == 0 {
		return nil, fmt.Errorf("account ID is required")
	}
	if plan == nil {
		return nil, fmt.Errorf("plan is required")
	}
	if plan.ID() == 0 {
		return nil, fmt.Errorf("plan must be persisted before subscribing")
	}

	now := biztime.NowUTC()
	periodStart, periodEnd := biztime.CurrentMonthPeriod(now)

	return &Subscription{
		accountID:     accountID,
		planID:        plan.ID(),
		status:        vo.StatusActive,
		periodStart:   periodStart,
		periodEnd:     periodEnd,
		messagesLimit: plan.MessageLimit(),
		messagesUsed:  0,
		lastResetAt:   now,
		metadata:      make(map[string]interface{}),
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructSubscription reconstructs a subscription from persistence.
func ReconstructSubscription(
	id, accountID, planID uint,
	status vo.SubscriptionStatus,
	periodStart, periodEnd time.Time,
	messagesLimit, messagesUsed int,
	lastResetAt time.Time,
	metadata map[string]interface{},
	version int,
	createdAt, updatedAt time.Time,
) (*Subscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if accountID == 0 {
		return nil, fmt.Errorf("account ID is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if !vo.ValidSubscriptionStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &Subscription{
		id:            id,
		accountID:     accountID,
		planID:        planID,
		status:        status,
		periodStart:   periodStart,
		periodEnd:     periodEnd,
		messagesLimit: messagesLimit,
		messagesUsed:  messagesUsed,
		lastResetAt:   lastResetAt,
		metadata:      metadata,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

func (s *Subscription) ID() uint {
	return s.id
}

func (s *Subscription) AccountID() uint {
	return s.accountID
}

func (s *Subscription) PlanID() uint {
	return s.planID
}

func (s *Subscription) Status() vo.SubscriptionStatus {
	return s.status
}

func (s *Subscription) PeriodStart() time.Time {
	return s.periodStart
}

func (s *Subscription) PeriodEnd() time.Time {
	return s.periodEnd
}

func (s *Subscription) MessagesLimit() int {
	return s.messagesLimit
}

func (s *Subscription) MessagesUsed() int {
	return s.messagesUsed
}

func (s *Subscription) LastResetAt() time.Time {
	return s.lastResetAt
}

func (s *Subscription) Metadata() map[string]interface{} {
	return s.metadata
}

func (s *Subscription) Version() int {
	return s.version
}

func (s *Subscription) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Subscription) UpdatedAt() time.Time {
	return s.updatedAt
}

// SetID sets the subscription ID (only for persistence layer use)
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// MessagesRemaining returns the remaining quota, never negative.
func (s *Subscription) MessagesRemaining() int {
	remaining := s.messagesLimit - s.messagesUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// UsagePercentage returns used quota as a percentage of the limit, rounded to
// two decimals.
func (s *Subscription) UsagePercentage() float64 {
	if s.messagesLimit == 0 {
		return 0
	}
	pct := float64(s.messagesUsed) / float64(s.messagesLimit) * 100
	return float64(int(pct*100+0.5)) / 100
}

// NearLimit reports whether usage reached the given percentage threshold.
func (s *Subscription) NearLimit(threshold float64) bool {
	return s.UsagePercentage() >= threshold
}

// LimitExceeded reports whether the account consumed its full quota. A racy
// legacy row may briefly hold used > limit; the suspension sweep treats both
// the same.
func (s *Subscription) LimitExceeded() bool {
	return s.messagesUsed >= s.messagesLimit
}

// CanConsume reports whether a consume call could currently succeed.
func (s *Subscription) CanConsume() bool {
	return s.status.CanConsume() && !s.LimitExceeded()
}

// IsPeriodExpired reports whether the billing period closed before now.
func (s *Subscription) IsPeriodExpired() bool {
	return !s.periodEnd.IsZero() && s.periodEnd.Before(biztime.NowUTC())
}

// DaysUntilRenewal returns whole business days until the period closes.
func (s *Subscription) DaysUntilRenewal() int {
	if s.periodEnd.IsZero() {
		return 0
	}
	return biztime.DaysUntil(s.periodEnd)
}

// RenewPeriod resets usage to zero and opens a fresh period on the current
// business-timezone calendar month.
func (s *Subscription) RenewPeriod(now time.Time) {
	periodStart, periodEnd := biztime.CurrentMonthPeriod(now)
	s.periodStart = periodStart
	s.periodEnd = periodEnd
	s.messagesUsed = 0
	s.lastResetAt = now
	s.touch()
}

// Upgrade replaces the plan and limit and forces the subscription active.
// Only monotonic upgrades are allowed: the new plan must grant a strictly
// higher quota. Usage is deliberately not reset.
func (s *Subscription) Upgrade(newPlan *Plan) error {
	if newPlan == nil {
		return fmt.Errorf("new plan is required")
	}
	if s.status.IsTerminal() {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}
	if newPlan.MessageLimit() <= s.messagesLimit {
		return ErrInvalidUpgrade
	}

	s.planID = newPlan.ID()
	s.messagesLimit = newPlan.MessageLimit()
	s.status = vo.StatusActive
	s.touch()
	return nil
}

// ApplyUpgrade re-applies a settled upgrade: plan and limit from the purchased
// plan, forced active, usage and period untouched. Unlike Upgrade there is no
// monotonic guard, so replaying a settlement against a row the upgrade
// orchestration already raised is harmless.
func (s *Subscription) ApplyUpgrade(plan *Plan) error {
	if plan == nil {
		return fmt.Errorf("plan is required")
	}
	if s.status.IsTerminal() {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}

	s.planID = plan.ID()
	s.messagesLimit = plan.MessageLimit()
	s.status = vo.StatusActive
	s.touch()
	return nil
}

// ApplyPurchase swaps the plan in after a settled purchase: limit from the
// new plan, usage reset, period reopened on the current month, forced active.
func (s *Subscription) ApplyPurchase(plan *Plan, now time.Time) error {
	if plan == nil {
		return fmt.Errorf("plan is required")
	}
	if s.status.IsTerminal() {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}

	s.planID = plan.ID()
	s.messagesLimit = plan.MessageLimit()
	s.status = vo.StatusActive
	s.RenewPeriod(now)
	return nil
}

// Suspend transitions to suspended. Re-applying is a silent no-op.
func (s *Subscription) Suspend() error {
	if s.status == vo.StatusSuspended {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusSuspended) {
		return ErrInvalidTransition(s.status.String(), vo.StatusSuspended.String())
	}
	s.status = vo.StatusSuspended
	s.touch()
	return nil
}

// Activate transitions to active. Re-applying is a silent no-op.
func (s *Subscription) Activate() error {
	if s.status == vo.StatusActive {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusActive) {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}
	s.status = vo.StatusActive
	s.touch()
	return nil
}

// Cancel transitions to the terminal cancelled state.
func (s *Subscription) Cancel() error {
	if s.status == vo.StatusCancelled {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusCancelled) {
		return ErrInvalidTransition(s.status.String(), vo.StatusCancelled.String())
	}
	s.status = vo.StatusCancelled
	s.touch()
	return nil
}

// MarkExpired transitions to the terminal expired state.
func (s *Subscription) MarkExpired() error {
	if s.status == vo.StatusExpired {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusExpired) {
		return ErrInvalidTransition(s.status.String(), vo.StatusExpired.String())
	}
	s.status = vo.StatusExpired
	s.touch()
	return nil
}

// SetMetadata sets a metadata key-value pair.
func (s *Subscription) SetMetadata(key string, value interface{}) {
	if s.metadata == nil {
		s.metadata = make(map[string]interface{})
	}
	s.metadata[key] = value
	s.touch()
}

func (s *Subscription) touch() {
	s.updatedAt = biztime.NowUTC()
	s.version++
}

// Validate performs domain-level validation.
func (s *Subscription) Validate() error {
	if s.accountID == 0 {
		return fmt.Errorf("account ID is required")
	}
	if s.planID == 0 {
		return fmt.Errorf("plan ID is required")
	}
	if !vo.ValidSubscriptionStatuses[s.status] {
		return fmt.Errorf("invalid status: %s", s.status)
	}
	if s.messagesLimit <= 0 {
		return fmt.Errorf("messages limit must be positive")
	}
	if s.messagesUsed < 0 {
		return fmt.Errorf("messages used cannot be negative")
	}
	if s.periodEnd.Before(s.periodStart) {
		return fmt.Errorf("period end must be after period start")
	}
	return nil
}
