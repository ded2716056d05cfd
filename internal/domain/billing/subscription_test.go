package billing

import (
	"testing"
	"time"

	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/shared/biztime"
)

func testPlan(t *testing.T, name string, limit int) *Plan {
	t.Helper()
	plan, err := NewPlan(name, "", limit, vo.NewMoney(1000, "USD"))
	if err != nil {
		t.Fatalf("NewPlan() unexpected error = %v", err)
	}
	if err := plan.SetID(uint(limit)); err != nil {
		t.Fatalf("SetID() unexpected error = %v", err)
	}
	return plan
}

func testSubscription(t *testing.T, limit, used int, status vo.SubscriptionStatus) *Subscription {
	t.Helper()
	now := biztime.NowUTC()
	start, end := biztime.CurrentMonthPeriod(now)
	sub, err := ReconstructSubscription(
		1, 42, uint(limit), status,
		start, end,
		limit, used,
		now, nil, 1, now, now,
	)
	if err != nil {
		t.Fatalf("ReconstructSubscription() unexpected error = %v", err)
	}
	return sub
}

func TestNewSubscription(t *testing.T) {
	plan := testPlan(t, "Basic", 100)

	sub, err := NewSubscription(42, plan)
	if err != nil {
		t.Fatalf("NewSubscription() unexpected error = %v", err)
	}

	if sub.Status() != vo.StatusActive {
		t.Errorf("Status() = %v, want active", sub.Status())
	}
	if sub.MessagesLimit() != 100 {
		t.Errorf("MessagesLimit() = %v, want 100", sub.MessagesLimit())
	}
	if sub.MessagesUsed() != 0 {
		t.Errorf("MessagesUsed() = %v, want 0", sub.MessagesUsed())
	}

	wantStart, wantEnd := biztime.CurrentMonthPeriod(biztime.NowUTC())
	if !sub.PeriodStart().Equal(wantStart) {
		t.Errorf("PeriodStart() = %v, want %v", sub.PeriodStart(), wantStart)
	}
	if !sub.PeriodEnd().Equal(wantEnd) {
		t.Errorf("PeriodEnd() = %v, want %v", sub.PeriodEnd(), wantEnd)
	}

	if _, err := NewSubscription(0, plan); err == nil {
		t.Errorf("NewSubscription() with zero account should fail")
	}
	if _, err := NewSubscription(42, nil); err == nil {
		t.Errorf("NewSubscription() with nil plan should fail")
	}
}

func TestSubscriptionQuotaHelpers(t *testing.T) {
	tests := []struct {
		name          string
		limit         int
		used          int
		wantRemaining int
		wantPct       float64
		wantExceeded  bool
	}{
		{"fresh", 100, 0, 100, 0, false},
		{"partial", 100, 25, 75, 25, false},
		{"at boundary minus one", 100, 99, 1, 99, false},
		{"at limit", 100, 100, 0, 100, true},
		{"legacy overshoot", 100, 103, 0, 103, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := testSubscription(t, tt.limit, tt.used, vo.StatusActive)

			if got := sub.MessagesRemaining(); got != tt.wantRemaining {
				t.Errorf("MessagesRemaining() = %v, want %v", got, tt.wantRemaining)
			}
			if got := sub.UsagePercentage(); got != tt.wantPct {
				t.Errorf("UsagePercentage() = %v, want %v", got, tt.wantPct)
			}
			if got := sub.LimitExceeded(); got != tt.wantExceeded {
				t.Errorf("LimitExceeded() = %v, want %v", got, tt.wantExceeded)
			}
			if got := sub.CanConsume(); got != !tt.wantExceeded {
				t.Errorf("CanConsume() = %v, want %v", got, !tt.wantExceeded)
			}
		})
	}
}

func TestSubscriptionCanConsumeRequiresActive(t *testing.T) {
	for _, status := range []vo.SubscriptionStatus{vo.StatusSuspended, vo.StatusCancelled, vo.StatusExpired} {
		sub := testSubscription(t, 100, 0, status)
		if sub.CanConsume() {
			t.Errorf("CanConsume() from %s should be false", status)
		}
	}
}

func TestSubscriptionRenewPeriod(t *testing.T) {
	sub := testSubscription(t, 100, 87, vo.StatusActive)

	now := biztime.NowUTC()
	sub.RenewPeriod(now)

	if sub.MessagesUsed() != 0 {
		t.Errorf("MessagesUsed() = %v, want 0 after renew", sub.MessagesUsed())
	}

	wantStart, wantEnd := biztime.CurrentMonthPeriod(now)
	if !sub.PeriodStart().Equal(wantStart) {
		t.Errorf("PeriodStart() = %v, want %v", sub.PeriodStart(), wantStart)
	}
	if !sub.PeriodEnd().Equal(wantEnd) {
		t.Errorf("PeriodEnd() = %v, want %v", sub.PeriodEnd(), wantEnd)
	}
	if !sub.LastResetAt().Equal(now) {
		t.Errorf("LastResetAt() = %v, want %v", sub.LastResetAt(), now)
	}
}

func TestSubscriptionUpgrade(t *testing.T) {
	tests := []struct {
		name       string
		status     vo.SubscriptionStatus
		newLimit   int
		wantErr    error
		wantLimit  int
		wantStatus vo.SubscriptionStatus
	}{
		{
			name:       "monotonic upgrade",
			status:     vo.StatusActive,
			newLimit:   1000,
			wantLimit:  1000,
			wantStatus: vo.StatusActive,
		},
		{
			name:       "upgrade reactivates suspended",
			status:     vo.StatusSuspended,
			newLimit:   1000,
			wantLimit:  1000,
			wantStatus: vo.StatusActive,
		},
		{
			name:     "equal quota refused",
			status:   vo.StatusActive,
			newLimit: 100,
			wantErr:  ErrInvalidUpgrade,
		},
		{
			name:     "downgrade refused",
			status:   vo.StatusActive,
			newLimit: 50,
			wantErr:  ErrInvalidUpgrade,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := testSubscription(t, 100, 42, tt.status)
			newPlan := testPlan(t, "Pro", tt.newLimit)

			err := sub.Upgrade(newPlan)

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("Upgrade() error = %v, want %v", err, tt.wantErr)
				}
				if sub.MessagesLimit() != 100 {
					t.Errorf("failed upgrade must not change limit")
				}
				if sub.Status() != tt.status {
					t.Errorf("failed upgrade must not change status")
				}
				return
			}

			if err != nil {
				t.Fatalf("Upgrade() unexpected error = %v", err)
			}
			if sub.MessagesLimit() != tt.wantLimit {
				t.Errorf("MessagesLimit() = %v, want %v", sub.MessagesLimit(), tt.wantLimit)
			}
			if sub.Status() != tt.wantStatus {
				t.Errorf("Status() = %v, want %v", sub.Status(), tt.wantStatus)
			}
			if sub.MessagesUsed() != 42 {
				t.Errorf("upgrade must not reset usage, MessagesUsed() = %v", sub.MessagesUsed())
			}
		})
	}
}

func TestSubscriptionUpgradeFromTerminal(t *testing.T) {
	sub := testSubscription(t, 100, 0, vo.StatusCancelled)
	if err := sub.Upgrade(testPlan(t, "Pro", 1000)); err == nil {
		t.Errorf("Upgrade() from cancelled should fail")
	}
}

func TestSubscriptionApplyUpgrade(t *testing.T) {
	tests := []struct {
		name     string
		status   vo.SubscriptionStatus
		newLimit int
	}{
		{"settlement after the swap", vo.StatusActive, 1000},
		{"replay against equal limit", vo.StatusActive, 100},
		{"reactivates suspended", vo.StatusSuspended, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := testSubscription(t, tt.newLimit, 42, tt.status)
			plan := testPlan(t, "Pro", tt.newLimit)

			if err := sub.ApplyUpgrade(plan); err != nil {
				t.Fatalf("ApplyUpgrade() unexpected error = %v", err)
			}

			if sub.PlanID() != plan.ID() {
				t.Errorf("PlanID() = %v, want %v", sub.PlanID(), plan.ID())
			}
			if sub.MessagesLimit() != tt.newLimit {
				t.Errorf("MessagesLimit() = %v, want %v", sub.MessagesLimit(), tt.newLimit)
			}
			if sub.Status() != vo.StatusActive {
				t.Errorf("Status() = %v, want active", sub.Status())
			}
			if sub.MessagesUsed() != 42 {
				t.Errorf("ApplyUpgrade must not reset usage, MessagesUsed() = %v", sub.MessagesUsed())
			}
		})
	}

	t.Run("terminal refused", func(t *testing.T) {
		sub := testSubscription(t, 100, 0, vo.StatusCancelled)
		if err := sub.ApplyUpgrade(testPlan(t, "Pro", 1000)); err == nil {
			t.Errorf("ApplyUpgrade() from cancelled should fail")
		}
	})

	t.Run("nil plan refused", func(t *testing.T) {
		sub := testSubscription(t, 100, 0, vo.StatusActive)
		if err := sub.ApplyUpgrade(nil); err == nil {
			t.Errorf("ApplyUpgrade() with nil plan should fail")
		}
	})
}

func TestSubscriptionApplyPurchase(t *testing.T) {
	sub := testSubscription(t, 100, 87, vo.StatusSuspended)
	plan := testPlan(t, "Basic", 100)

	now := biztime.NowUTC()
	if err := sub.ApplyPurchase(plan, now); err != nil {
		t.Fatalf("ApplyPurchase() unexpected error = %v", err)
	}

	if sub.Status() != vo.StatusActive {
		t.Errorf("Status() = %v, want active", sub.Status())
	}
	if sub.MessagesUsed() != 0 {
		t.Errorf("MessagesUsed() = %v, want 0 after purchase", sub.MessagesUsed())
	}

	wantStart, wantEnd := biztime.CurrentMonthPeriod(now)
	if !sub.PeriodStart().Equal(wantStart) || !sub.PeriodEnd().Equal(wantEnd) {
		t.Errorf("purchase should reopen the period on the current month")
	}
}

func TestSubscriptionStatusTransitions(t *testing.T) {
	tests := []struct {
		name       string
		from       vo.SubscriptionStatus
		transition func(*Subscription) error
		wantStatus vo.SubscriptionStatus
		wantErr    bool
	}{
		{"suspend active", vo.StatusActive, (*Subscription).Suspend, vo.StatusSuspended, false},
		{"suspend suspended is noop", vo.StatusSuspended, (*Subscription).Suspend, vo.StatusSuspended, false},
		{"activate suspended", vo.StatusSuspended, (*Subscription).Activate, vo.StatusActive, false},
		{"activate active is noop", vo.StatusActive, (*Subscription).Activate, vo.StatusActive, false},
		{"cancel active", vo.StatusActive, (*Subscription).Cancel, vo.StatusCancelled, false},
		{"cancel suspended", vo.StatusSuspended, (*Subscription).Cancel, vo.StatusCancelled, false},
		{"expire active", vo.StatusActive, (*Subscription).MarkExpired, vo.StatusExpired, false},
		{"expire suspended", vo.StatusSuspended, (*Subscription).MarkExpired, vo.StatusExpired, false},
		{"suspend cancelled fails", vo.StatusCancelled, (*Subscription).Suspend, vo.StatusCancelled, true},
		{"activate expired fails", vo.StatusExpired, (*Subscription).Activate, vo.StatusExpired, true},
		{"cancel expired fails", vo.StatusExpired, (*Subscription).Cancel, vo.StatusExpired, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := testSubscription(t, 100, 0, tt.from)

			err := tt.transition(sub)

			if tt.wantErr && err == nil {
				t.Errorf("expected transition error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected transition error = %v", err)
			}
			if sub.Status() != tt.wantStatus {
				t.Errorf("Status() = %v, want %v", sub.Status(), tt.wantStatus)
			}
		})
	}
}

func TestSubscriptionIsPeriodExpired(t *testing.T) {
	sub := testSubscription(t, 100, 0, vo.StatusActive)
	if sub.IsPeriodExpired() {
		t.Errorf("current-month period should not be expired")
	}

	now := biztime.NowUTC()
	expired, err := ReconstructSubscription(
		1, 42, 1, vo.StatusActive,
		now.AddDate(0, -2, 0), now.AddDate(0, -1, 0),
		100, 10, now.AddDate(0, -2, 0), nil, 1, now, now,
	)
	if err != nil {
		t.Fatalf("ReconstructSubscription() unexpected error = %v", err)
	}
	if !expired.IsPeriodExpired() {
		t.Errorf("last-month period should be expired")
	}
}

func TestSubscriptionDaysUntilRenewal(t *testing.T) {
	now := biztime.NowUTC()
	sub, err := ReconstructSubscription(
		1, 42, 1, vo.StatusActive,
		now, now.Add(72*time.Hour),
		100, 0, now, nil, 1, now, now,
	)
	if err != nil {
		t.Fatalf("ReconstructSubscription() unexpected error = %v", err)
	}

	days := sub.DaysUntilRenewal()
	if days < 2 || days > 3 {
		t.Errorf("DaysUntilRenewal() = %v, want 2 or 3", days)
	}
}
