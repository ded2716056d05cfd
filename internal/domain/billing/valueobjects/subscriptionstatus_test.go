package valueobjects

import "testing"

func TestSubscriptionStatusTransitions(t *testing.T) {
	tests := []struct {
		from SubscriptionStatus
		to   SubscriptionStatus
		want bool
	}{
		{StatusActive, StatusSuspended, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusExpired, true},
		{StatusSuspended, StatusActive, true},
		{StatusSuspended, StatusCancelled, true},
		{StatusSuspended, StatusExpired, true},
		{StatusCancelled, StatusActive, false},
		{StatusCancelled, StatusSuspended, false},
		{StatusExpired, StatusActive, false},
		{StatusExpired, StatusCancelled, false},
		{StatusActive, StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubscriptionStatusCanConsume(t *testing.T) {
	if !StatusActive.CanConsume() {
		t.Errorf("active should allow consumption")
	}
	for _, s := range []SubscriptionStatus{StatusSuspended, StatusCancelled, StatusExpired} {
		if s.CanConsume() {
			t.Errorf("%s should not allow consumption", s)
		}
	}
}

func TestTransactionStatusStateMachine(t *testing.T) {
	terminals := []TransactionStatus{TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled}

	for _, target := range terminals {
		if !TransactionStatusPending.CanTransitionTo(target) {
			t.Errorf("pending should transition to %s", target)
		}
	}

	for _, from := range terminals {
		if !from.IsFinal() {
			t.Errorf("%s should be final", from)
		}
		for _, target := range append(terminals, TransactionStatusPending) {
			if from.CanTransitionTo(target) {
				t.Errorf("%s should not transition to %s", from, target)
			}
		}
	}
}
