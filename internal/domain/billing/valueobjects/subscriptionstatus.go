package valueobjects

type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusSuspended SubscriptionStatus = "suspended"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// CanConsume reports whether quota consumption is legal from this status.
func (s SubscriptionStatus) CanConsume() bool {
	return s == StatusActive
}

// IsTerminal reports whether the status has no outbound transitions.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	transitions := map[SubscriptionStatus][]SubscriptionStatus{
		StatusActive:    {StatusSuspended, StatusCancelled, StatusExpired},
		StatusSuspended: {StatusActive, StatusCancelled, StatusExpired},
		StatusCancelled: {},
		StatusExpired:   {},
	}

	allowed, exists := transitions[s]
	if !exists {
		return false
	}

	for _, allowedStatus := range allowed {
		if allowedStatus == target {
			return true
		}
	}
	return false
}

var ValidSubscriptionStatuses = map[SubscriptionStatus]bool{
	StatusActive:    true,
	StatusSuspended: true,
	StatusCancelled: true,
	StatusExpired:   true,
}
