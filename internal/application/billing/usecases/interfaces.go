package usecases

import "context"

// UsageNotifier delivers quota lifecycle notifications. Implementations must
// tolerate being called from background goroutines.
type UsageNotifier interface {
	NotifyNearLimit(ctx context.Context, accountID uint, usagePercent float64, remaining int) error
	NotifyLimitExceeded(ctx context.Context, accountID uint) error
	NotifySuspended(ctx context.Context, accountID uint) error
}

// PaymentNotifier delivers payment settlement notifications.
type PaymentNotifier interface {
	NotifyPaymentSuccess(ctx context.Context, accountID uint, transactionID, planName, formattedAmount string) error
	NotifyPaymentFailure(ctx context.Context, accountID uint, transactionID, reason string) error
}

// QuotaCache mirrors the hot per-account remaining counter. The database is
// authoritative; cache entries are dropped on any write the cache did not see.
type QuotaCache interface {
	SetRemaining(ctx context.Context, accountID uint, remaining int) error
	// GetRemaining returns the cached counter, with found=false on a miss.
	GetRemaining(ctx context.Context, accountID uint) (remaining int, found bool, err error)
	Invalidate(ctx context.Context, accountID uint) error
}
