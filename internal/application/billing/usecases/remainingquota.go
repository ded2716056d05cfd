package usecases

import (
	"context"
	"fmt"

	"mensajio/internal/domain/billing"
	"mensajio/internal/shared/logger"
)

// RemainingQuotaUseCase answers the cheap "how many messages are left" read.
// It serves from the quota cache when one is configured and falls back to the
// subscription ledger on a miss, repopulating the cache. The ledger stays
// authoritative; enforcement never consults this path.
type RemainingQuotaUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	quotaCache       QuotaCache // Optional
	logger           logger.Interface
}

func NewRemainingQuotaUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	logger logger.Interface,
) *RemainingQuotaUseCase {
	return &RemainingQuotaUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// SetQuotaCache sets the quota cache (optional dependency injection)
func (uc *RemainingQuotaUseCase) SetQuotaCache(cache QuotaCache) {
	uc.quotaCache = cache
}

func (uc *RemainingQuotaUseCase) Execute(ctx context.Context, accountID uint) (int, error) {
	if accountID == 0 {
		return 0, fmt.Errorf("account ID is required")
	}

	if uc.quotaCache != nil {
		remaining, found, err := uc.quotaCache.GetRemaining(ctx, accountID)
		if err != nil {
			uc.logger.Warnw("quota cache read failed, falling back to ledger",
				"account_id", accountID, "error", err)
		} else if found {
			return remaining, nil
		}
	}

	sub, err := uc.subscriptionRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return 0, err
	}

	remaining := sub.MessagesRemaining()
	if !sub.Status().CanConsume() {
		remaining = 0
	}

	if uc.quotaCache != nil {
		if err := uc.quotaCache.SetRemaining(ctx, accountID, remaining); err != nil {
			uc.logger.Warnw("failed to repopulate quota cache",
				"account_id", accountID, "error", err)
		}
	}

	return remaining, nil
}
