package usecases

import (
	"context"
	"time"

	"mensajio/internal/domain/billing"
	"mensajio/internal/shared/db"
	"mensajio/internal/shared/goroutine"
	"mensajio/internal/shared/logger"
)

// SuspendExceededUseCase suspends active subscriptions whose used counter
// reached the limit. Real-time enforcement already refuses their messages;
// the sweep moves the status so the account surfaces as suspended.
type SuspendExceededUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	txManager        *db.TransactionManager
	batchSize        int
	usageNotifier    UsageNotifier // Optional
	quotaCache       QuotaCache    // Optional
	logger           logger.Interface
}

func NewSuspendExceededUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	txManager *db.TransactionManager,
	batchSize int,
	logger logger.Interface,
) *SuspendExceededUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SuspendExceededUseCase{
		subscriptionRepo: subscriptionRepo,
		txManager:        txManager,
		batchSize:        batchSize,
		logger:           logger,
	}
}

// SetUsageNotifier sets the usage notifier (optional dependency injection)
func (uc *SuspendExceededUseCase) SetUsageNotifier(notifier UsageNotifier) {
	uc.usageNotifier = notifier
}

// SetQuotaCache sets the quota cache (optional dependency injection)
func (uc *SuspendExceededUseCase) SetQuotaCache(cache QuotaCache) {
	uc.quotaCache = cache
}

func (uc *SuspendExceededUseCase) Execute(ctx context.Context) (*SweepResult, error) {
	ids, err := uc.snapshotIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Scanned: len(ids)}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		suspended, err := uc.suspendOne(ctx, id)
		if err != nil {
			result.Failed++
			uc.logger.Errorw("failed to suspend exceeded subscription",
				"subscription_id", id, "error", err)
			continue
		}
		if suspended {
			result.Processed++
		}
	}

	uc.logger.Infow("suspension sweep finished",
		"scanned", result.Scanned,
		"processed", result.Processed,
		"failed", result.Failed)

	return result, nil
}

func (uc *SuspendExceededUseCase) snapshotIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	for offset := 0; ; offset += uc.batchSize {
		batch, err := uc.subscriptionRepo.FindExceededActive(ctx, offset, uc.batchSize)
		if err != nil {
			return nil, err
		}
		ids = append(ids, batch...)
		if len(batch) < uc.batchSize {
			return ids, nil
		}
	}
}

func (uc *SuspendExceededUseCase) suspendOne(ctx context.Context, id uint) (bool, error) {
	var (
		suspended bool
		accountID uint
	)

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		sub, err := uc.subscriptionRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		// A renewal or upgrade settled between snapshot and processing takes
		// the row out of scope.
		if !sub.LimitExceeded() || !sub.Status().CanConsume() {
			return nil
		}

		if err := sub.Suspend(); err != nil {
			return err
		}
		suspended = true
		accountID = sub.AccountID()

		return uc.subscriptionRepo.Update(txCtx, sub)
	})
	if err != nil {
		return false, err
	}

	if !suspended {
		return false, nil
	}

	if uc.quotaCache != nil {
		goroutine.SafeGo(uc.logger, "suspend-sweep-cache-invalidate", func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := uc.quotaCache.Invalidate(cacheCtx, accountID); err != nil {
				uc.logger.Warnw("failed to invalidate quota cache after suspension",
					"account_id", accountID, "error", err)
			}
		})
	}

	if uc.usageNotifier != nil {
		goroutine.SafeGo(uc.logger, "suspend-sweep-notify", func() {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := uc.usageNotifier.NotifySuspended(notifyCtx, accountID); err != nil {
				uc.logger.Warnw("failed to send suspension notification",
					"account_id", accountID, "error", err)
			}
		})
	}

	return true, nil
}
