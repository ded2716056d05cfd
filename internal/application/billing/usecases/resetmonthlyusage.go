package usecases

import (
	"context"
	"time"

	"mensajio/internal/domain/billing"
	"mensajio/internal/shared/biztime"
	"mensajio/internal/shared/db"
	"mensajio/internal/shared/goroutine"
	"mensajio/internal/shared/logger"
)

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Scanned   int
	Processed int
	Failed    int
}

// ResetMonthlyUsageUseCase renews active subscriptions whose billing period
// closed: used resets to zero and the period advances to the current
// business-timezone calendar month.
type ResetMonthlyUsageUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	txManager        *db.TransactionManager
	batchSize        int
	quotaCache       QuotaCache // Optional
	logger           logger.Interface
}

func NewResetMonthlyUsageUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	txManager *db.TransactionManager,
	batchSize int,
	logger logger.Interface,
) *ResetMonthlyUsageUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ResetMonthlyUsageUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		txManager:        txManager,
		batchSize:        batchSize,
		logger:           logger,
	}
}

// SetQuotaCache sets the quota cache (optional dependency injection)
func (uc *ResetMonthlyUsageUseCase) SetQuotaCache(cache QuotaCache) {
	uc.quotaCache = cache
}

// Execute snapshots the renewable ids first, then processes each row in its
// own transaction. One failing account is logged and skipped; the sweep keeps
// going.
func (uc *ResetMonthlyUsageUseCase) Execute(ctx context.Context) (*SweepResult, error) {
	now := biztime.NowUTC()

	ids, err := uc.snapshotIDs(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Scanned: len(ids)}
	renewable := make(map[uint]bool)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		renewed, err := uc.renewOne(ctx, id, now, renewable)
		if err != nil {
			result.Failed++
			uc.logger.Errorw("failed to renew subscription period",
				"subscription_id", id, "error", err)
			continue
		}
		if renewed {
			result.Processed++
		}
	}

	uc.logger.Infow("monthly usage reset sweep finished",
		"scanned", result.Scanned,
		"processed", result.Processed,
		"failed", result.Failed)

	return result, nil
}

func (uc *ResetMonthlyUsageUseCase) snapshotIDs(ctx context.Context, now time.Time) ([]uint, error) {
	var ids []uint
	for offset := 0; ; offset += uc.batchSize {
		batch, err := uc.subscriptionRepo.FindRenewable(ctx, now, offset, uc.batchSize)
		if err != nil {
			return nil, err
		}
		ids = append(ids, batch...)
		if len(batch) < uc.batchSize {
			return ids, nil
		}
	}
}

func (uc *ResetMonthlyUsageUseCase) renewOne(ctx context.Context, id uint, now time.Time, renewable map[uint]bool) (bool, error) {
	var (
		renewed   bool
		accountID uint
		remaining int
	)

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		sub, err := uc.subscriptionRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		// The snapshot may be stale: a payment settled between snapshot and
		// processing can already have renewed the row.
		if !sub.IsPeriodExpired() || !sub.Status().CanConsume() {
			return nil
		}

		autoRenew, err := uc.planAutoRenewable(txCtx, sub.PlanID(), renewable)
		if err != nil {
			return err
		}
		if !autoRenew {
			return nil
		}

		sub.RenewPeriod(now)
		renewed = true
		accountID = sub.AccountID()
		remaining = sub.MessagesRemaining()

		return uc.subscriptionRepo.Update(txCtx, sub)
	})
	if err != nil {
		return false, err
	}

	if !renewed {
		return false, nil
	}

	if uc.quotaCache != nil {
		goroutine.SafeGo(uc.logger, "reset-sweep-cache-sync", func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := uc.quotaCache.SetRemaining(cacheCtx, accountID, remaining); err != nil {
				uc.logger.Warnw("failed to sync quota cache after reset",
					"account_id", accountID, "error", err)
			}
		})
	}

	return true, nil
}

// planAutoRenewable memoizes the per-plan auto-renewal flag for one sweep run.
func (uc *ResetMonthlyUsageUseCase) planAutoRenewable(ctx context.Context, planID uint, cache map[uint]bool) (bool, error) {
	if v, ok := cache[planID]; ok {
		return v, nil
	}

	plan, err := uc.planRepo.GetByID(ctx, planID)
	if err != nil {
		return false, err
	}

	cache[planID] = plan.AutoRenewable()
	return cache[planID], nil
}
