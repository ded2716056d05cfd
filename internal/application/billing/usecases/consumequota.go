package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mensajio/internal/domain/billing"
	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/shared/db"
	"mensajio/internal/shared/goroutine"
	"mensajio/internal/shared/logger"
)

// ConsumeQuotaCommand identifies one message to charge against the account's
// monthly quota.
type ConsumeQuotaCommand struct {
	AccountID      uint
	MessageID      uint
	ConversationID uint
	MessageKind    vo.MessageKind
	Source         vo.ConsumptionSource
	Metadata       map[string]interface{}
}

// ConsumeQuotaResult reports the enforcement decision.
type ConsumeQuotaResult struct {
	Allowed   bool
	Remaining int
	// Refusal explains a denied consumption: quota exhausted or
	// subscription not active.
	Refusal error
}

type ConsumeQuotaUseCase struct {
	subscriptionRepo   billing.SubscriptionRepository
	consumptionRepo    billing.ConsumptionLogRepository
	txManager          *db.TransactionManager
	nearLimitThreshold float64
	usageNotifier      UsageNotifier // Optional
	quotaCache         QuotaCache    // Optional
	logger             logger.Interface
}

func NewConsumeQuotaUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	consumptionRepo billing.ConsumptionLogRepository,
	txManager *db.TransactionManager,
	nearLimitThreshold float64,
	logger logger.Interface,
) *ConsumeQuotaUseCase {
	return &ConsumeQuotaUseCase{
		subscriptionRepo:   subscriptionRepo,
		consumptionRepo:    consumptionRepo,
		txManager:          txManager,
		nearLimitThreshold: nearLimitThreshold,
		logger:             logger,
	}
}

// SetUsageNotifier sets the usage notifier (optional dependency injection)
func (uc *ConsumeQuotaUseCase) SetUsageNotifier(notifier UsageNotifier) {
	uc.usageNotifier = notifier
}

// SetQuotaCache sets the quota cache (optional dependency injection)
func (uc *ConsumeQuotaUseCase) SetQuotaCache(cache QuotaCache) {
	uc.quotaCache = cache
}

// Execute charges one message against the account's quota. The counter
// increment and the ledger append commit as one unit: a duplicate message id
// rolls both back, so retried deliveries never double-consume.
func (uc *ConsumeQuotaUseCase) Execute(ctx context.Context, cmd ConsumeQuotaCommand) (*ConsumeQuotaResult, error) {
	if cmd.AccountID == 0 {
		return nil, fmt.Errorf("account ID is required")
	}
	if cmd.MessageID == 0 {
		return nil, fmt.Errorf("message ID is required")
	}
	if !cmd.MessageKind.IsValid() {
		return nil, fmt.Errorf("invalid message kind: %s", cmd.MessageKind)
	}
	if !cmd.Source.IsValid() {
		return nil, fmt.Errorf("invalid consumption source: %s", cmd.Source)
	}

	var result ConsumeQuotaResult

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		outcome, err := uc.subscriptionRepo.ConsumeQuota(txCtx, cmd.AccountID)
		if err != nil {
			return err
		}

		result = ConsumeQuotaResult{
			Allowed:   outcome.Allowed,
			Remaining: outcome.Remaining,
			Refusal:   outcome.Refusal,
		}

		if !outcome.Allowed {
			return nil
		}

		record, err := billing.NewConsumptionRecord(
			cmd.AccountID,
			cmd.MessageID,
			cmd.ConversationID,
			cmd.MessageKind,
			cmd.Source,
			outcome.Remaining,
			cmd.Metadata,
		)
		if err != nil {
			return err
		}

		return uc.consumptionRepo.Append(txCtx, record)
	})
	if err != nil {
		return nil, err
	}

	if result.Allowed {
		uc.logger.Debugw("quota consumed",
			"account_id", cmd.AccountID,
			"message_id", cmd.MessageID,
			"remaining", result.Remaining)
		uc.afterConsume(cmd.AccountID, result.Remaining)
	} else {
		uc.logger.Infow("quota consumption refused",
			"account_id", cmd.AccountID,
			"message_id", cmd.MessageID,
			"reason", result.Refusal)
		uc.afterRefusal(cmd.AccountID, result.Refusal)
	}

	return &result, nil
}

func (uc *ConsumeQuotaUseCase) afterConsume(accountID uint, remaining int) {
	if uc.quotaCache != nil {
		goroutine.SafeGo(uc.logger, "consume-quota-cache-sync", func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := uc.quotaCache.SetRemaining(cacheCtx, accountID, remaining); err != nil {
				uc.logger.Warnw("failed to sync quota cache", "account_id", accountID, "error", err)
			}
		})
	}

	if uc.usageNotifier == nil {
		return
	}

	goroutine.SafeGo(uc.logger, "consume-quota-notify", func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		sub, err := uc.subscriptionRepo.GetByAccountID(notifyCtx, accountID)
		if err != nil {
			uc.logger.Warnw("failed to load subscription for usage notification",
				"account_id", accountID, "error", err)
			return
		}

		if sub.LimitExceeded() {
			if err := uc.usageNotifier.NotifyLimitExceeded(notifyCtx, accountID); err != nil {
				uc.logger.Warnw("failed to send limit exceeded notification",
					"account_id", accountID, "error", err)
			}
			return
		}

		if sub.NearLimit(uc.nearLimitThreshold) {
			if err := uc.usageNotifier.NotifyNearLimit(notifyCtx, accountID, sub.UsagePercentage(), sub.MessagesRemaining()); err != nil {
				uc.logger.Warnw("failed to send near limit notification",
					"account_id", accountID, "error", err)
			}
		}
	})
}

func (uc *ConsumeQuotaUseCase) afterRefusal(accountID uint, refusal error) {
	if uc.usageNotifier == nil || !errors.Is(refusal, billing.ErrQuotaExceeded) {
		return
	}

	goroutine.SafeGo(uc.logger, "consume-quota-notify-exceeded", func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := uc.usageNotifier.NotifyLimitExceeded(notifyCtx, accountID); err != nil {
			uc.logger.Warnw("failed to send limit exceeded notification",
				"account_id", accountID, "error", err)
		}
	})
}
