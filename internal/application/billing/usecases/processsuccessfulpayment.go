package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mensajio/internal/domain/billing"
	"mensajio/internal/shared/biztime"
	"mensajio/internal/shared/db"
	"mensajio/internal/shared/goroutine"
	"mensajio/internal/shared/logger"
)

// ProcessSuccessfulPaymentCommand settles a pending transaction as completed
// and applies the purchased plan to the account's subscription.
type ProcessSuccessfulPaymentCommand struct {
	TransactionID   string
	GatewayResponse map[string]interface{}
}

type ProcessSuccessfulPaymentUseCase struct {
	transactionRepo  billing.TransactionRepository
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	txManager        *db.TransactionManager
	paymentNotifier  PaymentNotifier // Optional
	quotaCache       QuotaCache      // Optional
	logger           logger.Interface
}

func NewProcessSuccessfulPaymentUseCase(
	transactionRepo billing.TransactionRepository,
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *ProcessSuccessfulPaymentUseCase {
	return &ProcessSuccessfulPaymentUseCase{
		transactionRepo:  transactionRepo,
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

// SetPaymentNotifier sets the payment notifier (optional dependency injection)
func (uc *ProcessSuccessfulPaymentUseCase) SetPaymentNotifier(notifier PaymentNotifier) {
	uc.paymentNotifier = notifier
}

// SetQuotaCache sets the quota cache (optional dependency injection)
func (uc *ProcessSuccessfulPaymentUseCase) SetQuotaCache(cache QuotaCache) {
	uc.quotaCache = cache
}

// Execute settles the transaction and mutates the subscription in one atomic
// unit. A transaction already settled is acknowledged without touching the
// subscription, so replayed gateway deliveries are harmless.
func (uc *ProcessSuccessfulPaymentUseCase) Execute(ctx context.Context, cmd ProcessSuccessfulPaymentCommand) error {
	if cmd.TransactionID == "" {
		return fmt.Errorf("transaction ID is required")
	}

	var (
		accountID uint
		planName  string
		amount    string
		duplicate bool
	)

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx, err := uc.transactionRepo.GetByTransactionID(txCtx, cmd.TransactionID)
		if err != nil {
			return err
		}
		accountID = tx.AccountID()
		amount = tx.FormattedAmount()

		if tx.Status().IsFinal() {
			duplicate = true
			return nil
		}

		if err := tx.MarkCompleted(cmd.GatewayResponse); err != nil {
			return err
		}

		settled, err := uc.transactionRepo.SettleTerminal(txCtx, tx)
		if err != nil {
			return err
		}
		if !settled {
			duplicate = true
			return nil
		}

		plan, err := uc.planRepo.GetByID(txCtx, tx.PlanID())
		if err != nil {
			return err
		}
		planName = plan.Name()

		return uc.applyToSubscription(txCtx, tx, plan)
	})
	if errors.Is(err, billing.ErrTransactionNotFound) {
		// Unknown id: nothing to settle. Logged and acknowledged so the
		// gateway stops retrying.
		uc.logger.Warnw("callback for unknown transaction, nothing to settle",
			"transaction_id", cmd.TransactionID)
		return nil
	}
	if err != nil {
		return err
	}

	if duplicate {
		uc.logger.Infow("payment already settled, acknowledging duplicate delivery",
			"transaction_id", cmd.TransactionID)
		return nil
	}

	uc.logger.Infow("payment processed",
		"transaction_id", cmd.TransactionID,
		"account_id", accountID,
		"plan", planName)

	uc.afterSettlement(accountID, cmd.TransactionID, planName, amount)

	return nil
}

func (uc *ProcessSuccessfulPaymentUseCase) applyToSubscription(ctx context.Context, tx *billing.Transaction, plan *billing.Plan) error {
	sub, err := uc.subscriptionRepo.GetByAccountID(ctx, tx.AccountID())
	if errors.Is(err, billing.ErrSubscriptionNotFound) {
		sub, err = billing.NewSubscription(tx.AccountID(), plan)
		if err != nil {
			return err
		}
		return uc.subscriptionRepo.Create(ctx, sub)
	}
	if err != nil {
		return err
	}

	if tx.IsUpgrade() {
		// The upgrade orchestration already swapped the plan; re-applying here
		// keeps the period and the used counter and tolerates the replay.
		if err := sub.ApplyUpgrade(plan); err != nil {
			return err
		}
	} else {
		if err := sub.ApplyPurchase(plan, biztime.NowUTC()); err != nil {
			return err
		}
	}

	return uc.subscriptionRepo.Update(ctx, sub)
}

func (uc *ProcessSuccessfulPaymentUseCase) afterSettlement(accountID uint, transactionID, planName, amount string) {
	if uc.quotaCache != nil {
		goroutine.SafeGo(uc.logger, "payment-success-cache-invalidate", func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := uc.quotaCache.Invalidate(cacheCtx, accountID); err != nil {
				uc.logger.Warnw("failed to invalidate quota cache", "account_id", accountID, "error", err)
			}
		})
	}

	if uc.paymentNotifier == nil {
		return
	}

	goroutine.SafeGo(uc.logger, "payment-success-notify", func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := uc.paymentNotifier.NotifyPaymentSuccess(notifyCtx, accountID, transactionID, planName, amount); err != nil {
			uc.logger.Warnw("failed to send payment success notification",
				"transaction_id", transactionID, "error", err)
		}
	})
}
