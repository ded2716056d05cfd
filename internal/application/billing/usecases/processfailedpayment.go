package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mensajio/internal/domain/billing"
	"mensajio/internal/shared/goroutine"
	"mensajio/internal/shared/logger"
)

// ProcessFailedPaymentCommand settles a pending transaction as failed. The
// subscription is left untouched: a failed purchase never revokes quota the
// account already has.
type ProcessFailedPaymentCommand struct {
	TransactionID string
	Reason        string
}

type ProcessFailedPaymentUseCase struct {
	transactionRepo billing.TransactionRepository
	paymentNotifier PaymentNotifier // Optional
	logger          logger.Interface
}

func NewProcessFailedPaymentUseCase(
	transactionRepo billing.TransactionRepository,
	logger logger.Interface,
) *ProcessFailedPaymentUseCase {
	return &ProcessFailedPaymentUseCase{
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// SetPaymentNotifier sets the payment notifier (optional dependency injection)
func (uc *ProcessFailedPaymentUseCase) SetPaymentNotifier(notifier PaymentNotifier) {
	uc.paymentNotifier = notifier
}

func (uc *ProcessFailedPaymentUseCase) Execute(ctx context.Context, cmd ProcessFailedPaymentCommand) error {
	if cmd.TransactionID == "" {
		return fmt.Errorf("transaction ID is required")
	}

	tx, err := uc.transactionRepo.GetByTransactionID(ctx, cmd.TransactionID)
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

	if tx.Status().IsFinal() {
		uc.logger.Infow("payment already settled, acknowledging duplicate delivery",
			"transaction_id", cmd.TransactionID)
		return nil
	}

	if err := tx.MarkFailed(cmd.Reason); err != nil {
		return err
	}

	settled, err := uc.transactionRepo.SettleTerminal(ctx, tx)
	if err != nil {
		return err
	}
	if !settled {
		uc.logger.Infow("payment settled by concurrent writer, acknowledging duplicate delivery",
			"transaction_id", cmd.TransactionID)
		return nil
	}

	uc.logger.Infow("payment marked failed",
		"transaction_id", cmd.TransactionID,
		"account_id", tx.AccountID(),
		"reason", cmd.Reason)

	if uc.paymentNotifier != nil {
		accountID := tx.AccountID()
		goroutine.SafeGo(uc.logger, "payment-failure-notify", func() {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := uc.paymentNotifier.NotifyPaymentFailure(notifyCtx, accountID, cmd.TransactionID, cmd.Reason); err != nil {
				uc.logger.Warnw("failed to send payment failure notification",
					"transaction_id", cmd.TransactionID, "error", err)
			}
		})
	}

	return nil
}
