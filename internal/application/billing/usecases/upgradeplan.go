package usecases

import (
	"context"
	"fmt"

	"mensajio/internal/domain/billing"
	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/shared/db"
	"mensajio/internal/shared/logger"
)

// UpgradePlanCommand moves an account to a plan with a higher message quota.
// The upgrade transaction and the subscription plan swap commit as one unit;
// the payment settlement later confirms the already-applied upgrade.
type UpgradePlanCommand struct {
	AccountID uint
	NewPlanID uint
	Gateway   string
}

type UpgradePlanUseCase struct {
	planRepo            billing.PlanRepository
	subscriptionRepo    billing.SubscriptionRepository
	createTransactionUC *CreateTransactionUseCase
	txManager           *db.TransactionManager
	logger              logger.Interface
}

func NewUpgradePlanUseCase(
	planRepo billing.PlanRepository,
	subscriptionRepo billing.SubscriptionRepository,
	createTransactionUC *CreateTransactionUseCase,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *UpgradePlanUseCase {
	return &UpgradePlanUseCase{
		planRepo:            planRepo,
		subscriptionRepo:    subscriptionRepo,
		createTransactionUC: createTransactionUC,
		txManager:           txManager,
		logger:              logger,
	}
}

// Execute opens the upgrade transaction and applies the plan swap to the
// subscription inside one storage transaction. When the ledger update fails
// the whole unit rolls back, so no transaction is left implying a half-done
// upgrade. Usage is deliberately carried over; only the ceiling moves.
func (uc *UpgradePlanUseCase) Execute(ctx context.Context, cmd UpgradePlanCommand) (*CreateTransactionResult, error) {
	if cmd.AccountID == 0 {
		return nil, fmt.Errorf("account ID is required")
	}

	var (
		result   *CreateTransactionResult
		fromPlan string
		toPlan   string
	)

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		sub, err := uc.subscriptionRepo.GetByAccountID(txCtx, cmd.AccountID)
		if err != nil {
			return err
		}
		if sub.Status().IsTerminal() {
			return billing.ErrSubscriptionInactive
		}

		newPlan, err := uc.planRepo.GetByID(txCtx, cmd.NewPlanID)
		if err != nil {
			return err
		}
		if !newPlan.IsActive() {
			return billing.ErrPlanInactive
		}

		// Upgrades are monotonic: the target quota must exceed the current one.
		if newPlan.MessageLimit() <= sub.MessagesLimit() {
			return billing.ErrInvalidUpgrade
		}

		currentPlan, err := uc.planRepo.GetByID(txCtx, sub.PlanID())
		if err != nil {
			return err
		}
		fromPlan = currentPlan.Name()
		toPlan = newPlan.Name()

		result, err = uc.createTransactionUC.Execute(txCtx, CreateTransactionCommand{
			AccountID: cmd.AccountID,
			PlanID:    newPlan.ID(),
			Type:      vo.TransactionTypeUpgrade,
			Gateway:   cmd.Gateway,
			Metadata: map[string]interface{}{
				"upgrade_from": currentPlan.Name(),
				"upgrade_to":   newPlan.Name(),
			},
		})
		if err != nil {
			return err
		}

		if err := sub.Upgrade(newPlan); err != nil {
			return err
		}

		return uc.subscriptionRepo.Update(txCtx, sub)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("plan upgrade applied",
		"account_id", cmd.AccountID,
		"transaction_id", result.TransactionID,
		"from_plan", fromPlan,
		"to_plan", toPlan)

	return result, nil
}
