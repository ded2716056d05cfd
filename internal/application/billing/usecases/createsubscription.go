package usecases

import (
	"context"
	"fmt"

	"mensajio/internal/domain/billing"
	"mensajio/internal/shared/logger"
)

// CreateSubscriptionCommand enrolls an account on a plan, opening the
// current-month billing period with a zero used counter.
type CreateSubscriptionCommand struct {
	AccountID uint
	PlanID    uint
}

type CreateSubscriptionUseCase struct {
	planRepo         billing.PlanRepository
	subscriptionRepo billing.SubscriptionRepository
	logger           logger.Interface
}

func NewCreateSubscriptionUseCase(
	planRepo billing.PlanRepository,
	subscriptionRepo billing.SubscriptionRepository,
	logger logger.Interface,
) *CreateSubscriptionUseCase {
	return &CreateSubscriptionUseCase{
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *CreateSubscriptionUseCase) Execute(ctx context.Context, cmd CreateSubscriptionCommand) (*billing.Subscription, error) {
	if cmd.AccountID == 0 {
		return nil, fmt.Errorf("account ID is required")
	}

	plan, err := uc.planRepo.GetByID(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive() {
		return nil, billing.ErrPlanInactive
	}

	sub, err := billing.NewSubscription(cmd.AccountID, plan)
	if err != nil {
		return nil, err
	}

	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	uc.logger.Infow("subscription created",
		"account_id", cmd.AccountID,
		"plan", plan.Name(),
		"messages_limit", plan.MessageLimit())

	return sub, nil
}
