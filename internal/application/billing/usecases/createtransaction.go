package usecases

import (
	"context"
	"fmt"

	"mensajio/internal/domain/billing"
	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/shared/logger"
)

// CreateTransactionCommand opens a pending transaction for a plan purchase or
// upgrade. Gateway defaults to the configured gateway when empty.
type CreateTransactionCommand struct {
	AccountID uint
	PlanID    uint
	Type      vo.TransactionType
	Gateway   string
	Metadata  map[string]interface{}
}

// CreateTransactionResult carries what the caller needs to send the account
// to checkout.
type CreateTransactionResult struct {
	TransactionID   string
	Status          vo.TransactionStatus
	FormattedAmount string
	PaymentLinkURL  string
}

type CreateTransactionUseCase struct {
	planRepo        billing.PlanRepository
	transactionRepo billing.TransactionRepository
	defaultGateway  string
	logger          logger.Interface
}

func NewCreateTransactionUseCase(
	planRepo billing.PlanRepository,
	transactionRepo billing.TransactionRepository,
	defaultGateway string,
	logger logger.Interface,
) *CreateTransactionUseCase {
	return &CreateTransactionUseCase{
		planRepo:        planRepo,
		transactionRepo: transactionRepo,
		defaultGateway:  defaultGateway,
		logger:          logger,
	}
}

func (uc *CreateTransactionUseCase) Execute(ctx context.Context, cmd CreateTransactionCommand) (*CreateTransactionResult, error) {
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

	gateway := cmd.Gateway
	if gateway == "" {
		gateway = uc.defaultGateway
	}

	tx, err := billing.NewTransaction(cmd.AccountID, plan, cmd.Type, gateway, cmd.Metadata)
	if err != nil {
		return nil, err
	}

	if err := uc.transactionRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	uc.logger.Infow("transaction created",
		"transaction_id", tx.TransactionID(),
		"account_id", cmd.AccountID,
		"plan_id", plan.ID(),
		"type", cmd.Type,
		"gateway", gateway)

	return &CreateTransactionResult{
		TransactionID:   tx.TransactionID(),
		Status:          tx.Status(),
		FormattedAmount: tx.FormattedAmount(),
		PaymentLinkURL:  plan.PaymentLinkURL(),
	}, nil
}
