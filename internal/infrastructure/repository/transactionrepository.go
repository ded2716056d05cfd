package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mensajio/internal/domain/billing"
	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/infrastructure/persistence/mappers"
	"mensajio/internal/infrastructure/persistence/models"
	"mensajio/internal/shared/db"
	apperrors "mensajio/internal/shared/errors"
)

type TransactionRepository struct {
	db     *gorm.DB
	mapper mappers.TransactionMapper
}

func NewTransactionRepository(database *gorm.DB) *TransactionRepository {
	return &TransactionRepository{
		db:     database,
		mapper: mappers.NewTransactionMapper(),
	}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *billing.Transaction) error {
	model, err := r.mapper.ToModel(tx)
	if err != nil {
		return fmt.Errorf("failed to map transaction: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return fmt.Errorf("transaction id already exists: %s", tx.TransactionID())
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	tx.SetID(model.ID)

	return nil
}

func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*billing.Transaction, error) {
	var model models.TransactionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("transaction_id = ?", transactionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *TransactionRepository) Update(ctx context.Context, tx *billing.Transaction) error {
	model, err := r.mapper.ToModel(tx)
	if err != nil {
		return fmt.Errorf("failed to map transaction: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TransactionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":           model.Status,
			"gateway_response": model.GatewayResponse,
			"processed_at":     model.ProcessedAt,
			"metadata":         model.Metadata,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}

	return nil
}

// SettleTerminal writes the terminal state with the WHERE clause still
// matching pending. A duplicate gateway delivery loses the guarded UPDATE and
// gets false back, leaving the first settlement untouched.
func (r *TransactionRepository) SettleTerminal(ctx context.Context, tx *billing.Transaction) (bool, error) {
	model, err := r.mapper.ToModel(tx)
	if err != nil {
		return false, fmt.Errorf("failed to map transaction: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TransactionModel{}).
		Where("id = ? AND status = ?", model.ID, vo.TransactionStatusPending.String()).
		Updates(map[string]interface{}{
			"status":           model.Status,
			"gateway_response": model.GatewayResponse,
			"processed_at":     model.ProcessedAt,
			"metadata":         model.Metadata,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to settle transaction: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *TransactionRepository) GetRecentByAccountID(ctx context.Context, accountID uint, limit int) ([]*billing.Transaction, error) {
	var transactionModels []*models.TransactionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactionModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}

	return r.mapper.ToEntities(transactionModels)
}

func (r *TransactionRepository) CountByPlanID(ctx context.Context, planID uint) (int64, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.TransactionModel{}).
		Where("plan_id = ?", planID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions by plan: %w", err)
	}

	return count, nil
}
