package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mensajio/internal/domain/billing"
	"mensajio/internal/infrastructure/persistence/mappers"
	"mensajio/internal/infrastructure/persistence/models"
	"mensajio/internal/shared/db"
	apperrors "mensajio/internal/shared/errors"
)

type PlanRepository struct {
	db     *gorm.DB
	mapper mappers.PlanMapper
}

func NewPlanRepository(database *gorm.DB) *PlanRepository {
	return &PlanRepository{
		db:     database,
		mapper: mappers.NewPlanMapper(),
	}
}

func (r *PlanRepository) Create(ctx context.Context, plan *billing.Plan) error {
	model, err := r.mapper.ToModel(plan)
	if err != nil {
		return fmt.Errorf("failed to map plan: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return billing.ErrPlanNameExists
		}
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return plan.SetID(model.ID)
}

func (r *PlanRepository) GetByID(ctx context.Context, id uint) (*billing.Plan, error) {
	var model models.PlanModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *PlanRepository) GetByName(ctx context.Context, name string) (*billing.Plan, error) {
	var model models.PlanModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("name = ?", name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan by name: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *PlanRepository) Update(ctx context.Context, plan *billing.Plan) error {
	model, err := r.mapper.ToModel(plan)
	if err != nil {
		return fmt.Errorf("failed to map plan: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PlanModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":             model.Name,
			"description":      model.Description,
			"message_limit":    model.MessageLimit,
			"price_cents":      model.PriceCents,
			"currency":         model.Currency,
			"active":           model.Active,
			"features":         model.Features,
			"payment_link_url": model.PaymentLinkURL,
			"sort_order":       model.SortOrder,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return billing.ErrPlanNameExists
		}
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}

	return nil
}

// Delete soft-deletes the plan after verifying no subscription or transaction
// still references it.
func (r *PlanRepository) Delete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	var subscriptionCount int64
	if err := tx.Model(&models.SubscriptionModel{}).
		Where("plan_id = ?", id).
		Count(&subscriptionCount).Error; err != nil {
		return fmt.Errorf("failed to count plan subscriptions: %w", err)
	}
	if subscriptionCount > 0 {
		return billing.ErrPlanInUse
	}

	var transactionCount int64
	if err := tx.Model(&models.TransactionModel{}).
		Where("plan_id = ?", id).
		Count(&transactionCount).Error; err != nil {
		return fmt.Errorf("failed to count plan transactions: %w", err)
	}
	if transactionCount > 0 {
		return billing.ErrPlanInUse
	}

	result := tx.Delete(&models.PlanModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return billing.ErrPlanNotFound
	}

	return nil
}

func (r *PlanRepository) ListActive(ctx context.Context) ([]*billing.Plan, error) {
	var planModels []*models.PlanModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("active = ?", true).
		Order("sort_order ASC, message_limit ASC").
		Find(&planModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}

	return r.mapper.ToEntities(planModels)
}

func (r *PlanRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PlanModel{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check plan name: %w", err)
	}

	return count > 0, nil
}
