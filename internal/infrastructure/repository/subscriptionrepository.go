package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mensajio/internal/domain/billing"
	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/infrastructure/persistence/mappers"
	"mensajio/internal/infrastructure/persistence/models"
	"mensajio/internal/shared/biztime"
	"mensajio/internal/shared/db"
	apperrors "mensajio/internal/shared/errors"
)

type SubscriptionRepository struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
}

func NewSubscriptionRepository(database *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:     database,
		mapper: mappers.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *billing.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		return fmt.Errorf("failed to map subscription: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return billing.ErrSubscriptionExists
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return sub.SetID(model.ID)
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uint) (*billing.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepository) GetByAccountID(ctx context.Context, accountID uint) (*billing.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("account_id = ?", accountID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription by account: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepository) Update(ctx context.Context, sub *billing.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		return fmt.Errorf("failed to map subscription: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"plan_id":        model.PlanID,
			"status":         model.Status,
			"period_start":   model.PeriodStart,
			"period_end":     model.PeriodEnd,
			"messages_limit": model.MessagesLimit,
			"messages_used":  model.MessagesUsed,
			"last_reset_at":  model.LastResetAt,
			"metadata":       model.Metadata,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}

	// RowsAffected may be 0 when updated values equal the existing row.

	return nil
}

// ConsumeQuota increments messages_used with a single conditional UPDATE. The
// guard on status and remaining quota lives in the WHERE clause, so two
// concurrent consumers racing on the last message cannot both win: the
// database serializes the row update and exactly one UPDATE matches.
func (r *SubscriptionRepository) ConsumeQuota(ctx context.Context, accountID uint) (*billing.ConsumeOutcome, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.SubscriptionModel{}).
		Where("account_id = ? AND status = ? AND messages_used < messages_limit",
			accountID, vo.StatusActive.String()).
		Updates(map[string]interface{}{
			"messages_used": gorm.Expr("messages_used + 1"),
			"updated_at":    biztime.NowUTC(),
		})

	if result.Error != nil {
		return nil, fmt.Errorf("failed to consume quota: %w", result.Error)
	}

	var model models.SubscriptionModel
	if err := tx.Where("account_id = ?", accountID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to reread subscription: %w", err)
	}

	remaining := model.MessagesLimit - model.MessagesUsed
	if remaining < 0 {
		remaining = 0
	}

	if result.RowsAffected == 1 {
		return &billing.ConsumeOutcome{Allowed: true, Remaining: remaining}, nil
	}

	refusal := billing.ErrQuotaExceeded
	if !vo.SubscriptionStatus(model.Status).CanConsume() {
		refusal = billing.ErrSubscriptionInactive
	}

	return &billing.ConsumeOutcome{Allowed: false, Remaining: remaining, Refusal: refusal}, nil
}

// FindRenewable returns ids of active subscriptions whose period closed before
// now. The sweep snapshots ids first and processes rows one by one so a
// failure on one account does not block the rest.
func (r *SubscriptionRepository) FindRenewable(ctx context.Context, now time.Time, offset, limit int) ([]uint, error) {
	var ids []uint

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("status = ? AND period_end < ?", vo.StatusActive.String(), now).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to find renewable subscriptions: %w", err)
	}

	return ids, nil
}

func (r *SubscriptionRepository) FindExceededActive(ctx context.Context, offset, limit int) ([]uint, error) {
	var ids []uint

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("status = ? AND messages_used >= messages_limit", vo.StatusActive.String()).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to find exceeded subscriptions: %w", err)
	}

	return ids, nil
}

func (r *SubscriptionRepository) CountByPlanID(ctx context.Context, planID uint) (int64, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("plan_id = ?", planID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count subscriptions by plan: %w", err)
	}

	return count, nil
}

func (r *SubscriptionRepository) CountByStatus(ctx context.Context, status vo.SubscriptionStatus) (int64, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("status = ?", status.String()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count subscriptions by status: %w", err)
	}

	return count, nil
}
