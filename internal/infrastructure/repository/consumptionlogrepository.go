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

type ConsumptionLogRepository struct {
	db     *gorm.DB
	mapper mappers.ConsumptionLogMapper
}

func NewConsumptionLogRepository(database *gorm.DB) *ConsumptionLogRepository {
	return &ConsumptionLogRepository{
		db:     database,
		mapper: mappers.NewConsumptionLogMapper(),
	}
}

func (r *ConsumptionLogRepository) Append(ctx context.Context, record *billing.ConsumptionRecord) error {
	model, err := r.mapper.ToModel(record)
	if err != nil {
		return fmt.Errorf("failed to map consumption record: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return billing.ErrDuplicateConsumption
		}
		return fmt.Errorf("failed to append consumption record: %w", err)
	}

	record.SetID(model.ID)

	return nil
}

func (r *ConsumptionLogRepository) GetByMessageID(ctx context.Context, messageID uint) (*billing.ConsumptionRecord, error) {
	var model models.ConsumptionLogModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("message_id = ?", messageID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("consumption record not found for message %d", messageID)
		}
		return nil, fmt.Errorf("failed to get consumption record: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *ConsumptionLogRepository) CountByAccountAndRange(ctx context.Context, accountID uint, from, to time.Time) (int64, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ConsumptionLogModel{}).
		Where("account_id = ? AND consumption_date >= ? AND consumption_date <= ?", accountID, from, to).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count consumption: %w", err)
	}

	return count, nil
}

func (r *ConsumptionLogRepository) CountBySource(ctx context.Context, accountID uint, from, to time.Time) (billing.SourceBreakdown, error) {
	var rows []struct {
		Source string
		Count  int64
	}

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ConsumptionLogModel{}).
		Select("source, COUNT(*) as count").
		Where("account_id = ? AND consumption_date >= ? AND consumption_date <= ?", accountID, from, to).
		Group("source").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count consumption by source: %w", err)
	}

	breakdown := make(billing.SourceBreakdown, len(rows))
	for _, row := range rows {
		breakdown[vo.ConsumptionSource(row.Source)] = row.Count
	}

	return breakdown, nil
}

// DailyTrend returns one count per business-timezone day for the last days
// days, oldest first. Days without consumption appear with a zero count.
func (r *ConsumptionLogRepository) DailyTrend(ctx context.Context, accountID uint, days int) ([]billing.DailyCount, error) {
	if days <= 0 {
		return nil, nil
	}

	today := biztime.DateInBiz(biztime.NowUTC())
	from := today.AddDate(0, 0, -(days - 1))

	var rows []struct {
		ConsumptionDate time.Time
		Count           int64
	}

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ConsumptionLogModel{}).
		Select("consumption_date, COUNT(*) as count").
		Where("account_id = ? AND consumption_date >= ?", accountID, from).
		Group("consumption_date").
		Order("consumption_date ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to build daily trend: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ConsumptionDate.Format("2006-01-02")] = row.Count
	}

	trend := make([]billing.DailyCount, 0, days)
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i)
		trend = append(trend, billing.DailyCount{
			Date:  day,
			Count: counts[day.Format("2006-01-02")],
		})
	}

	return trend, nil
}
