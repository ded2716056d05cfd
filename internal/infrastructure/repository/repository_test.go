package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mensajio/internal/domain/billing"
	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.PlanModel{},
		&models.SubscriptionModel{},
		&models.TransactionModel{},
		&models.ConsumptionLogModel{},
	)
	require.NoError(t, err)

	return db
}

func createTestPlan(t *testing.T, db *gorm.DB, name string, messageLimit int, priceCents int64) *billing.Plan {
	plan, err := billing.NewPlan(name, "Test plan", messageLimit, vo.NewMoney(priceCents, "USD"))
	require.NoError(t, err)

	err = NewPlanRepository(db).Create(context.Background(), plan)
	require.NoError(t, err)

	return plan
}

func createTestSubscription(t *testing.T, db *gorm.DB, accountID uint, plan *billing.Plan) *billing.Subscription {
	sub, err := billing.NewSubscription(accountID, plan)
	require.NoError(t, err)

	err = NewSubscriptionRepository(db).Create(context.Background(), sub)
	require.NoError(t, err)

	return sub
}
