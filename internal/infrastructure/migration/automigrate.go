package migration

import (
	"mensajio/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.PlanModel{},
		&models.SubscriptionModel{},
		&models.TransactionModel{},
		&models.ConsumptionLogModel{},
	}
}
