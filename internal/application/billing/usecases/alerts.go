package usecases

import (
	"context"
	"fmt"
	"math"

	"mensajio/internal/domain/billing"
	"mensajio/internal/shared/logger"
)

// AlertType classifies an alert's severity.
type AlertType string

const (
	AlertInfo    AlertType = "info"
	AlertWarning AlertType = "warning"
	AlertDanger  AlertType = "danger"
)

// Alert is one entry of the account's billing alert feed.
type Alert struct {
	Type    AlertType `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Action  string    `json:"action"`
}

// BuildAlertsUseCase derives the ordered alert feed from subscription state:
// danger when the limit is exceeded, warning near the limit, info when the
// renewal is close.
type BuildAlertsUseCase struct {
	subscriptionRepo   billing.SubscriptionRepository
	nearLimitThreshold float64
	renewalAlertDays   int
	logger             logger.Interface
}

func NewBuildAlertsUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	nearLimitThreshold float64,
	renewalAlertDays int,
	logger logger.Interface,
) *BuildAlertsUseCase {
	if nearLimitThreshold <= 0 {
		nearLimitThreshold = 80
	}
	if renewalAlertDays <= 0 {
		renewalAlertDays = 3
	}
	return &BuildAlertsUseCase{
		subscriptionRepo:   subscriptionRepo,
		nearLimitThreshold: nearLimitThreshold,
		renewalAlertDays:   renewalAlertDays,
		logger:             logger,
	}
}

func (uc *BuildAlertsUseCase) Execute(ctx context.Context, accountID uint) ([]Alert, error) {
	if accountID == 0 {
		return nil, fmt.Errorf("account ID is required")
	}

	sub, err := uc.subscriptionRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	alerts := make([]Alert, 0, 2)

	switch {
	case sub.LimitExceeded():
		alerts = append(alerts, Alert{
			Type:    AlertDanger,
			Title:   "Límite de mensajes excedido",
			Message: "Has alcanzado el límite de mensajes de tu plan. Actualiza tu plan para continuar enviando mensajes.",
			Action:  "upgrade_plan",
		})
	case sub.NearLimit(uc.nearLimitThreshold):
		alerts = append(alerts, Alert{
			Type:    AlertWarning,
			Title:   "Cerca del límite de mensajes",
			Message: fmt.Sprintf("Has usado %d%% de tus mensajes mensuales.", int(math.Round(sub.UsagePercentage()))),
			Action:  "view_usage",
		})
	}

	if days := sub.DaysUntilRenewal(); days <= uc.renewalAlertDays {
		alerts = append(alerts, Alert{
			Type:    AlertInfo,
			Title:   "Renovación próxima",
			Message: fmt.Sprintf("Tu plan se renovará en %d días.", days),
			Action:  "view_billing",
		})
	}

	return alerts, nil
}
