package usecases

import (
	"context"
	"fmt"
	"time"

	"mensajio/internal/domain/billing"
	"mensajio/internal/shared/biztime"
	"mensajio/internal/shared/logger"
)

// GenerateUsageReportQuery selects the account and an optional period. Zero
// period bounds default to the current business-timezone calendar month.
type GenerateUsageReportQuery struct {
	AccountID   uint
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// ReportPeriod is the report's date window.
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ReportPlan summarizes the current plan.
type ReportPlan struct {
	Name  string `json:"name"`
	Limit int    `json:"limit"`
	Price string `json:"price"`
}

// ReportUsage carries the period's counters.
type ReportUsage struct {
	MessagesUsed      int     `json:"messages_used"`
	MessagesRemaining int     `json:"messages_remaining"`
	UsagePercentage   float64 `json:"usage_percentage"`
}

// ReportTransaction is one recent transaction summary.
type ReportTransaction struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Amount string    `json:"amount"`
	Status string    `json:"status"`
	Date   time.Time `json:"date"`
	Plan   string    `json:"plan"`
}

// UsageReport is the full report shape consumed by reporting collaborators.
type UsageReport struct {
	AccountID           uint                 `json:"account_id"`
	Period              ReportPeriod         `json:"period"`
	CurrentPlan         ReportPlan           `json:"current_plan"`
	Usage               ReportUsage          `json:"usage"`
	ConsumptionBySource map[string]int64     `json:"consumption_by_source"`
	DailyTrend          []billing.DailyCount `json:"daily_trend"`
	Transactions        []ReportTransaction  `json:"transactions"`
}

type GenerateUsageReportUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	transactionRepo  billing.TransactionRepository
	consumptionRepo  billing.ConsumptionLogRepository
	trendDays        int
	recentMax        int
	logger           logger.Interface
}

func NewGenerateUsageReportUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	transactionRepo billing.TransactionRepository,
	consumptionRepo billing.ConsumptionLogRepository,
	trendDays, recentMax int,
	logger logger.Interface,
) *GenerateUsageReportUseCase {
	if trendDays <= 0 {
		trendDays = 30
	}
	if recentMax <= 0 {
		recentMax = 10
	}
	return &GenerateUsageReportUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		transactionRepo:  transactionRepo,
		consumptionRepo:  consumptionRepo,
		trendDays:        trendDays,
		recentMax:        recentMax,
		logger:           logger,
	}
}

func (uc *GenerateUsageReportUseCase) Execute(ctx context.Context, query GenerateUsageReportQuery) (*UsageReport, error) {
	if query.AccountID == 0 {
		return nil, fmt.Errorf("account ID is required")
	}

	sub, err := uc.subscriptionRepo.GetByAccountID(ctx, query.AccountID)
	if err != nil {
		return nil, err
	}

	plan, err := uc.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		return nil, err
	}

	start, end := query.PeriodStart, query.PeriodEnd
	if start.IsZero() || end.IsZero() {
		start, end = biztime.CurrentMonthPeriod(biztime.NowUTC())
	}

	breakdown, err := uc.consumptionRepo.CountBySource(ctx, query.AccountID, start, end)
	if err != nil {
		return nil, err
	}

	trend, err := uc.consumptionRepo.DailyTrend(ctx, query.AccountID, uc.trendDays)
	if err != nil {
		return nil, err
	}

	recent, err := uc.transactionRepo.GetRecentByAccountID(ctx, query.AccountID, uc.recentMax)
	if err != nil {
		return nil, err
	}

	transactions, err := uc.summarize(ctx, recent)
	if err != nil {
		return nil, err
	}

	bySource := make(map[string]int64, len(breakdown))
	for source, count := range breakdown {
		bySource[source.String()] = count
	}

	return &UsageReport{
		AccountID: query.AccountID,
		Period:    ReportPeriod{Start: start, End: end},
		CurrentPlan: ReportPlan{
			Name:  plan.Name(),
			Limit: plan.MessageLimit(),
			Price: plan.Price().Formatted(),
		},
		Usage: ReportUsage{
			MessagesUsed:      sub.MessagesUsed(),
			MessagesRemaining: sub.MessagesRemaining(),
			UsagePercentage:   sub.UsagePercentage(),
		},
		ConsumptionBySource: bySource,
		DailyTrend:          trend,
		Transactions:        transactions,
	}, nil
}

func (uc *GenerateUsageReportUseCase) summarize(ctx context.Context, recent []*billing.Transaction) ([]ReportTransaction, error) {
	planNames := make(map[uint]string)
	summaries := make([]ReportTransaction, 0, len(recent))

	for _, tx := range recent {
		name, ok := planNames[tx.PlanID()]
		if !ok {
			plan, err := uc.planRepo.GetByID(ctx, tx.PlanID())
			if err != nil {
				return nil, err
			}
			name = plan.Name()
			planNames[tx.PlanID()] = name
		}

		summaries = append(summaries, ReportTransaction{
			ID:     tx.TransactionID(),
			Type:   tx.Type().String(),
			Amount: tx.FormattedAmount(),
			Status: tx.Status().String(),
			Date:   tx.CreatedAt(),
			Plan:   name,
		})
	}

	return summaries, nil
}
