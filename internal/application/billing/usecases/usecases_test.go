package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mensajio/internal/domain/billing"
	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/infrastructure/persistence/models"
	"mensajio/internal/infrastructure/repository"
	"mensajio/internal/shared/db"
	"mensajio/internal/shared/logger"
)

type testEnv struct {
	db               *gorm.DB
	planRepo         *repository.PlanRepository
	subscriptionRepo *repository.SubscriptionRepository
	transactionRepo  *repository.TransactionRepository
	consumptionRepo  *repository.ConsumptionLogRepository
	txManager        *db.TransactionManager
	logger           logger.Interface
}

func setupEnv(t *testing.T) *testEnv {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = gdb.AutoMigrate(
		&models.PlanModel{},
		&models.SubscriptionModel{},
		&models.TransactionModel{},
		&models.ConsumptionLogModel{},
	)
	require.NoError(t, err)

	return &testEnv{
		db:               gdb,
		planRepo:         repository.NewPlanRepository(gdb),
		subscriptionRepo: repository.NewSubscriptionRepository(gdb),
		transactionRepo:  repository.NewTransactionRepository(gdb),
		consumptionRepo:  repository.NewConsumptionLogRepository(gdb),
		txManager:        db.NewTransactionManager(gdb),
		logger:           logger.NewLogger(),
	}
}

func (e *testEnv) createPlan(t *testing.T, name string, limit int, priceCents int64) *billing.Plan {
	plan, err := billing.NewPlan(name, "Test plan", limit, vo.NewMoney(priceCents, "USD"))
	require.NoError(t, err)
	plan.SetFeature(billing.FeatureAutoRenewal, true)
	require.NoError(t, e.planRepo.Create(context.Background(), plan))
	return plan
}

func (e *testEnv) createSubscription(t *testing.T, accountID uint, plan *billing.Plan) *billing.Subscription {
	sub, err := billing.NewSubscription(accountID, plan)
	require.NoError(t, err)
	require.NoError(t, e.subscriptionRepo.Create(context.Background(), sub))
	return sub
}

func (e *testEnv) setUsed(t *testing.T, accountID uint, used int) {
	err := e.db.Model(&models.SubscriptionModel{}).
		Where("account_id = ?", accountID).
		Update("messages_used", used).Error
	require.NoError(t, err)
}

func (e *testEnv) consumeUC() *ConsumeQuotaUseCase {
	return NewConsumeQuotaUseCase(e.subscriptionRepo, e.consumptionRepo, e.txManager, 80, e.logger)
}

func (e *testEnv) successUC() *ProcessSuccessfulPaymentUseCase {
	return NewProcessSuccessfulPaymentUseCase(e.transactionRepo, e.subscriptionRepo, e.planRepo, e.txManager, e.logger)
}

func TestConsumeQuota_BoundaryEnforcement(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	uc := env.consumeUC()

	plan := env.createPlan(t, "Basic", 100, 1000)
	env.createSubscription(t, 1, plan)
	env.setUsed(t, 1, 99)

	result, err := uc.Execute(ctx, ConsumeQuotaCommand{
		AccountID:      1,
		MessageID:      500,
		ConversationID: 10,
		MessageKind:    vo.MessageKindOutgoing,
		Source:         vo.SourceAgent,
	})
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)

	result, err = uc.Execute(ctx, ConsumeQuotaCommand{
		AccountID:      1,
		MessageID:      501,
		ConversationID: 10,
		MessageKind:    vo.MessageKindOutgoing,
		Source:         vo.SourceAgent,
	})
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.ErrorIs(t, result.Refusal, billing.ErrQuotaExceeded)

	sub, err := env.subscriptionRepo.GetByAccountID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, sub.MessagesUsed())
}

func TestConsumeQuota_DuplicateMessageRollsBack(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	uc := env.consumeUC()

	plan := env.createPlan(t, "Basic", 100, 1000)
	env.createSubscription(t, 1, plan)

	cmd := ConsumeQuotaCommand{
		AccountID:      1,
		MessageID:      500,
		ConversationID: 10,
		MessageKind:    vo.MessageKindIncoming,
		Source:         vo.SourceWebhook,
	}

	result, err := uc.Execute(ctx, cmd)
	require.NoError(t, err)
	require.True(t, result.Allowed)

	_, err = uc.Execute(ctx, cmd)
	assert.ErrorIs(t, err, billing.ErrDuplicateConsumption)

	// The refused retry must not have advanced the counter.
	sub, err := env.subscriptionRepo.GetByAccountID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, sub.MessagesUsed())
}

func TestConsumeQuota_InactiveSubscription(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	uc := env.consumeUC()

	plan := env.createPlan(t, "Basic", 100, 1000)
	sub := env.createSubscription(t, 1, plan)
	require.NoError(t, sub.Suspend())
	require.NoError(t, env.subscriptionRepo.Update(ctx, sub))

	result, err := uc.Execute(ctx, ConsumeQuotaCommand{
		AccountID:      1,
		MessageID:      500,
		ConversationID: 10,
		MessageKind:    vo.MessageKindOutgoing,
		Source:         vo.SourceBot,
	})
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.ErrorIs(t, result.Refusal, billing.ErrSubscriptionInactive)
}

func TestProcessSuccessfulPayment_Purchase(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	plan := env.createPlan(t, "Basic", 100, 1000)

	createUC := NewCreateTransactionUseCase(env.planRepo, env.transactionRepo, billing.DefaultGateway, env.logger)
	created, err := createUC.Execute(ctx, CreateTransactionCommand{
		AccountID: 1,
		PlanID:    plan.ID(),
		Type:      vo.TransactionTypePurchase,
	})
	require.NoError(t, err)
	assert.Equal(t, vo.TransactionStatusPending, created.Status)
	assert.Equal(t, "$10", created.FormattedAmount)

	err = env.successUC().Execute(ctx, ProcessSuccessfulPaymentCommand{
		TransactionID:   created.TransactionID,
		GatewayResponse: map[string]interface{}{"status": "approved"},
	})
	require.NoError(t, err)

	sub, err := env.subscriptionRepo.GetByAccountID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.Equal(t, 0, sub.MessagesUsed())
	assert.Equal(t, 100, sub.MessagesLimit())

	settled, err := env.transactionRepo.GetByTransactionID(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, vo.TransactionStatusCompleted, settled.Status())
}

func TestProcessSuccessfulPayment_DuplicateDelivery(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	plan := env.createPlan(t, "Basic", 100, 1000)
	createUC := NewCreateTransactionUseCase(env.planRepo, env.transactionRepo, billing.DefaultGateway, env.logger)
	created, err := createUC.Execute(ctx, CreateTransactionCommand{
		AccountID: 1,
		PlanID:    plan.ID(),
		Type:      vo.TransactionTypePurchase,
	})
	require.NoError(t, err)

	uc := env.successUC()
	require.NoError(t, uc.Execute(ctx, ProcessSuccessfulPaymentCommand{
		TransactionID:   created.TransactionID,
		GatewayResponse: map[string]interface{}{"status": "approved"},
	}))

	sub, err := env.subscriptionRepo.GetByAccountID(ctx, 1)
	require.NoError(t, err)
	versionAfterFirst := sub.Version()

	// Second delivery with a different payload must change nothing.
	require.NoError(t, uc.Execute(ctx, ProcessSuccessfulPaymentCommand{
		TransactionID:   created.TransactionID,
		GatewayResponse: map[string]interface{}{"status": "approved", "retry": true},
	}))

	sub, err = env.subscriptionRepo.GetByAccountID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, versionAfterFirst, sub.Version())
}

func TestProcessSuccessfulPayment_UpgradeKeepsUsed(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	basic := env.createPlan(t, "Basic", 100, 1000)
	pro := env.createPlan(t, "Pro", 1000, 5000)

	env.createSubscription(t, 1, basic)
	env.setUsed(t, 1, 42)

	createUC := NewCreateTransactionUseCase(env.planRepo, env.transactionRepo, billing.DefaultGateway, env.logger)
	upgradeUC := NewUpgradePlanUseCase(env.planRepo, env.subscriptionRepo, createUC, env.txManager, env.logger)

	created, err := upgradeUC.Execute(ctx, UpgradePlanCommand{AccountID: 1, NewPlanID: pro.ID()})
	require.NoError(t, err)

	// The plan swap lands together with the opened transaction, before any
	// settlement arrives.
	sub, err := env.subscriptionRepo.GetByAccountID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, pro.ID(), sub.PlanID())
	assert.Equal(t, 1000, sub.MessagesLimit())
	assert.Equal(t, 42, sub.MessagesUsed())

	tx, err := env.transactionRepo.GetByTransactionID(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, vo.TransactionStatusPending, tx.Status())

	require.NoError(t, env.successUC().Execute(ctx, ProcessSuccessfulPaymentCommand{
		TransactionID:   created.TransactionID,
		GatewayResponse: map[string]interface{}{"status": "approved"},
	}))

	// Settling against an already-raised limit changes nothing but the
	// transaction status.
	sub, err = env.subscriptionRepo.GetByAccountID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, pro.ID(), sub.PlanID())
	assert.Equal(t, 1000, sub.MessagesLimit())
	assert.Equal(t, 42, sub.MessagesUsed())

	tx, err = env.transactionRepo.GetByTransactionID(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, vo.TransactionStatusCompleted, tx.Status())
}

func TestUpgradePlan_NonMonotonicRefused(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	pro := env.createPlan(t, "Pro", 1000, 5000)
	basic := env.createPlan(t, "Basic", 100, 1000)

	env.createSubscription(t, 1, pro)

	createUC := NewCreateTransactionUseCase(env.planRepo, env.transactionRepo, billing.DefaultGateway, env.logger)
	upgradeUC := NewUpgradePlanUseCase(env.planRepo, env.subscriptionRepo, createUC, env.txManager, env.logger)

	_, err := upgradeUC.Execute(ctx, UpgradePlanCommand{AccountID: 1, NewPlanID: basic.ID()})
	assert.ErrorIs(t, err, billing.ErrInvalidUpgrade)

	_, err = upgradeUC.Execute(ctx, UpgradePlanCommand{AccountID: 1, NewPlanID: pro.ID()})
	assert.ErrorIs(t, err, billing.ErrInvalidUpgrade)
}

func TestProcessFailedPayment(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	plan := env.createPlan(t, "Basic", 100, 1000)
	env.createSubscription(t, 1, plan)
	env.setUsed(t, 1, 7)

	createUC := NewCreateTransactionUseCase(env.planRepo, env.transactionRepo, billing.DefaultGateway, env.logger)
	created, err := createUC.Execute(ctx, CreateTransactionCommand{
		AccountID: 1,
		PlanID:    plan.ID(),
		Type:      vo.TransactionTypePurchase,
	})
	require.NoError(t, err)

	failUC := NewProcessFailedPaymentUseCase(env.transactionRepo, env.logger)
	require.NoError(t, failUC.Execute(ctx, ProcessFailedPaymentCommand{
		TransactionID: created.TransactionID,
		Reason:        "card declined",
	}))

	settled, err := env.transactionRepo.GetByTransactionID(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, vo.TransactionStatusFailed, settled.Status())

	// A failed purchase never touches the subscription.
	sub, err := env.subscriptionRepo.GetByAccountID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, sub.MessagesUsed())
	assert.Equal(t, vo.StatusActive, sub.Status())
}

func TestProcessGatewayCallback_Routing(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	plan := env.createPlan(t, "Basic", 100, 1000)
	createUC := NewCreateTransactionUseCase(env.planRepo, env.transactionRepo, billing.DefaultGateway, env.logger)
	failUC := NewProcessFailedPaymentUseCase(env.transactionRepo, env.logger)
	callbackUC := NewProcessGatewayCallbackUseCase(env.successUC(), failUC, env.logger)

	t.Run("unknown status leaves transaction pending", func(t *testing.T) {
		created, err := createUC.Execute(ctx, CreateTransactionCommand{
			AccountID: 1,
			PlanID:    plan.ID(),
			Type:      vo.TransactionTypePurchase,
		})
		require.NoError(t, err)

		err = callbackUC.Execute(ctx, ProcessGatewayCallbackCommand{
			TransactionID: created.TransactionID,
			Status:        "PENDING_REVIEW",
		})
		require.NoError(t, err)

		tx, err := env.transactionRepo.GetByTransactionID(ctx, created.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, vo.TransactionStatusPending, tx.Status())
	})

	t.Run("approved settles as completed", func(t *testing.T) {
		created, err := createUC.Execute(ctx, CreateTransactionCommand{
			AccountID: 2,
			PlanID:    plan.ID(),
			Type:      vo.TransactionTypePurchase,
		})
		require.NoError(t, err)

		err = callbackUC.Execute(ctx, ProcessGatewayCallbackCommand{
			TransactionID: created.TransactionID,
			Status:        "APPROVED",
			Payload:       map[string]interface{}{"reference": "wompi-123"},
		})
		require.NoError(t, err)

		tx, err := env.transactionRepo.GetByTransactionID(ctx, created.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, vo.TransactionStatusCompleted, tx.Status())
	})

	t.Run("unknown transaction id is acknowledged", func(t *testing.T) {
		// Nothing to settle: the callback is logged and acked so the gateway
		// stops retrying.
		err := callbackUC.Execute(ctx, ProcessGatewayCallbackCommand{
			TransactionID: "TXN_does_not_exist",
			Status:        "approved",
		})
		require.NoError(t, err)

		err = callbackUC.Execute(ctx, ProcessGatewayCallbackCommand{
			TransactionID: "TXN_does_not_exist",
			Status:        "declined",
		})
		require.NoError(t, err)
	})

	t.Run("declined settles as failed", func(t *testing.T) {
		created, err := createUC.Execute(ctx, CreateTransactionCommand{
			AccountID: 3,
			PlanID:    plan.ID(),
			Type:      vo.TransactionTypePurchase,
		})
		require.NoError(t, err)

		err = callbackUC.Execute(ctx, ProcessGatewayCallbackCommand{
			TransactionID: created.TransactionID,
			Status:        "declined",
			Payload:       map[string]interface{}{"status_message": "insufficient funds"},
		})
		require.NoError(t, err)

		tx, err := env.transactionRepo.GetByTransactionID(ctx, created.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, vo.TransactionStatusFailed, tx.Status())
	})
}

func TestSuspendExceededSweep(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	plan := env.createPlan(t, "Basic", 100, 1000)

	env.createSubscription(t, 1, plan)
	env.setUsed(t, 1, 100)

	env.createSubscription(t, 2, plan)
	env.setUsed(t, 2, 50)

	uc := NewSuspendExceededUseCase(env.subscriptionRepo, env.txManager, 100, env.logger)

	result, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)

	exceeded, err := env.subscriptionRepo.GetByAccountID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusSuspended, exceeded.Status())

	healthy, err := env.subscriptionRepo.GetByAccountID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusActive, healthy.Status())

	// A second run finds nothing left to suspend.
	result, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Scanned)
}

func TestResetMonthlyUsageSweep(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	plan := env.createPlan(t, "Basic", 100, 1000)
	sub := env.createSubscription(t, 1, plan)
	env.setUsed(t, 1, 80)

	// Prepaid plan without auto-renewal stays expired until a new purchase.
	prepaid, err := billing.NewPlan("Prepaid", "Test plan", 50, vo.NewMoney(500, "USD"))
	require.NoError(t, err)
	prepaid.SetFeature(billing.FeatureAutoRenewal, false)
	require.NoError(t, env.planRepo.Create(ctx, prepaid))
	env.createSubscription(t, 2, prepaid)
	env.setUsed(t, 2, 10)

	// Close both periods in the past so the sweep picks the rows up.
	past := sub.PeriodEnd().AddDate(0, -2, 0)
	for _, accountID := range []uint{1, 2} {
		err := env.db.Model(&models.SubscriptionModel{}).
			Where("account_id = ?", accountID).
			Updates(map[string]interface{}{
				"period_start": past.AddDate(0, -1, 0),
				"period_end":   past,
			}).Error
		require.NoError(t, err)
	}
	uc := NewResetMonthlyUsageUseCase(env.subscriptionRepo, env.planRepo, env.txManager, 100, env.logger)

	result, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 1, result.Processed)

	renewed, err := env.subscriptionRepo.GetByAccountID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, renewed.MessagesUsed())
	assert.False(t, renewed.IsPeriodExpired())

	skipped, err := env.subscriptionRepo.GetByAccountID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, skipped.MessagesUsed())
	assert.True(t, skipped.IsPeriodExpired())
}

type memoryQuotaCache struct {
	entries map[uint]int
}

func newMemoryQuotaCache() *memoryQuotaCache {
	return &memoryQuotaCache{entries: make(map[uint]int)}
}

func (c *memoryQuotaCache) SetRemaining(_ context.Context, accountID uint, remaining int) error {
	c.entries[accountID] = remaining
	return nil
}

func (c *memoryQuotaCache) GetRemaining(_ context.Context, accountID uint) (int, bool, error) {
	remaining, found := c.entries[accountID]
	return remaining, found, nil
}

func (c *memoryQuotaCache) Invalidate(_ context.Context, accountID uint) error {
	delete(c.entries, accountID)
	return nil
}

func TestRemainingQuota(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	plan := env.createPlan(t, "Basic", 100, 1000)
	env.createSubscription(t, 1, plan)
	env.setUsed(t, 1, 30)

	uc := NewRemainingQuotaUseCase(env.subscriptionRepo, env.logger)
	quotaCache := newMemoryQuotaCache()
	uc.SetQuotaCache(quotaCache)

	t.Run("miss falls back to ledger and repopulates", func(t *testing.T) {
		remaining, err := uc.Execute(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 70, remaining)

		cached, found, err := quotaCache.GetRemaining(ctx, 1)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 70, cached)
	})

	t.Run("hit skips the ledger", func(t *testing.T) {
		// A stale cached value is served as-is; writes invalidate it.
		require.NoError(t, quotaCache.SetRemaining(ctx, 1, 65))
		env.setUsed(t, 1, 90)

		remaining, err := uc.Execute(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 65, remaining)
	})

	t.Run("suspended account reads zero", func(t *testing.T) {
		require.NoError(t, quotaCache.Invalidate(ctx, 1))

		sub, err := env.subscriptionRepo.GetByAccountID(ctx, 1)
		require.NoError(t, err)
		require.NoError(t, sub.Suspend())
		require.NoError(t, env.subscriptionRepo.Update(ctx, sub))

		remaining, err := uc.Execute(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, remaining)
	})

	t.Run("unknown account surfaces not found", func(t *testing.T) {
		_, err := uc.Execute(ctx, 99)
		assert.ErrorIs(t, err, billing.ErrSubscriptionNotFound)
	})
}

func TestCreateSubscription(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	plan := env.createPlan(t, "Basic", 100, 1000)
	uc := NewCreateSubscriptionUseCase(env.planRepo, env.subscriptionRepo, env.logger)

	sub, err := uc.Execute(ctx, CreateSubscriptionCommand{AccountID: 1, PlanID: plan.ID()})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.Equal(t, 0, sub.MessagesUsed())

	_, err = uc.Execute(ctx, CreateSubscriptionCommand{AccountID: 1, PlanID: plan.ID()})
	assert.ErrorIs(t, err, billing.ErrSubscriptionExists)

	inactive := env.createPlan(t, "Hidden", 100, 1000)
	inactive.Deactivate()
	require.NoError(t, env.planRepo.Update(ctx, inactive))

	_, err = uc.Execute(ctx, CreateSubscriptionCommand{AccountID: 2, PlanID: inactive.ID()})
	assert.ErrorIs(t, err, billing.ErrPlanInactive)
}

func TestBuildAlerts(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	plan := env.createPlan(t, "Basic", 100, 1000)
	env.createSubscription(t, 1, plan)

	uc := NewBuildAlertsUseCase(env.subscriptionRepo, 80, 3, env.logger)

	t.Run("healthy usage has no usage alert", func(t *testing.T) {
		alerts, err := uc.Execute(ctx, 1)
		require.NoError(t, err)
		for _, alert := range alerts {
			assert.NotEqual(t, AlertDanger, alert.Type)
			assert.NotEqual(t, AlertWarning, alert.Type)
		}
	})

	t.Run("near limit raises warning", func(t *testing.T) {
		env.setUsed(t, 1, 85)
		alerts, err := uc.Execute(ctx, 1)
		require.NoError(t, err)
		require.NotEmpty(t, alerts)
		assert.Equal(t, AlertWarning, alerts[0].Type)
		assert.Equal(t, "view_usage", alerts[0].Action)
		assert.Contains(t, alerts[0].Message, "85%")
	})

	t.Run("limit exceeded raises danger", func(t *testing.T) {
		env.setUsed(t, 1, 100)
		alerts, err := uc.Execute(ctx, 1)
		require.NoError(t, err)
		require.NotEmpty(t, alerts)
		assert.Equal(t, AlertDanger, alerts[0].Type)
		assert.Equal(t, "upgrade_plan", alerts[0].Action)
	})
}

func TestGenerateUsageReport(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	plan := env.createPlan(t, "Basic", 100, 1000)
	env.createSubscription(t, 1, plan)

	consumeUC := env.consumeUC()
	for i := uint(0); i < 3; i++ {
		_, err := consumeUC.Execute(ctx, ConsumeQuotaCommand{
			AccountID:      1,
			MessageID:      100 + i,
			ConversationID: 10,
			MessageKind:    vo.MessageKindOutgoing,
			Source:         vo.SourceAgent,
		})
		require.NoError(t, err)
	}
	_, err := consumeUC.Execute(ctx, ConsumeQuotaCommand{
		AccountID:      1,
		MessageID:      200,
		ConversationID: 11,
		MessageKind:    vo.MessageKindIncoming,
		Source:         vo.SourceBot,
	})
	require.NoError(t, err)

	createUC := NewCreateTransactionUseCase(env.planRepo, env.transactionRepo, billing.DefaultGateway, env.logger)
	_, err = createUC.Execute(ctx, CreateTransactionCommand{
		AccountID: 1,
		PlanID:    plan.ID(),
		Type:      vo.TransactionTypePurchase,
	})
	require.NoError(t, err)

	uc := NewGenerateUsageReportUseCase(env.subscriptionRepo, env.planRepo, env.transactionRepo, env.consumptionRepo, 30, 10, env.logger)

	report, err := uc.Execute(ctx, GenerateUsageReportQuery{AccountID: 1})
	require.NoError(t, err)

	assert.Equal(t, uint(1), report.AccountID)
	assert.Equal(t, "Basic", report.CurrentPlan.Name)
	assert.Equal(t, 100, report.CurrentPlan.Limit)
	assert.Equal(t, "$10", report.CurrentPlan.Price)
	assert.Equal(t, 4, report.Usage.MessagesUsed)
	assert.Equal(t, 96, report.Usage.MessagesRemaining)
	assert.Equal(t, int64(3), report.ConsumptionBySource["agent"])
	assert.Equal(t, int64(1), report.ConsumptionBySource["bot"])
	assert.Len(t, report.DailyTrend, 30)
	require.Len(t, report.Transactions, 1)
	assert.Equal(t, "pending", report.Transactions[0].Status)
	assert.Equal(t, "Basic", report.Transactions[0].Plan)
}
