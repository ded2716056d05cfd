package worker

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"mensajio/internal/application/billing/usecases"
	"mensajio/internal/infrastructure/cache"
	"mensajio/internal/infrastructure/config"
	"mensajio/internal/infrastructure/database"
	"mensajio/internal/infrastructure/email"
	"mensajio/internal/infrastructure/migration"
	"mensajio/internal/infrastructure/notification"
	"mensajio/internal/infrastructure/repository"
	"mensajio/internal/infrastructure/scheduler"
	"mensajio/internal/shared/biztime"
	"mensajio/internal/shared/db"
	"mensajio/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the billing worker",
		Long:  `Start the billing worker that runs the scheduled subscription sweeps: monthly usage resets and suspension of accounts that exceeded their quota.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log := logger.NewLogger()
	log.Infow("starting billing worker", "environment", env)

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	gormDB, err := database.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	migrationManager := migration.NewManager(cfg.Server.Mode)
	if err := migrationManager.Migrate(gormDB, migration.AutoMigrateModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	subscriptionRepo := repository.NewSubscriptionRepository(gormDB)
	planRepo := repository.NewPlanRepository(gormDB)
	txManager := db.NewTransactionManager(gormDB)

	resetUC := usecases.NewResetMonthlyUsageUseCase(
		subscriptionRepo,
		planRepo,
		txManager,
		cfg.Billing.SweepBatchSize,
		log.Named("reset-monthly-usage"),
	)
	suspendUC := usecases.NewSuspendExceededUseCase(
		subscriptionRepo,
		txManager,
		cfg.Billing.SweepBatchSize,
		log.Named("suspend-exceeded"),
	)

	if cfg.Email.Enabled {
		smtpService := email.NewSMTPEmailService(email.SMTPConfig{
			Host:        cfg.Email.SMTPHost,
			Port:        cfg.Email.SMTPPort,
			Username:    cfg.Email.SMTPUser,
			Password:    cfg.Email.SMTPPassword,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
		})
		directory := notification.NewStaticDirectory(cfg.Email.AlertsTo)
		notifier := notification.NewEmailNotifier(smtpService, directory, log.Named("notifier"))
		suspendUC.SetUsageNotifier(notifier)
		log.Infow("email notifications enabled", "alerts_to", cfg.Email.AlertsTo)
	}

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(cmd.Context()).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Infow("redis connection established", "address", cfg.Redis.GetAddr())

		quotaCache := cache.NewRedisQuotaCache(redisClient, log.Named("quota-cache"))
		resetUC.SetQuotaCache(quotaCache)
		suspendUC.SetQuotaCache(quotaCache)
	}

	schedulerManager, err := scheduler.NewSchedulerManager(log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if err := schedulerManager.RegisterBillingSweepJobs(
		resetUC,
		suspendUC,
		cfg.Billing.ResetSweepCron,
		cfg.Billing.SuspendSweepCron,
	); err != nil {
		return fmt.Errorf("failed to register sweep jobs: %w", err)
	}

	schedulerManager.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Infow("received signal, shutting down", "signal", sig)

	if err := schedulerManager.Stop(); err != nil {
		log.Errorw("scheduler shutdown failed", "error", err)
	}

	log.Infow("billing worker stopped")
	return nil
}
