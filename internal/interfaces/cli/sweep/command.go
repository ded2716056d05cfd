package sweep

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"mensajio/internal/application/billing/usecases"
	"mensajio/internal/infrastructure/config"
	"mensajio/internal/infrastructure/database"
	"mensajio/internal/infrastructure/repository"
	"mensajio/internal/shared/biztime"
	"mensajio/internal/shared/db"
	"mensajio/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run billing sweeps once",
		Long:  `Run a billing sweep immediately instead of waiting for the scheduled run. Useful for operations and recovery after downtime.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newResetCommand(),
		newSuspendCommand(),
	)

	return cmd
}

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset monthly usage for expired periods",
		Long:  `Scan active subscriptions whose billing period has ended and start a fresh period with the usage counter at zero.`,
		RunE:  runReset,
	}
}

func newSuspendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suspend",
		Short: "Suspend subscriptions that exhausted their quota",
		Long:  `Scan active subscriptions that consumed their full message quota and suspend them until renewal or upgrade.`,
		RunE:  runSuspend,
	}
}

func runReset(cmd *cobra.Command, args []string) error {
	gormDB, cfg, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	uc := usecases.NewResetMonthlyUsageUseCase(
		repository.NewSubscriptionRepository(gormDB),
		repository.NewPlanRepository(gormDB),
		db.NewTransactionManager(gormDB),
		cfg.Billing.SweepBatchSize,
		log.Named("reset-monthly-usage"),
	)

	result, err := uc.Execute(cmd.Context())
	if err != nil {
		return fmt.Errorf("reset sweep failed: %w", err)
	}

	log.Infow("reset sweep finished",
		"scanned", result.Scanned,
		"processed", result.Processed,
		"failed", result.Failed,
	)
	return nil
}

func runSuspend(cmd *cobra.Command, args []string) error {
	gormDB, cfg, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	uc := usecases.NewSuspendExceededUseCase(
		repository.NewSubscriptionRepository(gormDB),
		db.NewTransactionManager(gormDB),
		cfg.Billing.SweepBatchSize,
		log.Named("suspend-exceeded"),
	)

	result, err := uc.Execute(cmd.Context())
	if err != nil {
		return fmt.Errorf("suspend sweep failed: %w", err)
	}

	log.Infow("suspend sweep finished",
		"scanned", result.Scanned,
		"processed", result.Processed,
		"failed", result.Failed,
	)
	return nil
}

func initEnv() (*gorm.DB, *config.Config, logger.Interface, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log := logger.NewLogger()

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	gormDB, err := database.Init(&cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return gormDB, cfg, log, nil
}
