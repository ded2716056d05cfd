// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"mensajio/internal/application/billing/usecases"
	"mensajio/internal/shared/biztime"
	"mensajio/internal/shared/logger"
)

// SweepJob defines the interface for a scheduled subscription sweep.
// Each Execute call scans eligible subscriptions and returns a result summary.
type SweepJob interface {
	Execute(ctx context.Context) (*usecases.SweepResult, error)
}

// SchedulerManager manages all scheduled jobs using gocron v2.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	// Track whether the scheduler has been started
	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// It initializes gocron with the business timezone for cron expressions.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterBillingSweepJobs registers the periodic billing sweeps:
// - Monthly usage reset for subscriptions whose period has expired
// - Suspension of active subscriptions that exhausted their quota
// Cron expressions are evaluated in the business timezone.
func (m *SchedulerManager) RegisterBillingSweepJobs(
	resetJob SweepJob,
	suspendJob SweepJob,
	resetCron string,
	suspendCron string,
) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob(resetCron, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.runSweep(ctx, "reset-monthly-usage", resetJob)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("billing", "reset-usage"),
		gocron.WithName("billing-reset-monthly-usage"),
	)
	if err != nil {
		return err
	}

	_, err = m.scheduler.NewJob(
		gocron.CronJob(suspendCron, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.runSweep(ctx, "suspend-exceeded", suspendJob)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("billing", "suspend-exceeded"),
		gocron.WithName("billing-suspend-exceeded"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered billing sweep jobs",
		"reset_cron", resetCron,
		"suspend_cron", suspendCron,
	)
	return nil
}

func (m *SchedulerManager) runSweep(ctx context.Context, name string, job SweepJob) {
	m.logger.Debugw("sweep started", "sweep", name)

	startTime := biztime.NowUTC()

	result, err := job.Execute(ctx)
	if err != nil {
		// Don't log error if context was cancelled (graceful shutdown)
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("sweep failed",
			"sweep", name,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result.Processed > 0 || result.Failed > 0 {
		m.logger.Infow("sweep completed",
			"sweep", name,
			"scanned", result.Scanned,
			"processed", result.Processed,
			"failed", result.Failed,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("sweep completed with no work",
			"sweep", name,
			"scanned", result.Scanned,
			"duration", time.Since(startTime),
		)
	}
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
