package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"coursehub-backend/internal/config"
	"coursehub-backend/internal/shared"
	"coursehub-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterMaintenanceJobs() error {
	// Validate every cron spec up front so a bad config fails at startup,
	// not at the first scheduled tick
	specs := map[string]string{
		"idempotency_cleanup_cron":  s.jobConfig.IdempotencyCleanupCron,
		"expired_cart_cleanup_cron": s.jobConfig.ExpiredCartCleanupCron,
		"installment_overdue_cron":  s.jobConfig.InstallmentOverdueCron,
	}
	for name, spec := range specs {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid cron spec for %s (%q): %w", name, spec, err)
		}
	}

	if err := s.registerIdempotencyCleanupJob(); err != nil {
		return err
	}

	if err := s.registerExpiredCartCleanupJob(); err != nil {
		return err
	}

	if err := s.registerInstallmentOverdueJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Cleanup Expired Idempotency Records
// ================================================
// Expired records are dead weight: their keys may be reclaimed by clients,
// and the (key, user, op) unique index should stay small
func (s *Scheduler) registerIdempotencyCleanupJob() error {
	task := asynq.NewTask(shared.TypeCleanupIdempotencyRecords, nil)

	_, err := s.scheduler.Register(
		s.jobConfig.IdempotencyCleanupCron,
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register CleanupIdempotencyRecords job", err)
		return err
	}

	logger.Info("✓ Registered CleanupIdempotencyRecords", map[string]interface{}{
		"cron": s.jobConfig.IdempotencyCleanupCron,
	})
	return nil
}

// ================================================
// JOB 2: Cleanup Expired Carts
// ================================================
// Expired carts already read as empty; the sweep reclaims the rows and the
// per-user unique slot
func (s *Scheduler) registerExpiredCartCleanupJob() error {
	task := asynq.NewTask(shared.TypeCleanupExpiredCarts, nil)

	_, err := s.scheduler.Register(
		s.jobConfig.ExpiredCartCleanupCron,
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register CleanupExpiredCarts job", err)
		return err
	}

	logger.Info("✓ Registered CleanupExpiredCarts", map[string]interface{}{
		"cron": s.jobConfig.ExpiredCartCleanupCron,
	})
	return nil
}

// ================================================
// JOB 3: Mark Overdue Installments
// ================================================
// Installment status is derived on read, but reports and reminders query
// the stored column; the daily sweep keeps it honest
func (s *Scheduler) registerInstallmentOverdueJob() error {
	task := asynq.NewTask(shared.TypeMarkOverdueInstallments, nil)

	_, err := s.scheduler.Register(
		s.jobConfig.InstallmentOverdueCron,
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register MarkOverdueInstallments job", err)
		return err
	}

	logger.Info("✓ Registered MarkOverdueInstallments", map[string]interface{}{
		"cron": s.jobConfig.InstallmentOverdueCron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
