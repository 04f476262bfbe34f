package jobs

import (
	"context"
	"fmt"
	"sort"

	"gearrent-backend/internal/clock"
	"gearrent-backend/internal/config"
	"gearrent-backend/internal/logger"
	"gearrent-backend/internal/repository"
	"gearrent-backend/internal/service"
)

const (
	JobMarkOverdueTransactions = "mark-overdue-transactions"
	JobSendOverdueReminders    = "send-overdue-reminders"
	JobAll                     = "all"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	txRepo   repository.TransactionRepository
	services *Services
	config   *config.Config
	clock    clock.Clock
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email        service.EmailService
	Transactions service.TransactionService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(txRepo repository.TransactionRepository, services *Services, cfg *config.Config, clk clock.Clock) *JobRunner {
	return &JobRunner{
		txRepo:   txRepo,
		services: services,
		config:   cfg,
		clock:    clk,
	}
}

// Config returns the configuration the jobs were built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// serviceName tags every log line written by a job.
const serviceName = "cronjob"

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
	}()

	l := logger.WithService(serviceName).With("job", jobName)
	ctx := logger.WithContext(context.Background(), l)
	l.Info("Starting job")
	if err := jobFunc(ctx); err != nil {
		l.Error("Job failed", "error", err)
		return err
	}
	l.Info("Job completed")
	return nil
}

// RunAll runs every job in order (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.MarkOverdueTransactions()
	jr.SendOverdueReminders()
}

// JobNames lists the names accepted by RunByName.
func JobNames() []string {
	names := []string{JobMarkOverdueTransactions, JobSendOverdueReminders, JobAll}
	sort.Strings(names)
	return names
}

// RunByName runs a single job once.
func (jr *JobRunner) RunByName(name string) error {
	switch name {
	case JobMarkOverdueTransactions:
		return jr.markOverdueTransactions()
	case JobSendOverdueReminders:
		return jr.sendOverdueReminders()
	case JobAll:
		if err := jr.markOverdueTransactions(); err != nil {
			return err
		}
		return jr.sendOverdueReminders()
	}
	return fmt.Errorf("unknown job %q", name)
}
