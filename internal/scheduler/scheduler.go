// Package scheduler runs the periodic ledger reconciliation on a cron schedule.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/familybudget/backend/internal/model"
)

// Reconciler checks the ledger of one month against the expense archive.
type Reconciler interface {
	ReconcilePeriod(ctx context.Context, key model.PeriodKey) ([]model.ReconcileReport, error)
}

// Config holds the scheduler configuration
type Config struct {
	// Schedule is a standard 5-field cron expression (e.g., "30 2 * * *" for nightly)
	Schedule string
	// Timeout is the maximum duration for a complete reconciliation run
	Timeout time.Duration
	// Enabled determines if the scheduler should run
	Enabled bool
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Schedule: "30 2 * * *", // Every night at 02:30
		Timeout:  5 * time.Minute,
		Enabled:  true,
	}
}

// Scheduler manages the scheduled reconciliation job
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	config     Config
	logger     *slog.Logger
	entryID    cron.EntryID
	now        func() time.Time
}

// New creates a new Scheduler instance
func New(cfg Config, reconciler Reconciler, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		reconciler: reconciler,
		config:     cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Start begins the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled, skipping start")
		return nil
	}

	// Convert standard cron (5 fields) to cron with seconds (6 fields)
	schedule := "0 " + s.config.Schedule

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runReconcileJob()
	})
	if err != nil {
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	s.logger.Info("Scheduler started",
		slog.String("schedule", s.config.Schedule),
		slog.Duration("timeout", s.config.Timeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping scheduler...")
	return s.cron.Stop()
}

// RunNow triggers an immediate reconciliation in the background
func (s *Scheduler) RunNow() {
	go s.runReconcileJob()
}

// runReconcileJob reconciles the current UTC month and returns the number
// of inconsistent periods found.
func (s *Scheduler) runReconcileJob() int {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	key := model.PeriodOf(s.now())
	startTime := time.Now()
	s.logger.Info("Starting scheduled reconciliation",
		slog.String("period", key.String()),
	)

	reports, err := s.reconciler.ReconcilePeriod(ctx, key)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Reconciliation failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return 0
	}

	inconsistent := 0
	for i := range reports {
		if !reports[i].Consistent() {
			inconsistent++
		}
	}

	s.logger.Info("Reconciliation completed",
		slog.Int("periods_checked", len(reports)),
		slog.Int("inconsistent", inconsistent),
		slog.Duration("duration", duration),
	)
	return inconsistent
}

// GetNextRunTime returns the next scheduled run time
func (s *Scheduler) GetNextRunTime() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	entry := s.cron.Entry(s.entryID)
	return entry.Next
}

// GetLastRunTime returns the last run time
func (s *Scheduler) GetLastRunTime() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	entry := s.cron.Entry(s.entryID)
	return entry.Prev
}

// IsRunning returns true if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
