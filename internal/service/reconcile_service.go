package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/familybudget/backend/internal/apperror"
	"github.com/familybudget/backend/internal/logger"
	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/repository"
	"github.com/familybudget/backend/pkg/money"
)

const defaultReconcileWorkers = 4

// ReconcileService compares active summaries with the expense archive. It
// never writes.
type ReconcileService struct {
	store   repository.LedgerStore
	workers int
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(store repository.LedgerStore) *ReconcileService {
	return &ReconcileService{store: store, workers: defaultReconcileWorkers}
}

// ReconcilePeriod builds a report for every user with an active budget for
// key. Reports that show drift or negative counters are logged as warnings.
func (s *ReconcileService) ReconcilePeriod(ctx context.Context, key model.PeriodKey) ([]model.ReconcileReport, error) {
	if !key.Valid() {
		return nil, apperror.ValidationError("month", "invalid month or year")
	}

	periods, err := s.store.ListActivePeriods(ctx, key)
	if err != nil {
		return nil, storageError("listing active periods", err)
	}

	reports := make([]model.ReconcileReport, len(periods))
	var (
		mu      sync.Mutex
		drifted int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range periods {
		ap := periods[i]
		g.Go(func() error {
			expenses, err := s.store.ListExpenses(gctx, ap.Period.UserID, key)
			if err != nil {
				return err
			}
			report := reconcile(&ap, expenses)
			reports[i] = report

			if !report.Consistent() {
				mu.Lock()
				drifted++
				mu.Unlock()
				logger.Warn("ledger drift detected",
					slog.String("user_id", report.UserID.String()),
					slog.String("period", key.String()),
					slog.Int64("period_id", report.PeriodID),
					slog.String("drift", report.Drift.String()),
					slog.Any("negative_categories", report.NegativeCategories),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storageError("listing expenses", err)
	}

	logger.Info("reconciliation finished",
		slog.String("period", key.String()),
		slog.Int("periods", len(reports)),
		slog.Int("drifted", drifted),
	)
	return reports, nil
}

// reconcile only counts expenses archived after the period was opened; older
// ones were charged to a superseded declaration.
func reconcile(ap *model.ActivePeriod, expenses []model.Expense) model.ReconcileReport {
	report := model.ReconcileReport{
		UserID:   ap.Period.UserID,
		Period:   ap.Period.Key(),
		PeriodID: ap.Period.ID,
	}

	for _, e := range expenses {
		if e.CreatedAt.Before(ap.Period.CreatedAt) {
			continue
		}
		report.ArchivedTotal += e.Amount
		report.ExpenseCount++
	}

	initialSavings := ap.Period.ActualSalary - ap.Period.ActiveSalary
	report.AccountedTotal = money.Sum(
		ap.Summary.TotalSpent(),
		initialSavings-ap.Summary.Savings,
	)
	report.Drift = report.ArchivedTotal - report.AccountedTotal

	for _, c := range model.Categories() {
		if ap.Summary.Spent(c) < 0 {
			report.NegativeCategories = append(report.NegativeCategories, c)
		}
	}
	return report
}
