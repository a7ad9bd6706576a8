package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/familybudget/backend/internal/apperror"
	"github.com/familybudget/backend/internal/ledger"
	"github.com/familybudget/backend/internal/logger"
	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/repository"
	"github.com/familybudget/backend/pkg/money"
)

// OverviewCache caches month overviews. Implementations swallow their own
// failures. GetOverview also returns the generation a rebuilt overview must
// be stored under; it is taken before the ledger is read.
type OverviewCache interface {
	GetOverview(ctx context.Context, userID uuid.UUID, key model.PeriodKey) (*model.LedgerOverview, int64, bool)
	SetOverview(ctx context.Context, userID uuid.UUID, key model.PeriodKey, generation int64, overview *model.LedgerOverview)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// LedgerService owns budget periods and the allocation of spending against
// them. All writes for a user go through the store's per-user lock.
type LedgerService struct {
	store repository.LedgerStore
	cache OverviewCache
}

// NewLedgerService creates a new LedgerService with the given store.
func NewLedgerService(store repository.LedgerStore) *LedgerService {
	return &LedgerService{store: store}
}

// SetCache enables overview caching.
func (s *LedgerService) SetCache(cache OverviewCache) {
	s.cache = cache
}

type OpenPeriodInput struct {
	Month               int          `json:"month" validate:"required,min=1,max=12"`
	Year                int          `json:"year" validate:"required,min=1"`
	ActualSalary        money.Amount `json:"actualSalary" validate:"min=0"`
	MandatoryLimit      money.Amount `json:"mandatoryLimit" validate:"min=0"`
	BasicNeedsLimit     money.Amount `json:"basicNeedsLimit" validate:"min=0"`
	SuddenExpensesLimit money.Amount `json:"suddenExpensesLimit" validate:"min=0"`
}

// OpenPeriod declares a new budget for a month. An earlier declaration for the
// same month stays in history but stops being active.
func (s *LedgerService) OpenPeriod(ctx context.Context, userID uuid.UUID, input OpenPeriodInput) (*model.ActivePeriod, error) {
	key := model.PeriodKey{Month: input.Month, Year: input.Year}
	period, summary, err := ledger.NewPeriod(key, input.ActualSalary,
		input.MandatoryLimit, input.BasicNeedsLimit, input.SuddenExpensesLimit)
	if err != nil {
		return nil, ledgerError(err)
	}
	period.UserID = userID
	summary.UserID = userID

	if err := s.store.CreatePeriod(ctx, period, summary); err != nil {
		return nil, storageError("opening period", err)
	}
	s.invalidate(ctx, userID)

	logger.FromContext(ctx).Info("budget period opened",
		slog.String("period", key.String()),
		slog.Int64("period_id", period.ID),
		slog.String("savings", summary.Savings.String()),
	)

	return &model.ActivePeriod{Period: *period, Summary: *summary}, nil
}

// Allocate charges amount against category for the period, cascading into
// other categories and finally savings. It fails without side effects when
// funds run out.
func (s *LedgerService) Allocate(ctx context.Context, userID uuid.UUID, key model.PeriodKey, category model.Category, amount money.Amount) (*ledger.Plan, error) {
	if err := validateCharge(key, category, amount); err != nil {
		return nil, err
	}

	var plan *ledger.Plan
	err := s.store.WithUserLock(ctx, userID, func(tx repository.LedgerTx) error {
		var err error
		plan, err = s.allocateTx(ctx, tx, key, category, amount)
		return err
	})
	if err != nil {
		return nil, storageError("allocating", err)
	}
	s.invalidate(ctx, userID)

	return plan, nil
}

// Reverse credits amount back to the nominal category of the period. It is a
// no-op when the period has no budget.
func (s *LedgerService) Reverse(ctx context.Context, userID uuid.UUID, key model.PeriodKey, category model.Category, amount money.Amount) error {
	if err := validateCharge(key, category, amount); err != nil {
		return err
	}

	err := s.store.WithUserLock(ctx, userID, func(tx repository.LedgerTx) error {
		return s.reverseTx(ctx, tx, key, category, amount)
	})
	if err != nil {
		return storageError("reversing", err)
	}
	s.invalidate(ctx, userID)

	return nil
}

// RemainingSalary returns active salary minus total spent, or zero when no
// budget is configured.
func (s *LedgerService) RemainingSalary(ctx context.Context, userID uuid.UUID, key model.PeriodKey) (money.Amount, error) {
	if !key.Valid() {
		return 0, apperror.ValidationError("month", "invalid month or year")
	}

	ap, err := s.store.ActivePeriod(ctx, userID, key)
	if errors.Is(err, repository.ErrPeriodNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storageError("loading period", err)
	}
	return ledger.RemainingSalary(&ap.Period, &ap.Summary), nil
}

// TotalSavings sums savings over every period of the user.
func (s *LedgerService) TotalSavings(ctx context.Context, userID uuid.UUID) (money.Amount, error) {
	total, err := s.store.TotalSavings(ctx, userID)
	if err != nil {
		return 0, storageError("summing savings", err)
	}
	return total, nil
}

// Overview assembles the month dashboard.
func (s *LedgerService) Overview(ctx context.Context, userID uuid.UUID, key model.PeriodKey) (*model.LedgerOverview, error) {
	if !key.Valid() {
		return nil, apperror.ValidationError("month", "invalid month or year")
	}

	generation := int64(-1)
	if s.cache != nil {
		cached, gen, ok := s.cache.GetOverview(ctx, userID, key)
		if ok {
			return cached, nil
		}
		generation = gen
	}

	var (
		ap      *model.ActivePeriod
		savings money.Amount
	)
	err := s.store.ReadSnapshot(ctx, userID, func(r repository.LedgerReader) error {
		var err error
		ap, err = r.ActivePeriod(ctx, key)
		if errors.Is(err, repository.ErrPeriodNotFound) {
			ap, err = nil, nil
		}
		if err != nil {
			return err
		}
		savings, err = r.TotalSavings(ctx)
		return err
	})
	if err != nil {
		return nil, storageError("building overview", err)
	}

	overview := &model.LedgerOverview{
		Period:       key,
		TotalSavings: savings,
		Categories:   []model.CategoryBalance{},
	}
	if ap != nil {
		overview.Configured = true
		overview.Budget = &ap.Period
		overview.Summary = &ap.Summary
		overview.RemainingSalary = ledger.RemainingSalary(&ap.Period, &ap.Summary)
		for _, c := range model.Categories() {
			overview.Categories = append(overview.Categories, model.CategoryBalance{
				Category:  c,
				Label:     c.Label(),
				Limit:     ap.Period.Limit(c),
				Spent:     ap.Summary.Spent(c),
				Remaining: ledger.Remaining(&ap.Period, &ap.Summary, c),
			})
		}
	}

	if s.cache != nil {
		s.cache.SetOverview(ctx, userID, key, generation, overview)
	}
	return overview, nil
}

// allocateTx runs inside the user's lock. Errors are already mapped to
// AppErrors so they pass through the store untouched.
func (s *LedgerService) allocateTx(ctx context.Context, tx repository.LedgerTx, key model.PeriodKey, category model.Category, amount money.Amount) (*ledger.Plan, error) {
	ap, err := tx.ActivePeriod(ctx, key)
	if errors.Is(err, repository.ErrPeriodNotFound) {
		return nil, apperror.NoBudgetConfigured(key.String())
	}
	if err != nil {
		return nil, storageError("loading period", err)
	}

	cumulative, err := tx.TotalSavings(ctx)
	if err != nil {
		return nil, storageError("summing savings", err)
	}

	plan, err := ledger.NewPlan(&ap.Period, &ap.Summary, category, amount, cumulative)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			logger.FromContext(ctx).Info("allocation rejected",
				slog.String("period", key.String()),
				slog.String("category", string(category)),
				slog.String("amount", amount.String()),
				slog.String("cumulative_savings", cumulative.String()),
			)
		}
		return nil, ledgerError(err)
	}

	plan.Apply(&ap.Summary)
	if err := tx.UpdateSummary(ctx, &ap.Summary); err != nil {
		return nil, storageError("saving summary", err)
	}

	if plan.Overflowed() {
		logger.FromContext(ctx).Debug("allocation overflowed",
			slog.String("period", key.String()),
			slog.String("category", string(category)),
			slog.String("from_savings", plan.FromSavings.String()),
		)
	}
	return plan, nil
}

func (s *LedgerService) reverseTx(ctx context.Context, tx repository.LedgerTx, key model.PeriodKey, category model.Category, amount money.Amount) error {
	ap, err := tx.ActivePeriod(ctx, key)
	if errors.Is(err, repository.ErrPeriodNotFound) {
		logger.FromContext(ctx).Debug("reverse skipped, no budget", slog.String("period", key.String()))
		return nil
	}
	if err != nil {
		return storageError("loading period", err)
	}

	if err := ledger.Reverse(&ap.Summary, category, amount); err != nil {
		return ledgerError(err)
	}
	if err := tx.UpdateSummary(ctx, &ap.Summary); err != nil {
		return storageError("saving summary", err)
	}
	return nil
}

func (s *LedgerService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

func validateCharge(key model.PeriodKey, category model.Category, amount money.Amount) error {
	if !key.Valid() {
		return apperror.ValidationError("month", "invalid month or year")
	}
	if !category.Valid() {
		return apperror.ValidationError("category", "must be one of mandatory, basic_needs or sudden_expense")
	}
	if amount <= 0 {
		return apperror.ValidationError("amount", "must be greater than 0")
	}
	return nil
}

// ledgerError maps allocation rule failures onto application errors.
func ledgerError(err error) error {
	var fieldErr *ledger.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return apperror.ValidationError(fieldErr.Field, fieldErr.Err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return apperror.InsufficientFunds(err)
	case errors.Is(err, ledger.ErrInvalidCategory):
		return apperror.ValidationError("category", "must be one of mandatory, basic_needs or sudden_expense")
	case errors.Is(err, ledger.ErrInvalidAmount):
		return apperror.ValidationError("amount", "must be greater than 0")
	case errors.Is(err, ledger.ErrInvalidPeriod):
		return apperror.ValidationError("month", "invalid month or year")
	default:
		return apperror.Internal(err)
	}
}

// storageError passes application errors through and wraps anything else as
// a storage fault.
func storageError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.StorageUnavailable(fmt.Errorf("%s: %w", op, err))
}
