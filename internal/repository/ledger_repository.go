package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/retry"
	"github.com/familybudget/backend/pkg/money"
)

const activePeriodColumns = `
		p.id, p.user_id, p.month, p.year, p.actual_salary, p.active_salary,
		p.mandatory_limit, p.basic_needs_limit, p.sudden_expenses_limit, p.created_at,
		s.id AS summary_id, s.mandatory_spent, s.basic_needs_spent, s.sudden_spent,
		s.savings, s.updated_at AS summary_updated_at`

const activePeriodQuery = `
	SELECT` + activePeriodColumns + `
	FROM budget_periods p
	JOIN budget_summaries s ON s.period_id = p.id
	WHERE p.user_id = $1 AND p.month = $2 AND p.year = $3
	ORDER BY p.id DESC
	LIMIT 1`

const totalSavingsQuery = `SELECT COALESCE(SUM(savings), 0) FROM budget_summaries WHERE user_id = $1`

// lockSummariesQuery serializes ledger writes per user. Rows are locked in id
// order so two transactions for the same user cannot deadlock.
const lockSummariesQuery = `SELECT id FROM budget_summaries WHERE user_id = $1 ORDER BY id FOR UPDATE`

// lockRetry repeats a ledger transaction that Postgres aborted as a deadlock
// or serialization victim.
var lockRetry = retry.Config{
	MaxAttempts:  3,
	InitialDelay: 20 * time.Millisecond,
	MaxDelay:     200 * time.Millisecond,
	Multiplier:   2,
	Retryable:    IsTransient,
}

// IsTransient reports whether err is a Postgres failure that succeeds when
// the transaction is simply run again.
func IsTransient(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return true
	}
	return false
}

type activePeriodRow struct {
	model.BudgetPeriod
	SummaryID        int64        `db:"summary_id"`
	MandatorySpent   money.Amount `db:"mandatory_spent"`
	BasicNeedsSpent  money.Amount `db:"basic_needs_spent"`
	SuddenSpent      money.Amount `db:"sudden_spent"`
	Savings          money.Amount `db:"savings"`
	SummaryUpdatedAt time.Time    `db:"summary_updated_at"`
}

func (r *activePeriodRow) toModel() *model.ActivePeriod {
	return &model.ActivePeriod{
		Period: r.BudgetPeriod,
		Summary: model.BudgetSummary{
			ID:              r.SummaryID,
			PeriodID:        r.ID,
			UserID:          r.UserID,
			Month:           r.Month,
			Year:            r.Year,
			MandatorySpent:  r.MandatorySpent,
			BasicNeedsSpent: r.BasicNeedsSpent,
			SuddenSpent:     r.SuddenSpent,
			Savings:         r.Savings,
			UpdatedAt:       r.SummaryUpdatedAt,
		},
	}
}

// LedgerRepository is the PostgreSQL LedgerStore.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) CreatePeriod(ctx context.Context, period *model.BudgetPeriod, summary *model.BudgetSummary) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	periodQuery := `
		INSERT INTO budget_periods (user_id, month, year, actual_salary, active_salary,
			mandatory_limit, basic_needs_limit, sudden_expenses_limit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at`
	err = tx.QueryRowxContext(ctx, periodQuery,
		period.UserID, period.Month, period.Year, period.ActualSalary, period.ActiveSalary,
		period.MandatoryLimit, period.BasicNeedsLimit, period.SuddenExpensesLimit,
	).Scan(&period.ID, &period.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting period: %w", err)
	}

	summary.PeriodID = period.ID
	summaryQuery := `
		INSERT INTO budget_summaries (period_id, user_id, month, year,
			mandatory_spent, basic_needs_spent, sudden_spent, savings, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, updated_at`
	err = tx.QueryRowxContext(ctx, summaryQuery,
		summary.PeriodID, summary.UserID, summary.Month, summary.Year,
		summary.MandatorySpent, summary.BasicNeedsSpent, summary.SuddenSpent, summary.Savings,
	).Scan(&summary.ID, &summary.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting summary: %w", err)
	}

	return tx.Commit()
}

func (r *LedgerRepository) ActivePeriod(ctx context.Context, userID uuid.UUID, key model.PeriodKey) (*model.ActivePeriod, error) {
	return getActivePeriod(ctx, r.db, userID, key)
}

func (r *LedgerRepository) TotalSavings(ctx context.Context, userID uuid.UUID) (money.Amount, error) {
	var total money.Amount
	err := r.db.GetContext(ctx, &total, totalSavingsQuery, userID)
	return total, err
}

func (r *LedgerRepository) ListActivePeriods(ctx context.Context, key model.PeriodKey) ([]model.ActivePeriod, error) {
	query := `
		SELECT DISTINCT ON (p.user_id)` + activePeriodColumns + `
		FROM budget_periods p
		JOIN budget_summaries s ON s.period_id = p.id
		WHERE p.month = $1 AND p.year = $2
		ORDER BY p.user_id, p.id DESC`

	var rows []activePeriodRow
	if err := r.db.SelectContext(ctx, &rows, query, key.Month, key.Year); err != nil {
		return nil, err
	}
	periods := make([]model.ActivePeriod, 0, len(rows))
	for i := range rows {
		periods = append(periods, *rows[i].toModel())
	}
	return periods, nil
}

// WithUserLock runs fn in a transaction holding the user's summary rows.
// fn may run more than once if Postgres aborts the transaction as transient.
func (r *LedgerRepository) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(tx LedgerTx) error) error {
	return retry.Do(ctx, lockRetry, nil, "ledger transaction", func() error {
		return r.withUserLock(ctx, userID, fn)
	})
}

func (r *LedgerRepository) withUserLock(ctx context.Context, userID uuid.UUID, fn func(tx LedgerTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, lockSummariesQuery, userID); err != nil {
		return fmt.Errorf("locking ledger: %w", err)
	}

	if err := fn(&ledgerTx{tx: tx, userID: userID}); err != nil {
		return err
	}

	return tx.Commit()
}

// ReadSnapshot runs fn in a read-only REPEATABLE READ transaction, so every
// query inside sees the same committed state.
func (r *LedgerRepository) ReadSnapshot(ctx context.Context, userID uuid.UUID, fn func(rd LedgerReader) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&ledgerTx{tx: tx, userID: userID}); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *LedgerRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ledgerTx implements LedgerTx on an open transaction.
type ledgerTx struct {
	tx     *sqlx.Tx
	userID uuid.UUID
}

func (t *ledgerTx) ActivePeriod(ctx context.Context, key model.PeriodKey) (*model.ActivePeriod, error) {
	return getActivePeriod(ctx, t.tx, t.userID, key)
}

func (t *ledgerTx) TotalSavings(ctx context.Context) (money.Amount, error) {
	var total money.Amount
	err := t.tx.GetContext(ctx, &total, totalSavingsQuery, t.userID)
	return total, err
}

func (t *ledgerTx) UpdateSummary(ctx context.Context, summary *model.BudgetSummary) error {
	query := `
		UPDATE budget_summaries
		SET mandatory_spent = $2, basic_needs_spent = $3, sudden_spent = $4, savings = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $6
		RETURNING updated_at`
	err := t.tx.QueryRowxContext(ctx, query,
		summary.ID, summary.MandatorySpent, summary.BasicNeedsSpent, summary.SuddenSpent,
		summary.Savings, t.userID,
	).Scan(&summary.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPeriodNotFound
	}
	return err
}

func getActivePeriod(ctx context.Context, q sqlx.QueryerContext, userID uuid.UUID, key model.PeriodKey) (*model.ActivePeriod, error) {
	var row activePeriodRow
	err := sqlx.GetContext(ctx, q, &row, activePeriodQuery, userID, key.Month, key.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPeriodNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}
