package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/pkg/money"
)

var (
	ErrPeriodNotFound  = errors.New("budget period not found")
	ErrExpenseNotFound = errors.New("expense not found")
)

// LedgerReader reads one user's ledger from a single consistent snapshot.
type LedgerReader interface {
	ActivePeriod(ctx context.Context, key model.PeriodKey) (*model.ActivePeriod, error)
	TotalSavings(ctx context.Context) (money.Amount, error)
}

// LedgerTx is the view of a user's ledger inside a WithUserLock callback.
// Every method is scoped to the locked user.
type LedgerTx interface {
	LedgerReader
	UpdateSummary(ctx context.Context, summary *model.BudgetSummary) error
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
}

// LedgerStore persists budget periods, their summaries and the expense archive.
// Implementations must be safe for concurrent use.
type LedgerStore interface {
	// CreatePeriod inserts the period and its summary atomically, filling in
	// their generated IDs.
	CreatePeriod(ctx context.Context, period *model.BudgetPeriod, summary *model.BudgetSummary) error
	ActivePeriod(ctx context.Context, userID uuid.UUID, key model.PeriodKey) (*model.ActivePeriod, error)
	TotalSavings(ctx context.Context, userID uuid.UUID) (money.Amount, error)
	ListExpenses(ctx context.Context, userID uuid.UUID, key model.PeriodKey) ([]model.Expense, error)
	// ListActivePeriods returns the active period of every user for key.
	ListActivePeriods(ctx context.Context, key model.PeriodKey) ([]model.ActivePeriod, error)
	// WithUserLock runs fn while holding the user's ledger lock. Writes made
	// through the LedgerTx are committed only if fn returns nil.
	WithUserLock(ctx context.Context, userID uuid.UUID, fn func(tx LedgerTx) error) error
	// ReadSnapshot runs fn against a read-only view that no concurrent write
	// of the same user can change halfway through.
	ReadSnapshot(ctx context.Context, userID uuid.UUID, fn func(r LedgerReader) error) error
	Ping(ctx context.Context) error
}
