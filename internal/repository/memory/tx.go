package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/repository"
	"github.com/familybudget/backend/pkg/money"
)

// ledgerTx stages writes for a single user until the Store commits them.
type ledgerTx struct {
	store  *Store
	userID uuid.UUID

	summaries map[int64]model.BudgetSummary
	created   map[uuid.UUID]model.Expense
	deleted   map[uuid.UUID]struct{}
}

func (t *ledgerTx) ActivePeriod(ctx context.Context, key model.PeriodKey) (*model.ActivePeriod, error) {
	ap, err := t.store.ActivePeriod(ctx, t.userID, key)
	if err != nil {
		return nil, err
	}
	if staged, ok := t.summaries[ap.Summary.ID]; ok {
		ap.Summary = staged
	}
	return ap, nil
}

func (t *ledgerTx) TotalSavings(ctx context.Context) (money.Amount, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	var total money.Amount
	for id, sum := range t.store.summaries {
		if sum.UserID != t.userID {
			continue
		}
		if staged, ok := t.summaries[id]; ok {
			sum = staged
		}
		total += sum.Savings
	}
	return total, nil
}

func (t *ledgerTx) UpdateSummary(ctx context.Context, summary *model.BudgetSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.store.mu.RLock()
	existing, ok := t.store.summaries[summary.ID]
	t.store.mu.RUnlock()
	if !ok || existing.UserID != t.userID {
		return repository.ErrPeriodNotFound
	}

	updated := existing
	updated.MandatorySpent = summary.MandatorySpent
	updated.BasicNeedsSpent = summary.BasicNeedsSpent
	updated.SuddenSpent = summary.SuddenSpent
	updated.Savings = summary.Savings
	updated.UpdatedAt = t.store.now()
	summary.UpdatedAt = updated.UpdatedAt

	t.summaries[summary.ID] = updated
	return nil
}

func (t *ledgerTx) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	expense.UserID = t.userID
	expense.CreatedAt = t.store.now()
	t.created[expense.ID] = *expense
	return nil
}

func (t *ledgerTx) GetExpense(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e, ok := t.created[id]; ok {
		return &e, nil
	}
	if _, gone := t.deleted[id]; gone {
		return nil, repository.ErrExpenseNotFound
	}

	t.store.mu.RLock()
	e, ok := t.store.expenses[id]
	t.store.mu.RUnlock()
	if !ok || e.UserID != t.userID {
		return nil, repository.ErrExpenseNotFound
	}
	return &e, nil
}

func (t *ledgerTx) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if _, err := t.GetExpense(ctx, id); err != nil {
		return err
	}
	if _, ok := t.created[id]; ok {
		delete(t.created, id)
		return nil
	}
	t.deleted[id] = struct{}{}
	return nil
}
