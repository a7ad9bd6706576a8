package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/repository"
	"github.com/familybudget/backend/pkg/money"
)

var march = model.PeriodKey{Month: 3, Year: 2025}

func openPeriod(t *testing.T, s *Store, userID uuid.UUID, key model.PeriodKey, actual, limit money.Amount) *model.ActivePeriod {
	t.Helper()
	p := &model.BudgetPeriod{
		UserID: userID, Month: key.Month, Year: key.Year,
		ActualSalary: actual, ActiveSalary: 3 * limit,
		MandatoryLimit: limit, BasicNeedsLimit: limit, SuddenExpensesLimit: limit,
	}
	sum := model.NewSummary(p)
	require.NoError(t, s.CreatePeriod(context.Background(), p, sum))
	return &model.ActivePeriod{Period: *p, Summary: *sum}
}

func TestStore_ActivePeriodIsLatest(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.ActivePeriod(ctx, userID, march)
	assert.ErrorIs(t, err, repository.ErrPeriodNotFound)

	first := openPeriod(t, s, userID, march, 1000, 100)
	second := openPeriod(t, s, userID, march, 2000, 200)
	openPeriod(t, s, uuid.New(), march, 5000, 500)

	assert.NotEqual(t, first.Period.ID, second.Period.ID)
	assert.Equal(t, second.Period.ID, second.Summary.PeriodID)

	ap, err := s.ActivePeriod(ctx, userID, march)
	require.NoError(t, err)
	assert.Equal(t, second.Period.ID, ap.Period.ID)
	assert.Equal(t, money.Amount(200), ap.Period.MandatoryLimit)

	total, err := s.TotalSavings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(700+1400), total)
}

func TestStore_WithUserLockCommitAndRollback(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	userID := uuid.New()
	openPeriod(t, s, userID, march, 1000, 100)

	boom := errors.New("boom")
	err := s.WithUserLock(ctx, userID, func(tx repository.LedgerTx) error {
		ap, err := tx.ActivePeriod(ctx, march)
		require.NoError(t, err)
		ap.Summary.MandatorySpent = 50
		require.NoError(t, tx.UpdateSummary(ctx, &ap.Summary))
		require.NoError(t, tx.CreateExpense(ctx, &model.Expense{Category: model.CategoryMandatory, Amount: 50, LoggedAt: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)}))

		staged, err := tx.ActivePeriod(ctx, march)
		require.NoError(t, err)
		assert.Equal(t, money.Amount(50), staged.Summary.MandatorySpent)
		return boom
	})
	require.ErrorIs(t, err, boom)

	ap, err := s.ActivePeriod(ctx, userID, march)
	require.NoError(t, err)
	assert.Zero(t, ap.Summary.MandatorySpent)
	expenses, err := s.ListExpenses(ctx, userID, march)
	require.NoError(t, err)
	assert.Empty(t, expenses)

	var created model.Expense
	err = s.WithUserLock(ctx, userID, func(tx repository.LedgerTx) error {
		ap, err := tx.ActivePeriod(ctx, march)
		if err != nil {
			return err
		}
		ap.Summary.MandatorySpent = 50
		ap.Summary.Savings -= 10
		if err := tx.UpdateSummary(ctx, &ap.Summary); err != nil {
			return err
		}
		created = model.Expense{Category: model.CategoryMandatory, Amount: 60, LoggedAt: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)}
		return tx.CreateExpense(ctx, &created)
	})
	require.NoError(t, err)

	ap, err = s.ActivePeriod(ctx, userID, march)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(50), ap.Summary.MandatorySpent)
	total, err := s.TotalSavings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(690), total)

	expenses, err = s.ListExpenses(ctx, userID, march)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, created.ID, expenses[0].ID)
	assert.Equal(t, userID, expenses[0].UserID)
}

func TestStore_ExpenseLifecycle(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	userID, otherID := uuid.New(), uuid.New()

	expense := model.Expense{Category: model.CategoryBasicNeeds, Amount: 10, LoggedAt: time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)}
	april := model.Expense{Category: model.CategoryBasicNeeds, Amount: 20, LoggedAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.WithUserLock(ctx, userID, func(tx repository.LedgerTx) error {
		if err := tx.CreateExpense(ctx, &expense); err != nil {
			return err
		}
		return tx.CreateExpense(ctx, &april)
	}))

	list, err := s.ListExpenses(ctx, userID, march)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, expense.ID, list[0].ID)

	// other users cannot see or delete it
	err = s.WithUserLock(ctx, otherID, func(tx repository.LedgerTx) error {
		_, err := tx.GetExpense(ctx, expense.ID)
		return err
	})
	assert.ErrorIs(t, err, repository.ErrExpenseNotFound)

	require.NoError(t, s.WithUserLock(ctx, userID, func(tx repository.LedgerTx) error {
		if err := tx.DeleteExpense(ctx, expense.ID); err != nil {
			return err
		}
		_, err := tx.GetExpense(ctx, expense.ID)
		assert.ErrorIs(t, err, repository.ErrExpenseNotFound)
		return nil
	}))

	list, err = s.ListExpenses(ctx, userID, march)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = s.WithUserLock(ctx, userID, func(tx repository.LedgerTx) error {
		return tx.DeleteExpense(ctx, expense.ID)
	})
	assert.ErrorIs(t, err, repository.ErrExpenseNotFound)
}

func TestStore_UpdateSummaryOfAnotherUser(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	owner := openPeriod(t, s, uuid.New(), march, 1000, 100)

	err := s.WithUserLock(ctx, uuid.New(), func(tx repository.LedgerTx) error {
		sum := owner.Summary
		sum.Savings = 0
		return tx.UpdateSummary(ctx, &sum)
	})
	assert.ErrorIs(t, err, repository.ErrPeriodNotFound)
}

func TestStore_ListActivePeriods(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	u1, u2 := uuid.New(), uuid.New()
	openPeriod(t, s, u1, march, 1000, 100)
	latest := openPeriod(t, s, u1, march, 1000, 200)
	openPeriod(t, s, u2, march, 500, 100)
	openPeriod(t, s, u2, model.PeriodKey{Month: 4, Year: 2025}, 500, 100)

	periods, err := s.ListActivePeriods(ctx, march)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	ids := []int64{periods[0].Period.ID, periods[1].Period.ID}
	assert.Contains(t, ids, latest.Period.ID)
}

func TestStore_WithUserLockSerializes(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	userID := uuid.New()
	openPeriod(t, s, userID, march, 0, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithUserLock(ctx, userID, func(tx repository.LedgerTx) error {
				ap, err := tx.ActivePeriod(ctx, march)
				if err != nil {
					return err
				}
				ap.Summary.BasicNeedsSpent++
				return tx.UpdateSummary(ctx, &ap.Summary)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ap, err := s.ActivePeriod(ctx, userID, march)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(50), ap.Summary.BasicNeedsSpent)
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithUserLock(ctx, uuid.New(), func(tx repository.LedgerTx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}

func TestStore_ReadSnapshotSeesWholeWrites(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	userID := uuid.New()
	openPeriod(t, s, userID, march, 3000, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := s.WithUserLock(ctx, userID, func(tx repository.LedgerTx) error {
				ap, err := tx.ActivePeriod(ctx, march)
				if err != nil {
					return err
				}
				ap.Summary.BasicNeedsSpent++
				ap.Summary.Savings--
				return tx.UpdateSummary(ctx, &ap.Summary)
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			err := s.ReadSnapshot(ctx, userID, func(r repository.LedgerReader) error {
				ap, err := r.ActivePeriod(ctx, march)
				if err != nil {
					return err
				}
				savings, err := r.TotalSavings(ctx)
				if err != nil {
					return err
				}
				assert.Equal(t, money.Zero, ap.Summary.BasicNeedsSpent+savings)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestStore_ReadSnapshotCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewStore().ReadSnapshot(ctx, uuid.New(), func(r repository.LedgerReader) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
