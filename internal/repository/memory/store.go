// Package memory provides an in-process LedgerStore for local development and
// tests. Data lives only as long as the process.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/repository"
	"github.com/familybudget/backend/pkg/datetime"
	"github.com/familybudget/backend/pkg/money"
)

// Store is a mutex-guarded LedgerStore. Writes made inside WithUserLock are
// staged on the transaction and applied on success only.
type Store struct {
	mu        sync.RWMutex
	periods   map[int64]model.BudgetPeriod
	summaries map[int64]model.BudgetSummary // keyed by summary ID
	byPeriod  map[int64]int64               // period ID -> summary ID
	expenses  map[uuid.UUID]model.Expense
	nextID    int64

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex

	now func() time.Time
}

var _ repository.LedgerStore = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		periods:   make(map[int64]model.BudgetPeriod),
		summaries: make(map[int64]model.BudgetSummary),
		byPeriod:  make(map[int64]int64),
		expenses:  make(map[uuid.UUID]model.Expense),
		locks:     make(map[uuid.UUID]*sync.Mutex),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreatePeriod(ctx context.Context, period *model.BudgetPeriod, summary *model.BudgetSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.nextID++
	period.ID = s.nextID
	period.CreatedAt = now
	s.periods[period.ID] = *period

	s.nextID++
	summary.ID = s.nextID
	summary.PeriodID = period.ID
	summary.UpdatedAt = now
	s.summaries[summary.ID] = *summary
	s.byPeriod[period.ID] = summary.ID

	return nil
}

func (s *Store) ActivePeriod(ctx context.Context, userID uuid.UUID, key model.PeriodKey) (*model.ActivePeriod, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activePeriodLocked(userID, key)
}

func (s *Store) TotalSavings(ctx context.Context, userID uuid.UUID) (money.Amount, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var total money.Amount
	for _, sum := range s.summaries {
		if sum.UserID == userID {
			total += sum.Savings
		}
	}
	return total, nil
}

func (s *Store) ListExpenses(ctx context.Context, userID uuid.UUID, key model.PeriodKey) ([]model.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start, end := datetime.MonthRange(key.Year, key.Month)

	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses := []model.Expense{}
	for _, e := range s.expenses {
		if e.UserID != userID || e.LoggedAt.Before(start) || !e.LoggedAt.Before(end) {
			continue
		}
		expenses = append(expenses, e)
	}
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].LoggedAt.Equal(expenses[j].LoggedAt) {
			return expenses[i].LoggedAt.After(expenses[j].LoggedAt)
		}
		return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
	})
	return expenses, nil
}

func (s *Store) ListActivePeriods(ctx context.Context, key model.PeriodKey) ([]model.ActivePeriod, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make(map[uuid.UUID]struct{})
	for _, p := range s.periods {
		if p.Month == key.Month && p.Year == key.Year {
			users[p.UserID] = struct{}{}
		}
	}

	result := make([]model.ActivePeriod, 0, len(users))
	for userID := range users {
		ap, err := s.activePeriodLocked(userID, key)
		if err != nil {
			continue
		}
		result = append(result, *ap)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Period.ID < result[j].Period.ID
	})
	return result, nil
}

func (s *Store) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(tx repository.LedgerTx) error) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &ledgerTx{
		store:     s,
		userID:    userID,
		summaries: make(map[int64]model.BudgetSummary),
		created:   make(map[uuid.UUID]model.Expense),
		deleted:   make(map[uuid.UUID]struct{}),
	}
	if err := fn(tx); err != nil {
		return err
	}

	s.commit(tx)
	return nil
}

// ReadSnapshot holds the user's lock so no write of that user interleaves
// with fn's reads.
func (s *Store) ReadSnapshot(ctx context.Context, userID uuid.UUID, fn func(r repository.LedgerReader) error) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&ledgerTx{store: s, userID: userID})
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) userLock(userID uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

func (s *Store) commit(tx *ledgerTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sum := range tx.summaries {
		s.summaries[id] = sum
	}
	for id := range tx.deleted {
		delete(s.expenses, id)
	}
	for id, e := range tx.created {
		s.expenses[id] = e
	}
}

// activePeriodLocked expects s.mu to be held.
func (s *Store) activePeriodLocked(userID uuid.UUID, key model.PeriodKey) (*model.ActivePeriod, error) {
	var latest *model.BudgetPeriod
	for id := range s.periods {
		p := s.periods[id]
		if p.UserID != userID || p.Month != key.Month || p.Year != key.Year {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			latest = &p
		}
	}
	if latest == nil {
		return nil, repository.ErrPeriodNotFound
	}

	summaryID, ok := s.byPeriod[latest.ID]
	if !ok {
		return nil, repository.ErrPeriodNotFound
	}
	return &model.ActivePeriod{Period: *latest, Summary: s.summaries[summaryID]}, nil
}
