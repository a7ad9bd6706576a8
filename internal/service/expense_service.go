package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/familybudget/backend/internal/apperror"
	"github.com/familybudget/backend/internal/ledger"
	"github.com/familybudget/backend/internal/logger"
	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/repository"
	"github.com/familybudget/backend/pkg/datetime"
	"github.com/familybudget/backend/pkg/money"
)

// ExpenseService archives expenses and keeps the ledger in step with them.
type ExpenseService struct {
	ledger *LedgerService
	now    func() time.Time
}

// NewExpenseService creates a new ExpenseService on top of the ledger.
func NewExpenseService(ledger *LedgerService) *ExpenseService {
	return &ExpenseService{
		ledger: ledger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type LogExpenseInput struct {
	Category      model.Category     `json:"category" validate:"required,category"`
	Description   string             `json:"description" validate:"max=255"`
	Amount        money.Amount       `json:"amount" validate:"gt=0"`
	AttachmentURL *string            `json:"attachmentUrl,omitempty" validate:"omitempty,url"`
	LoggedAt      *datetime.DateTime `json:"loggedAt,omitempty"`
}

// LoggedExpense is the archived expense together with how it was funded.
type LoggedExpense struct {
	Expense    model.Expense `json:"expense"`
	Allocation *ledger.Plan  `json:"allocation"`
}

// Log charges the expense to the month it was logged in and archives it. The
// allocation and the archive row commit together or not at all.
func (s *ExpenseService) Log(ctx context.Context, userID uuid.UUID, input LogExpenseInput) (*LoggedExpense, error) {
	loggedAt := s.now()
	if input.LoggedAt != nil && !input.LoggedAt.IsZero() {
		loggedAt = input.LoggedAt.UTC()
	}
	key := model.PeriodOf(loggedAt)

	if err := validateCharge(key, input.Category, input.Amount); err != nil {
		return nil, err
	}

	expense := &model.Expense{
		UserID:        userID,
		Category:      input.Category,
		Description:   strings.TrimSpace(input.Description),
		Amount:        input.Amount,
		AttachmentURL: input.AttachmentURL,
		LoggedAt:      loggedAt,
	}

	var plan *ledger.Plan
	err := s.ledger.store.WithUserLock(ctx, userID, func(tx repository.LedgerTx) error {
		var err error
		plan, err = s.ledger.allocateTx(ctx, tx, key, input.Category, input.Amount)
		if err != nil {
			return err
		}
		if err := tx.CreateExpense(ctx, expense); err != nil {
			return storageError("archiving expense", err)
		}
		return nil
	})
	if err != nil {
		return nil, storageError("logging expense", err)
	}
	s.ledger.invalidate(ctx, userID)

	logger.FromContext(ctx).Info("expense logged",
		slog.String("expense_id", expense.ID.String()),
		slog.String("period", key.String()),
		slog.String("category", string(expense.Category)),
		slog.String("amount", expense.Amount.String()),
	)

	return &LoggedExpense{Expense: *expense, Allocation: plan}, nil
}

// List returns the month's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID, key model.PeriodKey) ([]model.Expense, error) {
	if !key.Valid() {
		return nil, apperror.ValidationError("month", "invalid month or year")
	}
	expenses, err := s.ledger.store.ListExpenses(ctx, userID, key)
	if err != nil {
		return nil, storageError("listing expenses", err)
	}
	return expenses, nil
}

// Delete removes an expense and credits its amount back to the nominal
// category of the month it was logged in.
func (s *ExpenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.ledger.store.WithUserLock(ctx, userID, func(tx repository.LedgerTx) error {
		expense, err := tx.GetExpense(ctx, id)
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return apperror.NotFound("expense")
		}
		if err != nil {
			return storageError("loading expense", err)
		}

		if err := s.ledger.reverseTx(ctx, tx, expense.Period(), expense.Category, expense.Amount); err != nil {
			return err
		}

		if err := tx.DeleteExpense(ctx, id); err != nil {
			if errors.Is(err, repository.ErrExpenseNotFound) {
				return apperror.NotFound("expense")
			}
			return storageError("deleting expense", err)
		}
		return nil
	})
	if err != nil {
		return storageError("deleting expense", err)
	}
	s.ledger.invalidate(ctx, userID)

	logger.FromContext(ctx).Info("expense deleted", slog.String("expense_id", id.String()))
	return nil
}
