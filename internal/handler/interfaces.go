package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/service"
	"github.com/familybudget/backend/pkg/money"
)

// LedgerServiceInterface for handler testing
type LedgerServiceInterface interface {
	OpenPeriod(ctx context.Context, userID uuid.UUID, input service.OpenPeriodInput) (*model.ActivePeriod, error)
	Overview(ctx context.Context, userID uuid.UUID, key model.PeriodKey) (*model.LedgerOverview, error)
	RemainingSalary(ctx context.Context, userID uuid.UUID, key model.PeriodKey) (money.Amount, error)
	TotalSavings(ctx context.Context, userID uuid.UUID) (money.Amount, error)
}

// ExpenseServiceInterface for handler testing
type ExpenseServiceInterface interface {
	Log(ctx context.Context, userID uuid.UUID, input service.LogExpenseInput) (*service.LoggedExpense, error)
	List(ctx context.Context, userID uuid.UUID, key model.PeriodKey) ([]model.Expense, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
