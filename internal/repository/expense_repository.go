package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/pkg/datetime"
)

func (r *LedgerRepository) ListExpenses(ctx context.Context, userID uuid.UUID, key model.PeriodKey) ([]model.Expense, error) {
	start, end := datetime.MonthRange(key.Year, key.Month)
	query := `
		SELECT * FROM expenses
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		ORDER BY logged_at DESC, created_at DESC`

	expenses := []model.Expense{}
	err := r.db.SelectContext(ctx, &expenses, query, userID, start, end)
	return expenses, err
}

func (t *ledgerTx) CreateExpense(ctx context.Context, expense *model.Expense) error {
	query := `
		INSERT INTO expenses (id, user_id, category, description, amount, attachment_url, logged_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at`

	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	expense.UserID = t.userID
	return t.tx.QueryRowxContext(ctx, query,
		expense.ID, expense.UserID, expense.Category, expense.Description, expense.Amount,
		expense.AttachmentURL, expense.LoggedAt,
	).Scan(&expense.CreatedAt)
}

func (t *ledgerTx) GetExpense(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	query := `SELECT * FROM expenses WHERE id = $1 AND user_id = $2`
	err := t.tx.GetContext(ctx, &expense, query, id, t.userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (t *ledgerTx) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM expenses WHERE id = $1 AND user_id = $2`
	result, err := t.tx.ExecContext(ctx, query, id, t.userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
