package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/pkg/money"
)

var expenseCols = []string{"id", "user_id", "category", "description", "amount", "attachment_url", "logged_at", "created_at"}

func TestLedgerRepository_ListExpenses(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	userID := uuid.New()
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	logged := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(expenseCols).
		AddRow(uuid.New().String(), userID.String(), "basic_needs", "groceries", int64(4599), nil, logged, logged).
		AddRow(uuid.New().String(), userID.String(), "mandatory", "rent", int64(90000), "https://files.example/receipt.png", logged, logged)

	mock.ExpectQuery(`SELECT \* FROM expenses\s+WHERE user_id = \$1 AND logged_at >= \$2 AND logged_at < \$3`).
		WithArgs(userID, start, end).
		WillReturnRows(rows)

	expenses, err := repo.ListExpenses(context.Background(), userID, model.PeriodKey{Month: 2, Year: 2025})

	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, model.CategoryBasicNeeds, expenses[0].Category)
	assert.Nil(t, expenses[0].AttachmentURL)
	require.NotNil(t, expenses[1].AttachmentURL)
	assert.Equal(t, money.Amount(90000), expenses[1].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_ListExpensesEmpty(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT \* FROM expenses`).WillReturnRows(sqlmock.NewRows(expenseCols))

	expenses, err := repo.ListExpenses(context.Background(), uuid.New(), model.PeriodKey{Month: 2, Year: 2025})

	require.NoError(t, err)
	assert.NotNil(t, expenses)
	assert.Empty(t, expenses)
}

func TestLedgerTx_CreateExpense(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	userID := uuid.New()
	logged := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	expense := &model.Expense{
		Category:    model.CategorySuddenExpense,
		Description: "vet",
		Amount:      12000,
		LoggedAt:    logged,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`FOR UPDATE`).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO expenses`).
		WithArgs(sqlmock.AnyArg(), userID, model.CategorySuddenExpense, "vet", money.Amount(12000), nil, logged).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	err := repo.WithUserLock(context.Background(), userID, func(tx LedgerTx) error {
		return tx.CreateExpense(context.Background(), expense)
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, expense.ID)
	assert.Equal(t, userID, expense.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerTx_GetExpense(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock, uuid.UUID, uuid.UUID)
		wantErr   error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock, id, userID uuid.UUID) {
				now := time.Now()
				mock.ExpectQuery(`SELECT \* FROM expenses WHERE id = \$1 AND user_id = \$2`).
					WithArgs(id, userID).
					WillReturnRows(sqlmock.NewRows(expenseCols).
						AddRow(id.String(), userID.String(), "mandatory", "rent", int64(100), nil, now, now))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock, id, userID uuid.UUID) {
				mock.ExpectQuery(`SELECT \* FROM expenses`).
					WithArgs(id, userID).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrExpenseNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo, mock := newMockRepo(t)
			id, userID := uuid.New(), uuid.New()

			mock.ExpectBegin()
			mock.ExpectExec(`FOR UPDATE`).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
			tt.setupMock(mock, id, userID)
			if tt.wantErr != nil {
				mock.ExpectRollback()
			} else {
				mock.ExpectCommit()
			}

			var got *model.Expense
			err := repo.WithUserLock(context.Background(), userID, func(tx LedgerTx) error {
				var err error
				got, err = tx.GetExpense(context.Background(), id)
				return err
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, id, got.ID)
				assert.Equal(t, model.CategoryMandatory, got.Category)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLedgerTx_DeleteExpense(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "not found", affected: 0, wantErr: ErrExpenseNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo, mock := newMockRepo(t)
			id, userID := uuid.New(), uuid.New()

			mock.ExpectBegin()
			mock.ExpectExec(`FOR UPDATE`).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`DELETE FROM expenses WHERE id = \$1 AND user_id = \$2`).
				WithArgs(id, userID).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			if tt.wantErr != nil {
				mock.ExpectRollback()
			} else {
				mock.ExpectCommit()
			}

			err := repo.WithUserLock(context.Background(), userID, func(tx LedgerTx) error {
				return tx.DeleteExpense(context.Background(), id)
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
