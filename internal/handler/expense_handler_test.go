package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/familybudget/backend/internal/apperror"
	"github.com/familybudget/backend/internal/ledger"
	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/service"
	"github.com/familybudget/backend/pkg/money"
)

// MockExpenseService implements a mock expense service for handler tests
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) Log(ctx context.Context, userID uuid.UUID, input service.LogExpenseInput) (*service.LoggedExpense, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoggedExpense), args.Error(1)
}

func (m *MockExpenseService) List(ctx context.Context, userID uuid.UUID, key model.PeriodKey) ([]model.Expense, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Expense), args.Error(1)
}

func (m *MockExpenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func TestExpenseHandler_Log(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		body      string
		setupMock func(*MockExpenseService)
		wantCode  int
	}{
		{
			name: "success with display label",
			body: `{"category":"Basic Needs","description":"groceries","amount":"42.10"}`,
			setupMock: func(m *MockExpenseService) {
				m.On("Log", mock.Anything, userID, mock.MatchedBy(func(in service.LogExpenseInput) bool {
					return in.Category == model.CategoryBasicNeeds && in.Amount == money.FromCents(4210)
				})).Return(&service.LoggedExpense{
					Expense:    model.Expense{ID: uuid.New(), Category: model.CategoryBasicNeeds, Amount: money.FromCents(4210)},
					Allocation: &ledger.Plan{Category: model.CategoryBasicNeeds, Amount: money.FromCents(4210), Draws: []ledger.Draw{}},
				}, nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "invalid body",
			body:     `{`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown category",
			body:     `{"category":"toys","amount":"1"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "amount beyond cent range",
			body:     `{"category":"mandatory","amount":"184467440737095516.17"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "zero amount",
			body:     `{"category":"mandatory","amount":0}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "insufficient funds",
			body: `{"category":"mandatory","amount":"9999"}`,
			setupMock: func(m *MockExpenseService) {
				m.On("Log", mock.Anything, userID, mock.Anything).Return(nil, apperror.InsufficientFunds(ledger.ErrInsufficientFunds))
			},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name: "no budget configured",
			body: `{"category":"mandatory","amount":"10","loggedAt":"2024-01-05"}`,
			setupMock: func(m *MockExpenseService) {
				m.On("Log", mock.Anything, userID, mock.Anything).Return(nil, apperror.NoBudgetConfigured("2024-01"))
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockExpenseService)
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}
			handler := NewExpenseHandler(mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/expenses", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(ctxWithUserID(userID))

			rr := httptest.NewRecorder()
			handler.Log(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestExpenseHandler_List(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		query    string
		wantKey  model.PeriodKey
		wantCode int
	}{
		{name: "defaults to current month", query: "", wantKey: model.PeriodKey{Month: 5, Year: 2025}, wantCode: http.StatusOK},
		{name: "explicit month", query: "?year=2024&month=12", wantKey: model.PeriodKey{Month: 12, Year: 2024}, wantCode: http.StatusOK},
		{name: "invalid month", query: "?month=99", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockExpenseService)
			if tt.wantCode == http.StatusOK {
				mockService.On("List", mock.Anything, userID, tt.wantKey).Return([]model.Expense{}, nil)
			}
			handler := NewExpenseHandler(mockService)
			handler.now = func() time.Time { return now }

			req := httptest.NewRequest(http.MethodGet, "/api/expenses"+tt.query, nil)
			req = req.WithContext(ctxWithUserID(userID))

			rr := httptest.NewRecorder()
			handler.List(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantCode == http.StatusOK {
				assert.JSONEq(t, `[]`, rr.Body.String())
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestExpenseHandler_Delete(t *testing.T) {
	userID := uuid.New()
	expenseID := uuid.New()

	tests := []struct {
		name     string
		id       string
		err      error
		call     bool
		wantCode int
	}{
		{name: "success", id: expenseID.String(), call: true, wantCode: http.StatusNoContent},
		{name: "invalid id", id: "nope", wantCode: http.StatusBadRequest},
		{name: "not found", id: expenseID.String(), err: apperror.NotFound("expense"), call: true, wantCode: http.StatusNotFound},
		{name: "storage", id: expenseID.String(), err: apperror.StorageUnavailable(errors.New("down")), call: true, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockExpenseService)
			if tt.call {
				mockService.On("Delete", mock.Anything, userID, expenseID).Return(tt.err)
			}
			handler := NewExpenseHandler(mockService)

			req := httptest.NewRequest(http.MethodDelete, "/api/expenses/"+tt.id, nil)
			req = req.WithContext(ctxWithUserID(userID))
			req = withURLParams(req, map[string]string{"id": tt.id})

			rr := httptest.NewRecorder()
			handler.Delete(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}
