package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/service"
	"github.com/familybudget/backend/pkg/money"
)

func ctxWithUserID(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), UserIDKey, userID)
}

func TestGetUserID(t *testing.T) {
	userID := uuid.New()
	result := GetUserID(ctxWithUserID(userID))
	assert.Equal(t, userID, result)
}

func TestGetUserID_NotSet(t *testing.T) {
	result := GetUserID(context.Background())
	assert.Equal(t, uuid.Nil, result)
}

func TestGetUserID_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDKey, "not-a-uuid")
	result := GetUserID(ctx)
	assert.Equal(t, uuid.Nil, result)
}

func TestParsePeriodKey(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		year      string
		month     string
		want      model.PeriodKey
		wantField string
	}{
		{name: "defaults to current month", want: model.PeriodKey{Month: 6, Year: 2025}},
		{name: "explicit", year: "2024", month: "2", want: model.PeriodKey{Month: 2, Year: 2024}},
		{name: "month only", month: "11", want: model.PeriodKey{Month: 11, Year: 2025}},
		{name: "month out of range", year: "2024", month: "13", wantField: "month"},
		{name: "month not a number", month: "june", wantField: "month"},
		{name: "negative year", year: "-1", wantField: "year"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key, appErr := parsePeriodKey(tt.year, tt.month, now)
			if tt.wantField != "" {
				require.NotNil(t, appErr)
				assert.Equal(t, tt.wantField, appErr.Field)
				assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
				return
			}
			require.Nil(t, appErr)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestValidateInput(t *testing.T) {
	t.Parallel()

	url := "not a url"

	tests := []struct {
		name      string
		input     interface{}
		wantField string
	}{
		{
			name:  "valid period",
			input: service.OpenPeriodInput{Month: 1, Year: 2025, ActualSalary: money.FromCents(100)},
		},
		{
			name:      "missing month",
			input:     service.OpenPeriodInput{Year: 2025},
			wantField: "month",
		},
		{
			name:      "negative limit",
			input:     service.OpenPeriodInput{Month: 1, Year: 2025, MandatoryLimit: money.FromCents(-1)},
			wantField: "mandatoryLimit",
		},
		{
			name:  "valid expense",
			input: service.LogExpenseInput{Category: model.CategoryMandatory, Amount: money.FromCents(1)},
		},
		{
			name:      "unknown category",
			input:     service.LogExpenseInput{Category: "toys", Amount: money.FromCents(1)},
			wantField: "category",
		},
		{
			name:      "zero amount",
			input:     service.LogExpenseInput{Category: model.CategoryBasicNeeds},
			wantField: "amount",
		},
		{
			name:      "bad attachment url",
			input:     service.LogExpenseInput{Category: model.CategoryBasicNeeds, Amount: money.FromCents(1), AttachmentURL: &url},
			wantField: "attachmentUrl",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			appErr := validateInput(tt.input)
			if tt.wantField == "" {
				assert.Nil(t, appErr)
				return
			}
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantField, appErr.Field)
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, model.CategoryBasicNeeds, normalizeCategory("Basic Needs"))
	assert.Equal(t, model.CategorySuddenExpense, normalizeCategory("sudden-expense"))
	assert.Equal(t, model.Category("toys"), normalizeCategory("toys"))
}
