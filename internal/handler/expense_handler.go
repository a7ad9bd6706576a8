package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/familybudget/backend/internal/apperror"
	"github.com/familybudget/backend/internal/service"
)

// ExpenseHandler handles HTTP requests for the expense archive.
type ExpenseHandler struct {
	service ExpenseServiceInterface
	now     func() time.Time
}

// NewExpenseHandler creates a new ExpenseHandler with the given service.
func NewExpenseHandler(service ExpenseServiceInterface) *ExpenseHandler {
	return &ExpenseHandler{service: service, now: time.Now}
}

// Log godoc
// @Summary Log an expense
// @Description Charge an expense to the month it was logged in, cascading into other categories and savings when needed
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body service.LogExpenseInput true "Expense data"
// @Success 201 {object} service.LoggedExpense
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No budget configured for the month"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Failure 503 {object} ErrorResponse
// @Router /expenses [post]
func (h *ExpenseHandler) Log(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var input service.LogExpenseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondAppError(w, apperror.BadRequest("invalid request body: "+err.Error()))
		return
	}
	input.Category = normalizeCategory(input.Category)
	if appErr := validateInput(input); appErr != nil {
		respondAppError(w, appErr)
		return
	}

	logged, err := h.service.Log(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, logged)
}

// List godoc
// @Summary List expenses of a month
// @Description Newest first. Defaults to the current month.
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Success 200 {array} model.Expense
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /expenses [get]
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, appErr := parsePeriodKey(q.Get("year"), q.Get("month"), h.now())
	if appErr != nil {
		respondAppError(w, appErr)
		return
	}

	expenses, err := h.service.List(r.Context(), GetUserID(r.Context()), key)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, expenses)
}

// Delete godoc
// @Summary Delete an expense
// @Description Remove an expense and credit its amount back to its category
// @Tags expenses
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, apperror.BadRequest("invalid expense ID"))
		return
	}

	if err := h.service.Delete(r.Context(), GetUserID(r.Context()), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
