// Package handler implements the HTTP surface of the budget ledger.
// Each handler validates input, delegates to services, and formats responses.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/familybudget/backend/internal/apperror"
	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/service"
	"github.com/familybudget/backend/pkg/money"
)

// PeriodHandler handles budget period and balance requests.
type PeriodHandler struct {
	service LedgerServiceInterface
	now     func() time.Time
}

// NewPeriodHandler creates a new PeriodHandler with the given service.
func NewPeriodHandler(service LedgerServiceInterface) *PeriodHandler {
	return &PeriodHandler{service: service, now: time.Now}
}

// RemainingResponse is the remaining salary of a month.
type RemainingResponse struct {
	Period          model.PeriodKey `json:"period"`
	RemainingSalary money.Amount    `json:"remainingSalary"`
}

// SavingsResponse is the user's savings across all months.
type SavingsResponse struct {
	TotalSavings money.Amount `json:"totalSavings"`
}

// Open godoc
// @Summary Open a budget period
// @Description Declare salary and category limits for a month. A later declaration for the same month replaces the active one.
// @Tags periods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body service.OpenPeriodInput true "Budget declaration"
// @Success 201 {object} model.ActivePeriod
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /periods [post]
func (h *PeriodHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var input service.OpenPeriodInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondAppError(w, apperror.BadRequest("invalid request body: "+err.Error()))
		return
	}
	if appErr := validateInput(input); appErr != nil {
		respondAppError(w, appErr)
		return
	}

	ap, err := h.service.OpenPeriod(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, ap)
}

// Overview godoc
// @Summary Get month overview
// @Description Active budget, per-category balances, remaining salary and total savings
// @Tags periods
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} model.LedgerOverview
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /periods/{year}/{month} [get]
func (h *PeriodHandler) Overview(w http.ResponseWriter, r *http.Request) {
	key, appErr := parsePeriodKey(chi.URLParam(r, "year"), chi.URLParam(r, "month"), h.now())
	if appErr != nil {
		respondAppError(w, appErr)
		return
	}

	overview, err := h.service.Overview(r.Context(), GetUserID(r.Context()), key)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

// Remaining godoc
// @Summary Get remaining salary
// @Description Active salary minus everything spent in the month; zero when no budget is configured
// @Tags periods
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} RemainingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /periods/{year}/{month}/remaining [get]
func (h *PeriodHandler) Remaining(w http.ResponseWriter, r *http.Request) {
	key, appErr := parsePeriodKey(chi.URLParam(r, "year"), chi.URLParam(r, "month"), h.now())
	if appErr != nil {
		respondAppError(w, appErr)
		return
	}

	remaining, err := h.service.RemainingSalary(r.Context(), GetUserID(r.Context()), key)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, RemainingResponse{Period: key, RemainingSalary: remaining})
}

// Savings godoc
// @Summary Get total savings
// @Description Savings summed over every budget period of the user
// @Tags periods
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SavingsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /savings [get]
func (h *PeriodHandler) Savings(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalSavings(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, SavingsResponse{TotalSavings: total})
}
