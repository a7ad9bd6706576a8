package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/familybudget/backend/internal/apperror"
	"github.com/familybudget/backend/internal/logger"
	"github.com/familybudget/backend/internal/model"
)

// ErrorResponse represents a JSON error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response with the given status code and message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondAppError writes a JSON error response from an AppError.
// It extracts the status code and message from the error.
func respondAppError(w http.ResponseWriter, err *apperror.AppError) {
	resp := ErrorResponse{
		Error: err.Message,
		Field: err.Field,
	}
	respondJSON(w, err.StatusCode, resp)
}

// respondServiceError maps a service error onto a response. Anything that is
// not already an AppError is logged and reported as an internal error.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(err)
	}
	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			"path", r.URL.Path,
			"status", appErr.StatusCode,
			"error", err,
		)
	}
	respondAppError(w, appErr)
}

// parsePeriodKey reads year and month from the given raw values. Empty values
// default to the current UTC month.
func parsePeriodKey(rawYear, rawMonth string, now time.Time) (model.PeriodKey, *apperror.AppError) {
	key := model.PeriodOf(now)

	if s := strings.TrimSpace(rawYear); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil || year <= 0 {
			return key, apperror.ValidationError("year", "year must be a positive integer")
		}
		key.Year = year
	}
	if s := strings.TrimSpace(rawMonth); s != "" {
		month, err := strconv.Atoi(s)
		if err != nil {
			return key, apperror.ValidationError("month", "month must be between 1 and 12")
		}
		key.Month = month
	}
	if !key.Valid() {
		return key, apperror.ValidationError("month", "month must be between 1 and 12")
	}
	return key, nil
}
