package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common cases
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBadRequest         = errors.New("bad request")
	ErrInternal           = errors.New("internal server error")
	ErrValidation         = errors.New("validation error")
	ErrNoBudgetConfigured = errors.New("no budget configured")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// AppError wraps errors with HTTP status and user-friendly message
type AppError struct {
	Err        error  // Original error (for logging)
	Message    string // User-friendly message
	StatusCode int    // HTTP status code
	Field      string // Optional field name for validation errors
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for common errors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func ValidationError(field, message string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Field:      field,
	}
}

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Err:        ErrUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "an internal error occurred",
		StatusCode: http.StatusInternalServerError,
	}
}

// NoBudgetConfigured reports that no budget period exists for the month.
func NoBudgetConfigured(period string) *AppError {
	return &AppError{
		Err:        ErrNoBudgetConfigured,
		Message:    fmt.Sprintf("no budget configured for %s", period),
		StatusCode: http.StatusNotFound,
	}
}

// InsufficientFunds reports that neither the category cascade nor savings
// can cover an expense.
func InsufficientFunds(detail error) *AppError {
	err := ErrInsufficientFunds
	if detail != nil {
		err = fmt.Errorf("%w: %w", ErrInsufficientFunds, detail)
	}
	return &AppError{
		Err:        err,
		Message:    "insufficient funds to cover this expense",
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// StorageUnavailable wraps a persistence failure. Both the sentinel and the
// cause remain reachable through errors.Is.
func StorageUnavailable(cause error) *AppError {
	return &AppError{
		Err:        fmt.Errorf("%w: %w", ErrStorageUnavailable, cause),
		Message:    "storage is temporarily unavailable",
		StatusCode: http.StatusServiceUnavailable,
	}
}

// GetStatusCode extracts HTTP status from error, defaults to 500
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Check sentinel errors
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoBudgetConfigured):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetMessage extracts user message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetField returns the offending input field of a validation error, if any.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
