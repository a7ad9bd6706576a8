package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/familybudget/backend/internal/apperror"
	"github.com/familybudget/backend/internal/model"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// requestValidator returns the shared validator with the custom tags
// registered and JSON field names used in errors.
func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("category", validateCategory)
		validate = v
	})
	return validate
}

func validateCategory(fl validator.FieldLevel) bool {
	return model.Category(fl.Field().String()).Valid()
}

// validateInput runs struct validation and reports the first failing field.
func validateInput(input interface{}) *apperror.AppError {
	err := requestValidator().Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.BadRequest(err.Error())
	}
	fe := verrs[0]
	return apperror.ValidationError(fe.Field(), validationMessage(fe))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "category":
		return "category must be one of mandatory, basic_needs or sudden_expense"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// normalizeCategory maps display labels like "Basic Needs" onto the
// canonical value before validation. Unknown values are left for the
// validator to reject.
func normalizeCategory(c model.Category) model.Category {
	parsed, err := model.ParseCategory(string(c))
	if err != nil {
		return c
	}
	return parsed
}
