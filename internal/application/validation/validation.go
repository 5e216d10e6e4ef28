// Package validation validates application request DTOs with struct tags and
// reports failures as *shared.ValidationError.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/qms/backend/internal/domain/shared"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// engine returns the shared validator; validator.Validate is safe for
// concurrent use and caches struct metadata.
func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Use JSON tag names for field names in errors
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Struct validates req and returns the first failure as a ValidationError
func Struct(req any) error {
	err := engine().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		code := "INVALID_INPUT"
		if fe.Tag() == "required" {
			code = "REQUIRED"
		}
		return shared.NewValidationError(code, fe.Field(), message(fe))
	}
	return shared.NewValidationError("INVALID_INPUT", "", err.Error())
}

// message returns a human-readable validation message
func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "invalid email format"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gtefield":
		return "must not be before " + e.Param()
	default:
		return "invalid value"
	}
}
