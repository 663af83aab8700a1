// Package validation wraps go-playground/validator with a shared instance
// that reports field names by their JSON tag and returns domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"casetrack/pkg/email"
	dErrors "casetrack/pkg/domain-errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// The stock "email" tag accepts display-name forms; mailbox matches what
	// the stores persist.
	_ = validate.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return email.Valid(fl.Field().String())
	})
}

// Struct validates v and returns a CodeValidation error describing the first
// failing field.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid request")
	}
	return dErrors.New(dErrors.CodeValidation, describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "mailbox":
		return field + " must be a valid email address"
	default:
		return field + " is invalid"
	}
}
