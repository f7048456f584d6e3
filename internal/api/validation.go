package api

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fleetpulse/fleetpulse/internal/database"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so clients see the keys they sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// enum accepts members of a closed string variant
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(database.Enum)
		return ok && e.Valid()
	})
	return v
}

// Validate validates a struct using go-playground/validator tags.
// Returns nil on success or a map of field-name → error-message.
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errs := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		errs[fieldPath(fe)] = validationMessage(fe)
	}
	return errs
}

// fieldPath drops the root struct name from the error namespace, so nested
// fields read "telemetry.cpuUsage".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// validationMessage returns a human-readable message for a validation error.
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "enum":
		if e, ok := fe.Value().(database.Enum); ok {
			return "must be one of: " + strings.Join(e.Values(), ", ")
		}
		return "is not a recognized value"
	case "email":
		return "must be a valid email"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
