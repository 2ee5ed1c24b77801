package utils

import (
	"fmt"
	"reflect"
	"strings"

	"crux-backend/domain/core/valueobjects"
	pkgerrors "crux-backend/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// label accepts any case; the tag synchronizer folds it later
	_ = v.RegisterValidation("label", func(fl validator.FieldLevel) bool {
		return valueobjects.IsValidRawLabel(fl.Field().String())
	})
	_ = v.RegisterValidation("dimensiontype", func(fl validator.FieldLevel) bool {
		return valueobjects.DimensionType(fl.Field().String()).IsValid()
	})

	return v
}

// ValidateStruct validates a struct based on its validation tags and
// returns a validation AppError listing every failing field
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.NewValidationError(err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	fields := make(map[string]interface{}, len(validationErrors))
	for _, e := range validationErrors {
		msg := formatFieldError(e)
		messages = append(messages, msg)
		fields[e.Namespace()] = msg
	}
	return pkgerrors.NewValidationError(strings.Join(messages, "; ")).
		WithDetails(map[string]interface{}{"fields": fields})
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must have at most %s entries", field, e.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "dimensiontype":
		return fmt.Sprintf("%s must be one of: gate garden growth graft", field)
	case "label":
		return fmt.Sprintf("%s must be 1-50 letters, digits or hyphens", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
