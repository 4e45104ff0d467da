package user

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	domain "rating-user-service/internal/domain/user"
	pkgerrors "rating-user-service/pkg/errors"
)

// Custom validation tags.
const (
	TagRating   = "rating"   // domain.ValidateRating
	TagNotBlank = "notblank" // rejects whitespace-only strings
)

// ErrRatingNull is reported for a rating sent as JSON null.
const ErrRatingNull = "rating must be a number; omit the field to use the default"

// Request locations used in field errors.
const (
	LocationBody  = "body"
	LocationQuery = "query"
)

// NewValidator returns a validator that reports JSON field names and knows the rating tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		// Registration only fails for empty tag names.
		panic(err)
	}
	return v
}

// RegisterValidations installs the custom tags and JSON field naming on v.
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation(TagRating, func(fl validator.FieldLevel) bool {
		f, ok := floatValue(fl.Field())
		if !ok {
			return false
		}
		_, err := domain.ValidateRating(f)
		return err == nil
	}); err != nil {
		return fmt.Errorf("register %s: %w", TagRating, err)
	}

	if err := v.RegisterValidation(TagNotBlank, validators.NotBlank); err != nil {
		return fmt.Errorf("register %s: %w", TagNotBlank, err)
	}

	return nil
}

func floatValue(v reflect.Value) (float64, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// ToValidationError converts validator.ValidationErrors into a field-level ValidationError.
// Other errors are returned unchanged.
func ToValidationError(err error, location string) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	out := &pkgerrors.ValidationError{}
	for _, e := range validationErrors {
		msg, errType := fieldMessage(e)
		out.Add([]string{location, e.Field()}, msg, errType)
	}
	return out
}

// fieldMessage converts a single failed tag into a human-readable message.
func fieldMessage(e validator.FieldError) (string, string) {
	numeric := false
	switch e.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field()), pkgerrors.TypeMissing
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field()), pkgerrors.TypeValue
	case TagNotBlank:
		return fmt.Sprintf("%s must not be blank", e.Field()), pkgerrors.TypeValue
	case TagRating:
		f, ok := floatValue(reflect.ValueOf(e.Value()))
		if !ok {
			return "rating must be a number", pkgerrors.TypeType
		}
		if _, err := domain.ValidateRating(f); err != nil {
			return err.Error(), pkgerrors.TypeValue
		}
		return domain.ErrRatingOutOfRange.Error(), pkgerrors.TypeValue
	case "min":
		if numeric {
			return fmt.Sprintf("%s must be greater than or equal to %s", e.Field(), e.Param()), pkgerrors.TypeValue
		}
		return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()), pkgerrors.TypeValue
	case "max":
		if numeric {
			return fmt.Sprintf("%s must be less than or equal to %s", e.Field(), e.Param()), pkgerrors.TypeValue
		}
		return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()), pkgerrors.TypeValue
	default:
		return fmt.Sprintf("%s is invalid", e.Field()), pkgerrors.TypeValue
	}
}
