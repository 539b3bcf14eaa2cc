package util

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	rgxUsername = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	rgxTagName  = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("latitude", validateLatitude)
	_ = validate.RegisterValidation("longitude", validateLongitude)
	_ = validate.RegisterValidation("username", validateUsername)
	_ = validate.RegisterValidation("tagname", validateTagName)
}

func validateLatitude(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90 && lat <= 90
}

func validateLongitude(fl validator.FieldLevel) bool {
	lon := fl.Field().Float()
	return lon >= -180 && lon <= 180
}

func validateUsername(fl validator.FieldLevel) bool {
	return rgxUsername.MatchString(fl.Field().String())
}

func validateTagName(fl validator.FieldLevel) bool {
	return rgxTagName.MatchString(fl.Field().String())
}

// ValidationError carries a message per offending JSON field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+" "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidateStruct runs the struct's validate tags. Failures come back as a
// *ValidationError.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[fieldPath(e)] = friendlyMessage(e)
	}
	return &ValidationError{Fields: fields}
}

// fieldPath drops the struct name prefix, keeping dive indexes like tags[2].
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must not contain more than %s items", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "latitude":
		return "must be between -90 and 90"
	case "longitude":
		return "must be between -180 and 180"
	case "username":
		return "may only contain letters, numbers, underscores and hyphens"
	case "tagname":
		return "may only contain letters, numbers, spaces, hyphens and underscores"
	case "hexcolor":
		return "must be a hex color like #007bff"
	default:
		return "is invalid"
	}
}
