package models

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	MsgRequired     = "This field is required"
	MsgInvalidEmail = "Please enter a valid email address"
)

var contactEmail = regexp.MustCompile(`\S+@\S+\.\S+`)

// IsContactEmail is the loose shape check used by checkout forms.
func IsContactEmail(s string) bool {
	return contactEmail.MatchString(s)
}

// Validate is shared by every package; validator caches struct metadata and is safe for concurrent use.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
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

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("product_category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("product_size", func(fl validator.FieldLevel) bool {
		return Size(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return IsContactEmail(fl.Field().String())
	})
	return v
}

// ValidationError is a user-correctable failure reported per field.
type ValidationError struct {
	Fields map[string]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// IsValidationError unwraps err looking for a *ValidationError.
func IsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// ValidateStruct runs the struct tags and converts failures into a *ValidationError.
// Field paths use json names; prefix, when set, is prepended ("shipping.email").
func ValidateStruct(s any, prefix string) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace(), prefix)] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldPath(namespace, prefix string) string {
	path := namespace
	if i := strings.Index(namespace, "."); i >= 0 {
		path = namespace[i+1:]
	}
	if prefix == "" {
		return path
	}
	return prefix + "." + path
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email", "contact_email":
		return MsgInvalidEmail
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "product_category":
		return "is not a valid category"
	case "product_size":
		return "is not a valid size"
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
