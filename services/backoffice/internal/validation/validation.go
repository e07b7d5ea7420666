package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const notBlankTag = "notblank"

// FieldError is one failed rule on a request field, named by its JSON tag.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the error returned by Struct when validation fails.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlank)
	return v
}

func notBlank(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

// Struct runs the struct's validate tags. It returns nil or an Errors value.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// Fields extracts the field errors from err, if any.
func Fields(err error) []FieldError {
	var errs Errors
	if errors.As(err, &errs) {
		return errs
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", notBlankTag:
		return "không được để trống"
	case "max":
		return fmt.Sprintf("tối đa %s ký tự", fe.Param())
	case "min":
		return fmt.Sprintf("tối thiểu %s", fe.Param())
	case "gt":
		return fmt.Sprintf("phải lớn hơn %s", fe.Param())
	case "gte":
		return fmt.Sprintf("phải lớn hơn hoặc bằng %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("phải là một trong: %s", fe.Param())
	case "email":
		return "email không hợp lệ"
	default:
		return fmt.Sprintf("không hợp lệ (%s)", fe.Tag())
	}
}
