package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

var validate = newValidator()

// newValidator names fields by their `label` tag so messages read like the
// form the operator filled in.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// Check runs the validate tags of a cleaned payload and reports the first
// failing field.
func Check(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return required(fe.Field())
	case "required_without":
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s or %s is required", fe.Field(), strings.ToLower(fe.Param())))
	case "email":
		return pkgerrors.New(pkgerrors.CodeValidation, "Please enter a valid email")
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
