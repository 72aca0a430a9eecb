package services

import (
	"errors"
	"reflect"
	"strings"

	"gamewish/internal/apperr"

	"github.com/go-playground/validator/v10"
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput checks in against its validate tags. A missing required field
// turns into a ValidationError carrying requiredMsg; other failures name the
// offending field.
func validateInput(v *validator.Validate, in any, requiredMsg string) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal("Internal server error", err)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperr.Validation(requiredMsg)
		}
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "email":
		return apperr.Validation(fe.Field() + " must be a valid email address")
	case "oneof":
		return apperr.Validation(fe.Field() + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return apperr.Validation(fe.Field() + " is invalid")
	}
}
