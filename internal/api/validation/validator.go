// Package validation wraps go-playground/validator with the portal's custom
// rules and maps field errors onto the DomainError taxonomy.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

// Validator validates request DTOs.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator. allowedDomain restricts company_email fields; empty accepts any domain.
func New(allowedDomain string) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	registerNullTypes(v)
	// A rule that fails to register leaves requests unchecked; refuse to start.
	if err := registerRules(v, strings.ToLower(strings.TrimSpace(allowedDomain))); err != nil {
		panic("validation: register rules: " + err.Error())
	}
	return &Validator{validate: v}
}

// Struct validates s and returns a ValidationError with {field: tag} details on failure.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInternalError(err)
	}
	return apperrors.NewValidationError("validation failed", Details(fieldErrs))
}

// Details flattens field errors into a map keyed by JSON field name.
func Details(errs validator.ValidationErrors) map[string]any {
	out := make(map[string]any, len(errs))
	for _, fe := range errs {
		key := fieldPath(fe)
		tag := fe.Tag()
		if fe.Param() != "" {
			tag += "=" + fe.Param()
		}
		out[key] = tag
	}
	return out
}

// fieldPath drops the struct name so nested fields read like "attachments[0].url".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
