// Package validation wraps go-playground/validator and renders localized field messages.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"khidmaBack/internal/i18n"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// FieldErrors maps a JSON field path to a localized message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, k+": "+v)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator validates request payloads.
type Validator struct {
	v *validator.Validate
}

// New builds a validator that reports JSON field names.
func New() *Validator {
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
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates s and returns FieldErrors rendered in lang, or nil.
func (val *Validator) Struct(lang string, s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = message(lang, fe)
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(lang string, fe validator.FieldError) string {
	kind := fe.Kind()
	isLen := kind == reflect.String
	isList := kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map
	switch fe.Tag() {
	case "required", "required_if":
		return i18n.T(lang, "field.required")
	case "min", "gte":
		switch {
		case isLen:
			return i18n.T(lang, "field.min_len", fe.Param())
		case isList:
			return i18n.T(lang, "field.min_items", fe.Param())
		}
		return i18n.T(lang, "field.min", fe.Param())
	case "max", "lte":
		switch {
		case isLen:
			return i18n.T(lang, "field.max_len", fe.Param())
		case isList:
			return i18n.T(lang, "field.max_items", fe.Param())
		}
		return i18n.T(lang, "field.max", fe.Param())
	case "gt":
		return i18n.T(lang, "field.gt", fe.Param())
	case "email":
		return i18n.T(lang, "field.email")
	case "e164":
		return i18n.T(lang, "field.phone")
	case "oneof":
		return i18n.T(lang, "field.oneof", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "unique":
		return i18n.T(lang, "field.unique")
	case "slug":
		return i18n.T(lang, "field.slug")
	}
	return i18n.T(lang, "field.invalid")
}
