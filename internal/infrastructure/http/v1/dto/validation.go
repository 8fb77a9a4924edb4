package dto

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"tidewater/internal/core/types"
)

// RegisterValidators teaches v about decimal.Decimal fields. Decimals are
// validated through their string form:
//
//	dgt0     strictly positive
//	dgte0    zero or positive
//	dnonzero anything but zero
//	dscale   at most two fractional digits
func RegisterValidators(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	rules := map[string]func(decimal.Decimal) bool{
		"dgt0":     func(d decimal.Decimal) bool { return d.IsPositive() },
		"dgte0":    func(d decimal.Decimal) bool { return !d.IsNegative() },
		"dnonzero": func(d decimal.Decimal) bool { return !d.IsZero() },
		"dscale":   func(d decimal.Decimal) bool { return d.Equal(d.Truncate(types.Scale)) },
	}
	for tag, rule := range rules {
		if err := v.RegisterValidation(tag, decimalRule(rule)); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

func decimalRule(rule func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return false
		}
		return rule(d)
	}
}

// FieldErrors flattens validator errors into field -> tag pairs for the API.
func FieldErrors(err error) map[string]any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]any{"error": err.Error()}
	}
	out := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		out[fe.Namespace()] = fe.Tag()
	}
	return out
}
