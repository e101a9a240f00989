package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MaxLength(field, value string, max int, v Violations) {
	if len(value) > max {
		v[field] = "too_long"
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

func NonZero(field string, val decimal.Decimal, v Violations) {
	if val.IsZero() {
		v[field] = "must_not_be_zero"
	}
}

func Range(field string, val, minVal, maxVal decimal.Decimal, v Violations) {
	if val.LessThan(minVal) || val.GreaterThan(maxVal) {
		v[field] = "out_of_range"
	}
}

// OneOf records an invalid_value violation unless ok is true.
// Callers pass the result of the type's own Valid method.
func OneOf(field string, ok bool, v Violations) {
	if !ok {
		v[field] = "invalid_value"
	}
}
