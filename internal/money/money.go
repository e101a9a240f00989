// Package money centralizes conversion and formatting of monetary amounts.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is the zero amount.
var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

// ToMoney converts an arbitrary amount value into a decimal.
// Nil, empty, NaN and otherwise unparseable values convert to zero.
func ToMoney(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return Zero
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return Zero
		}
		return *x
	case decimal.NullDecimal:
		if !x.Valid {
			return Zero
		}
		return x.Decimal
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt32(x)
	case int64:
		return decimal.NewFromInt(x)
	case uint:
		return decimal.NewFromInt(int64(x))
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case *float64:
		if x == nil {
			return Zero
		}
		return fromFloat(*x)
	case string:
		return fromString(x)
	case *string:
		if x == nil {
			return Zero
		}
		return fromString(*x)
	case []byte:
		return fromString(string(x))
	default:
		return Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero
	}
	return decimal.NewFromFloat(f)
}

func fromString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero
	}
	return d
}

// Percent turns a 0–100 percentage into a fraction. Values outside the range are clamped.
func Percent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return Zero
	}
	if p.GreaterThan(hundred) {
		p = hundred
	}
	return p.Div(hundred)
}

// Format renders an amount as a dollar string with two decimals, e.g. "$1,234.50"
// or "-$20.00".
func Format(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "." + frac
	if neg && !d.Round(2).IsZero() {
		return "-$" + out
	}
	return "$" + out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPlain renders an amount with two decimals and no currency sign.
func FormatPlain(d decimal.Decimal) string {
	return d.StringFixed(2)
}
