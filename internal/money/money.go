// Package money holds the decimal arithmetic used for every monetary
// calculation in the terminal. Inputs may be decimals, numeric strings or
// native numbers; results are always decimal.Decimal.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DivisionScale is the number of fractional digits kept by Divide.
const DivisionScale int32 = 28

var one = decimal.NewFromInt(1)

// ErrDivisionByZero is returned by Divide when the divisor is zero.
var ErrDivisionByZero = errors.New("division by zero")

// ParseError reports an input that cannot be read as a decimal number.
type ParseError struct {
	Input any
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid numeric value %v: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("invalid numeric value %v", e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ToDecimal converts a supported value to a decimal.
// Strings are trimmed; an empty or non-numeric string is a *ParseError.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, &ParseError{Input: v, Err: errors.New("nil decimal")}
		}
		return *x, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, &ParseError{Input: x, Err: errors.New("empty string")}
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, &ParseError{Input: x, Err: err}
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float32:
		return fromFloat(float64(x), v)
	case float64:
		return fromFloat(x, v)
	default:
		return decimal.Zero, &ParseError{Input: v, Err: fmt.Errorf("unsupported type %T", v)}
	}
}

func fromFloat(f float64, orig any) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, &ParseError{Input: orig, Err: errors.New("not a finite number")}
	}
	return decimal.NewFromFloat(f), nil
}

func pair(a, b any) (decimal.Decimal, decimal.Decimal, error) {
	x, err := ToDecimal(a)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	y, err := ToDecimal(b)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return x, y, nil
}

// Add returns the sum of all values. No values sums to zero.
func Add(values ...any) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, v := range values {
		d, err := ToDecimal(v)
		if err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(d)
	}
	return sum, nil
}

func Subtract(a, b any) (decimal.Decimal, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return decimal.Zero, err
	}
	return x.Sub(y), nil
}

func Multiply(a, b any) (decimal.Decimal, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return decimal.Zero, err
	}
	return x.Mul(y), nil
}

// Divide returns a / b rounded half-up to DivisionScale fractional digits.
func Divide(a, b any) (decimal.Decimal, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return decimal.Zero, err
	}
	if y.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return x.DivRound(y, DivisionScale), nil
}

// SafeDivide is Divide that yields zero instead of an error, both for a
// zero divisor and for unreadable input.
func SafeDivide(a, b any) decimal.Decimal {
	d, err := Divide(a, b)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// PercentageOf returns value × pct / 100. The result is exact.
func PercentageOf(value, pct any) (decimal.Decimal, error) {
	x, p, err := pair(value, pct)
	if err != nil {
		return decimal.Zero, err
	}
	return x.Mul(p).Shift(-2), nil
}

// ApplyTaxInclusive returns subtotal × (1 + rate). rate is a fraction (0.15 for 15%).
func ApplyTaxInclusive(subtotal, rate any) (decimal.Decimal, error) {
	x, r, err := pair(subtotal, rate)
	if err != nil {
		return decimal.Zero, err
	}
	return x.Mul(one.Add(r)), nil
}

// TaxAmount returns subtotal × rate. rate is a fraction.
func TaxAmount(subtotal, rate any) (decimal.Decimal, error) {
	return Multiply(subtotal, rate)
}

// DiscountAmount returns amount × pct / 100.
func DiscountAmount(amount, pct any) (decimal.Decimal, error) {
	return PercentageOf(amount, pct)
}

// ApplyDiscount returns amount reduced by pct percent.
func ApplyDiscount(amount, pct any) (decimal.Decimal, error) {
	x, p, err := pair(amount, pct)
	if err != nil {
		return decimal.Zero, err
	}
	return x.Sub(x.Mul(p).Shift(-2)), nil
}

// ToMoneyString renders value with a fixed number of decimals and no grouping.
func ToMoneyString(value decimal.Decimal, decimals int32) string {
	return value.StringFixed(decimals)
}

// Round rounds half away from zero to the given number of places.
func Round(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

func Compare(a, b decimal.Decimal) int { return a.Cmp(b) }

func GreaterThan(a, b decimal.Decimal) bool { return a.GreaterThan(b) }

func LessThan(a, b decimal.Decimal) bool { return a.LessThan(b) }

func Equals(a, b decimal.Decimal) bool { return a.Equal(b) }

// Max returns the largest value, or zero when called without values.
func Max(values ...decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Max(values[0], values[1:]...)
}

// Min returns the smallest value, or zero when called without values.
func Min(values ...decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Min(values[0], values[1:]...)
}

// Average returns the arithmetic mean, or zero when called without values.
func Average(values ...decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return SafeDivide(decimal.Sum(decimal.Zero, values...), len(values))
}

// NonNegative clamps negative values to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func CeilToCent(d decimal.Decimal) decimal.Decimal { return d.RoundCeil(2) }

func FloorToCent(d decimal.Decimal) decimal.Decimal { return d.RoundFloor(2) }

// ToFloat converts a decimal to a float64 for plain-number boundaries.
func ToFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
