// Package money implements a fixed-precision monetary amount backed by an
// integer count of minor currency units (cents).
//
// Arithmetic never touches floating point. Decimal strings are only produced
// or accepted at the system boundary through String and Parse.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fraction digits carried by a Money value.
const Scale = 2

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDivisor = errors.New("divisor must be positive")
	ErrAmountOverflow = errors.New("amount out of range")
)

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Money is an amount in minor units. The zero value is zero.
type Money struct {
	minor int64
}

// Zero is the zero amount.
var Zero = Money{}

// FromMinor returns the amount holding the given number of minor units.
func FromMinor(minor int64) Money {
	return Money{minor: minor}
}

// Minor returns the amount as a count of minor units.
func (m Money) Minor() int64 {
	return m.minor
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{minor: m.minor + o.minor}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{minor: m.minor - o.minor}
}

// Equal reports whether both amounts hold the same number of minor units.
func (m Money) Equal(o Money) bool {
	return m.minor == o.minor
}

func (m Money) IsZero() bool     { return m.minor == 0 }
func (m Money) IsPositive() bool { return m.minor > 0 }
func (m Money) IsNegative() bool { return m.minor < 0 }

// Split divides m into n equal parts. It returns the base share and the
// number of minor units left over, so that base*n + remainder == m.
// For a non-negative m the remainder is in [0, n).
func (m Money) Split(n int) (Money, int64, error) {
	if n <= 0 {
		return Zero, 0, fmt.Errorf("%w: %d", ErrInvalidDivisor, n)
	}
	d := int64(n)
	return Money{minor: m.minor / d}, m.minor % d, nil
}

// Sum adds up all amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Decimal returns the amount in major units as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.minor, -Scale)
}

// String formats the amount with exactly two fraction digits, e.g. "100.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(Scale)
}

// Parse reads a decimal string such as "12.34", "12" or "-0.5".
// Values with non-zero digits beyond the second fraction digit are rejected
// rather than rounded.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	minor := d.Shift(Scale)
	if !minor.IsInteger() {
		return Zero, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, Scale)
	}
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return Zero, fmt.Errorf("%w: %q", ErrAmountOverflow, s)
	}
	return Money{minor: minor.IntPart()}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MarshalJSON encodes the amount as a two-decimal JSON string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string ("12.34") or a JSON number (12.34).
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*m = Zero
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
