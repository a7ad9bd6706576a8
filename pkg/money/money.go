// Package money provides the fixed-point amount type used for every ledger value.
// Amounts are stored as an integer count of minor units (cents) so that
// arithmetic on budgets is exact; decimal.Decimal is only used at the
// parse/format boundary.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places carried by an Amount.
const Scale = 2

// Amount is a monetary value in minor units. It may be negative
// (savings and spent counters are signed).
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// ErrOutOfRange is returned for values that do not fit in an Amount.
var ErrOutOfRange = errors.New("amount out of range")

var (
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// FromCents creates an Amount from a count of minor units.
func FromCents(cents int64) Amount {
	return Amount(cents)
}

// FromDecimal converts a decimal to an Amount, rounding half away from zero
// to the minor unit.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	return fromCentsDecimal(d.Shift(Scale).Round(0))
}

func fromCentsDecimal(cents decimal.Decimal) (Amount, error) {
	if cents.LessThan(minCents) || cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, cents.Shift(-Scale).String())
	}
	return Amount(cents.IntPart()), nil
}

// Parse parses a decimal string such as "12.50" or "1200".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Cents returns the raw minor-unit count.
func (a Amount) Cents() int64 {
	return int64(a)
}

// Decimal returns the amount as a decimal in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// Sum adds up amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// Add returns a + b, or ErrOutOfRange if the result overflows.
func Add(a, b Amount) (Amount, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%w: %s + %s", ErrOutOfRange, a, b)
	}
	return sum, nil
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a > 0
}

// IsNegative returns true if the amount is below zero.
func (a Amount) IsNegative() bool {
	return a < 0
}

// String returns the amount formatted with two decimals, e.g. "12.50".
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	v, err := FromDecimal(d)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	*a = v
	return nil
}

// Value implements driver.Valuer. Amounts are persisted as BIGINT cents.
func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*a = Amount(v)
	case int32:
		*a = Amount(v)
	case []byte:
		return a.scanString(string(v))
	case string:
		return a.scanString(v)
	case nil:
		*a = 0
	default:
		return fmt.Errorf("cannot scan %T into money.Amount", src)
	}
	return nil
}

func (a *Amount) scanString(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("scanning amount: %w", err)
	}
	v, err := fromCentsDecimal(d.Truncate(0))
	if err != nil {
		return fmt.Errorf("scanning amount: %w", err)
	}
	*a = v
	return nil
}
