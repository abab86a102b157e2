// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Parsing and rendering go through
// shopspring/decimal so that stored values like 12.5 round-trip exactly.
package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a non-negative amount in minor units. The currency is a global
// setting, never part of the value.
type Money struct {
	Cents int64
}

// maxAmount caps a single record at 10^13 major units (10^15 cents) so that
// totals over any realistic number of records, and percentage math on them,
// stay within int64.
var maxAmount = decimal.New(1, 13)

// Cents builds a Money value from minor units.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// ParseAmount converts user input to Money.
//
// A comma followed by exactly three digits groups thousands; a single comma
// followed by one or two digits is a decimal separator. Rounding is half-up
// to the cent. Zero is accepted; negative or signed values, empty input and
// anything that is not a plain decimal are rejected.
//
// Examples:
//
//	ParseAmount("12.34")     -> 1234
//	ParseAmount("12,5")      -> 1250
//	ParseAmount("1,200")     -> 120000
//	ParseAmount("1,234.567") -> 123457
//	ParseAmount("")          -> ErrMissingAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrMissingAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	s, ok := normalizeSeparators(s)
	if !ok {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return fromDecimal(d)
}

// normalizeSeparators rewrites s to use a dot as the only decimal separator.
func normalizeSeparators(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}
	whole, frac, hasDot := strings.Cut(s, ".")
	groups := strings.Split(whole, ",")
	if !hasDot && len(groups) == 2 && len(groups[1]) < 3 {
		if len(groups[0]) == 0 || len(groups[1]) == 0 {
			return "", false
		}
		return groups[0] + "." + groups[1], true
	}
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	out := strings.Join(groups, "")
	if hasDot {
		out += "." + frac
	}
	return out, true
}

func fromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	if d.GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Shift(2).Round(0).IntPart()}, nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float64 returns the major-unit value for display and percentages.
// Use Cents for arithmetic.
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// String renders the amount without trailing zeros, e.g. "5000" or "12.5".
func (m Money) String() string {
	return m.Decimal().String()
}

// MarshalJSON writes a plain JSON number in major units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	if s == "" {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("amount %q: %w", s, ErrInvalidAmount)
	}
	v, err := fromDecimal(d)
	if err != nil {
		return fmt.Errorf("amount %q: %w", s, err)
	}
	*m = v
	return nil
}
