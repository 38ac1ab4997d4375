// Package money holds currency codes and decimal amount helpers shared by
// the settlement aggregates.
package money

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency is an ISO 4217 currency code.
type Currency struct {
	code string
}

// NewCurrency creates a Currency after validating the code is exactly 3 uppercase letters.
func NewCurrency(code string) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be exactly 3 uppercase letters", code)
	}
	return Currency{code: code}, nil
}

// ParseCurrency is NewCurrency with surrounding space and case ignored.
// An empty code yields DefaultCurrency.
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	return NewCurrency(code)
}

// MustCurrency creates a Currency and panics on error. Intended for package-level variable
// initialization only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string {
	return c.code
}

func (c Currency) String() string {
	return c.code
}

var (
	XOF = MustCurrency("XOF")
	EUR = MustCurrency("EUR")

	DefaultCurrency = XOF
)

// Tolerances used when reconciling amounts.
var (
	// Cent absorbs decimal noise when comparing sums.
	Cent = decimal.RequireFromString("0.01")
	// Unit is one whole currency unit.
	Unit = decimal.NewFromInt(1)
)

// MaxScale is the number of decimal places an amount may carry.
const MaxScale = 2

// HasValidScale reports whether d needs at most MaxScale decimal places.
// Trailing zeros do not count.
func HasValidScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MaxScale))
}

// ParseAmount parses a decimal amount. Empty strings and amounts finer than
// MaxScale decimal places are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !HasValidScale(d) {
		return decimal.Zero, fmt.Errorf("invalid amount %q: more than %d decimal places", s, MaxScale)
	}
	return d, nil
}

// Sum adds amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// WithinTolerance reports whether |a - b| <= tol.
func WithinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}
