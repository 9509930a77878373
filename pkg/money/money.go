// Package money holds monetary amounts as integer cents.
//
// Amounts travel over JSON as plain decimal numbers (40.5, 100) and are
// parsed with shopspring/decimal so no binary floating point is involved
// between the wire and the database.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value in cents.
type Amount int64

var (
	// ErrTooPrecise is returned for values with more than two fractional digits.
	ErrTooPrecise = errors.New("at most 2 decimal places allowed")
	// ErrOutOfRange is returned for values beyond MaxUnits in either direction.
	ErrOutOfRange = errors.New("amount out of range")
	// ErrNotNumber is returned when the input is not a decimal number.
	ErrNotNumber = errors.New("must be a number")
)

// MaxUnits bounds a single amount so that sums of many amounts stay far
// inside int64 cents.
var MaxUnits = decimal.New(1, 12)

// FromDecimal converts d to cents, rejecting sub-cent precision.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if !d.Equal(d.Round(2)) {
		return 0, ErrTooPrecise
	}
	if d.Abs().GreaterThan(MaxUnits) {
		return 0, ErrOutOfRange
	}
	return Amount(d.Shift(2).IntPart()), nil
}

// Parse reads a decimal string such as "12.34" into cents.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrNotNumber
	}
	return FromDecimal(d)
}

// Cents builds an Amount from whole cents.
func Cents(c int64) Amount { return Amount(c) }

// Units builds an Amount from whole currency units.
func Units(u int64) Amount { return Amount(u * 100) }

// Decimal returns the amount as a decimal in currency units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// String formats the amount with two fixed decimals.
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

func (a Amount) IsNegative() bool { return a < 0 }

func (a Amount) IsPositive() bool { return a > 0 }

// MarshalJSON writes the amount as an unquoted JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return ErrNotNumber
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Percent returns part/whole*100 rounded half away from zero; 0 when whole is 0.
func Percent(part, whole Amount) int64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(0).
		IntPart()
}
