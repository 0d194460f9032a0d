// Package money stores amounts as integer cents and converts them at the JSON
// boundary, where clients still send and receive decimal numbers.
package money

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units (two decimals).
type Cents int64

// Zero is the empty amount.
const Zero Cents = 0

// Max is the largest amount the service accepts or computes
// (999,999,999,999.99).
const Max Cents = 99_999_999_999_999

// ErrOutOfRange is returned for amounts beyond Max in either direction.
var ErrOutOfRange = errors.New("money: amount out of range")

var maxDecimal = decimal.New(int64(Max), -2)

// maxExponent bounds the decimal exponent accepted by Parse; rescaling
// inputs like "1e999999999" would otherwise build enormous integers.
const maxExponent = 18

// FromDecimal rounds d half away from zero to two decimals.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Round(2).Shift(2).IntPart())
}

// FromFloat converts a legacy float amount (e.g. 19.95) to cents.
func FromFloat(f float64) Cents {
	return FromDecimal(decimal.NewFromFloat(f))
}

// Parse reads a decimal string such as "12.5" or "8". Amounts beyond Max
// fail with ErrOutOfRange.
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	if e := d.Exponent(); e > maxExponent || e < -maxExponent {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, s)
	}
	if d.Round(2).Abs().GreaterThan(maxDecimal) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, s)
	}
	return FromDecimal(d), nil
}

// Decimal returns the amount as a two-decimal value.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Float64 is for display and legacy callers only.
func (c Cents) Float64() float64 {
	f, _ := c.Decimal().Float64()
	return f
}

// Mul multiplies a unit price by a quantity. Callers handling untrusted
// quantities use MulChecked.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// MulChecked multiplies and reports false when the result leaves [-Max, Max].
func (c Cents) MulChecked(qty int) (Cents, bool) {
	if c == 0 || qty == 0 {
		return 0, true
	}
	if int64(qty) > int64(Max) || int64(qty) < -int64(Max) {
		return 0, false
	}
	if abs(c) > Max || abs(Cents(qty)) > Max/abs(c) {
		return 0, false
	}
	return c * Cents(qty), true
}

// AddChecked adds and reports false when the result leaves [-Max, Max].
func (c Cents) AddChecked(o Cents) (Cents, bool) {
	if !c.InRange() || !o.InRange() {
		return 0, false
	}
	sum := c + o
	return sum, sum.InRange()
}

// InRange reports whether c lies within [-Max, Max].
func (c Cents) InRange() bool {
	return c >= -Max && c <= Max
}

func abs(c Cents) Cents {
	if c < 0 {
		return -c
	}
	return c
}

// Clamp returns zero for negative amounts.
func (c Cents) Clamp() Cents {
	if c < 0 {
		return 0
	}
	return c
}

// String renders the amount with exactly two decimals ("20.00").
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// MarshalJSON writes a bare JSON number with two decimals.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (c *Cents) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	data = bytes.Trim(data, `"`)
	v, err := Parse(string(data))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Value implements driver.Valuer.
func (c Cents) Value() (driver.Value, error) {
	return int64(c), nil
}

// Scan implements sql.Scanner.
func (c *Cents) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = 0
	case int64:
		*c = Cents(v)
	case int32:
		*c = Cents(v)
	case float64:
		*c = Cents(v)
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("money: scan %q: %w", v, err)
		}
		*c = Cents(d.IntPart())
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("money: scan %q: %w", v, err)
		}
		*c = Cents(d.IntPart())
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	return nil
}
