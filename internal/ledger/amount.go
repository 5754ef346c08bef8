package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// MaxScale is the number of fractional digits an amount may carry.
	MaxScale = 8
	// MaxIntegerDigits bounds the integer part of an amount or balance.
	MaxIntegerDigits = 18

	maxAmountLength    = 64
	maxCoefficientBits = 160
	minExponent        = -(MaxScale + 48)
)

// ErrAmountOutOfRange is returned for amounts whose scale or magnitude falls
// outside MaxScale and MaxIntegerDigits.
var ErrAmountOutOfRange = errors.New("amount out of range")

// ValidAmount checks that d fits the fixed amount window. It never expands the
// exponent, so it is safe on hostile input. Sign is not checked.
func ValidAmount(d decimal.Decimal) error {
	exp := int64(d.Exponent())
	if exp > MaxIntegerDigits || exp < minExponent {
		return ErrAmountOutOfRange
	}
	coeff := d.Coefficient()
	if coeff.BitLen() > maxCoefficientBits {
		return ErrAmountOutOfRange
	}
	if coeff.Sign() == 0 {
		return nil
	}
	digits := int64(len(coeff.Abs(coeff).String()))
	if digits+exp > MaxIntegerDigits {
		return ErrAmountOutOfRange
	}
	if exp < -MaxScale && !d.Equal(d.Truncate(MaxScale)) {
		return ErrAmountOutOfRange
	}
	return nil
}

// ParseAmount parses s and applies ValidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	if len(s) > maxAmountLength {
		return decimal.Decimal{}, ErrAmountOutOfRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if err := ValidAmount(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}
