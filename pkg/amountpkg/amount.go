// Package amountpkg provides common amount related functionality for apps.
//
// Amounts are whole numbers of the vault's base unit carried as decimal strings.
package amountpkg

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrNotWholeAmount indicates an amount that is negative or has a fractional part.
var ErrNotWholeAmount = errors.New("amount must be a non-negative whole number")

// Parse converts s into an amount of base units.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}

	if !IsWhole(d) {
		return decimal.Zero, ErrNotWholeAmount
	}

	return d, nil
}

// IsWhole reports whether d is a non-negative integer.
func IsWhole(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Truncate(0))
}

// ValidAmount validates whether the field holds a parsable amount.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := Parse(s)
		return err == nil
	}

	return false
}
