// Package types holds the numeric types shared by every domain model.
//
// Quantities and money are both decimal.Decimal: on-hand stock is measured in
// fractional units (kilograms), and comparisons must never go through float64.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount stored as NUMERIC(12,2).
type Money = decimal.Decimal

// Quantity is a stock quantity stored as NUMERIC(10,2).
type Quantity = decimal.Decimal

// Scale is the number of fractional digits persisted for quantities and money.
const Scale int32 = 2

// MustDecimal parses s and panics on error. Use only for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseQuantity parses a strictly positive quantity with at most Scale fractional digits.
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("quantity must be greater than zero, got %s", d)
	}
	if !d.Equal(d.Truncate(Scale)) {
		return decimal.Zero, fmt.Errorf("quantity %s has more than %d decimal places", d, Scale)
	}
	return d, nil
}

// Sum adds values without intermediate rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// LineTotal returns quantity × unit price rounded to cents.
func LineTotal(qty Quantity, unitPrice Money) Money {
	return qty.Mul(unitPrice).Round(Scale)
}
