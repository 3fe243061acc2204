// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
//
// All amounts are BHD: totals carry 3 decimal places, per-tablet
// prices carry 4.
type Money = decimal.Decimal

// Currency scales for BHD.
const (
	// AmountPlaces is the scale for monetary totals (fils precision).
	AmountPlaces int32 = 3

	// UnitPricePlaces is the scale for per-tablet prices.
	UnitPricePlaces int32 = 4
)

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundAmount rounds a monetary total to 3 decimal places (BHD fils).
func RoundAmount(m Money) Money {
	return m.Round(AmountPlaces)
}

// RoundUnitPrice rounds a per-tablet price to 4 decimal places.
func RoundUnitPrice(m Money) Money {
	return m.Round(UnitPricePlaces)
}
