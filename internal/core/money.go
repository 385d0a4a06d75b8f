// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmount keeps the cents conversion clear of int64 overflow.
var maxAmount = decimal.New((1<<63-1)/100, -2)

// ParseAmount converts a decimal string to Money with half-up rounding to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Zero is a
// valid amount; negative values and malformed input return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> 1234 cents
//	ParseAmount("12.345") -> 1235 cents
//	ParseAmount("120.5")  -> 12050 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return moneyFromDecimal(d)
}

func moneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() || d.GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Round(2).Shift(2).IntPart()}, nil
}

// Decimal returns the amount as an exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals (e.g. "120.50").
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	parsed, err := moneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
