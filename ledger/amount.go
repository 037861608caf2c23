package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a signed decimal quantity of a single commodity.
type Amount struct {
	Commodity string
	Number    decimal.Decimal
}

// NewAmount creates an Amount from a commodity symbol and a number.
func NewAmount(commodity string, number decimal.Decimal) Amount {
	return Amount{Commodity: commodity, Number: number}
}

// ParseAmount creates an Amount by parsing value as an exact decimal.
func ParseAmount(commodity, value string) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount value %q: %w", value, err)
	}
	return Amount{Commodity: commodity, Number: d}, nil
}

// MustParseAmount is like ParseAmount but panics on error.
// Use only in tests or when you're certain the value is valid
func MustParseAmount(commodity, value string) Amount {
	a, err := ParseAmount(commodity, value)
	if err != nil {
		panic(err)
	}
	return a
}

// Compare orders amounts by commodity first, then by number.
func (a Amount) Compare(b Amount) int {
	if c := strings.Compare(a.Commodity, b.Commodity); c != 0 {
		return c
	}
	return a.Number.Cmp(b.Number)
}

// Equal reports whether both amounts carry the same commodity and value.
func (a Amount) Equal(b Amount) bool {
	return a.Commodity == b.Commodity && a.Number.Equal(b.Number)
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount {
	return Amount{Commodity: a.Commodity, Number: a.Number.Neg()}
}

// Half splits the amount exactly in two. The result keeps at least the
// original number of decimal places and only grows it when the halving
// needs one more digit.
func (a Amount) Half() Amount {
	half := a.Number.Mul(decimal.New(5, -1))
	if places := -a.Number.Exponent(); places >= 0 {
		if rounded := half.Round(places); rounded.Equal(half) {
			half = rounded
		}
	}
	return Amount{Commodity: a.Commodity, Number: half}
}

// IsNegative reports whether the number is below zero.
func (a Amount) IsNegative() bool {
	return a.Number.IsNegative()
}

// FormatNumber renders the number at its own decimal scale, so 3.50 stays
// 3.50 instead of collapsing to 3.5.
func FormatNumber(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// String renders the amount as "<commodity> <number>".
func (a Amount) String() string {
	return a.Commodity + " " + FormatNumber(a.Number)
}
