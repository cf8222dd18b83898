package validator

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotPositive   = errors.New("amount must be positive")
)

// ParseAmount parses a caller-supplied decimal amount and requires it to be
// strictly positive. Validation happens before any store interaction so a bad
// input never causes a partial write.
func ParseAmount(input string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}
	return amount, nil
}

// ParseOptionalAmount parses a decimal that may legitimately be zero, such as
// the net or reinvested portion of a withdrawal split.
func ParseOptionalAmount(input string) (decimal.Decimal, error) {
	if input == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}
