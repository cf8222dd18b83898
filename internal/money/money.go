package money

import "github.com/shopspring/decimal"

// Persisted precision: amounts carry 2 decimals, percentages 6.
const (
	AmountPlaces  = 2
	PercentPlaces = 6
)

// Round rounds half away from zero at the given number of decimal places.
// All persisted money and percentage values pass through here so repeated
// recomputation cannot accumulate drift.
func Round(value decimal.Decimal, places int32) decimal.Decimal {
	return value.Round(places)
}

// RoundAmount rounds to persisted amount precision.
func RoundAmount(value decimal.Decimal) decimal.Decimal {
	return Round(value, AmountPlaces)
}

// RoundPercent rounds to persisted percentage precision.
func RoundPercent(value decimal.Decimal) decimal.Decimal {
	return Round(value, PercentPlaces)
}

// Clamp bounds value into the closed interval [min, max].
func Clamp(value, min, max decimal.Decimal) decimal.Decimal {
	if value.LessThan(min) {
		return min
	}
	if value.GreaterThan(max) {
		return max
	}
	return value
}

// FloorZero clamps a value to be non-negative. Withdrawal netting may drive a
// contribution to exactly zero, never below it.
func FloorZero(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}
