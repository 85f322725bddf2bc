package model

import "github.com/shopspring/decimal"

const minorUnitExp = 2

// MaxMinorAmount is the largest charge the gateway accepts, in minor units.
const MaxMinorAmount = 99999999

var maxMinorAmount = decimal.NewFromInt(MaxMinorAmount)

// ExceedsMaxAmount reports whether amount is above MaxMinorAmount once
// converted to minor units. Checked before ToMinorUnits, which would overflow.
func ExceedsMaxAmount(amount decimal.Decimal) bool {
	return amount.Shift(minorUnitExp).Round(0).GreaterThan(maxMinorAmount)
}

// ToMinorUnits converts a major-unit amount into gateway minor units, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(minorUnitExp).Round(0).IntPart()
}

// FromMinorUnits converts stored minor units back into a major-unit amount.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorUnitExp)
}
