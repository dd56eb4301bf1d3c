/*
Package statutory provides the core statutory payroll calculators.

PURPOSE:
  This package contains the pure computation layer for Indian statutory
  payroll: basic wage derivation, HRA, gratuity accrual and payout,
  professional tax, and the fixed-point reconciliation of interdependent
  ESIC/PF contributions under a fixed CTC constraint.

KEY CONCEPTS IN THIS FILE (money.go):
  - Monetary amounts are decimal.Decimal, never float64
  - RoundWhole: half-to-even rounding to whole rupees (the rounding mode
    statutory payroll runs are reconciled against)
  - Fraction: converts whole-number percentages (policy storage form)
    into multipliers

DESIGN PRINCIPLES:
  1. Purity: no clock, no I/O, no hidden state - every input is a parameter
  2. Precision: decimal arithmetic end to end
  3. Totality: numeric edge cases clamp and continue; only contract
     violations at the boundary return errors

SEE ALSO:
  - policy.go: CompanyPolicy and boundary validation
  - components.go: per-component salary formulas
  - reconciler.go: the ESIC/PF/allowance fixed-point solver
*/
package statutory

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// RoundWhole rounds to the nearest whole rupee using half-to-even
// (banker's) rounding. All statutory line amounts are whole rupees.
func RoundWhole(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(0)
}

// Fraction converts a whole-number percentage (e.g. 12 for 12%, 0.75 for
// 0.75%) into a multiplier.
func Fraction(percentage decimal.Decimal) decimal.Decimal {
	return percentage.Div(hundred)
}

// Annual converts a monthly amount to its annual equivalent.
func Annual(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(twelve)
}

// Monthly converts an annual amount to its monthly equivalent. The result
// is not rounded; callers round at presentation boundaries.
func Monthly(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(twelve)
}

// ClampFloor returns d, or floor when d is below it.
func ClampFloor(d, floor decimal.Decimal) decimal.Decimal {
	if d.LessThan(floor) {
		return floor
	}
	return d
}

// ClampRange returns d clamped to [low, high] with a three-way comparison:
// below low yields low, above high yields high, otherwise d passes through.
func ClampRange(d, low, high decimal.Decimal) decimal.Decimal {
	if d.LessThan(low) {
		return low
	}
	if d.GreaterThan(high) {
		return high
	}
	return d
}
