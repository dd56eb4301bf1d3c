/*
components.go - Per-component salary formulas

PURPOSE:
  The individual calculators for one payslip period: basic wage with
  policy bounds, gratuity accrual and separation payout, HRA, residual
  other-allowance, and the linear net/gross/CTC aggregates.

FORMULAS:
  net      = BASIC + HRA + Other + BONUS + COMP - EE_DED - IT_DED
  gross    = BASIC + HRA + Other + BONUS + COMP
  ctc      = gross + ER_DED + GRATUITY
  ded      = EE_DED + IT_DED (+ PT when set)
  net fee  = FEE - TDS

GRATUITY TENURE TIE-BREAK:
  Payout tenure is rounded with "fractional part <= 0.5 floors, above 0.5
  ceils to the next whole year". Exactly 5 years 6 months therefore pays
  out on 5 years, not 5.5 and not 6. This matches the production payroll
  runs this library is reconciled against.

SEE ALSO:
  - inputs.go: SalaryCategories population order
  - reconciler.go: produces the ER_DED/EE_DED inputs used here
*/
package statutory

import (
	"github.com/shopspring/decimal"
)

var (
	pointFour = decimal.NewFromFloat(0.4)
	pointFive = decimal.NewFromFloat(0.5)
	thirty    = decimal.NewFromInt(30)
)

// =============================================================================
// BASIC WAGE
// =============================================================================

// BasicWage prorates the contract wage by the paid-day fraction, applies
// the policy basic percentage, and clamps per the PF flag: PF contracts
// have only the policy floor, non-PF contracts are clamped to
// [MinBasic, MaxBasic]. The result is a whole rupee amount.
func BasicWage(contract ContractTerms, worked WorkedDays, policy CompanyPolicy) decimal.Decimal {
	prorated := contract.Wage.Mul(worked.PaidFraction())
	basic := prorated.Mul(Fraction(policy.BasicPercentage))

	if contract.PF {
		basic = ClampFloor(basic, policy.MinBasic)
	} else {
		basic = ClampRange(basic, policy.MinBasic, policy.MaxBasic)
	}
	return RoundWhole(basic)
}

// =============================================================================
// GRATUITY
// =============================================================================

// GratuityAccrual returns the monthly gratuity accrual on the computed
// basic, zero when the contract does not carry gratuity.
func GratuityAccrual(contract ContractTerms, categories *SalaryCategories, policy CompanyPolicy) decimal.Decimal {
	if !contract.Gratuity {
		return decimal.Zero
	}
	return RoundWhole(categories.Get(CatBasic).Mul(Fraction(policy.GratuityPercentage)))
}

// Tenure is employment length in whole years and leftover months.
type Tenure struct {
	Years  int
	Months int
}

// roundedYears applies the payout tie-break: fractional part of the
// year count at or below one half floors, above one half rounds up.
func (t Tenure) roundedYears() decimal.Decimal {
	total := decimal.NewFromInt(int64(t.Years*12 + t.Months)).Div(twelve)
	whole := total.Floor()
	if total.Sub(whole).GreaterThan(pointFive) {
		return whole.Add(decimal.NewFromInt(1))
	}
	return whole
}

// GratuityPayout computes the separation lump sum. At five or more years
// of tenure the statutory formula applies on the last drawn basic; below
// five years the employee receives any gratuity transferred from a prior
// employer plus, for gratuity contracts, one month's accrual.
func GratuityPayout(tenure Tenure, contract ContractTerms, categories *SalaryCategories, policy CompanyPolicy, lastDrawnBasic, priorEmployerGratuity decimal.Decimal) decimal.Decimal {
	if tenure.Years >= 5 {
		return RoundWhole(policy.GratuityMultiplier.Mul(lastDrawnBasic).Mul(tenure.roundedYears()).Div(thirty))
	}

	payout := decimal.Zero
	if priorEmployerGratuity.IsPositive() {
		payout = priorEmployerGratuity
	}
	if contract.Gratuity {
		payout = payout.Add(RoundWhole(categories.Get(CatBasic).Mul(Fraction(policy.GratuityPercentage))))
	}
	return payout
}

// =============================================================================
// ALLOWANCES
// =============================================================================

// HouseRentAllowance is the lesser of 40% of basic and the wage headroom
// left after employer/employee deductions and basic, floored at zero.
func HouseRentAllowance(contract ContractTerms, categories *SalaryCategories) decimal.Decimal {
	capped := RoundWhole(categories.Get(CatBasic).Mul(pointFour))
	headroom := RoundWhole(contract.Wage.
		Sub(categories.Get(CatERDeduction)).
		Sub(categories.Get(CatEEDeduction)).
		Sub(categories.Get(CatBasic)))
	hra := decimal.Min(capped, headroom)
	if hra.IsNegative() {
		return decimal.Zero
	}
	return hra
}

// OtherAllowance is the residual of the prorated wage after employer
// deductions, basic and HRA. It is deliberately NOT floored: a negative
// residual feeds the reconciler's basic-reduction correction.
func OtherAllowance(contract ContractTerms, worked WorkedDays, categories *SalaryCategories) decimal.Decimal {
	prorated := contract.Wage.Mul(worked.PaidFraction())
	return RoundWhole(prorated.
		Sub(categories.Get(CatERDeduction)).
		Sub(categories.Get(CatBasic)).
		Sub(categories.Get(CatHRA)))
}

// =============================================================================
// AGGREGATES - Linear combinations of populated categories
// =============================================================================

// GrossAmount = BASIC + HRA + Other + BONUS + COMP.
func GrossAmount(categories *SalaryCategories) decimal.Decimal {
	return categories.Get(CatBasic).
		Add(categories.Get(CatHRA)).
		Add(categories.Get(CatOther)).
		Add(categories.Get(CatBonus)).
		Add(categories.Get(CatComp))
}

// NetSalary = gross - EE_DED - IT_DED.
func NetSalary(categories *SalaryCategories) decimal.Decimal {
	return GrossAmount(categories).
		Sub(categories.Get(CatEEDeduction)).
		Sub(categories.Get(CatITDeduction))
}

// MonthlyCTC = gross + ER_DED + GRATUITY.
func MonthlyCTC(categories *SalaryCategories) decimal.Decimal {
	return GrossAmount(categories).
		Add(categories.Get(CatERDeduction)).
		Add(categories.Get(CatGratuity))
}

// TotalDeduction = EE_DED + IT_DED, plus professional tax when populated.
func TotalDeduction(categories *SalaryCategories) decimal.Decimal {
	total := categories.Get(CatEEDeduction).Add(categories.Get(CatITDeduction))
	if pt, ok := categories.Lookup(CatPT); ok {
		total = total.Add(pt)
	}
	return total
}

// ConsultancyFee is the gross consultancy fee line.
func ConsultancyFee(categories *SalaryCategories) decimal.Decimal {
	return categories.Get(CatFee)
}

// NetConsultancyCharges = FEE - TDS.
func NetConsultancyCharges(categories *SalaryCategories) decimal.Decimal {
	return categories.Get(CatFee).Sub(categories.Get(CatTDS))
}
