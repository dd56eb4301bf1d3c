/*
inputs.go - Value inputs threaded through the calculators

PURPOSE:
  Plain value structures for one payslip period: the contract snapshot,
  the worked-day buckets, and the SalaryCategories scratchpad that the
  component calculators read from and write to.

CATEGORY DEPENDENCY ORDER:
  Callers must populate upstream categories before requesting downstream
  ones. The implicit order is:

    BASIC -> GRATUITY -> ER_DED/EE_DED -> HRA -> Other -> IT_DED -> GROSS/NET

  SalaryCategories makes presence explicit: Has() instead of reflection,
  Get() returns zero for unset categories so linear formulas stay total.

SEE ALSO:
  - components.go: the formulas that consume these inputs
*/
package statutory

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CONTRACT TERMS - Read-only snapshot per payslip period
// =============================================================================

// ContractTerms is the per-period contract snapshot. The calculators never
// mutate it.
type ContractTerms struct {
	Wage      decimal.Decimal // monthly CTC
	PF        bool
	PFCeiling bool
	ESIC      bool
	Gratuity  bool
}

// Validate rejects malformed contracts at the boundary.
func (c ContractTerms) Validate() error {
	if c.Wage.IsNegative() {
		return ErrInvalidContract
	}
	return nil
}

// =============================================================================
// WORKED DAYS - Proration buckets
// =============================================================================

// WorkedDays holds the attendance buckets for the period. The sum of all
// three buckets forms the proration denominator.
type WorkedDays struct {
	Work100   decimal.Decimal // full-pay days
	LossOfPay decimal.Decimal
	Shortfall decimal.Decimal
}

// TotalDays returns the proration denominator.
func (w WorkedDays) TotalDays() decimal.Decimal {
	return w.Work100.Add(w.LossOfPay).Add(w.Shortfall)
}

// PaidFraction returns WORK100 over the total, the factor applied to the
// contract wage. Zero when no days are recorded.
func (w WorkedDays) PaidFraction() decimal.Decimal {
	total := w.TotalDays()
	if !total.IsPositive() {
		return decimal.Zero
	}
	return w.Work100.Div(total)
}

// Validate rejects bucket sets that cannot prorate a wage.
func (w WorkedDays) Validate() error {
	if w.Work100.IsNegative() || w.LossOfPay.IsNegative() || w.Shortfall.IsNegative() {
		return ErrInvalidWorkedDays
	}
	if !w.TotalDays().IsPositive() {
		return ErrInvalidWorkedDays
	}
	return nil
}

// FullMonth is a convenience constructor for a period with no LOP or
// shortfall.
func FullMonth(days int) WorkedDays {
	return WorkedDays{Work100: decimal.NewFromInt(int64(days))}
}

// =============================================================================
// SALARY CATEGORIES - The working scratchpad
// =============================================================================

// Category identifies one salary line in the scratchpad.
type Category string

const (
	CatBasic       Category = "BASIC"
	CatHRA         Category = "HRA"
	CatGratuity    Category = "GRATUITY"
	CatBonus       Category = "BONUS"
	CatComp        Category = "COMP"
	CatERDeduction Category = "ER_DED"
	CatEEDeduction Category = "EE_DED"
	CatITDeduction Category = "IT_DED"
	CatOther       Category = "Other"
	CatFee         Category = "FEE"
	CatTDS         Category = "TDS"
	CatGross       Category = "GROSS"
	CatPT          Category = "PT"
	CatPFEmployer  Category = "PF_EMP"
)

// SalaryCategories is the bag of already-computed monthly amounts threaded
// through the formulas. Categories are explicitly optional: Has reports
// presence, Get returns zero for anything unset.
type SalaryCategories struct {
	amounts map[Category]decimal.Decimal
}

func NewSalaryCategories() *SalaryCategories {
	return &SalaryCategories{amounts: make(map[Category]decimal.Decimal)}
}

// Set records an amount for a category, replacing any prior value.
func (c *SalaryCategories) Set(cat Category, amount decimal.Decimal) {
	c.amounts[cat] = amount
}

// Get returns the amount for a category, or zero when unset.
func (c *SalaryCategories) Get(cat Category) decimal.Decimal {
	return c.amounts[cat]
}

// Has reports whether the category has been populated.
func (c *SalaryCategories) Has(cat Category) bool {
	_, ok := c.amounts[cat]
	return ok
}

// Lookup returns the amount and whether it was set.
func (c *SalaryCategories) Lookup(cat Category) (decimal.Decimal, bool) {
	v, ok := c.amounts[cat]
	return v, ok
}

// Each calls fn for every populated category. Iteration order is not
// defined; callers needing order should iterate a fixed category list.
func (c *SalaryCategories) Each(fn func(Category, decimal.Decimal)) {
	for cat, amt := range c.amounts {
		fn(cat, amt)
	}
}
