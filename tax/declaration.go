/*
declaration.go - Employee tax-saving declarations

PURPOSE:
  ITDeclaration is the annual self-service declaration snapshot: section
  deduction totals, HRA rent inputs, prior-employer figures, and the
  chosen regime. Raw declared amounts are clamped to their statutory
  section ceilings before summing into the applicable totals.

LIFECYCLE:
  Declarations start as drafts and only participate in tax computation
  once locked. TDS projection degrades to a documented fallback when no
  locked declaration exists - it never errors.
*/
package tax

import (
	"github.com/shopspring/decimal"
)

// DeclarationStatus gates whether a declaration participates in tax
// computation.
type DeclarationStatus string

const (
	DeclarationDraft  DeclarationStatus = "draft"
	DeclarationLocked DeclarationStatus = "locked"
)

// Statutory section ceilings applied to raw declared amounts.
var (
	Cap80C = decimal.NewFromInt(150000)
	Cap80D = decimal.NewFromInt(25000)
)

// Standard exemptions per regime.
var (
	OldRegimeStandardDeduction = decimal.NewFromInt(50000)
	NewRegimeStandardDeduction = decimal.NewFromInt(75000)
)

// ITDeclaration is one employee's declaration for a financial year.
type ITDeclaration struct {
	Regime Regime
	Status DeclarationStatus

	// Raw declared section amounts, clamped via the Applicable* methods.
	Section80C   decimal.Decimal
	Section80D   decimal.Decimal
	SectionVIA   decimal.Decimal // remaining chapter VI-A (80G and others)
	PublicPF     decimal.Decimal // PPF, deductible under the new regime path
	HRADeclared  decimal.Decimal // annual HRA exemption claimed
	AnnualRent   decimal.Decimal // rent paid per year
	MetroCity    string          // city of residence for the HRA factor

	// Previous employer figures for mid-year joiners.
	PrevEmployerIncome    decimal.Decimal
	PrevEmployerTax       decimal.Decimal
	PrevEmployerSurcharge decimal.Decimal
	PrevEmployerCess      decimal.Decimal
	PrevEmployerPF        decimal.Decimal
	PrevEmployerPT        decimal.Decimal
}

// Locked reports whether the declaration participates in computation.
func (dec *ITDeclaration) Locked() bool {
	return dec != nil && dec.Status == DeclarationLocked
}

// Applicable80C is the declared 80C amount clamped to its ceiling.
func (dec ITDeclaration) Applicable80C() decimal.Decimal {
	return decimal.Min(dec.Section80C, Cap80C)
}

// Applicable80D is the declared 80D amount clamped to its ceiling.
func (dec ITDeclaration) Applicable80D() decimal.Decimal {
	return decimal.Min(dec.Section80D, Cap80D)
}

// ApplicableVIA is the remaining chapter VI-A total, taken as declared.
func (dec ITDeclaration) ApplicableVIA() decimal.Decimal {
	if dec.SectionVIA.IsNegative() {
		return decimal.Zero
	}
	return dec.SectionVIA
}

// Prior bundles the previous-employer tax figures for regime merging.
func (dec ITDeclaration) Prior() PriorEmployer {
	return PriorEmployer{
		Tax:       dec.PrevEmployerTax,
		Surcharge: dec.PrevEmployerSurcharge,
		Cess:      dec.PrevEmployerCess,
	}
}
