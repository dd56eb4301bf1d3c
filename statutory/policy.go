/*
policy.go - Company statutory policy and boundary validation

PURPOSE:
  CompanyPolicy is the configuration contract between the organization
  and the calculators: which fraction of wage becomes basic, the basic
  floor/ceiling, contribution percentages, and wage limits.

STORAGE CONVENTION:
  All percentages are stored as whole numbers (12 means 12%, 0.75 means
  0.75%) and divided by 100 at the point of use. This mirrors how the
  values appear in HR configuration screens.

VALIDATION:
  Validate() is the InvalidInput boundary: malformed policies are
  rejected before any calculator runs, instead of producing silently
  wrong numbers downstream.

SEE ALSO:
  - components.go: consumers of the basic/gratuity/HRA settings
  - reconciler.go: consumer of the ESIC/PF settings
*/
package statutory

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// COMPANY POLICY
// =============================================================================

// CompanyPolicy holds the statutory configuration for one company.
type CompanyPolicy struct {
	// Basic wage derivation
	BasicPercentage decimal.Decimal // of prorated wage
	MinBasic        decimal.Decimal // monthly floor
	MaxBasic        decimal.Decimal // monthly ceiling (non-PF contracts only)

	// Gratuity
	GratuityPercentage decimal.Decimal // of monthly basic, accrued monthly
	GratuityMultiplier decimal.Decimal // payout multiplier (days of wage per year)

	// ESIC
	ESICEmployeePercentage decimal.Decimal
	ESICEmployerPercentage decimal.Decimal
	ESICWageLimit          decimal.Decimal // monthly qualifying-wage limit
	ESICWageLimitDisabled  bool            // true = no wage-limit cutoff

	// Provident fund
	PFPercentage    decimal.Decimal
	PFCeilingAmount decimal.Decimal // monthly PF wage ceiling

	// Flat monthly professional tax
	ProfessionalTax decimal.Decimal

	// Contracts below this annual wage skip contribution reconciliation
	// entirely. Statutory registration is not meaningful below it.
	MinAnnualWage decimal.Decimal
}

// DefaultMinAnnualWage is the reconciliation floor applied when a policy
// leaves MinAnnualWage unset.
var DefaultMinAnnualWage = decimal.NewFromInt(10000)

// ReconciliationFloor returns the configured minimum annual wage for
// contribution reconciliation, falling back to DefaultMinAnnualWage.
func (p CompanyPolicy) ReconciliationFloor() decimal.Decimal {
	if p.MinAnnualWage.IsPositive() {
		return p.MinAnnualWage
	}
	return DefaultMinAnnualWage
}

// Validate rejects malformed policies at the boundary.
func (p CompanyPolicy) Validate() error {
	percentages := []struct {
		name  string
		value decimal.Decimal
	}{
		{"basic_percentage", p.BasicPercentage},
		{"gratuity_percentage", p.GratuityPercentage},
		{"esic_ee_percentage", p.ESICEmployeePercentage},
		{"esic_er_percentage", p.ESICEmployerPercentage},
		{"pf_percentage", p.PFPercentage},
	}
	for _, pct := range percentages {
		if pct.value.IsNegative() {
			return &PolicyFieldError{Field: pct.name, Value: pct.value, Detail: "must not be negative"}
		}
		if pct.value.GreaterThan(hundred) {
			return &PolicyFieldError{Field: pct.name, Value: pct.value, Detail: "must not exceed 100"}
		}
	}

	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"min_basic", p.MinBasic},
		{"max_basic", p.MaxBasic},
		{"esic_wage_limit", p.ESICWageLimit},
		{"pf_ceiling_amount", p.PFCeilingAmount},
		{"professional_tax", p.ProfessionalTax},
		{"gratuity_multiplier", p.GratuityMultiplier},
	}
	for _, amt := range amounts {
		if amt.value.IsNegative() {
			return &PolicyFieldError{Field: amt.name, Value: amt.value, Detail: "must not be negative"}
		}
	}

	if p.MinBasic.GreaterThan(p.MaxBasic) && p.MaxBasic.IsPositive() {
		return &PolicyFieldError{Field: "min_basic", Value: p.MinBasic, Detail: "exceeds max_basic"}
	}
	return nil
}
