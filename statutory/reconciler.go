/*
reconciler.go - Fixed-point reconciliation of ESIC, PF and residual allowance

PURPOSE:
  ESIC employer contribution depends on the residual "other allowance",
  which depends on the employer PF contribution, which depends on the PF
  wage (basic + other), which in turn depends on ESIC - a circular
  dependency under a fixed annual CTC. ReconcileContributions resolves it
  by bounded fixed-point iteration and returns all four monthly statutory
  figures from a single converged state.

ITERATION:
  Each pass recomputes, in order: the ESIC employer contribution (with
  wage-limit cutoff), the residual allowance, the raw PF on the PF wage,
  the convergence signal (previous employer PF minus this pass's PF), and
  the working employer PF with its ceiling and basic-floor rules. A
  negative residual folds into basic (reducing it) and recomputes PF and
  gratuity from the reduced basic. The loop stops when the convergence
  signal hits zero or after MaxIterations passes (default 50) - the cap is
  a pragmatic oscillation guard, not a proven fixed point, so the result
  carries Converged for observability.

QUIRKS PRESERVED ON PURPOSE:
  - The raw PF amount is capped at the ceiling when the contract's PF
    ceiling flag is OFF (the inverted branch the production system runs).
  - With the ceiling flag ON and ESIC off, the convergence signal is
    forced to zero regardless of gratuity.
  Correcting either changes converged numbers on live contracts.

SEE ALSO:
  - components.go: BasicWage/GratuityAccrual produce this solver's inputs
  - policy.go: percentages, wage limits and the annual-wage floor
*/
package statutory

import (
	"github.com/shopspring/decimal"
)

// DefaultMaxIterations bounds the reconciliation loop.
const DefaultMaxIterations = 50

// =============================================================================
// INPUT / RESULT
// =============================================================================

// ReconcileInput carries one contract's reconciliation inputs. Monthly
// basic and gratuity come from BasicWage and GratuityAccrual.
type ReconcileInput struct {
	Contract        ContractTerms
	Policy          CompanyPolicy
	MonthlyBasic    decimal.Decimal
	MonthlyGratuity decimal.Decimal

	// MaxIterations defaults to DefaultMaxIterations when zero.
	MaxIterations int
}

// ReconciliationResult is the converged (or cap-stopped) state, expressed
// as the four monthly statutory figures plus the adjusted residuals.
type ReconciliationResult struct {
	// Applicable is false when the annual wage is below the policy floor;
	// all other fields are zero in that case.
	Applicable bool

	// Converged is false when the iteration cap stopped an oscillation.
	// The figures are then the last-computed state.
	Converged  bool
	Iterations int

	ESICEmployeeMonthly decimal.Decimal
	ESICEmployerMonthly decimal.Decimal
	PFEmployeeMonthly   decimal.Decimal
	PFEmployerMonthly   decimal.Decimal

	// OtherAllowanceMonthly is the residual of CTC after basic, gratuity
	// and employer contributions.
	OtherAllowanceMonthly decimal.Decimal

	// BasicMonthly and GratuityMonthly reflect any negative-residual
	// correction applied during iteration.
	BasicMonthly    decimal.Decimal
	GratuityMonthly decimal.Decimal

	// Converged annual state, for ledger reconciliation.
	AnnualBasic        decimal.Decimal
	AnnualOther        decimal.Decimal
	AnnualESICEmployer decimal.Decimal
	AnnualPFEmployer   decimal.Decimal
}

// =============================================================================
// SOLVER
// =============================================================================

// ReconcileContributions runs the fixed-point solver once and derives all
// four statutory monthly figures from the same state, so the ESIC and PF
// outputs can never drift apart.
func ReconcileContributions(in ReconcileInput) ReconciliationResult {
	policy := in.Policy
	contract := in.Contract

	maxIter := in.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	ctc := Annual(contract.Wage)
	if ctc.LessThan(policy.ReconciliationFloor()) {
		return ReconciliationResult{Applicable: false}
	}

	esicERPct := Fraction(policy.ESICEmployerPercentage)
	esicEEPct := Fraction(policy.ESICEmployeePercentage)
	pfPct := Fraction(policy.PFPercentage)
	// Annual employer PF at the wage ceiling.
	ceilingCap := RoundWhole(Annual(policy.PFCeilingAmount).Mul(pfPct))

	basic := Annual(in.MonthlyBasic)
	gratuity := Annual(in.MonthlyGratuity)
	if !contract.Gratuity {
		gratuity = decimal.Zero
	}

	var (
		esicER    = decimal.Zero
		pfER      = decimal.Zero // previous pass's working PF
		other     = decimal.Zero
		converged bool
		passes    int
	)

	for i := 1; i <= maxIter; i++ {
		passes = i

		// ESIC employer contribution on basic plus the implied residual.
		overLimit := false
		if contract.ESIC {
			esicPerc := decimal.NewFromInt(1).Sub(esicERPct).Mul(esicERPct)
			implied := ctc.Sub(basic).Sub(gratuity).Sub(pfER)
			esicER = RoundWhole(basic.Add(implied).Mul(esicPerc))
			if esicER.IsNegative() {
				esicER = decimal.Zero
			}
			if !policy.ESICWageLimitDisabled {
				// Monthly qualifying wage: basic + other + ESIC ER, which
				// telescopes to (CTC - gratuity - PF) / 12.
				qualifying := Monthly(ctc.Sub(gratuity).Sub(pfER))
				if qualifying.GreaterThan(policy.ESICWageLimit) {
					esicER = decimal.Zero
					overLimit = true
				}
			}
		} else {
			esicER = decimal.Zero
		}

		// Residual annual allowance under the CTC constraint.
		other = RoundWhole(ctc.Sub(basic).Sub(gratuity).Sub(esicER).Sub(pfER))

		// Raw PF on the PF wage.
		pfWage := basic.Add(other)
		pfAnn := RoundWhole(pfWage.Mul(pfPct))
		if !contract.PFCeiling && pfAnn.GreaterThan(ceilingCap) {
			// Inverted branch preserved: the cap applies when the ceiling
			// flag is off.
			pfAnn = ceilingCap
		}

		pfDiff := pfER.Sub(pfAnn)

		// Working employer PF for the next pass.
		var pfWork decimal.Decimal
		if contract.PF {
			pfWork = RoundWhole(decimal.Min(ceilingCap, pfWage.Mul(pfPct)))
			basicPF := RoundWhole(basic.Mul(pfPct))
			if !pfWork.GreaterThan(basicPF) {
				pfWork = basicPF
			}
			if contract.PFCeiling {
				if pfWork.GreaterThan(ceilingCap) {
					pfWork = ceilingCap
				}
				if !contract.ESIC {
					// Ceiling on, ESIC off: nothing left to reconcile,
					// with or without gratuity.
					pfDiff = decimal.Zero
				}
			}
		} else {
			pfWork = decimal.Zero
			pfDiff = decimal.Zero
		}

		// Guard clauses: states where further iteration cannot move the
		// ESIC/PF interplay.
		if overLimit {
			pfDiff = decimal.Zero
		}
		// Uncapped PF: the capped pfAnn can never exceed the cap itself.
		if !contract.ESIC && RoundWhole(pfWage.Mul(pfPct)).GreaterThan(ceilingCap) {
			pfDiff = decimal.Zero
		}

		// Negative residual folds into basic.
		if other.IsNegative() {
			basic = basic.Add(other)
			other = decimal.Zero
			if contract.PF {
				pfWork = RoundWhole(basic.Mul(pfPct))
				if contract.PFCeiling && pfWork.GreaterThan(ceilingCap) {
					pfWork = ceilingCap
				}
			}
			if contract.Gratuity {
				monthly := RoundWhole(Monthly(basic).Mul(Fraction(policy.GratuityPercentage)))
				gratuity = Annual(monthly)
			}
		}

		pfER = pfWork
		if pfDiff.IsZero() {
			converged = true
			break
		}
	}

	// Recompute the residual once from the final state so the CTC identity
	// (basic + gratuity + other + ESIC ER + PF ER = annual CTC) holds for
	// the published figures.
	other = RoundWhole(ctc.Sub(basic).Sub(gratuity).Sub(esicER).Sub(pfER))

	result := ReconciliationResult{
		Applicable:         true,
		Converged:          converged,
		Iterations:         passes,
		AnnualBasic:        basic,
		AnnualOther:        other,
		AnnualESICEmployer: esicER,
		AnnualPFEmployer:   pfER,

		OtherAllowanceMonthly: RoundWhole(Monthly(other)),
		BasicMonthly:          RoundWhole(Monthly(basic)),
		GratuityMonthly:       RoundWhole(Monthly(gratuity)),
	}

	// ESIC monthly figures.
	result.ESICEmployerMonthly = RoundWhole(Monthly(esicER))
	if esicER.IsPositive() && esicERPct.IsPositive() {
		result.ESICEmployeeMonthly = Monthly(RoundWhole(esicER.Div(esicERPct).Mul(esicEEPct))).RoundBank(2)
	}

	// PF monthly figures: employee and employer share the converged state,
	// a single computation feeding both outputs.
	pfMonthly := RoundWhole(Monthly(pfER))
	if pfMonthly.IsNegative() {
		pfMonthly = decimal.Zero
	}
	result.PFEmployerMonthly = pfMonthly
	result.PFEmployeeMonthly = pfMonthly

	return result
}
