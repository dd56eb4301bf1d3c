/*
Package tax implements the Indian income-tax slab engine and TDS
projection for the old and new regimes.

PURPOSE:
  Pure branch trees per regime and age band: base tax from the slab
  table, a marginal-relief clamp at the regime's relief threshold,
  tiered surcharge with per-tier relief against fixed base-tax reference
  points, 4% cess with a rebate branch, and additive merging of
  prior-employer tax figures.

SUPPORTED YEARS:
  The new-regime tables exist only for financial year "2025-26". Other
  years return a tagged Result with Supported=false and all-zero values
  rather than an error, so legacy callers that only read the numbers see
  zero while newer callers can distinguish "zero tax" from "not
  computed". Extending to a new year means adding its table explicitly -
  never extrapolate slabs.

FIDELITY NOTES:
  The surcharge reference constants differ between regimes only in the
  first tier, and the top two tiers share the 25% rate with reference
  points carried over from different brackets. This mirrors the system
  of record; it is preserved, not corrected.

SEE ALSO:
  - tds.go: projects annual liability into a per-payslip percentage
  - declaration.go: ITDeclaration inputs and section caps
*/
package tax

import (
	"github.com/shopspring/decimal"
)

// SupportedFiscalYear is the only financial year the new-regime tables
// cover.
const SupportedFiscalYear = "2025-26"

// SeniorAge is the age above which the senior slab table applies.
const SeniorAge = 60

// Regime selects the slab tree.
type Regime string

const (
	OldRegime Regime = "old_regime"
	NewRegime Regime = "new_regime"
)

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of one regime computation. Total already includes
// cess, surcharge, and the prior employer's figures.
type Result struct {
	Total     decimal.Decimal
	Base      decimal.Decimal
	Cess      decimal.Decimal
	Surcharge decimal.Decimal

	// Rebate holds the rebated amount when the rebate branch zeroes the
	// liability; otherwise the excess of tax already paid over the
	// computed liability (a carryover), zero when nothing applies.
	Rebate decimal.Decimal

	// Supported is false when the fiscal year has no slab table. All
	// other fields are zero in that case.
	Supported bool
}

// PriorEmployer carries the previous employer's already-assessed figures,
// merged additively into the result.
type PriorEmployer struct {
	Tax       decimal.Decimal
	Surcharge decimal.Decimal
	Cess      decimal.Decimal
}

var (
	cessRate = decimal.NewFromFloat(0.04)
	hundred  = decimal.NewFromInt(100)
)

func d(i int64) decimal.Decimal          { return decimal.NewFromInt(i) }
func rate(f float64) decimal.Decimal     { return decimal.NewFromFloat(f) }
func pct(r, of decimal.Decimal) decimal.Decimal { return of.Mul(r) }

// =============================================================================
// SLAB TABLES
// =============================================================================

// slab computes rate*(income-lower)+constant for the matched bracket.
type slab struct {
	upper    decimal.Decimal // exclusive upper bound; zero = open-ended
	lower    decimal.Decimal
	rate     decimal.Decimal
	constant decimal.Decimal
}

func slabTax(income decimal.Decimal, slabs []slab) decimal.Decimal {
	for _, s := range slabs {
		if s.upper.IsZero() || !income.GreaterThan(s.upper) {
			if income.LessThanOrEqual(s.lower) {
				return decimal.Zero
			}
			return pct(s.rate, income.Sub(s.lower)).Add(s.constant)
		}
	}
	return decimal.Zero
}

var oldRegimeGeneral = []slab{
	{upper: d(250000)},
	{upper: d(500000), lower: d(250000), rate: rate(0.05)},
	{upper: d(1000000), lower: d(500000), rate: rate(0.20), constant: d(12500)},
	{lower: d(1000000), rate: rate(0.30), constant: d(112500)},
}

var oldRegimeSenior = []slab{
	{upper: d(250000)},
	{upper: d(500000), lower: d(250000), rate: rate(0.05)},
	{upper: d(1000000), lower: d(500000), rate: rate(0.20), constant: d(10000)},
	{lower: d(1000000), rate: rate(0.30), constant: d(110000)},
}

var newRegimeGeneral = []slab{
	{upper: d(400000)},
	{upper: d(800000), lower: d(400000), rate: rate(0.05)},
	{upper: d(1200000), lower: d(800000), rate: rate(0.10), constant: d(20000)},
	{upper: d(1600000), lower: d(1200000), rate: rate(0.15), constant: d(60000)},
	{upper: d(2000000), lower: d(1600000), rate: rate(0.20), constant: d(120000)},
	{upper: d(2400000), lower: d(2000000), rate: rate(0.25), constant: d(200000)},
	{lower: d(2400000), rate: rate(0.30), constant: d(300000)},
}

var newRegimeSenior = []slab{
	{upper: d(300000)},
	{upper: d(600000), lower: d(300000), rate: rate(0.05)},
	{upper: d(900000), lower: d(600000), rate: rate(0.10), constant: d(15000)},
	{upper: d(1200000), lower: d(900000), rate: rate(0.15), constant: d(45000)},
	{upper: d(1500000), lower: d(1200000), rate: rate(0.20), constant: d(90000)},
	{lower: d(1500000), rate: rate(0.30), constant: d(150000)},
}

// =============================================================================
// SURCHARGE
// =============================================================================

// surchargeTier applies its rate to the base tax when income falls in
// (threshold, upper], with marginal relief clamped against a fixed
// base-tax reference point at the threshold.
type surchargeTier struct {
	threshold decimal.Decimal
	upper     decimal.Decimal // zero = open-ended
	rate      decimal.Decimal
	reference decimal.Decimal
}

var oldRegimeSurcharge = []surchargeTier{
	{threshold: d(5000000), upper: d(10000000), rate: rate(0.10), reference: d(1312500)},
	{threshold: d(10000000), upper: d(20000000), rate: rate(0.15), reference: d(2838000)},
	{threshold: d(20000000), upper: d(50000000), rate: rate(0.25), reference: d(6417000)},
	{threshold: d(50000000), rate: rate(0.25), reference: d(18225000)},
}

var newRegimeSurcharge = []surchargeTier{
	{threshold: d(5000000), upper: d(10000000), rate: rate(0.10), reference: d(1080000)},
	{threshold: d(10000000), upper: d(20000000), rate: rate(0.15), reference: d(2838000)},
	{threshold: d(20000000), upper: d(50000000), rate: rate(0.25), reference: d(6417000)},
	{threshold: d(50000000), rate: rate(0.25), reference: d(18225000)},
}

func surchargeFor(income, base decimal.Decimal, tiers []surchargeTier) decimal.Decimal {
	for _, tier := range tiers {
		if !income.GreaterThan(tier.threshold) {
			continue
		}
		if !tier.upper.IsZero() && income.GreaterThan(tier.upper) {
			continue
		}
		surcharge := pct(tier.rate, base)
		// Marginal relief: base + surcharge may not exceed the tier's
		// reference liability plus the income in excess of the threshold.
		cap := tier.reference.Add(income.Sub(tier.threshold))
		if base.Add(surcharge).GreaterThan(cap) {
			surcharge = cap.Sub(base)
			if surcharge.IsNegative() {
				surcharge = decimal.Zero
			}
		}
		return surcharge
	}
	return decimal.Zero
}

// =============================================================================
// REGIME COMPUTATIONS
// =============================================================================

// OldRegimeTax computes the old-regime liability for a fiscal year. The
// old regime has no year gate; the slab table is year-invariant in the
// system of record.
func OldRegimeTax(taxableIncome decimal.Decimal, age int, prior PriorEmployer, totalPaidTax decimal.Decimal) Result {
	slabs := oldRegimeGeneral
	if age > SeniorAge {
		slabs = oldRegimeSenior
	}
	return assemble(taxableIncome, slabs, oldRegimeSurcharge, d(500000), d(12500), prior, totalPaidTax)
}

// NewRegimeTax computes the new-regime liability. Only
// SupportedFiscalYear has a slab table; other years return the tagged
// unsupported zero result.
func NewRegimeTax(taxableIncome decimal.Decimal, age int, fiscalYear string, prior PriorEmployer, totalPaidTax decimal.Decimal) Result {
	if fiscalYear != SupportedFiscalYear {
		return Result{Supported: false}
	}
	slabs := newRegimeGeneral
	if age > SeniorAge {
		slabs = newRegimeSenior
	}
	return assemble(taxableIncome, slabs, newRegimeSurcharge, d(1200000), d(60000), prior, totalPaidTax)
}

// assemble runs the shared pipeline: slab base, relief clamp, surcharge,
// rebate-or-cess, prior-employer merge.
func assemble(income decimal.Decimal, slabs []slab, tiers []surchargeTier, reliefThreshold, rebateThreshold decimal.Decimal, prior PriorEmployer, totalPaidTax decimal.Decimal) Result {
	if income.IsNegative() {
		income = decimal.Zero
	}

	base := slabTax(income, slabs)
	if income.GreaterThan(reliefThreshold) {
		// Marginal relief: tax never exceeds the income over the threshold.
		excess := income.Sub(reliefThreshold)
		if base.GreaterThan(excess) {
			base = excess
		}
	}

	surcharge := surchargeFor(income, base, tiers)

	result := Result{Base: base, Surcharge: surcharge, Supported: true}

	merged := base.Add(surcharge).Add(prior.Tax).Add(prior.Surcharge).Add(prior.Cess)
	if base.Add(prior.Tax).LessThanOrEqual(rebateThreshold) {
		// Rebate branch: no cess, the whole merged liability is rebated.
		result.Rebate = merged
		result.Total = decimal.Zero
		return result
	}

	result.Cess = pct(cessRate, base.Add(surcharge))
	result.Total = merged.Add(result.Cess)

	if totalPaidTax.GreaterThan(result.Total) {
		result.Rebate = totalPaidTax.Sub(result.Total)
	}
	return result
}
