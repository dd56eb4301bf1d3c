/*
tds.go - Per-payslip withholding projection

PURPOSE:
  Projects the annual gross from the current employer's monthly gross and
  the months remaining in the financial year, merges prior-employer
  income, applies regime-specific deductions, and converts the resulting
  annual liability into a withholding percentage.

FALLBACK PATH:
  When no locked declaration exists the projection still produces a
  number: a flat new-regime-style standard deduction, no prior-income
  offset, computed under the new regime. The result carries
  DeclarationMissing so callers can tell the fallback from a real
  computation; it never errors.

OVERRIDE:
  An employee-level override percentage (a literal string set by payroll
  admins) replaces the computed percentage on the old-regime path only.
*/
package tax

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opspay/payroll-engine/fiscal"
)

// Metro cities attract the 50% HRA exemption factor; everywhere else 40%.
var metroCities = map[string]bool{
	"mumbai":   true,
	"calcutta": true,
	"delhi":    true,
	"chennai":  true,
}

var (
	metroFactor    = decimal.NewFromFloat(0.5)
	nonMetroFactor = decimal.NewFromFloat(0.4)
	rentOffset     = decimal.NewFromFloat(0.10)
	twelve         = decimal.NewFromInt(12)
)

// EmployeeProfile carries the employee attributes TDS projection needs.
type EmployeeProfile struct {
	Age           int
	ContractStart time.Time

	// TDSOverridePercent, when non-empty, is the literal percentage a
	// payroll admin pinned for this employee (old-regime path only).
	TDSOverridePercent string
}

// TDSInput is one projection request. Declaration may be nil.
type TDSInput struct {
	Employee          EmployeeProfile
	MonthlyGross      decimal.Decimal
	MonthlyBasic      decimal.Decimal
	EmployerPFMonthly decimal.Decimal
	Declaration       *ITDeclaration
	Period            fiscal.Period

	// TaxPaidToDate is the tax already withheld this financial year under
	// this employer (the fiscal aggregator's cumulative IT_DED figure).
	TaxPaidToDate decimal.Decimal
}

// TDSResult is the projection outcome.
type TDSResult struct {
	Percentage decimal.Decimal
	AnnualTax  decimal.Decimal

	// Supported is false for fiscal years without slab tables.
	Supported bool

	// DeclarationMissing marks the no-locked-declaration fallback path.
	DeclarationMissing bool
}

// TDSPercentage projects the annual liability and withholding percentage
// for the payslip period.
func TDSPercentage(in TDSInput) TDSResult {
	if in.Period.Label != SupportedFiscalYear {
		return TDSResult{Supported: false}
	}

	months := remainingEmploymentMonths(in.Employee.ContractStart, in.Period)
	annualGross := in.MonthlyGross.Mul(decimal.NewFromInt(int64(months)))

	locked := in.Declaration.Locked()
	result := TDSResult{Supported: true, DeclarationMissing: !locked}

	var (
		deductions decimal.Decimal
		regime     = NewRegime
		prior      PriorEmployer
		paid       decimal.Decimal
	)

	if locked {
		dec := *in.Declaration
		regime = dec.Regime
		annualGross = annualGross.Add(dec.PrevEmployerIncome)
		prior = dec.Prior()
		paid = dec.PrevEmployerTax.Add(in.TaxPaidToDate)

		switch regime {
		case OldRegime:
			deductions = hraExemption(dec, in.MonthlyBasic).
				Add(dec.Applicable80C()).
				Add(dec.Applicable80D()).
				Add(dec.ApplicableVIA()).
				Add(OldRegimeStandardDeduction)
		default:
			deductions = in.EmployerPFMonthly.Mul(twelve).
				Add(NewRegimeStandardDeduction).
				Add(dec.PublicPF)
		}
	} else {
		// No locked declaration: flat new-regime-style deduction, no
		// prior-income offset, regardless of the employee's actual regime.
		deductions = NewRegimeStandardDeduction
		paid = in.TaxPaidToDate
	}

	taxable := annualGross.Sub(deductions)
	if !taxable.IsPositive() {
		return result
	}

	var computed Result
	if regime == OldRegime {
		computed = OldRegimeTax(taxable, in.Employee.Age, prior, paid)
	} else {
		computed = NewRegimeTax(taxable, in.Employee.Age, in.Period.Label, prior, paid)
	}
	if !computed.Supported {
		return TDSResult{Supported: false}
	}

	result.AnnualTax = computed.Total
	result.Percentage = computed.Total.Div(taxable).Mul(decimal.NewFromInt(100))

	if regime == OldRegime {
		if override, ok := parseOverride(in.Employee.TDSOverridePercent); ok {
			result.Percentage = override
		}
	}
	return result
}

// remainingEmploymentMonths counts the months of the financial year the
// employee is on this employer's payroll: the full 12 for contracts
// predating the year, otherwise the months from the contract start month
// to year end.
func remainingEmploymentMonths(contractStart time.Time, period fiscal.Period) int {
	if contractStart.Before(period.Start) {
		return 12
	}
	startMonth := int(contractStart.Month())
	if startMonth < int(period.Start.Month()) {
		startMonth += 12
	}
	months := 12 - (startMonth - int(period.Start.Month()))
	if months < 0 {
		return 0
	}
	return months
}

// hraExemption is the old-regime HRA exemption: the least of the declared
// exemption, the city-factored annual basic, and rent paid less 10% of
// annual basic. Floored at zero.
func hraExemption(dec ITDeclaration, monthlyBasic decimal.Decimal) decimal.Decimal {
	annualBasic := monthlyBasic.Mul(twelve)

	factor := nonMetroFactor
	if metroCities[strings.ToLower(strings.TrimSpace(dec.MetroCity))] {
		factor = metroFactor
	}

	exemption := decimal.Min(
		dec.HRADeclared,
		annualBasic.Mul(factor),
		dec.AnnualRent.Sub(annualBasic.Mul(rentOffset)),
	)
	if exemption.IsNegative() {
		return decimal.Zero
	}
	return exemption
}

func parseOverride(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		return decimal.Zero, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
