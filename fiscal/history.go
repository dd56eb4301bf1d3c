package fiscal

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAY HISTORY - Resolved payslip records, decoupled from storage
// =============================================================================

// LineIncomeTax is the line code carrying the income-tax deduction.
const LineIncomeTax = "IT_DED"

// PayLine is one payslip line in a historical record.
type PayLine struct {
	Code    string
	Name    string
	Amount  decimal.Decimal
	Taxable bool
}

// PayRecord is one historical payslip period with its resolved lines.
type PayRecord struct {
	DateFrom time.Time
	DateTo   time.Time
	Lines    []PayLine
}

// InPeriod reports whether the record's period falls inside the financial
// year. A record qualifies when its start date is inside the period.
func (r PayRecord) InPeriod(p Period) bool {
	return p.Contains(r.DateFrom)
}

// CumulativeTaxableToDate sums the taxable line amounts of the records in
// the financial year and projects the remaining months at the given
// monthly taxable amount, estimating the full-year figure. Pure
// aggregation: the caller supplies the history.
func CumulativeTaxableToDate(history []PayRecord, period Period, projectedMonthlyTaxable decimal.Decimal, remainingMonths int) decimal.Decimal {
	total := decimal.Zero
	for _, record := range history {
		if !record.InPeriod(period) {
			continue
		}
		for _, line := range record.Lines {
			if line.Taxable {
				total = total.Add(line.Amount)
			}
		}
	}
	return total.Add(projectedMonthlyTaxable.Mul(decimal.NewFromInt(int64(remainingMonths))))
}

// CumulativeTaxPaidToDate sums the income-tax lines of the records in the
// financial year.
func CumulativeTaxPaidToDate(history []PayRecord, period Period) decimal.Decimal {
	total := decimal.Zero
	for _, record := range history {
		if !record.InPeriod(period) {
			continue
		}
		for _, line := range record.Lines {
			if line.Code == LineIncomeTax {
				total = total.Add(line.Amount)
			}
		}
	}
	return total
}
