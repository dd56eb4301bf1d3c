package fiscal_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/opspay/payroll-engine/fiscal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// PERIOD DERIVATION
// =============================================================================

func TestPeriodFor(t *testing.T) {
	// March 2025 still belongs to the year that began April 2024.
	p := fiscal.PeriodFor(date(2025, time.March, 15), fiscal.DefaultStartMonth)
	assert.Equal(t, "2024-25", p.Label)
	assert.Equal(t, date(2024, time.April, 1), p.Start)
	assert.Equal(t, date(2025, time.March, 31), p.End)

	// April 1 opens the next year.
	p = fiscal.PeriodFor(date(2025, time.April, 1), fiscal.DefaultStartMonth)
	assert.Equal(t, "2025-26", p.Label)
	assert.Equal(t, date(2025, time.April, 1), p.Start)
	assert.Equal(t, date(2026, time.March, 31), p.End)
}

func TestPeriodFor_CenturyLabel(t *testing.T) {
	// The short half of the label keeps its leading zero across a century
	// boundary.
	p := fiscal.PeriodFor(date(1999, time.June, 1), fiscal.DefaultStartMonth)
	assert.Equal(t, "1999-00", p.Label)

	p = fiscal.PeriodFor(date(2000, time.February, 1), fiscal.DefaultStartMonth)
	assert.Equal(t, "1999-00", p.Label)
}

func TestPeriodFor_CustomStartMonth(t *testing.T) {
	// A January start makes the financial year the calendar year.
	p := fiscal.PeriodFor(date(2025, time.March, 15), time.January)
	assert.Equal(t, "2025-26", p.Label)
	assert.Equal(t, date(2025, time.January, 1), p.Start)
	assert.Equal(t, date(2025, time.December, 31), p.End)

	// Zero start month falls back to April.
	p = fiscal.PeriodFor(date(2025, time.March, 15), 0)
	assert.Equal(t, "2024-25", p.Label)
}

func TestPeriodContains(t *testing.T) {
	p := fiscal.PeriodFor(date(2025, time.June, 1), fiscal.DefaultStartMonth)

	assert.True(t, p.Contains(date(2025, time.April, 1)))
	assert.True(t, p.Contains(date(2026, time.March, 31)))
	assert.False(t, p.Contains(date(2025, time.March, 31)))
	assert.False(t, p.Contains(date(2026, time.April, 1)))
}

func TestYearLabel(t *testing.T) {
	assert.Equal(t, "2025-26", fiscal.YearLabel(date(2025, time.December, 31), fiscal.DefaultStartMonth))
	assert.Equal(t, "2024-25", fiscal.YearLabel(date(2025, time.January, 1), fiscal.DefaultStartMonth))
}

// =============================================================================
// REMAINING MONTHS
// =============================================================================

func TestRemainingMonths(t *testing.T) {
	fyEnd := date(2026, time.March, 31)

	// April payslip leaves May through March.
	assert.Equal(t, 11, fiscal.RemainingMonths(date(2025, time.April, 30), fyEnd))
	assert.Equal(t, 1, fiscal.RemainingMonths(date(2026, time.February, 28), fyEnd))

	// Year end and beyond clamp at zero.
	assert.Equal(t, 0, fiscal.RemainingMonths(fyEnd, fyEnd))
	assert.Equal(t, 0, fiscal.RemainingMonths(date(2026, time.April, 30), fyEnd))
}

// =============================================================================
// HISTORY AGGREGATION
// =============================================================================

func payRecord(from time.Time, taxable, tax int64) fiscal.PayRecord {
	return fiscal.PayRecord{
		DateFrom: from,
		DateTo:   from.AddDate(0, 1, -1),
		Lines: []fiscal.PayLine{
			{Code: "BASIC", Amount: decimal.NewFromInt(taxable), Taxable: true},
			{Code: fiscal.LineIncomeTax, Amount: decimal.NewFromInt(tax)},
		},
	}
}

func TestCumulativeTaxableToDate(t *testing.T) {
	period := fiscal.PeriodFor(date(2025, time.June, 1), fiscal.DefaultStartMonth)

	history := []fiscal.PayRecord{
		payRecord(date(2025, time.April, 1), 50000, 1500),
		payRecord(date(2025, time.May, 1), 50000, 1500),
		// Previous financial year, must be excluded.
		payRecord(date(2025, time.February, 1), 50000, 1500),
	}

	// Two earned months plus ten projected at 50000.
	total := fiscal.CumulativeTaxableToDate(history, period, decimal.NewFromInt(50000), 10)
	assert.True(t, total.Equal(decimal.NewFromInt(600000)), "got %s", total)

	// No projection: only the earned months.
	total = fiscal.CumulativeTaxableToDate(history, period, decimal.Zero, 0)
	assert.True(t, total.Equal(decimal.NewFromInt(100000)), "got %s", total)
}

func TestCumulativeTaxPaidToDate(t *testing.T) {
	period := fiscal.PeriodFor(date(2025, time.June, 1), fiscal.DefaultStartMonth)

	history := []fiscal.PayRecord{
		payRecord(date(2025, time.April, 1), 50000, 1500),
		payRecord(date(2025, time.May, 1), 50000, 1800),
		payRecord(date(2024, time.December, 1), 50000, 9999),
	}

	paid := fiscal.CumulativeTaxPaidToDate(history, period)
	assert.True(t, paid.Equal(decimal.NewFromInt(3300)), "got %s", paid)
}

func TestCumulativeTaxPaidToDate_EmptyHistory(t *testing.T) {
	period := fiscal.PeriodFor(date(2025, time.June, 1), fiscal.DefaultStartMonth)
	assert.True(t, fiscal.CumulativeTaxPaidToDate(nil, period).IsZero())
}
