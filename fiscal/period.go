/*
Package fiscal provides Indian financial-year period math and pay-history
aggregation.

PURPOSE:
  The financial year runs April 1 through March 31. This package derives
  the period and its "YYYY-YY" label from any reference date, counts the
  months remaining to year end, and aggregates taxable income and tax
  paid from resolved pay records. It performs no fetching: callers pass
  fully-loaded history in.

CONFIGURATION:
  The start month is an explicit parameter (default April) rather than
  process-global state, so tests and multi-jurisdiction callers can run
  side by side.

SEE ALSO:
  - history.go: PayRecord aggregation over a period
*/
package fiscal

import (
	"fmt"
	"time"
)

// DefaultStartMonth is the Indian financial-year boundary.
const DefaultStartMonth = time.April

// Period is one financial year: [Start, End] with its display label.
type Period struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether d falls inside the period (inclusive).
func (p Period) Contains(d time.Time) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// PeriodFor returns the financial year containing the reference date.
// Dates before the start month belong to the year that began the previous
// calendar year.
func PeriodFor(reference time.Time, startMonth time.Month) Period {
	if startMonth == 0 {
		startMonth = DefaultStartMonth
	}
	startYear := reference.Year()
	if reference.Month() < startMonth {
		startYear--
	}
	start := time.Date(startYear, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, -1)
	return Period{Start: start, End: end, Label: label(startYear)}
}

// YearLabel returns the "YYYY-YY" financial-year label for a date.
func YearLabel(reference time.Time, startMonth time.Month) string {
	return PeriodFor(reference, startMonth).Label
}

func label(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// RemainingMonths returns the whole months between the payslip period end
// and the financial year end, clamped at zero when the period ends on or
// after year end.
func RemainingMonths(periodEnd, fiscalYearEnd time.Time) int {
	if !periodEnd.Before(fiscalYearEnd) {
		return 0
	}
	months := (fiscalYearEnd.Year()-periodEnd.Year())*12 + int(fiscalYearEnd.Month()) - int(periodEnd.Month())
	if months < 0 {
		return 0
	}
	return months
}
