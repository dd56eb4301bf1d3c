/*
Package payslip orchestrates a full monthly payslip computation from the
statutory, tax and fiscal calculators.

PURPOSE:
  The Engine threads SalaryCategories through the component calculators
  in their dependency order, runs the contribution reconciler and TDS
  projection, and emits a Payslip whose lines are compatible with the
  fiscal aggregator's PayRecord shape. All inputs - including "today" -
  are parameters: the engine never reads the clock or fetches data.

KEY TYPES (types.go):
  - Employee: the resolved employee snapshot
  - Input: one computation request (contract, attendance, policy,
    declaration, history, period)
  - Payslip: the computed result with coded lines

SEE ALSO:
  - engine.go: the computation pipeline
  - store.go: persistence interfaces
  - pdf.go: payslip PDF rendering
*/
package payslip

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/opspay/payroll-engine/fiscal"
	"github.com/opspay/payroll-engine/statutory"
	"github.com/opspay/payroll-engine/tax"
)

// =============================================================================
// EMPLOYEE - Resolved snapshot, no lazy relations
// =============================================================================

// Employee is the resolved employee record the engine computes against.
type Employee struct {
	ID          string
	Name        string
	Email       string
	City        string
	DateOfBirth time.Time
	JoinDate    time.Time

	// TDSOverridePercent pins the withholding percentage (old regime).
	TDSOverridePercent string
}

// AgeAt returns the employee's age in whole years at the reference date.
func (e Employee) AgeAt(reference time.Time) int {
	age := reference.Year() - e.DateOfBirth.Year()
	anniversary := e.DateOfBirth.AddDate(age, 0, 0)
	if anniversary.After(reference) {
		age--
	}
	return age
}

// TenureAt returns the employment tenure in whole years and leftover
// months at the reference date.
func (e Employee) TenureAt(reference time.Time) statutory.Tenure {
	months := (reference.Year()-e.JoinDate.Year())*12 + int(reference.Month()) - int(e.JoinDate.Month())
	if reference.Day() < e.JoinDate.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return statutory.Tenure{Years: months / 12, Months: months % 12}
}

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// Input is one payslip computation request. Every field must be fully
// resolved before calling the engine.
type Input struct {
	Employee    Employee
	Contract    statutory.ContractTerms
	Worked      statutory.WorkedDays
	Policy      statutory.CompanyPolicy
	Declaration *tax.ITDeclaration
	History     []fiscal.PayRecord

	PeriodFrom time.Time
	PeriodTo   time.Time

	// ReferenceDate stands in for "today" (age/tenure); injected so runs
	// are reproducible.
	ReferenceDate time.Time

	// Optional extra earnings for the period.
	Bonus        decimal.Decimal
	Compensation decimal.Decimal
}

// Payslip is one computed payslip period.
type Payslip struct {
	ID         string
	EmployeeID string
	PeriodFrom time.Time
	PeriodTo   time.Time
	FiscalYear string

	Lines []fiscal.PayLine

	Gross decimal.Decimal
	Net   decimal.Decimal
	CTC   decimal.Decimal

	Reconciliation statutory.ReconciliationResult
	TDS            tax.TDSResult
}

// Record converts the payslip into the fiscal aggregator's history shape.
func (p *Payslip) Record() fiscal.PayRecord {
	return fiscal.PayRecord{DateFrom: p.PeriodFrom, DateTo: p.PeriodTo, Lines: p.Lines}
}

// Line returns the amount for a line code, or zero.
func (p *Payslip) Line(code string) decimal.Decimal {
	for _, l := range p.Lines {
		if l.Code == code {
			return l.Amount
		}
	}
	return decimal.Zero
}
