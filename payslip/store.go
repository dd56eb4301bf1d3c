/*
store.go - Persistence interfaces for payroll reference data and history

PURPOSE:
  The calculators are pure; persistence exists around them for company
  policies, employee records, tax declarations, and finalized payslips
  (the fiscal aggregator's history source). Implementations:

  - payslip/store: in-memory, for tests and dev
  - store/sqlite:  SQLite-backed, for production

FINALIZATION:
  Payslips are written once, by SavePayslip, after a run is approved.
  There is no update path; a correction run produces a new payslip for
  the same period and supersedes the old one at read time (latest wins).
*/
package payslip

import (
	"context"
	"errors"
	"time"

	"github.com/opspay/payroll-engine/fiscal"
	"github.com/opspay/payroll-engine/statutory"
	"github.com/opspay/payroll-engine/tax"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// PolicyRecord pairs a stored policy with its identifier.
type PolicyRecord struct {
	ID        string
	Name      string
	Policy    statutory.CompanyPolicy
	CreatedAt time.Time
}

// Store is the persistence surface the API layer depends on.
type Store interface {
	SavePolicy(ctx context.Context, record PolicyRecord) error
	GetPolicy(ctx context.Context, id string) (*PolicyRecord, error)
	ListPolicies(ctx context.Context) ([]PolicyRecord, error)

	SaveEmployee(ctx context.Context, employee Employee) error
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)

	// Declarations are keyed by employee and fiscal-year label.
	SaveDeclaration(ctx context.Context, employeeID, fiscalYear string, dec tax.ITDeclaration) error
	GetDeclaration(ctx context.Context, employeeID, fiscalYear string) (*tax.ITDeclaration, error)

	SavePayslip(ctx context.Context, slip *Payslip) error
	GetPayslip(ctx context.Context, id string) (*Payslip, error)
	ListPayslips(ctx context.Context, employeeID string) ([]*Payslip, error)

	// History returns the employee's finalized payslips inside the
	// financial year, in the fiscal aggregator's record shape.
	History(ctx context.Context, employeeID string, period fiscal.Period) ([]fiscal.PayRecord, error)
}
