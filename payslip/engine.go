/*
engine.go - The payslip computation pipeline

PIPELINE ORDER:
  1. Validate policy, contract, worked days (boundary - the calculators
     themselves never raise)
  2. BASIC from prorated wage
  3. GRATUITY accrual
  4. Contribution reconciliation -> ER_DED / EE_DED / PF_EMP (the
     reconciler may reduce BASIC; the reduced figure wins)
  5. HRA, then the residual Other allowance
  6. PT flat line
  7. TDS projection -> IT_DED on the monthly gross
  8. GROSS / NET / CTC aggregates

NON-CONVERGENCE:
  A reconciliation that stops at the iteration cap still produces a
  payslip (statutory software must always produce a number) but is logged
  for observability - it indicates a policy-configuration edge case.
*/
package payslip

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/opspay/payroll-engine/fiscal"
	"github.com/opspay/payroll-engine/statutory"
	"github.com/opspay/payroll-engine/tax"
)

// Engine computes payslips. The zero value is usable; Logger defaults to
// a no-op logger.
type Engine struct {
	Logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{Logger: logger}
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Compute runs the full pipeline for one employee and period.
func (e *Engine) Compute(in Input) (*Payslip, error) {
	if err := in.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("payslip compute: %w", err)
	}
	if err := in.Contract.Validate(); err != nil {
		return nil, fmt.Errorf("payslip compute: %w", err)
	}
	if err := in.Worked.Validate(); err != nil {
		return nil, fmt.Errorf("payslip compute: %w", err)
	}

	period := fiscal.PeriodFor(in.PeriodFrom, fiscal.DefaultStartMonth)
	categories := statutory.NewSalaryCategories()

	// Basic and gratuity accrual.
	categories.Set(statutory.CatBasic, statutory.BasicWage(in.Contract, in.Worked, in.Policy))
	categories.Set(statutory.CatGratuity, statutory.GratuityAccrual(in.Contract, categories, in.Policy))

	// Contribution reconciliation.
	recon := statutory.ReconcileContributions(statutory.ReconcileInput{
		Contract:        in.Contract,
		Policy:          in.Policy,
		MonthlyBasic:    categories.Get(statutory.CatBasic),
		MonthlyGratuity: categories.Get(statutory.CatGratuity),
	})
	if recon.Applicable {
		if !recon.Converged {
			e.logger().Warn("contribution reconciliation hit iteration cap",
				zap.String("employee_id", in.Employee.ID),
				zap.Int("iterations", recon.Iterations))
		}
		// The reconciler may have folded a negative residual into basic.
		categories.Set(statutory.CatBasic, recon.BasicMonthly)
		categories.Set(statutory.CatGratuity, recon.GratuityMonthly)
		categories.Set(statutory.CatERDeduction, recon.PFEmployerMonthly.Add(recon.ESICEmployerMonthly))
		categories.Set(statutory.CatEEDeduction, recon.PFEmployeeMonthly.Add(recon.ESICEmployeeMonthly))
		categories.Set(statutory.CatPFEmployer, recon.PFEmployerMonthly)
	} else {
		categories.Set(statutory.CatERDeduction, decimal.Zero)
		categories.Set(statutory.CatEEDeduction, decimal.Zero)
	}

	// Allowances.
	categories.Set(statutory.CatHRA, statutory.HouseRentAllowance(in.Contract, categories))
	categories.Set(statutory.CatOther, statutory.OtherAllowance(in.Contract, in.Worked, categories))

	if in.Bonus.IsPositive() {
		categories.Set(statutory.CatBonus, in.Bonus)
	}
	if in.Compensation.IsPositive() {
		categories.Set(statutory.CatComp, in.Compensation)
	}
	if in.Policy.ProfessionalTax.IsPositive() {
		categories.Set(statutory.CatPT, in.Policy.ProfessionalTax)
	}

	// Withholding on the monthly gross. Tax already withheld this year
	// counts toward the annual liability.
	gross := statutory.GrossAmount(categories)
	paidToDate := fiscal.CumulativeTaxPaidToDate(in.History, period)
	tds := tax.TDSPercentage(tax.TDSInput{
		Employee: tax.EmployeeProfile{
			Age:                in.Employee.AgeAt(in.ReferenceDate),
			ContractStart:      in.Employee.JoinDate,
			TDSOverridePercent: in.Employee.TDSOverridePercent,
		},
		MonthlyGross:      gross,
		MonthlyBasic:      categories.Get(statutory.CatBasic),
		EmployerPFMonthly: categories.Get(statutory.CatPFEmployer),
		Declaration:       withCity(in.Declaration, in.Employee.City),
		Period:            period,
		TaxPaidToDate:     paidToDate,
	})
	if tds.DeclarationMissing {
		e.logger().Info("no locked tax declaration, using fallback deduction",
			zap.String("employee_id", in.Employee.ID),
			zap.String("fiscal_year", period.Label))
	}
	itDed := statutory.RoundWhole(gross.Mul(tds.Percentage).Div(decimal.NewFromInt(100)))
	categories.Set(statutory.CatITDeduction, itDed)

	slip := &Payslip{
		ID:             uuid.NewString(),
		EmployeeID:     in.Employee.ID,
		PeriodFrom:     in.PeriodFrom,
		PeriodTo:       in.PeriodTo,
		FiscalYear:     period.Label,
		Gross:          gross,
		Net:            statutory.NetSalary(categories),
		CTC:            statutory.MonthlyCTC(categories),
		Reconciliation: recon,
		TDS:            tds,
	}
	slip.Lines = buildLines(categories)
	return slip, nil
}

// withCity stamps the employee's city onto the declaration copy used for
// the HRA metro factor, leaving the stored declaration untouched.
func withCity(dec *tax.ITDeclaration, city string) *tax.ITDeclaration {
	if dec == nil {
		return nil
	}
	copied := *dec
	if copied.MetroCity == "" {
		copied.MetroCity = city
	}
	return &copied
}

// lineOrder fixes the payslip line sequence; names are display labels.
var lineOrder = []struct {
	cat     statutory.Category
	name    string
	taxable bool
}{
	{statutory.CatBasic, "Basic Wage", true},
	{statutory.CatHRA, "House Rent Allowance", true},
	{statutory.CatOther, "Other Allowance", true},
	{statutory.CatBonus, "Bonus", true},
	{statutory.CatComp, "Compensation", true},
	{statutory.CatGratuity, "Gratuity Accrual", false},
	{statutory.CatERDeduction, "Employer Contributions", false},
	{statutory.CatEEDeduction, "Employee Contributions", false},
	{statutory.CatPFEmployer, "Employer PF", false},
	{statutory.CatPT, "Professional Tax", false},
	{statutory.CatITDeduction, "Income Tax", false},
}

func buildLines(categories *statutory.SalaryCategories) []fiscal.PayLine {
	var lines []fiscal.PayLine
	for _, spec := range lineOrder {
		amount, ok := categories.Lookup(spec.cat)
		if !ok {
			continue
		}
		lines = append(lines, fiscal.PayLine{
			Code:    string(spec.cat),
			Name:    spec.name,
			Amount:  amount,
			Taxable: spec.taxable,
		})
	}
	return lines
}
