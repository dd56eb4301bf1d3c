/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts travel as JSON strings ("21998") via shopspring/decimal, never
  as floats. Percentages are whole numbers ("12" means 12%).

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON type
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/opspay/payroll-engine/factory"
	"github.com/opspay/payroll-engine/statutory"
	"github.com/opspay/payroll-engine/tax"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	City        string `json:"city"`
	DateOfBirth string `json:"date_of_birth"`
	JoinDate    string `json:"join_date"`
	TDSOverride string `json:"tds_override,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	City        string `json:"city"`
	DateOfBirth string `json:"date_of_birth"`
	JoinDate    string `json:"join_date"`
	TDSOverride string `json:"tds_override,omitempty"`
}

// =============================================================================
// POLICIES
// =============================================================================

// PolicyDTO represents a policy in API responses.
type PolicyDTO struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Config    factory.PolicyJSON `json:"config"`
	CreatedAt string             `json:"created_at,omitempty"`
}

// CreatePolicyRequest is the request to create a policy.
type CreatePolicyRequest struct {
	Config factory.PolicyJSON `json:"config"`
}

// =============================================================================
// DECLARATIONS
// =============================================================================

// DeclarationDTO carries a tax declaration over the wire.
type DeclarationDTO struct {
	Regime             string          `json:"regime"`
	Status             string          `json:"status"`
	Section80C         decimal.Decimal `json:"section_80c"`
	Section80D         decimal.Decimal `json:"section_80d"`
	SectionVIA         decimal.Decimal `json:"section_via"`
	PublicPF           decimal.Decimal `json:"public_pf"`
	HRADeclared        decimal.Decimal `json:"hra_declared"`
	AnnualRent         decimal.Decimal `json:"annual_rent"`
	MetroCity          string          `json:"metro_city,omitempty"`
	PrevEmployerIncome decimal.Decimal `json:"prev_employer_income"`
	PrevEmployerTax    decimal.Decimal `json:"prev_employer_tax"`
	PrevEmployerSur    decimal.Decimal `json:"prev_employer_surcharge"`
	PrevEmployerCess   decimal.Decimal `json:"prev_employer_cess"`
	PrevEmployerPF     decimal.Decimal `json:"prev_employer_pf"`
	PrevEmployerPT     decimal.Decimal `json:"prev_employer_pt"`
}

func (d DeclarationDTO) toDomain() tax.ITDeclaration {
	return tax.ITDeclaration{
		Regime:                tax.Regime(d.Regime),
		Status:                tax.DeclarationStatus(d.Status),
		Section80C:            d.Section80C,
		Section80D:            d.Section80D,
		SectionVIA:            d.SectionVIA,
		PublicPF:              d.PublicPF,
		HRADeclared:           d.HRADeclared,
		AnnualRent:            d.AnnualRent,
		MetroCity:             d.MetroCity,
		PrevEmployerIncome:    d.PrevEmployerIncome,
		PrevEmployerTax:       d.PrevEmployerTax,
		PrevEmployerSurcharge: d.PrevEmployerSur,
		PrevEmployerCess:      d.PrevEmployerCess,
		PrevEmployerPF:        d.PrevEmployerPF,
		PrevEmployerPT:        d.PrevEmployerPT,
	}
}

func declarationDTO(dec tax.ITDeclaration) DeclarationDTO {
	return DeclarationDTO{
		Regime:             string(dec.Regime),
		Status:             string(dec.Status),
		Section80C:         dec.Section80C,
		Section80D:         dec.Section80D,
		SectionVIA:         dec.SectionVIA,
		PublicPF:           dec.PublicPF,
		HRADeclared:        dec.HRADeclared,
		AnnualRent:         dec.AnnualRent,
		MetroCity:          dec.MetroCity,
		PrevEmployerIncome: dec.PrevEmployerIncome,
		PrevEmployerTax:    dec.PrevEmployerTax,
		PrevEmployerSur:    dec.PrevEmployerSurcharge,
		PrevEmployerCess:   dec.PrevEmployerCess,
		PrevEmployerPF:     dec.PrevEmployerPF,
		PrevEmployerPT:     dec.PrevEmployerPT,
	}
}

// =============================================================================
// PAYSLIP RUNS
// =============================================================================

// ContractDTO carries the contract terms for a payslip run.
type ContractDTO struct {
	Wage      decimal.Decimal `json:"wage"`
	PF        bool            `json:"pf"`
	PFCeiling bool            `json:"pf_ceiling"`
	ESIC      bool            `json:"esic"`
	Gratuity  bool            `json:"gratuity"`
}

func (c ContractDTO) toDomain() statutory.ContractTerms {
	return statutory.ContractTerms{
		Wage:      c.Wage,
		PF:        c.PF,
		PFCeiling: c.PFCeiling,
		ESIC:      c.ESIC,
		Gratuity:  c.Gratuity,
	}
}

// WorkedDaysDTO carries the attendance split for a payslip run.
type WorkedDaysDTO struct {
	Work100   decimal.Decimal `json:"work100"`
	LossOfPay decimal.Decimal `json:"loss_of_pay"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

func (w WorkedDaysDTO) toDomain() statutory.WorkedDays {
	return statutory.WorkedDays{Work100: w.Work100, LossOfPay: w.LossOfPay, Shortfall: w.Shortfall}
}

// RunPayslipRequest is one payslip computation request.
type RunPayslipRequest struct {
	EmployeeID string        `json:"employee_id"`
	PolicyID   string        `json:"policy_id"`
	Contract   ContractDTO   `json:"contract"`
	Worked     WorkedDaysDTO `json:"worked"`

	PeriodFrom string `json:"period_from"`
	PeriodTo   string `json:"period_to"`

	Bonus        decimal.Decimal `json:"bonus"`
	Compensation decimal.Decimal `json:"compensation"`
}

// PayLineDTO is one payslip line.
type PayLineDTO struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	Taxable bool            `json:"taxable"`
}

// PayslipDTO is the computed payslip response.
type PayslipDTO struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	PeriodFrom string          `json:"period_from"`
	PeriodTo   string          `json:"period_to"`
	FiscalYear string          `json:"fiscal_year"`
	Lines      []PayLineDTO    `json:"lines"`
	Gross      decimal.Decimal `json:"gross"`
	Net        decimal.Decimal `json:"net"`
	CTC        decimal.Decimal `json:"ctc"`

	TDSPercentage      decimal.Decimal `json:"tds_percentage"`
	DeclarationMissing bool            `json:"declaration_missing"`
	ReconConverged     bool            `json:"reconciliation_converged"`
	ReconIterations    int             `json:"reconciliation_iterations"`
}

// =============================================================================
// CALCULATORS
// =============================================================================

// ReconcileRequest runs the statutory contribution reconciler directly.
type ReconcileRequest struct {
	PolicyID        string          `json:"policy_id"`
	Contract        ContractDTO     `json:"contract"`
	MonthlyBasic    decimal.Decimal `json:"monthly_basic"`
	MonthlyGratuity decimal.Decimal `json:"monthly_gratuity"`
}

// ReconcileDTO is the reconciler response.
type ReconcileDTO struct {
	Applicable bool `json:"applicable"`
	Converged  bool `json:"converged"`
	Iterations int  `json:"iterations"`

	BasicMonthly        decimal.Decimal `json:"basic_monthly"`
	GratuityMonthly     decimal.Decimal `json:"gratuity_monthly"`
	OtherMonthly        decimal.Decimal `json:"other_monthly"`
	ESICEmployeeMonthly decimal.Decimal `json:"esic_employee_monthly"`
	ESICEmployerMonthly decimal.Decimal `json:"esic_employer_monthly"`
	PFEmployeeMonthly   decimal.Decimal `json:"pf_employee_monthly"`
	PFEmployerMonthly   decimal.Decimal `json:"pf_employer_monthly"`
}

// TaxRequest computes slab tax on a taxable income.
type TaxRequest struct {
	TaxableIncome decimal.Decimal `json:"taxable_income"`
	Age           int             `json:"age"`
	Regime        string          `json:"regime"`
	FiscalYear    string          `json:"fiscal_year"`

	PriorTax       decimal.Decimal `json:"prior_tax"`
	PriorSurcharge decimal.Decimal `json:"prior_surcharge"`
	PriorCess      decimal.Decimal `json:"prior_cess"`
	TaxPaidToDate  decimal.Decimal `json:"tax_paid_to_date"`
}

// TaxDTO is the slab tax response.
type TaxDTO struct {
	Total     decimal.Decimal `json:"total"`
	Base      decimal.Decimal `json:"base"`
	Surcharge decimal.Decimal `json:"surcharge"`
	Cess      decimal.Decimal `json:"cess"`
	Rebate    decimal.Decimal `json:"rebate"`
	Supported bool            `json:"supported"`
}

// FiscalYearDTO describes the financial year containing a date.
type FiscalYearDTO struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
