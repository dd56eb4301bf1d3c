/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll calculators via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                List all employees
    POST   /api/employees                Create employee
    GET    /api/employees/{id}           Get employee details
    GET    /api/employees/{id}/payslips  Finalized payslips
    GET    /api/employees/{id}/fiscal    Cumulative year-to-date figures

  Declarations:
    GET    /api/employees/{id}/declarations/{year}       Get declaration
    PUT    /api/employees/{id}/declarations/{year}       Save draft
    POST   /api/employees/{id}/declarations/{year}/lock  Lock for the year

  Payslips:
    POST   /api/payslips/compute   Dry-run computation
    POST   /api/payslips           Compute and finalize
    GET    /api/payslips/{id}      Get a finalized payslip
    GET    /api/payslips/{id}/pdf  Download as PDF

  Policies:
    GET    /api/policies           List all policies
    POST   /api/policies           Create policy from JSON config
    GET    /api/policies/{id}      Get policy

  Calculators:
    POST   /api/tax                Slab tax on a taxable income
    POST   /api/reconcile          Statutory contribution reconciliation
    GET    /api/fiscal/year        Financial year containing a date

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (locked declaration)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - payslip/engine.go: The computation pipeline
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/opspay/payroll-engine/factory"
	"github.com/opspay/payroll-engine/fiscal"
	"github.com/opspay/payroll-engine/payslip"
	"github.com/opspay/payroll-engine/statutory"
	"github.com/opspay/payroll-engine/tax"
)

const dateLayout = "2006-01-02"

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         payslip.Store
	Engine        *payslip.Engine
	PolicyFactory *factory.PolicyFactory
	Logger        *zap.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a new handler with the given store and engine.
func NewHandler(store payslip.Store, engine *payslip.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		Store:         store,
		Engine:        engine,
		PolicyFactory: factory.NewPolicyFactory(),
		Logger:        logger,
		Now:           time.Now,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = employeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Employee", err)
		return
	}
	writeJSON(w, http.StatusOK, employeeDTO(*emp))
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date_of_birth (use YYYY-MM-DD)", err)
		return
	}
	joinDate, err := time.Parse(dateLayout, req.JoinDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid join_date (use YYYY-MM-DD)", err)
		return
	}

	emp := payslip.Employee{
		ID:                 req.ID,
		Name:               req.Name,
		Email:              req.Email,
		City:               req.City,
		DateOfBirth:        dob,
		JoinDate:           joinDate,
		TDSOverridePercent: req.TDSOverride,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, employeeDTO(emp))
}

// FiscalSummary returns the employee's cumulative year-to-date figures
// for the financial year containing the query date.
func (h *Handler) FiscalSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	date, err := queryDate(r, h.Now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	period := fiscal.PeriodFor(date, fiscal.DefaultStartMonth)
	history, err := h.Store.History(r.Context(), id, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"fiscal_year":      period.Label,
		"taxable_to_date":  fiscal.CumulativeTaxableToDate(history, period, decimal.Zero, 0),
		"tax_paid_to_date": fiscal.CumulativeTaxPaidToDate(history, period),
		"remaining_months": fiscal.RemainingMonths(date, period.End),
		"payslip_count":    len(history),
	})
}

// =============================================================================
// DECLARATION HANDLERS
// =============================================================================

func (h *Handler) GetDeclaration(w http.ResponseWriter, r *http.Request) {
	dec, err := h.Store.GetDeclaration(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "year"))
	if err != nil {
		writeStoreError(w, "Declaration", err)
		return
	}
	writeJSON(w, http.StatusOK, declarationDTO(*dec))
}

func (h *Handler) SaveDeclaration(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	year := chi.URLParam(r, "year")

	var req DeclarationDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	dec := req.toDomain()
	switch dec.Regime {
	case tax.OldRegime, tax.NewRegime:
	default:
		writeError(w, http.StatusBadRequest, "regime must be old_regime or new_regime", nil)
		return
	}
	// Saving through this endpoint never locks; see the lock endpoint.
	dec.Status = tax.DeclarationDraft

	existing, err := h.Store.GetDeclaration(r.Context(), employeeID, year)
	if err != nil && !errors.Is(err, payslip.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to load declaration", err)
		return
	}
	if existing.Locked() {
		writeError(w, http.StatusConflict, "Declaration is locked for the year", nil)
		return
	}

	if err := h.Store.SaveDeclaration(r.Context(), employeeID, year, dec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save declaration", err)
		return
	}
	writeJSON(w, http.StatusOK, declarationDTO(dec))
}

func (h *Handler) LockDeclaration(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	year := chi.URLParam(r, "year")

	dec, err := h.Store.GetDeclaration(r.Context(), employeeID, year)
	if err != nil {
		writeStoreError(w, "Declaration", err)
		return
	}
	if dec.Locked() {
		writeError(w, http.StatusConflict, "Declaration already locked", nil)
		return
	}

	dec.Status = tax.DeclarationLocked
	if err := h.Store.SaveDeclaration(r.Context(), employeeID, year, *dec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to lock declaration", err)
		return
	}
	writeJSON(w, http.StatusOK, declarationDTO(*dec))
}

// =============================================================================
// PAYSLIP HANDLERS
// =============================================================================

// ComputePayslip runs the pipeline without persisting the result.
func (h *Handler) ComputePayslip(w http.ResponseWriter, r *http.Request) {
	slip, ok := h.runPayslip(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, payslipDTO(slip))
}

// FinalizePayslip runs the pipeline and persists the payslip, making it
// part of the employee's fiscal history.
func (h *Handler) FinalizePayslip(w http.ResponseWriter, r *http.Request) {
	slip, ok := h.runPayslip(w, r)
	if !ok {
		return
	}
	if err := h.Store.SavePayslip(r.Context(), slip); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save payslip", err)
		return
	}
	writeJSON(w, http.StatusCreated, payslipDTO(slip))
}

func (h *Handler) runPayslip(w http.ResponseWriter, r *http.Request) (*payslip.Payslip, bool) {
	var req RunPayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}

	periodFrom, err := time.Parse(dateLayout, req.PeriodFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_from (use YYYY-MM-DD)", err)
		return nil, false
	}
	periodTo, err := time.Parse(dateLayout, req.PeriodTo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_to (use YYYY-MM-DD)", err)
		return nil, false
	}
	if periodTo.Before(periodFrom) {
		writeError(w, http.StatusBadRequest, "period_to precedes period_from", nil)
		return nil, false
	}

	ctx := r.Context()
	emp, err := h.Store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		writeStoreError(w, "Employee", err)
		return nil, false
	}
	policyRecord, err := h.Store.GetPolicy(ctx, req.PolicyID)
	if err != nil {
		writeStoreError(w, "Policy", err)
		return nil, false
	}

	period := fiscal.PeriodFor(periodFrom, fiscal.DefaultStartMonth)
	dec, err := h.Store.GetDeclaration(ctx, req.EmployeeID, period.Label)
	if err != nil && !errors.Is(err, payslip.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to load declaration", err)
		return nil, false
	}
	history, err := h.Store.History(ctx, req.EmployeeID, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history", err)
		return nil, false
	}

	worked := req.Worked.toDomain()
	if !worked.TotalDays().IsPositive() {
		worked = statutory.FullMonth(30)
	}

	slip, err := h.Engine.Compute(payslip.Input{
		Employee:      *emp,
		Contract:      req.Contract.toDomain(),
		Worked:        worked,
		Policy:        policyRecord.Policy,
		Declaration:   dec,
		History:       history,
		PeriodFrom:    periodFrom,
		PeriodTo:      periodTo,
		ReferenceDate: h.Now(),
		Bonus:         req.Bonus,
		Compensation:  req.Compensation,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Payslip computation failed", err)
		return nil, false
	}
	return slip, true
}

func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	slip, err := h.Store.GetPayslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Payslip", err)
		return
	}
	writeJSON(w, http.StatusOK, payslipDTO(slip))
}

func (h *Handler) ListPayslips(w http.ResponseWriter, r *http.Request) {
	slips, err := h.Store.ListPayslips(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payslips", err)
		return
	}
	dtos := make([]PayslipDTO, len(slips))
	for i, slip := range slips {
		dtos[i] = payslipDTO(slip)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetPayslipPDF(w http.ResponseWriter, r *http.Request) {
	slip, err := h.Store.GetPayslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Payslip", err)
		return
	}
	emp, err := h.Store.GetEmployee(r.Context(), slip.EmployeeID)
	if err != nil {
		writeStoreError(w, "Employee", err)
		return
	}

	pdfBytes, err := payslip.RenderPDF(slip, *emp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render PDF", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s.pdf", slip.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListPolicies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list policies", err)
		return
	}
	dtos := make([]PolicyDTO, len(records))
	for i, record := range records {
		dtos[i] = policyDTO(record)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetPolicy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Policy", err)
		return
	}
	writeJSON(w, http.StatusOK, policyDTO(*record))
}

func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	raw, err := json.Marshal(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy config", err)
		return
	}
	id, name, policy, err := h.PolicyFactory.ParsePolicy(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy config", err)
		return
	}

	record := payslip.PolicyRecord{ID: id, Name: name, Policy: policy, CreatedAt: h.Now()}
	if err := h.Store.SavePolicy(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save policy", err)
		return
	}
	writeJSON(w, http.StatusCreated, policyDTO(record))
}

// =============================================================================
// CALCULATOR HANDLERS
// =============================================================================

// ComputeTax computes slab tax for a taxable income without any payroll
// context (what-if tool for payroll admins).
func (h *Handler) ComputeTax(w http.ResponseWriter, r *http.Request) {
	var req TaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	prior := tax.PriorEmployer{Tax: req.PriorTax, Surcharge: req.PriorSurcharge, Cess: req.PriorCess}
	var result tax.Result
	switch tax.Regime(req.Regime) {
	case tax.OldRegime:
		result = tax.OldRegimeTax(req.TaxableIncome, req.Age, prior, req.TaxPaidToDate)
	case tax.NewRegime:
		result = tax.NewRegimeTax(req.TaxableIncome, req.Age, req.FiscalYear, prior, req.TaxPaidToDate)
	default:
		writeError(w, http.StatusBadRequest, "regime must be old_regime or new_regime", nil)
		return
	}

	writeJSON(w, http.StatusOK, TaxDTO{
		Total:     result.Total,
		Base:      result.Base,
		Surcharge: result.Surcharge,
		Cess:      result.Cess,
		Rebate:    result.Rebate,
		Supported: result.Supported,
	})
}

// Reconcile runs the statutory contribution reconciler directly.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := h.Store.GetPolicy(r.Context(), req.PolicyID)
	if err != nil {
		writeStoreError(w, "Policy", err)
		return
	}

	result := statutory.ReconcileContributions(statutory.ReconcileInput{
		Contract:        req.Contract.toDomain(),
		Policy:          record.Policy,
		MonthlyBasic:    req.MonthlyBasic,
		MonthlyGratuity: req.MonthlyGratuity,
	})

	writeJSON(w, http.StatusOK, ReconcileDTO{
		Applicable:          result.Applicable,
		Converged:           result.Converged,
		Iterations:          result.Iterations,
		BasicMonthly:        result.BasicMonthly,
		GratuityMonthly:     result.GratuityMonthly,
		OtherMonthly:        result.OtherAllowanceMonthly,
		ESICEmployeeMonthly: result.ESICEmployeeMonthly,
		ESICEmployerMonthly: result.ESICEmployerMonthly,
		PFEmployeeMonthly:   result.PFEmployeeMonthly,
		PFEmployerMonthly:   result.PFEmployerMonthly,
	})
}

// GetFiscalYear returns the financial year containing the query date.
func (h *Handler) GetFiscalYear(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, h.Now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	period := fiscal.PeriodFor(date, fiscal.DefaultStartMonth)
	writeJSON(w, http.StatusOK, FiscalYearDTO{
		Label: period.Label,
		Start: period.Start.Format(dateLayout),
		End:   period.End.Format(dateLayout),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func queryDate(r *http.Request, now func() time.Time) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return now(), nil
	}
	return time.Parse(dateLayout, raw)
}

func employeeDTO(e payslip.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		City:        e.City,
		DateOfBirth: e.DateOfBirth.Format(dateLayout),
		JoinDate:    e.JoinDate.Format(dateLayout),
		TDSOverride: e.TDSOverridePercent,
	}
}

func policyDTO(record payslip.PolicyRecord) PolicyDTO {
	dto := PolicyDTO{
		ID:     record.ID,
		Name:   record.Name,
		Config: factory.FromPolicy(record.ID, record.Name, record.Policy),
	}
	if !record.CreatedAt.IsZero() {
		dto.CreatedAt = record.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func payslipDTO(slip *payslip.Payslip) PayslipDTO {
	lines := make([]PayLineDTO, len(slip.Lines))
	for i, line := range slip.Lines {
		lines[i] = PayLineDTO{Code: line.Code, Name: line.Name, Amount: line.Amount, Taxable: line.Taxable}
	}
	return PayslipDTO{
		ID:                 slip.ID,
		EmployeeID:         slip.EmployeeID,
		PeriodFrom:         slip.PeriodFrom.Format(dateLayout),
		PeriodTo:           slip.PeriodTo.Format(dateLayout),
		FiscalYear:         slip.FiscalYear,
		Lines:              lines,
		Gross:              slip.Gross,
		Net:                slip.Net,
		CTC:                slip.CTC,
		TDSPercentage:      slip.TDS.Percentage,
		DeclarationMissing: slip.TDS.DeclarationMissing,
		ReconConverged:     slip.Reconciliation.Converged,
		ReconIterations:    slip.Reconciliation.Iterations,
	}
}

func writeStoreError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, payslip.ErrNotFound) {
		writeError(w, http.StatusNotFound, what+" not found", nil)
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to load "+what, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
