package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opspay/payroll-engine/api"
	"github.com/opspay/payroll-engine/payslip"
	memstore "github.com/opspay/payroll-engine/payslip/store"
	"github.com/opspay/payroll-engine/statutory"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type testAPI struct {
	router  http.Handler
	store   *memstore.Memory
	handler *api.Handler
}

func newTestAPI(t *testing.T, secret string) *testAPI {
	t.Helper()

	store := memstore.NewMemory()
	handler := api.NewHandler(store, payslip.NewEngine(zap.NewNop()), zap.NewNop())
	handler.Now = func() time.Time {
		return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	}

	router := api.NewRouter(handler, api.RouterOptions{
		JWTSecret:   secret,
		CORSOrigins: []string{"*"},
	})

	a := &testAPI{router: router, store: store, handler: handler}
	a.seed(t)
	return a
}

func (a *testAPI) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, a.store.SaveEmployee(ctx, payslip.Employee{
		ID:          "emp-1",
		Name:        "Asha Rao",
		Email:       "asha@example.com",
		City:        "Pune",
		DateOfBirth: time.Date(1995, time.June, 15, 0, 0, 0, 0, time.UTC),
		JoinDate:    time.Date(2020, time.January, 15, 0, 0, 0, 0, time.UTC),
	}))

	require.NoError(t, a.store.SavePolicy(ctx, payslip.PolicyRecord{
		ID:   "policy-default",
		Name: "Standard Statutory Policy",
		Policy: statutory.CompanyPolicy{
			BasicPercentage:        decimal.NewFromInt(50),
			MinBasic:               decimal.NewFromInt(15000),
			MaxBasic:               decimal.NewFromInt(30000),
			GratuityPercentage:     decimal.NewFromFloat(4.81),
			GratuityMultiplier:     decimal.NewFromInt(15),
			ESICEmployeePercentage: decimal.NewFromFloat(0.75),
			ESICEmployerPercentage: decimal.NewFromFloat(3.25),
			ESICWageLimit:          decimal.NewFromInt(21000),
			PFPercentage:           decimal.NewFromInt(12),
			PFCeilingAmount:        decimal.NewFromInt(15000),
			ProfessionalTax:        decimal.NewFromInt(200),
		},
	}))
}

func (a *testAPI) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func runRequest() api.RunPayslipRequest {
	return api.RunPayslipRequest{
		EmployeeID: "emp-1",
		PolicyID:   "policy-default",
		Contract: api.ContractDTO{
			Wage:      decimal.NewFromInt(50000),
			PF:        true,
			PFCeiling: true,
			ESIC:      true,
			Gratuity:  true,
		},
		PeriodFrom: "2025-04-01",
		PeriodTo:   "2025-04-30",
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestCreateEmployee(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/api/employees", api.CreateEmployeeRequest{
		ID:          "emp-2",
		Name:        "Ravi Kumar",
		City:        "Mumbai",
		DateOfBirth: "1990-03-01",
		JoinDate:    "2025-07-01",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/employees/emp-2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[api.EmployeeDTO](t, rec)
	assert.Equal(t, "Ravi Kumar", got.Name)
	assert.Equal(t, "1990-03-01", got.DateOfBirth)
}

func TestCreateEmployee_Validation(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/api/employees", api.CreateEmployeeRequest{
		Name: "No ID", DateOfBirth: "1990-03-01", JoinDate: "2025-07-01",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/employees", api.CreateEmployeeRequest{
		ID: "emp-3", Name: "Bad Date", DateOfBirth: "01/03/1990", JoinDate: "2025-07-01",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEmployee_NotFound(t *testing.T) {
	a := newTestAPI(t, "")
	rec := a.do(t, http.MethodGet, "/api/employees/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// POLICIES
// =============================================================================

func TestCreateAndGetPolicy(t *testing.T) {
	a := newTestAPI(t, "")

	req := api.CreatePolicyRequest{}
	req.Config.ID = "policy-contractors"
	req.Config.Name = "Contractor Policy"
	req.Config.BasicPercentage = decimal.NewFromInt(40)
	req.Config.PFPercentage = decimal.NewFromInt(12)
	req.Config.PFCeilingAmount = decimal.NewFromInt(15000)

	rec := a.do(t, http.MethodPost, "/api/policies", req, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/policies/policy-contractors", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[api.PolicyDTO](t, rec)
	assert.Equal(t, "Contractor Policy", got.Name)
	assert.True(t, got.Config.BasicPercentage.Equal(decimal.NewFromInt(40)))
}

func TestCreatePolicy_RejectsInvalidConfig(t *testing.T) {
	a := newTestAPI(t, "")

	req := api.CreatePolicyRequest{}
	req.Config.ID = "policy-bad"
	req.Config.BasicPercentage = decimal.NewFromInt(-5)

	rec := a.do(t, http.MethodPost, "/api/policies", req, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// DECLARATIONS
// =============================================================================

func TestDeclarationLifecycle(t *testing.T) {
	a := newTestAPI(t, "")
	path := "/api/employees/emp-1/declarations/2025-26"

	// Saving always produces a draft, whatever status the client sends.
	rec := a.do(t, http.MethodPut, path, api.DeclarationDTO{
		Regime:     "old_regime",
		Status:     "locked",
		Section80C: decimal.NewFromInt(150000),
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decodeJSON[api.DeclarationDTO](t, rec)
	assert.Equal(t, "draft", saved.Status)

	rec = a.do(t, http.MethodPost, path+"/lock", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	locked := decodeJSON[api.DeclarationDTO](t, rec)
	assert.Equal(t, "locked", locked.Status)

	// Locked for the year: further edits and re-locks conflict.
	rec = a.do(t, http.MethodPut, path, api.DeclarationDTO{Regime: "old_regime"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = a.do(t, http.MethodPost, path+"/lock", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSaveDeclaration_RejectsUnknownRegime(t *testing.T) {
	a := newTestAPI(t, "")
	rec := a.do(t, http.MethodPut, "/api/employees/emp-1/declarations/2025-26",
		api.DeclarationDTO{Regime: "flat_tax"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func TestComputePayslip(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/api/payslips/compute", runRequest(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeJSON[api.PayslipDTO](t, rec)
	assert.Equal(t, "2025-26", got.FiscalYear)
	assert.True(t, got.Gross.Equal(decimal.NewFromInt(48200)), "gross %s", got.Gross)
	assert.True(t, got.Net.Equal(decimal.NewFromInt(46400)), "net %s", got.Net)
	assert.True(t, got.CTC.Equal(decimal.NewFromInt(51202)), "ctc %s", got.CTC)
	assert.True(t, got.DeclarationMissing)
	assert.True(t, got.ReconConverged)

	// Dry runs leave no history behind.
	slips, err := a.store.ListPayslips(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Empty(t, slips)
}

func TestFinalizePayslip(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/api/payslips", runRequest(), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeJSON[api.PayslipDTO](t, rec)
	require.NotEmpty(t, created.ID)

	rec = a.do(t, http.MethodGet, "/api/payslips/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeJSON[api.PayslipDTO](t, rec)
	assert.True(t, fetched.Gross.Equal(created.Gross))

	rec = a.do(t, http.MethodGet, "/api/employees/emp-1/payslips", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]api.PayslipDTO](t, rec)
	assert.Len(t, list, 1)
}

func TestFiscalSummaryReflectsFinalizedPayslips(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/api/payslips", runRequest(), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/employees/emp-1/fiscal?date=2025-06-15", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decodeJSON[struct {
		FiscalYear      string          `json:"fiscal_year"`
		TaxableToDate   decimal.Decimal `json:"taxable_to_date"`
		TaxPaidToDate   decimal.Decimal `json:"tax_paid_to_date"`
		RemainingMonths int             `json:"remaining_months"`
		PayslipCount    int             `json:"payslip_count"`
	}](t, rec)

	assert.Equal(t, "2025-26", summary.FiscalYear)
	assert.Equal(t, 1, summary.PayslipCount)
	// BASIC + HRA + Other of the April run.
	assert.True(t, summary.TaxableToDate.Equal(decimal.NewFromInt(48200)), "taxable %s", summary.TaxableToDate)
	assert.True(t, summary.TaxPaidToDate.IsZero())
	assert.Equal(t, 9, summary.RemainingMonths)
}

func TestPayslipPDFDownload(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/api/payslips", runRequest(), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeJSON[api.PayslipDTO](t, rec)

	rec = a.do(t, http.MethodGet, "/api/payslips/"+created.ID+"/pdf", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), created.ID)
	assert.NotZero(t, rec.Body.Len())
}

func TestRunPayslip_Validation(t *testing.T) {
	a := newTestAPI(t, "")

	req := runRequest()
	req.PeriodTo = "2025-03-01"
	rec := a.do(t, http.MethodPost, "/api/payslips/compute", req, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = runRequest()
	req.EmployeeID = "ghost"
	rec = a.do(t, http.MethodPost, "/api/payslips/compute", req, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = runRequest()
	req.PolicyID = "ghost"
	rec = a.do(t, http.MethodPost, "/api/payslips/compute", req, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// CALCULATORS
// =============================================================================

func TestComputeTaxEndpoint(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/api/tax", api.TaxRequest{
		TaxableIncome: decimal.NewFromInt(6000000),
		Age:           30,
		Regime:        "old_regime",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeJSON[api.TaxDTO](t, rec)
	require.True(t, got.Supported)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(1844700)), "total %s", got.Total)
	assert.True(t, got.Surcharge.Equal(decimal.NewFromInt(161250)))

	rec = a.do(t, http.MethodPost, "/api/tax", api.TaxRequest{
		TaxableIncome: decimal.NewFromInt(1000000),
		Regime:        "head_tax",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReconcileEndpoint(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodPost, "/api/reconcile", api.ReconcileRequest{
		PolicyID: "policy-default",
		Contract: api.ContractDTO{
			Wage:      decimal.NewFromInt(50000),
			PF:        true,
			PFCeiling: true,
			ESIC:      true,
			Gratuity:  true,
		},
		MonthlyBasic:    decimal.NewFromInt(25000),
		MonthlyGratuity: decimal.NewFromInt(1202),
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeJSON[api.ReconcileDTO](t, rec)
	require.True(t, got.Applicable)
	assert.True(t, got.Converged)
	assert.True(t, got.PFEmployerMonthly.Equal(decimal.NewFromInt(1800)), "pf %s", got.PFEmployerMonthly)
	assert.True(t, got.OtherMonthly.Equal(decimal.NewFromInt(21998)), "other %s", got.OtherMonthly)
	assert.True(t, got.ESICEmployerMonthly.IsZero())
}

func TestFiscalYearEndpoint(t *testing.T) {
	a := newTestAPI(t, "")

	rec := a.do(t, http.MethodGet, "/api/fiscal/year?date=2025-03-15", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[api.FiscalYearDTO](t, rec)
	assert.Equal(t, "2024-25", got.Label)
	assert.Equal(t, "2024-04-01", got.Start)
	assert.Equal(t, "2025-03-31", got.End)

	// No date: the handler clock decides.
	rec = a.do(t, http.MethodGet, "/api/fiscal/year", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeJSON[api.FiscalYearDTO](t, rec)
	assert.Equal(t, "2025-26", got.Label)
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func TestAuthGatesMutatingRoutes(t *testing.T) {
	const secret = "test-secret"
	a := newTestAPI(t, secret)

	// Reads stay open.
	rec := a.do(t, http.MethodGet, "/api/employees", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Mutations without a token are rejected.
	rec = a.do(t, http.MethodPost, "/api/payslips", runRequest(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := api.GenerateToken(secret, api.Claims{UserID: "ops-1", Role: "admin"}, time.Hour)
	require.NoError(t, err)

	rec = a.do(t, http.MethodPost, "/api/payslips", runRequest(), token)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// A token signed with another secret fails.
	forged, err := api.GenerateToken("other-secret", api.Claims{UserID: "x"}, time.Hour)
	require.NoError(t, err)
	rec = a.do(t, http.MethodPost, "/api/payslips", runRequest(), forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := api.GenerateToken("s3cret", api.Claims{UserID: "ops-1", Role: "admin"}, time.Hour)
	require.NoError(t, err)

	claims, err := api.ParseToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "ops-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = api.ParseToken("wrong", token)
	assert.Error(t, err)
}
