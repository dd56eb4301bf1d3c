package payslip_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opspay/payroll-engine/payslip"
	"github.com/opspay/payroll-engine/statutory"
	"github.com/opspay/payroll-engine/tax"
)

func d(i int64) decimal.Decimal { return decimal.NewFromInt(i) }

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func testEmployee() payslip.Employee {
	return payslip.Employee{
		ID:          "emp-1",
		Name:        "Asha Rao",
		Email:       "asha@example.com",
		City:        "Pune",
		DateOfBirth: date(1995, time.June, 15),
		JoinDate:    date(2020, time.January, 15),
	}
}

func testPolicy() statutory.CompanyPolicy {
	return statutory.CompanyPolicy{
		BasicPercentage:        d(50),
		MinBasic:               d(15000),
		MaxBasic:               d(30000),
		GratuityPercentage:     decimal.NewFromFloat(4.81),
		GratuityMultiplier:     d(15),
		ESICEmployeePercentage: decimal.NewFromFloat(0.75),
		ESICEmployerPercentage: decimal.NewFromFloat(3.25),
		ESICWageLimit:          d(21000),
		PFPercentage:           d(12),
		PFCeilingAmount:        d(15000),
		ProfessionalTax:        d(200),
	}
}

func testInput() payslip.Input {
	return payslip.Input{
		Employee: testEmployee(),
		Contract: statutory.ContractTerms{
			Wage:      d(50000),
			PF:        true,
			PFCeiling: true,
			ESIC:      true,
			Gratuity:  true,
		},
		Worked:        statutory.FullMonth(30),
		Policy:        testPolicy(),
		PeriodFrom:    date(2025, time.April, 1),
		PeriodTo:      date(2025, time.April, 30),
		ReferenceDate: date(2025, time.April, 30),
	}
}

// =============================================================================
// FULL PIPELINE
// =============================================================================

func TestCompute_FullPipeline(t *testing.T) {
	// GIVEN: a 50000/month all-statutory contract, no declaration
	// WHEN: April 2025 is computed
	// THEN: every line carries the reconciled figure and the fallback
	//       withholding rebates to zero at this income
	engine := payslip.NewEngine(nil)

	slip, err := engine.Compute(testInput())
	require.NoError(t, err)

	assert.NotEmpty(t, slip.ID)
	assert.Equal(t, "emp-1", slip.EmployeeID)
	assert.Equal(t, "2025-26", slip.FiscalYear)

	assert.True(t, slip.Line("BASIC").Equal(d(25000)), "basic %s", slip.Line("BASIC"))
	assert.True(t, slip.Line("GRATUITY").Equal(d(1202)))
	assert.True(t, slip.Line("ER_DED").Equal(d(1800)), "er %s", slip.Line("ER_DED"))
	assert.True(t, slip.Line("EE_DED").Equal(d(1800)))
	assert.True(t, slip.Line("PF_EMP").Equal(d(1800)))
	assert.True(t, slip.Line("HRA").Equal(d(10000)), "hra %s", slip.Line("HRA"))
	assert.True(t, slip.Line("Other").Equal(d(13200)), "other %s", slip.Line("Other"))
	assert.True(t, slip.Line("PT").Equal(d(200)))
	assert.True(t, slip.Line("IT_DED").IsZero(), "it %s", slip.Line("IT_DED"))

	assert.True(t, slip.Gross.Equal(d(48200)), "gross %s", slip.Gross)
	assert.True(t, slip.Net.Equal(d(46400)), "net %s", slip.Net)
	assert.True(t, slip.CTC.Equal(d(51202)), "ctc %s", slip.CTC)

	assert.True(t, slip.Reconciliation.Converged)
	assert.True(t, slip.TDS.DeclarationMissing)
	assert.True(t, slip.TDS.Supported)
}

func TestCompute_OldRegimeOverrideWithholding(t *testing.T) {
	// A locked old-regime declaration with a pinned percentage: the
	// income-tax line is the override applied to the monthly gross.
	in := testInput()
	in.Employee.TDSOverridePercent = "10%"
	in.Declaration = &tax.ITDeclaration{
		Regime: tax.OldRegime,
		Status: tax.DeclarationLocked,
	}

	slip, err := payslip.NewEngine(nil).Compute(in)
	require.NoError(t, err)

	assert.False(t, slip.TDS.DeclarationMissing)
	assert.True(t, slip.Line("IT_DED").Equal(d(4820)), "it %s", slip.Line("IT_DED"))
	assert.True(t, slip.Net.Equal(d(41580)), "net %s", slip.Net)
}

func TestCompute_BonusJoinsGrossAndProjection(t *testing.T) {
	in := testInput()
	in.Bonus = d(2000)

	slip, err := payslip.NewEngine(nil).Compute(in)
	require.NoError(t, err)

	assert.True(t, slip.Line("BONUS").Equal(d(2000)))
	assert.True(t, slip.Gross.Equal(d(50200)), "gross %s", slip.Gross)
}

func TestCompute_BelowFloorSkipsContributions(t *testing.T) {
	in := testInput()
	in.Contract.Wage = d(500)
	in.Policy.MinBasic = decimal.Zero
	in.Policy.MaxBasic = decimal.Zero

	slip, err := payslip.NewEngine(nil).Compute(in)
	require.NoError(t, err)

	assert.False(t, slip.Reconciliation.Applicable)
	assert.True(t, slip.Line("ER_DED").IsZero())
	assert.True(t, slip.Line("EE_DED").IsZero())
	assert.True(t, slip.Line("PF_EMP").IsZero())
}

func TestCompute_ValidationBoundary(t *testing.T) {
	engine := payslip.NewEngine(nil)

	in := testInput()
	in.Policy.PFPercentage = d(-1)
	_, err := engine.Compute(in)
	assert.ErrorIs(t, err, statutory.ErrInvalidPolicy)

	in = testInput()
	in.Contract.Wage = d(-1)
	_, err = engine.Compute(in)
	assert.ErrorIs(t, err, statutory.ErrInvalidContract)

	in = testInput()
	in.Worked = statutory.WorkedDays{}
	_, err = engine.Compute(in)
	assert.ErrorIs(t, err, statutory.ErrInvalidWorkedDays)
}

func TestPayslipRecord(t *testing.T) {
	slip, err := payslip.NewEngine(nil).Compute(testInput())
	require.NoError(t, err)

	record := slip.Record()
	assert.Equal(t, slip.PeriodFrom, record.DateFrom)
	assert.Equal(t, slip.PeriodTo, record.DateTo)
	assert.Len(t, record.Lines, len(slip.Lines))

	// Earnings lines are taxable; statutory and tax lines are not.
	for _, line := range record.Lines {
		switch line.Code {
		case "BASIC", "HRA", "Other", "BONUS", "COMP":
			assert.True(t, line.Taxable, "line %s", line.Code)
		default:
			assert.False(t, line.Taxable, "line %s", line.Code)
		}
	}
}

// =============================================================================
// EMPLOYEE SNAPSHOT
// =============================================================================

func TestEmployeeAgeAt(t *testing.T) {
	emp := testEmployee() // born 1995-06-15

	assert.Equal(t, 29, emp.AgeAt(date(2025, time.April, 30)))
	assert.Equal(t, 30, emp.AgeAt(date(2025, time.June, 15)))
	assert.Equal(t, 29, emp.AgeAt(date(2025, time.June, 14)))
}

func TestEmployeeTenureAt(t *testing.T) {
	emp := testEmployee() // joined 2020-01-15

	assert.Equal(t, statutory.Tenure{Years: 5, Months: 3}, emp.TenureAt(date(2025, time.April, 30)))
	assert.Equal(t, statutory.Tenure{Years: 4, Months: 11}, emp.TenureAt(date(2025, time.January, 10)))
	assert.Equal(t, statutory.Tenure{}, emp.TenureAt(date(2019, time.June, 1)))
}
