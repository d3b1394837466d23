package payroll

import (
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(code string, typ compensation.RuleType, amount string) compensation.Line {
	return compensation.Line{Code: code, Name: code, Type: typ, CalculationType: compensation.CalculationFixed, Amount: d(amount)}
}

func TestBuildPayslip_BasicOnlyFromBasicLine(t *testing.T) {
	p := BuildPayslip(
		[]compensation.Line{line("HRA", compensation.RuleTypeEarning, "500")},
		nil,
		attendance.Summary{},
	)

	assert.True(t, p.BasicSalary.IsZero())
	assert.True(t, d("500").Equal(p.Allowances))
	assert.True(t, d("500").Equal(p.GrossSalary))
	assert.True(t, d("500").Equal(p.NetSalary))
	require.Len(t, p.Components, 1)
	assert.Equal(t, "HRA", p.Components[0].Code)
}

func TestBuildPayslip_Buckets(t *testing.T) {
	earnings := []compensation.Line{
		line("BASIC", compensation.RuleTypeEarning, "10000"),
		line("HRA", compensation.RuleTypeEarning, "2000"),
		line("TA", compensation.RuleTypeEarning, "300.50"),
		line("OT", compensation.RuleTypeEarning, "450"),
		line("SHIFT", compensation.RuleTypeEarning, "100"),
	}
	deductions := []compensation.Line{
		line("PF", compensation.RuleTypeDeduction, "1200"),
		line("TDS", compensation.RuleTypeDeduction, "800"),
		line("TAX", compensation.RuleTypeDeduction, "200"),
		line("LATE", compensation.RuleTypeDeduction, "75"),
		line("LOAN", compensation.RuleTypeDeduction, "1000"),
	}
	att := attendance.Summary{AttendedDays: 20, LateDays: 3, AbsentDays: 2, WorkedHours: d("168"), OvertimeHours: d("4.5")}

	p := BuildPayslip(earnings, deductions, att)

	assert.True(t, d("10000").Equal(p.BasicSalary))
	assert.True(t, d("2300.50").Equal(p.Allowances))
	assert.True(t, d("450").Equal(p.OvertimePay))
	assert.True(t, p.Bonus.IsZero())
	assert.True(t, d("100").Equal(p.OtherEarnings))
	assert.True(t, d("12850.50").Equal(p.GrossSalary))

	assert.True(t, d("1200").Equal(p.ProvidentFund))
	assert.True(t, d("1000").Equal(p.TaxDeduction))
	assert.True(t, d("75").Equal(p.LateAttendanceDeduction))
	assert.True(t, d("1000").Equal(p.OtherDeductions))
	assert.True(t, d("3275").Equal(p.TotalDeductions))
	assert.True(t, d("9575.50").Equal(p.NetSalary))

	assert.Equal(t, 20, p.AttendedDays)
	assert.Equal(t, 3, p.LateDays)
	assert.Equal(t, 2, p.AbsentDays)
	assert.True(t, d("4.5").Equal(p.OvertimeHours))

	require.Len(t, p.Components, 10)
	assert.Equal(t, compensation.RuleTypeEarning, p.Components[4].ComponentType)
	assert.Equal(t, 4, p.Components[4].DisplayOrder)
	assert.Equal(t, compensation.RuleTypeDeduction, p.Components[5].ComponentType)
	assert.Equal(t, 0, p.Components[5].DisplayOrder)
}

func TestBuildPayslip_NegativeNet(t *testing.T) {
	p := BuildPayslip(
		[]compensation.Line{line("BASIC", compensation.RuleTypeEarning, "1000")},
		[]compensation.Line{line("LOAN", compensation.RuleTypeDeduction, "1500")},
		attendance.Summary{},
	)
	assert.True(t, d("-500").Equal(p.NetSalary))
}

func TestBuildPayslip_UnlistedCodesAreOtherEarnings(t *testing.T) {
	p := BuildPayslip(
		[]compensation.Line{
			line("BONUS", compensation.RuleTypeEarning, "700"),
			line("OVERTIME", compensation.RuleTypeEarning, "300"),
			line("OT", compensation.RuleTypeEarning, "150"),
		},
		nil,
		attendance.Summary{},
	)

	assert.True(t, p.Bonus.IsZero())
	assert.True(t, d("150").Equal(p.OvertimePay))
	assert.True(t, d("1000").Equal(p.OtherEarnings))
	assert.True(t, d("1150").Equal(p.GrossSalary))
}
