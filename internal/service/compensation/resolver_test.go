package compensation

import (
	"context"
	"testing"

	"github.com/bxcodec/faker/v4"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyID = "0190f3a0-0000-7000-8000-000000000001"

var march = clock.DateRange{Start: date(2024, 3, 1), End: date(2024, 3, 31)}

type fixture struct {
	store       *memory.Store
	rules       compensation.RuleRepository
	assignments compensation.AssignmentRepository
	employees   employee.EmployeeRepository
}

func newFixture() *fixture {
	store := memory.NewStore()
	return &fixture{
		store:       store,
		rules:       memory.NewRuleRepository(store),
		assignments: memory.NewAssignmentRepository(store),
		employees:   memory.NewEmployeeRepository(store),
	}
}

func (f *fixture) employee(t *testing.T) employee.Employee {
	t.Helper()
	return f.store.AddEmployee(employee.Employee{
		CompanyID:        companyID,
		EmployeeCode:     faker.Username(),
		FullName:         faker.Name(),
		EmploymentStatus: employee.EmploymentStatusActive,
		IsActive:         true,
	})
}

func (f *fixture) rule(t *testing.T, code string, typ compensation.RuleType, order int, amount string) compensation.Rule {
	t.Helper()
	r, err := f.rules.Create(context.Background(), compensation.Rule{
		CompanyID:       companyID,
		Code:            code,
		Name:            code,
		Type:            typ,
		CalculationType: compensation.CalculationFixed,
		Amount:          d(amount),
		PercentageBase:  compensation.PercentageBaseBasic,
		DisplayOrder:    order,
		IsActive:        true,
		EffectiveFrom:   date(2024, 1, 1),
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) assign(t *testing.T, emp employee.Employee, r compensation.Rule, amount *decimal.Decimal) compensation.Assignment {
	t.Helper()
	a, err := f.assignments.Create(context.Background(), compensation.Assignment{
		CompanyID:     companyID,
		EmployeeID:    emp.ID,
		RuleID:        r.ID,
		Overrides:     compensation.Overrides{Amount: amount},
		EffectiveFrom: date(2024, 1, 1),
		IsActive:      true,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) resolver() compensation.RuleResolver {
	return NewRuleResolver(f.rules, f.assignments, clock.Fixed(today))
}

func TestSelectRules(t *testing.T) {
	hra := compensation.Rule{ID: "r1", Code: "HRA", DisplayOrder: 2, IsActive: true}
	ta := compensation.Rule{ID: "r2", Code: "TA", DisplayOrder: 1, IsActive: true}
	ma := compensation.Rule{ID: "r3", Code: "MA", DisplayOrder: 1, IsActive: false}

	t.Run("defaults when no assignment", func(t *testing.T) {
		got := SelectRules(nil, []compensation.Rule{hra, ta, ma})
		require.Len(t, got, 2)
		assert.Equal(t, "TA", got[0].Rule.Code)
		assert.Equal(t, "HRA", got[1].Rule.Code)
		assert.Nil(t, got[0].Assignment)
	})

	t.Run("assignments replace every default", func(t *testing.T) {
		a := compensation.Assignment{ID: "a1", RuleID: hra.ID, Rule: &hra}
		got := SelectRules([]compensation.Assignment{a}, []compensation.Rule{hra, ta})
		require.Len(t, got, 1)
		assert.Equal(t, "HRA", got[0].Rule.Code)
		require.NotNil(t, got[0].Assignment)
		assert.Equal(t, "a1", got[0].Assignment.ID)
	})
}

func TestResolveLines_FallbackIsAllOrNothingPerType(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	hra := f.rule(t, "HRA", compensation.RuleTypeEarning, 2, "1000")
	f.rule(t, "TA", compensation.RuleTypeEarning, 1, "300")
	f.rule(t, "PF", compensation.RuleTypeDeduction, 1, "200")

	assigned := f.employee(t)
	f.assign(t, assigned, hra, ptr("1400"))
	unassigned := f.employee(t)

	lines, err := f.resolver().ResolveLines(ctx, companyID, assigned.ID, compensation.RuleTypeEarning, march, compensation.Inputs{})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "HRA", lines[0].Code)
	assert.True(t, d("1400").Equal(lines[0].Amount))
	assert.NotNil(t, lines[0].AssignmentID)

	lines, err = f.resolver().ResolveLines(ctx, companyID, unassigned.ID, compensation.RuleTypeEarning, march, compensation.Inputs{})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "TA", lines[0].Code)
	assert.Equal(t, "HRA", lines[1].Code)
	assert.Nil(t, lines[0].AssignmentID)

	// deductions fall back independently of earnings
	lines, err = f.resolver().ResolveLines(ctx, companyID, assigned.ID, compensation.RuleTypeDeduction, march, compensation.Inputs{})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "PF", lines[0].Code)
}

func TestResolveLines_AssignmentOutsidePeriodIsIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	hra := f.rule(t, "HRA", compensation.RuleTypeEarning, 1, "1000")
	emp := f.employee(t)

	ended := date(2024, 2, 29)
	_, err := f.assignments.Create(ctx, compensation.Assignment{
		CompanyID:     companyID,
		EmployeeID:    emp.ID,
		RuleID:        hra.ID,
		Overrides:     compensation.Overrides{Amount: ptr("5000")},
		EffectiveFrom: date(2024, 1, 1),
		EffectiveTo:   &ended,
		IsActive:      true,
	})
	require.NoError(t, err)

	lines, err := f.resolver().ResolveLines(ctx, companyID, emp.ID, compensation.RuleTypeEarning, march, compensation.Inputs{})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].AssignmentID)
	assert.True(t, d("1000").Equal(lines[0].Amount))
}

func TestResolveLines_DefaultOutsideItsWindowIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.rule(t, "HRA", compensation.RuleTypeEarning, 1, "1000")
	expired := date(2024, 2, 29)
	_, err := f.rules.Create(ctx, compensation.Rule{
		CompanyID:       companyID,
		Code:            "TA",
		Name:            "TA",
		Type:            compensation.RuleTypeEarning,
		CalculationType: compensation.CalculationFixed,
		Amount:          d("300"),
		PercentageBase:  compensation.PercentageBaseBasic,
		DisplayOrder:    2,
		IsActive:        true,
		EffectiveFrom:   date(2024, 1, 1),
		EffectiveTo:     &expired,
	})
	require.NoError(t, err)
	emp := f.employee(t)

	lines, err := f.resolver().ResolveLines(ctx, companyID, emp.ID, compensation.RuleTypeEarning, march, compensation.Inputs{})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "HRA", lines[0].Code)
	assert.True(t, d("1000").Equal(lines[0].Amount))
}

func TestResolveBasicPay(t *testing.T) {
	ctx := context.Background()

	t.Run("assignment amount", func(t *testing.T) {
		f := newFixture()
		basic := f.rule(t, compensation.CodeBasic, compensation.RuleTypeEarning, 0, "5000")
		emp := f.employee(t)
		f.assign(t, emp, basic, ptr("8000"))

		amount, ok, err := f.resolver().ResolveBasicPay(ctx, companyID, emp.ID, march)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, d("8000").Equal(amount))
	})

	t.Run("assignment without amount uses rule", func(t *testing.T) {
		f := newFixture()
		basic := f.rule(t, compensation.CodeBasic, compensation.RuleTypeEarning, 0, "5000")
		emp := f.employee(t)
		f.assign(t, emp, basic, nil)

		amount, ok, err := f.resolver().ResolveBasicPay(ctx, companyID, emp.ID, march)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, d("5000").Equal(amount))
	})

	t.Run("nothing configured", func(t *testing.T) {
		f := newFixture()
		emp := f.employee(t)

		_, ok, err := f.resolver().ResolveBasicPay(ctx, companyID, emp.ID, march)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
