package compensation

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var today = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func rule(calc compensation.CalculationType) compensation.Rule {
	return compensation.Rule{
		ID:              "rule-1",
		Code:            "HRA",
		Name:            "House Rent Allowance",
		Type:            compensation.RuleTypeEarning,
		CalculationType: calc,
		IsActive:        true,
		EffectiveFrom:   date(2024, 1, 1),
	}
}

func TestResolveTerms(t *testing.T) {
	r := rule(compensation.CalculationFixed)
	r.Amount = d("1500")
	r.MaxAmount = d("2000")

	t.Run("no assignment", func(t *testing.T) {
		terms := ResolveTerms(r, nil)
		assert.True(t, d("1500").Equal(terms.Amount))
		assert.True(t, d("2000").Equal(terms.MaxAmount))
	})

	t.Run("zero override falls back to rule", func(t *testing.T) {
		terms := ResolveTerms(r, &compensation.Overrides{Amount: ptr("0")})
		assert.True(t, d("1500").Equal(terms.Amount))
	})

	t.Run("positive override wins", func(t *testing.T) {
		terms := ResolveTerms(r, &compensation.Overrides{Amount: ptr("1750"), MaxAmount: ptr("1800")})
		assert.True(t, d("1750").Equal(terms.Amount))
		assert.True(t, d("1800").Equal(terms.MaxAmount))
	})
}

func TestCalculate(t *testing.T) {
	in := compensation.Inputs{
		BaseAmount:      d("50000"),
		AttendanceHours: d("160.5"),
		OvertimeHours:   d("12.25"),
		ProductionUnits: d("40"),
	}

	tests := []struct {
		name  string
		terms compensation.Terms
		want  string
	}{
		{"fixed", compensation.Terms{CalculationType: compensation.CalculationFixed, Amount: d("1200")}, "1200"},
		{"percentage", compensation.Terms{CalculationType: compensation.CalculationPercentage, Percentage: d("12")}, "6000"},
		{"percentage clamped to max", compensation.Terms{CalculationType: compensation.CalculationPercentage, Percentage: d("30"), MaxAmount: d("10000")}, "10000"},
		{"attendance", compensation.Terms{CalculationType: compensation.CalculationAttendance, AttendanceRatePerHour: d("10")}, "1605"},
		{"overtime", compensation.Terms{CalculationType: compensation.CalculationOvertime, OvertimeRatePerHour: d("150")}, "1837.5"},
		{"production", compensation.Terms{CalculationType: compensation.CalculationProduction, ProductionRatePerUnit: d("2.5")}, "100"},
		{"custom is zero", compensation.Terms{CalculationType: compensation.CalculationCustom, Amount: d("999")}, "0"},
		{"custom raised by min", compensation.Terms{CalculationType: compensation.CalculationCustom, MinAmount: d("250")}, "250"},
		{"min below result is ignored", compensation.Terms{CalculationType: compensation.CalculationFixed, Amount: d("900"), MinAmount: d("500")}, "900"},
		{"rounded to cents", compensation.Terms{CalculationType: compensation.CalculationPercentage, Percentage: d("0.333")}, "166.5"},
		{"rounded half up", compensation.Terms{CalculationType: compensation.CalculationOvertime, OvertimeRatePerHour: d("0.333")}, "4.08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.terms, in)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestEvaluateRule_ZeroOverrideUsesRuleAmount(t *testing.T) {
	r := rule(compensation.CalculationFixed)
	r.Amount = d("2500")
	a := &compensation.Assignment{
		IsActive:      true,
		EffectiveFrom: date(2024, 1, 1),
		Overrides:     compensation.Overrides{Amount: ptr("0")},
	}

	got := EvaluateRule(r, a, compensation.Inputs{}, today)
	assert.True(t, d("2500").Equal(got), "got %s", got)
}

func TestEvaluateRule_EffectivenessGate(t *testing.T) {
	base := rule(compensation.CalculationFixed)
	base.Amount = d("100")
	active := compensation.Assignment{IsActive: true, EffectiveFrom: date(2024, 1, 1)}

	ended := date(2024, 3, 14)
	future := date(2024, 3, 16)

	tests := []struct {
		name   string
		rule   func(compensation.Rule) compensation.Rule
		assign *compensation.Assignment
		want   string
	}{
		{"default rule in window", func(r compensation.Rule) compensation.Rule { return r }, nil, "100"},
		{"inactive rule", func(r compensation.Rule) compensation.Rule { r.IsActive = false; return r }, nil, "0"},
		{"rule ended yesterday", func(r compensation.Rule) compensation.Rule { r.EffectiveTo = &ended; return r }, nil, "0"},
		{"rule starts tomorrow", func(r compensation.Rule) compensation.Rule { r.EffectiveFrom = future; return r }, nil, "0"},
		{"rule ends today", func(r compensation.Rule) compensation.Rule { to := today; r.EffectiveTo = &to; return r }, nil, "100"},
		{"active assignment", func(r compensation.Rule) compensation.Rule { return r }, &active, "100"},
		{"inactive assignment", func(r compensation.Rule) compensation.Rule { return r }, &compensation.Assignment{EffectiveFrom: date(2024, 1, 1)}, "0"},
		{"assignment ended", func(r compensation.Rule) compensation.Rule { return r }, &compensation.Assignment{IsActive: true, EffectiveFrom: date(2024, 1, 1), EffectiveTo: &ended}, "0"},
		{"assignment not started", func(r compensation.Rule) compensation.Rule { return r }, &compensation.Assignment{IsActive: true, EffectiveFrom: future}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateRule(tt.rule(base), tt.assign, compensation.Inputs{}, today)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}
