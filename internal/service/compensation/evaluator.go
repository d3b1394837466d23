package compensation

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ResolveTerms merges an assignment's overrides over the rule's own values. Only overrides
// greater than zero take effect; a nil o yields the rule's values unchanged.
func ResolveTerms(rule compensation.Rule, o *compensation.Overrides) compensation.Terms {
	terms := compensation.Terms{
		CalculationType:       rule.CalculationType,
		Amount:                rule.Amount,
		Percentage:            rule.Percentage,
		AttendanceRatePerHour: rule.AttendanceRatePerHour,
		OvertimeRatePerHour:   rule.OvertimeRatePerHour,
		ProductionRatePerUnit: rule.ProductionRatePerUnit,
		MinAmount:             rule.MinAmount,
		MaxAmount:             rule.MaxAmount,
	}
	if o == nil {
		return terms
	}

	pick := func(override *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
		if override != nil && override.IsPositive() {
			return *override
		}
		return fallback
	}
	terms.Amount = pick(o.Amount, terms.Amount)
	terms.Percentage = pick(o.Percentage, terms.Percentage)
	terms.AttendanceRatePerHour = pick(o.AttendanceRatePerHour, terms.AttendanceRatePerHour)
	terms.OvertimeRatePerHour = pick(o.OvertimeRatePerHour, terms.OvertimeRatePerHour)
	terms.ProductionRatePerUnit = pick(o.ProductionRatePerUnit, terms.ProductionRatePerUnit)
	terms.MinAmount = pick(o.MinAmount, terms.MinAmount)
	terms.MaxAmount = pick(o.MaxAmount, terms.MaxAmount)
	return terms
}

// Calculate applies the terms to the inputs, clamps the result into [min, max] where those
// bounds are set and rounds it to two decimal places.
func Calculate(terms compensation.Terms, in compensation.Inputs) decimal.Decimal {
	var amount decimal.Decimal

	switch terms.CalculationType {
	case compensation.CalculationFixed:
		amount = terms.Amount
	case compensation.CalculationPercentage:
		amount = in.BaseAmount.Mul(terms.Percentage).Div(hundred)
	case compensation.CalculationAttendance:
		amount = terms.AttendanceRatePerHour.Mul(in.AttendanceHours)
	case compensation.CalculationOvertime:
		amount = terms.OvertimeRatePerHour.Mul(in.OvertimeHours)
	case compensation.CalculationProduction:
		amount = terms.ProductionRatePerUnit.Mul(in.ProductionUnits)
	default:
		// custom formulas are not evaluated generically
		amount = decimal.Zero
	}

	if terms.MinAmount.IsPositive() {
		amount = decimal.Max(amount, terms.MinAmount)
	}
	if terms.MaxAmount.IsPositive() {
		amount = decimal.Min(amount, terms.MaxAmount)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2)
}

// IsEffective is the gate every rule passes before it is calculated. The rule must be effective
// on today and, when a is given, so must the assignment.
func IsEffective(rule compensation.Rule, a *compensation.Assignment, today time.Time) bool {
	if !rule.IsEffectiveOn(today) {
		return false
	}
	return a == nil || a.IsEffectiveOn(today)
}

// EvaluateRule returns the amount rule (optionally overridden by a) produces for in, or zero when
// the pair is not effective on today.
func EvaluateRule(rule compensation.Rule, a *compensation.Assignment, in compensation.Inputs, today time.Time) decimal.Decimal {
	if !IsEffective(rule, a, today) {
		return decimal.Zero
	}
	var overrides *compensation.Overrides
	if a != nil {
		overrides = &a.Overrides
	}
	return Calculate(ResolveTerms(rule, overrides), in)
}
