package compensation

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

type RuleType string

const (
	RuleTypeEarning   RuleType = "earning"
	RuleTypeDeduction RuleType = "deduction"
)

var RuleTypeValues = []string{string(RuleTypeEarning), string(RuleTypeDeduction)}

type CalculationType string

const (
	CalculationFixed      CalculationType = "fixed"
	CalculationPercentage CalculationType = "percentage"
	CalculationAttendance CalculationType = "attendance"
	CalculationOvertime   CalculationType = "overtime"
	CalculationProduction CalculationType = "production"
	CalculationCustom     CalculationType = "custom"
)

var CalculationTypeValues = []string{
	string(CalculationFixed),
	string(CalculationPercentage),
	string(CalculationAttendance),
	string(CalculationOvertime),
	string(CalculationProduction),
	string(CalculationCustom),
}

type PercentageBase string

const (
	PercentageBaseBasic PercentageBase = "basic"
	PercentageBaseGross PercentageBase = "gross"
)

// CodeBasic identifies the rule that carries an employee's basic pay.
const CodeBasic = "BASIC"

// Rule is an organization-wide payroll formula. It is the default for every employee that has
// no assignment of the same type.
type Rule struct {
	ID                    string
	CompanyID             string
	Code                  string
	Name                  string
	ShortName             *string
	Type                  RuleType
	CalculationType       CalculationType
	Amount                decimal.Decimal
	Percentage            decimal.Decimal
	PercentageBase        PercentageBase
	AttendanceRatePerHour decimal.Decimal
	OvertimeRatePerHour   decimal.Decimal
	ProductionRatePerUnit decimal.Decimal
	MinAmount             decimal.Decimal
	MaxAmount             decimal.Decimal
	IsTaxable             bool
	ShowInPayslip         bool
	DisplayOrder          int
	IsActive              bool
	EffectiveFrom         time.Time
	EffectiveTo           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsEffectiveOn reports whether the rule is active and its window includes date.
func (r Rule) IsEffectiveOn(date time.Time) bool {
	if !r.IsActive || r.EffectiveFrom.After(date) {
		return false
	}
	return r.EffectiveTo == nil || !r.EffectiveTo.Before(date)
}

// Overrides are the per-employee replacements for a rule's numbers. A nil field means the
// rule's own value applies.
type Overrides struct {
	Amount                *decimal.Decimal
	Percentage            *decimal.Decimal
	AttendanceRatePerHour *decimal.Decimal
	OvertimeRatePerHour   *decimal.Decimal
	ProductionRatePerUnit *decimal.Decimal
	MinAmount             *decimal.Decimal
	MaxAmount             *decimal.Decimal
}

// Normalize drops every override that is not strictly positive, so "0" can never be confused
// with "use the default".
func (o Overrides) Normalize() Overrides {
	keep := func(v *decimal.Decimal) *decimal.Decimal {
		if v == nil || !v.IsPositive() {
			return nil
		}
		c := *v
		return &c
	}
	return Overrides{
		Amount:                keep(o.Amount),
		Percentage:            keep(o.Percentage),
		AttendanceRatePerHour: keep(o.AttendanceRatePerHour),
		OvertimeRatePerHour:   keep(o.OvertimeRatePerHour),
		ProductionRatePerUnit: keep(o.ProductionRatePerUnit),
		MinAmount:             keep(o.MinAmount),
		MaxAmount:             keep(o.MaxAmount),
	}
}

// Assignment attaches a rule to one employee for an effective window, optionally overriding
// its numbers.
type Assignment struct {
	ID            string
	CompanyID     string
	EmployeeID    string
	RuleID        string
	Overrides     Overrides
	EffectiveFrom time.Time
	EffectiveTo   *time.Time // nil = open-ended
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Rule is populated by listing queries.
	Rule *Rule
}

func (a Assignment) IsEffectiveOn(date time.Time) bool {
	if !a.IsActive || a.EffectiveFrom.After(date) {
		return false
	}
	return a.EffectiveTo == nil || !a.EffectiveTo.Before(date)
}

// Overlaps reports whether both windows share at least one day.
func (a Assignment) Overlaps(other Assignment) bool {
	return clock.IntervalsOverlap(a.EffectiveFrom, a.EffectiveTo, other.EffectiveFrom, other.EffectiveTo)
}

// Inputs is the numeric context a rule is evaluated against.
type Inputs struct {
	BaseAmount      decimal.Decimal
	AttendanceHours decimal.Decimal
	OvertimeHours   decimal.Decimal
	ProductionUnits decimal.Decimal
}

// Terms are a rule's numbers after overrides have been applied.
type Terms struct {
	CalculationType       CalculationType
	Amount                decimal.Decimal
	Percentage            decimal.Decimal
	AttendanceRatePerHour decimal.Decimal
	OvertimeRatePerHour   decimal.Decimal
	ProductionRatePerUnit decimal.Decimal
	MinAmount             decimal.Decimal
	MaxAmount             decimal.Decimal
}

// Line is one evaluated rule for one employee.
type Line struct {
	RuleID          *string
	AssignmentID    *string
	Code            string
	Name            string
	Type            RuleType
	CalculationType CalculationType
	DisplayOrder    int
	Amount          decimal.Decimal
}
