package compensation

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RULE DTOs ==========

type CreateRuleRequest struct {
	Code                  string           `json:"code"`
	Name                  string           `json:"name"`
	ShortName             *string          `json:"short_name,omitempty"`
	Type                  string           `json:"type"`
	CalculationType       string           `json:"calculation_type"`
	Amount                *decimal.Decimal `json:"amount,omitempty"`
	Percentage            *decimal.Decimal `json:"percentage,omitempty"`
	PercentageBase        string           `json:"percentage_base,omitempty"`
	AttendanceRatePerHour *decimal.Decimal `json:"attendance_rate_per_hour,omitempty"`
	OvertimeRatePerHour   *decimal.Decimal `json:"overtime_rate_per_hour,omitempty"`
	ProductionRatePerUnit *decimal.Decimal `json:"production_rate_per_unit,omitempty"`
	MinAmount             *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount             *decimal.Decimal `json:"max_amount,omitempty"`
	IsTaxable             *bool            `json:"is_taxable,omitempty"`
	ShowInPayslip         *bool            `json:"show_in_payslip,omitempty"`
	DisplayOrder          int              `json:"display_order"`
	EffectiveFrom         string           `json:"effective_from"`
	EffectiveTo           *string          `json:"effective_to,omitempty"`
}

// ToRule converts the request into a Rule. today is used when effective_from is omitted.
func (r *CreateRuleRequest) ToRule(companyID string, today time.Time) (Rule, error) {
	var errs validator.ValidationErrors

	rule := Rule{
		CompanyID:             companyID,
		Code:                  strings.ToUpper(strings.TrimSpace(r.Code)),
		Name:                  strings.TrimSpace(r.Name),
		ShortName:             r.ShortName,
		Type:                  RuleType(r.Type),
		CalculationType:       CalculationType(r.CalculationType),
		Amount:                valueOrZero(r.Amount),
		Percentage:            valueOrZero(r.Percentage),
		PercentageBase:        PercentageBase(r.PercentageBase),
		AttendanceRatePerHour: valueOrZero(r.AttendanceRatePerHour),
		OvertimeRatePerHour:   valueOrZero(r.OvertimeRatePerHour),
		ProductionRatePerUnit: valueOrZero(r.ProductionRatePerUnit),
		MinAmount:             valueOrZero(r.MinAmount),
		MaxAmount:             valueOrZero(r.MaxAmount),
		IsTaxable:             r.IsTaxable == nil || *r.IsTaxable,
		ShowInPayslip:         r.ShowInPayslip == nil || *r.ShowInPayslip,
		DisplayOrder:          r.DisplayOrder,
		IsActive:              true,
		EffectiveFrom:         today,
	}
	if rule.CalculationType == "" {
		rule.CalculationType = CalculationFixed
	}
	if rule.PercentageBase == "" {
		rule.PercentageBase = PercentageBaseBasic
	}

	if r.EffectiveFrom != "" {
		d, ok := validator.IsValidDate(r.EffectiveFrom)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "effective_from must be in YYYY-MM-DD format"})
		}
		rule.EffectiveFrom = d
	}
	if r.EffectiveTo != nil && *r.EffectiveTo != "" {
		d, ok := validator.IsValidDate(*r.EffectiveTo)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must be in YYYY-MM-DD format"})
		}
		rule.EffectiveTo = &d
	}

	if len(errs) > 0 {
		return Rule{}, errs
	}
	return rule, rule.Validate()
}

type UpdateRuleRequest struct {
	ID                    string           `json:"-"`
	Name                  *string          `json:"name,omitempty"`
	ShortName             *string          `json:"short_name,omitempty"`
	CalculationType       *string          `json:"calculation_type,omitempty"`
	Amount                *decimal.Decimal `json:"amount,omitempty"`
	Percentage            *decimal.Decimal `json:"percentage,omitempty"`
	PercentageBase        *string          `json:"percentage_base,omitempty"`
	AttendanceRatePerHour *decimal.Decimal `json:"attendance_rate_per_hour,omitempty"`
	OvertimeRatePerHour   *decimal.Decimal `json:"overtime_rate_per_hour,omitempty"`
	ProductionRatePerUnit *decimal.Decimal `json:"production_rate_per_unit,omitempty"`
	MinAmount             *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount             *decimal.Decimal `json:"max_amount,omitempty"`
	IsTaxable             *bool            `json:"is_taxable,omitempty"`
	ShowInPayslip         *bool            `json:"show_in_payslip,omitempty"`
	DisplayOrder          *int             `json:"display_order,omitempty"`
	IsActive              *bool            `json:"is_active,omitempty"`
	EffectiveFrom         *string          `json:"effective_from,omitempty"`
	EffectiveTo           *string          `json:"effective_to,omitempty"`
}

// Apply merges the update into rule and validates the result. An empty effective_to
// reopens the window.
func (r *UpdateRuleRequest) Apply(rule Rule) (Rule, error) {
	var errs validator.ValidationErrors

	if r.Name != nil {
		rule.Name = strings.TrimSpace(*r.Name)
	}
	if r.ShortName != nil {
		rule.ShortName = r.ShortName
	}
	if r.CalculationType != nil {
		rule.CalculationType = CalculationType(*r.CalculationType)
	}
	if r.Amount != nil {
		rule.Amount = *r.Amount
	}
	if r.Percentage != nil {
		rule.Percentage = *r.Percentage
	}
	if r.PercentageBase != nil {
		rule.PercentageBase = PercentageBase(*r.PercentageBase)
	}
	if r.AttendanceRatePerHour != nil {
		rule.AttendanceRatePerHour = *r.AttendanceRatePerHour
	}
	if r.OvertimeRatePerHour != nil {
		rule.OvertimeRatePerHour = *r.OvertimeRatePerHour
	}
	if r.ProductionRatePerUnit != nil {
		rule.ProductionRatePerUnit = *r.ProductionRatePerUnit
	}
	if r.MinAmount != nil {
		rule.MinAmount = *r.MinAmount
	}
	if r.MaxAmount != nil {
		rule.MaxAmount = *r.MaxAmount
	}
	if r.IsTaxable != nil {
		rule.IsTaxable = *r.IsTaxable
	}
	if r.ShowInPayslip != nil {
		rule.ShowInPayslip = *r.ShowInPayslip
	}
	if r.DisplayOrder != nil {
		rule.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		rule.IsActive = *r.IsActive
	}
	if r.EffectiveFrom != nil {
		d, ok := validator.IsValidDate(*r.EffectiveFrom)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "effective_from must be in YYYY-MM-DD format"})
		}
		rule.EffectiveFrom = d
	}
	if r.EffectiveTo != nil {
		if *r.EffectiveTo == "" {
			rule.EffectiveTo = nil
		} else {
			d, ok := validator.IsValidDate(*r.EffectiveTo)
			if !ok {
				errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must be in YYYY-MM-DD format"})
			}
			rule.EffectiveTo = &d
		}
	}

	if len(errs) > 0 {
		return Rule{}, errs
	}
	return rule, rule.Validate()
}

// Validate checks the rule's own consistency.
func (r Rule) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "code is required"})
	} else if len(r.Code) > 20 {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "code must be at most 20 characters"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if !validator.IsInSlice(string(r.Type), RuleTypeValues) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be 'earning' or 'deduction'"})
	}
	if !validator.IsInSlice(string(r.CalculationType), CalculationTypeValues) {
		errs = append(errs, validator.ValidationError{Field: "calculation_type", Message: "calculation_type must be one of: " + strings.Join(CalculationTypeValues, ", ")})
	}
	if r.PercentageBase != PercentageBaseBasic && r.PercentageBase != PercentageBaseGross {
		errs = append(errs, validator.ValidationError{Field: "percentage_base", Message: "percentage_base must be 'basic' or 'gross'"})
	}

	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"amount", r.Amount},
		{"percentage", r.Percentage},
		{"attendance_rate_per_hour", r.AttendanceRatePerHour},
		{"overtime_rate_per_hour", r.OvertimeRatePerHour},
		{"production_rate_per_unit", r.ProductionRatePerUnit},
		{"min_amount", r.MinAmount},
		{"max_amount", r.MaxAmount},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: a.field, Message: "must be non-negative"})
		}
	}

	switch r.CalculationType {
	case CalculationPercentage:
		if !r.Percentage.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: "percentage", Message: "percentage is required for percentage calculation"})
		}
	case CalculationFixed:
		if !r.Amount.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount is required for fixed calculation"})
		}
	}

	if r.MaxAmount.IsPositive() && r.MinAmount.GreaterThan(r.MaxAmount) {
		errs = append(errs, validator.ValidationError{Field: "min_amount", Message: "min_amount cannot be greater than max_amount"})
	}
	if r.EffectiveTo != nil && r.EffectiveTo.Before(r.EffectiveFrom) {
		errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must be on or after effective_from"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RuleResponse struct {
	ID                    string          `json:"id"`
	Code                  string          `json:"code"`
	Name                  string          `json:"name"`
	ShortName             *string         `json:"short_name,omitempty"`
	Type                  RuleType        `json:"type"`
	CalculationType       CalculationType `json:"calculation_type"`
	Amount                decimal.Decimal `json:"amount"`
	Percentage            decimal.Decimal `json:"percentage"`
	PercentageBase        PercentageBase  `json:"percentage_base"`
	AttendanceRatePerHour decimal.Decimal `json:"attendance_rate_per_hour"`
	OvertimeRatePerHour   decimal.Decimal `json:"overtime_rate_per_hour"`
	ProductionRatePerUnit decimal.Decimal `json:"production_rate_per_unit"`
	MinAmount             decimal.Decimal `json:"min_amount"`
	MaxAmount             decimal.Decimal `json:"max_amount"`
	IsTaxable             bool            `json:"is_taxable"`
	ShowInPayslip         bool            `json:"show_in_payslip"`
	DisplayOrder          int             `json:"display_order"`
	IsActive              bool            `json:"is_active"`
	EffectiveFrom         string          `json:"effective_from"`
	EffectiveTo           *string         `json:"effective_to"`
}

func NewRuleResponse(r Rule) RuleResponse {
	return RuleResponse{
		ID:                    r.ID,
		Code:                  r.Code,
		Name:                  r.Name,
		ShortName:             r.ShortName,
		Type:                  r.Type,
		CalculationType:       r.CalculationType,
		Amount:                r.Amount,
		Percentage:            r.Percentage,
		PercentageBase:        r.PercentageBase,
		AttendanceRatePerHour: r.AttendanceRatePerHour,
		OvertimeRatePerHour:   r.OvertimeRatePerHour,
		ProductionRatePerUnit: r.ProductionRatePerUnit,
		MinAmount:             r.MinAmount,
		MaxAmount:             r.MaxAmount,
		IsTaxable:             r.IsTaxable,
		ShowInPayslip:         r.ShowInPayslip,
		DisplayOrder:          r.DisplayOrder,
		IsActive:              r.IsActive,
		EffectiveFrom:         r.EffectiveFrom.Format("2006-01-02"),
		EffectiveTo:           formatOptionalDate(r.EffectiveTo),
	}
}

// ParseRuleFilter builds a filter from the type and active_only query parameters.
func ParseRuleFilter(ruleType, activeOnly string) (RuleFilter, error) {
	filter := RuleFilter{ActiveOnly: activeOnly == "true"}
	if ruleType == "" {
		return filter, nil
	}
	if !validator.IsInSlice(ruleType, RuleTypeValues) {
		return RuleFilter{}, validator.ValidationErrors{{Field: "type", Message: "type must be one of: " + strings.Join(RuleTypeValues, ", ")}}
	}
	t := RuleType(ruleType)
	filter.Type = &t
	return filter, nil
}

// ========== ASSIGNMENT DTOs ==========

type OverridesRequest struct {
	Amount                *decimal.Decimal `json:"amount,omitempty"`
	Percentage            *decimal.Decimal `json:"percentage,omitempty"`
	AttendanceRatePerHour *decimal.Decimal `json:"attendance_rate_per_hour,omitempty"`
	OvertimeRatePerHour   *decimal.Decimal `json:"overtime_rate_per_hour,omitempty"`
	ProductionRatePerUnit *decimal.Decimal `json:"production_rate_per_unit,omitempty"`
	MinAmount             *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount             *decimal.Decimal `json:"max_amount,omitempty"`
}

func (o OverridesRequest) toOverrides() Overrides {
	return Overrides{
		Amount:                o.Amount,
		Percentage:            o.Percentage,
		AttendanceRatePerHour: o.AttendanceRatePerHour,
		OvertimeRatePerHour:   o.OvertimeRatePerHour,
		ProductionRatePerUnit: o.ProductionRatePerUnit,
		MinAmount:             o.MinAmount,
		MaxAmount:             o.MaxAmount,
	}
}

func (o OverridesRequest) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	fields := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"amount", o.Amount},
		{"percentage", o.Percentage},
		{"attendance_rate_per_hour", o.AttendanceRatePerHour},
		{"overtime_rate_per_hour", o.OvertimeRatePerHour},
		{"production_rate_per_unit", o.ProductionRatePerUnit},
		{"min_amount", o.MinAmount},
		{"max_amount", o.MaxAmount},
	}
	for _, f := range fields {
		if f.value != nil && f.value.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: f.name, Message: "must be non-negative"})
		}
	}
	if o.MinAmount != nil && o.MaxAmount != nil && o.MaxAmount.IsPositive() && o.MinAmount.GreaterThan(*o.MaxAmount) {
		errs = append(errs, validator.ValidationError{Field: "min_amount", Message: "min_amount cannot be greater than max_amount"})
	}
	return errs
}

type AssignRuleRequest struct {
	EmployeeID    string  `json:"-"`
	RuleID        string  `json:"rule_id"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
	OverridesRequest
}

func (r *AssignRuleRequest) ToAssignment(companyID string) (Assignment, error) {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	if !validator.IsValidUUID(r.RuleID) {
		errs = append(errs, validator.ValidationError{Field: "rule_id", Message: "rule_id must be a valid UUID"})
	}

	from, ok := validator.IsValidDate(r.EffectiveFrom)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "effective_from must be in YYYY-MM-DD format"})
	}
	var to *time.Time
	if r.EffectiveTo != nil && *r.EffectiveTo != "" {
		d, ok := validator.IsValidDate(*r.EffectiveTo)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must be in YYYY-MM-DD format"})
		} else if d.Before(from) {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must be on or after effective_from"})
		}
		to = &d
	}
	errs = r.OverridesRequest.validate(errs)

	if len(errs) > 0 {
		return Assignment{}, errs
	}

	return Assignment{
		CompanyID:     companyID,
		EmployeeID:    r.EmployeeID,
		RuleID:        r.RuleID,
		Overrides:     r.OverridesRequest.toOverrides().Normalize(),
		EffectiveFrom: from,
		EffectiveTo:   to,
		IsActive:      true,
	}, nil
}

// UpdateAssignmentRequest replaces the overrides wholesale; omitted overrides become unset.
type UpdateAssignmentRequest struct {
	ID            string  `json:"-"`
	EffectiveFrom *string `json:"effective_from,omitempty"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
	OverridesRequest
}

func (r *UpdateAssignmentRequest) Apply(a Assignment) (Assignment, error) {
	var errs validator.ValidationErrors

	if r.EffectiveFrom != nil {
		d, ok := validator.IsValidDate(*r.EffectiveFrom)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "effective_from must be in YYYY-MM-DD format"})
		}
		a.EffectiveFrom = d
	}
	if r.EffectiveTo != nil {
		if *r.EffectiveTo == "" {
			a.EffectiveTo = nil
		} else {
			d, ok := validator.IsValidDate(*r.EffectiveTo)
			if !ok {
				errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must be in YYYY-MM-DD format"})
			}
			a.EffectiveTo = &d
		}
	}
	if r.IsActive != nil {
		a.IsActive = *r.IsActive
	}
	if a.EffectiveTo != nil && a.EffectiveTo.Before(a.EffectiveFrom) {
		errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must be on or after effective_from"})
	}
	errs = r.OverridesRequest.validate(errs)

	if len(errs) > 0 {
		return Assignment{}, errs
	}
	a.Overrides = r.OverridesRequest.toOverrides().Normalize()
	return a, nil
}

type AssignmentResponse struct {
	ID                    string           `json:"id"`
	EmployeeID            string           `json:"employee_id"`
	RuleID                string           `json:"rule_id"`
	RuleCode              *string          `json:"rule_code,omitempty"`
	RuleName              *string          `json:"rule_name,omitempty"`
	Amount                *decimal.Decimal `json:"amount"`
	Percentage            *decimal.Decimal `json:"percentage"`
	AttendanceRatePerHour *decimal.Decimal `json:"attendance_rate_per_hour"`
	OvertimeRatePerHour   *decimal.Decimal `json:"overtime_rate_per_hour"`
	ProductionRatePerUnit *decimal.Decimal `json:"production_rate_per_unit"`
	MinAmount             *decimal.Decimal `json:"min_amount"`
	MaxAmount             *decimal.Decimal `json:"max_amount"`
	EffectiveFrom         string           `json:"effective_from"`
	EffectiveTo           *string          `json:"effective_to"`
	IsActive              bool             `json:"is_active"`
}

func NewAssignmentResponse(a Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:                    a.ID,
		EmployeeID:            a.EmployeeID,
		RuleID:                a.RuleID,
		Amount:                a.Overrides.Amount,
		Percentage:            a.Overrides.Percentage,
		AttendanceRatePerHour: a.Overrides.AttendanceRatePerHour,
		OvertimeRatePerHour:   a.Overrides.OvertimeRatePerHour,
		ProductionRatePerUnit: a.Overrides.ProductionRatePerUnit,
		MinAmount:             a.Overrides.MinAmount,
		MaxAmount:             a.Overrides.MaxAmount,
		EffectiveFrom:         a.EffectiveFrom.Format("2006-01-02"),
		EffectiveTo:           formatOptionalDate(a.EffectiveTo),
		IsActive:              a.IsActive,
	}
	if a.Rule != nil {
		resp.RuleCode = &a.Rule.Code
		resp.RuleName = &a.Rule.Name
	}
	return resp
}

func valueOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
