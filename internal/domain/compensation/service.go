package compensation

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

type CompensationService interface {
	CreateRule(ctx context.Context, companyID string, req CreateRuleRequest) (RuleResponse, error)
	UpdateRule(ctx context.Context, companyID string, req UpdateRuleRequest) (RuleResponse, error)
	GetRule(ctx context.Context, companyID string, id string) (RuleResponse, error)
	ListRules(ctx context.Context, companyID string, filter RuleFilter) ([]RuleResponse, error)

	// AssignRule rejects the assignment when another active assignment of the same rule for the
	// same employee overlaps its window.
	AssignRule(ctx context.Context, companyID string, req AssignRuleRequest) (AssignmentResponse, error)
	UpdateAssignment(ctx context.Context, companyID string, req UpdateAssignmentRequest) (AssignmentResponse, error)
	ListEmployeeAssignments(ctx context.Context, companyID string, employeeID string) ([]AssignmentResponse, error)
}

// RuleResolver selects and evaluates the rules that apply to an employee for a pay period.
type RuleResolver interface {
	// ResolveLines returns one evaluated line per applicable rule of ruleType, ordered by
	// display_order. Assignments win; organization defaults apply only when the employee has
	// no assignment of that type at all.
	ResolveLines(ctx context.Context, companyID, employeeID string, ruleType RuleType, period clock.DateRange, in Inputs) ([]Line, error)

	// ResolveBasicPay looks for a positive BASIC amount on the employee's assignment, then on
	// the organization rule. ok is false when neither carries one.
	ResolveBasicPay(ctx context.Context, companyID, employeeID string, period clock.DateRange) (amount decimal.Decimal, ok bool, err error)
}
