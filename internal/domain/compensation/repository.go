package compensation

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
)

type RuleFilter struct {
	Type       *RuleType
	ActiveOnly bool
}

// RuleRepository stores organization rules. Lists are ordered by display_order, then code.
type RuleRepository interface {
	Create(ctx context.Context, rule Rule) (Rule, error)
	GetByID(ctx context.Context, id string, companyID string) (Rule, error)
	GetByCode(ctx context.Context, companyID string, code string) (Rule, error)
	List(ctx context.Context, companyID string, filter RuleFilter) ([]Rule, error)
	Update(ctx context.Context, rule Rule) (Rule, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment Assignment) (Assignment, error)
	GetByID(ctx context.Context, id string, companyID string) (Assignment, error)
	Update(ctx context.Context, assignment Assignment) (Assignment, error)

	// ListByEmployee returns every assignment of the employee with Rule populated.
	ListByEmployee(ctx context.Context, companyID, employeeID string) ([]Assignment, error)

	// ListActiveForRule returns the active assignments of one rule for one employee.
	ListActiveForRule(ctx context.Context, companyID, employeeID, ruleID string) ([]Assignment, error)

	// ListEffective returns active assignments whose rule is active and of ruleType and whose
	// window overlaps period, ordered by the rule's display_order. Rule is populated.
	ListEffective(ctx context.Context, companyID, employeeID string, ruleType RuleType, period clock.DateRange) ([]Assignment, error)

	// LockEmployeeRule serialises writers for one (employee, rule) pair until the surrounding
	// transaction ends.
	LockEmployeeRule(ctx context.Context, companyID, employeeID, ruleID string) error
}
