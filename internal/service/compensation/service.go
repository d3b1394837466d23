package compensation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

type CompensationServiceImpl struct {
	transactor     database.Transactor
	ruleRepo       compensation.RuleRepository
	assignmentRepo compensation.AssignmentRepository
	employeeRepo   employee.EmployeeRepository
	clock          clock.Clock
}

func NewCompensationService(
	transactor database.Transactor,
	ruleRepo compensation.RuleRepository,
	assignmentRepo compensation.AssignmentRepository,
	employeeRepo employee.EmployeeRepository,
	clk clock.Clock,
) compensation.CompensationService {
	return &CompensationServiceImpl{
		transactor:     transactor,
		ruleRepo:       ruleRepo,
		assignmentRepo: assignmentRepo,
		employeeRepo:   employeeRepo,
		clock:          clk,
	}
}

// ========== RULES ==========

// CreateRule implements compensation.CompensationService.
func (s *CompensationServiceImpl) CreateRule(ctx context.Context, companyID string, req compensation.CreateRuleRequest) (compensation.RuleResponse, error) {
	rule, err := req.ToRule(companyID, clock.Today(s.clock))
	if err != nil {
		return compensation.RuleResponse{}, err
	}

	_, err = s.ruleRepo.GetByCode(ctx, companyID, rule.Code)
	if err == nil {
		return compensation.RuleResponse{}, compensation.ErrRuleCodeExists
	}
	if !errors.Is(err, compensation.ErrRuleNotFound) {
		return compensation.RuleResponse{}, fmt.Errorf("failed to check rule code: %w", err)
	}

	created, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		return compensation.RuleResponse{}, err
	}

	slog.Info("Compensation rule created", "company_id", companyID, "rule_id", created.ID, "code", created.Code)
	return compensation.NewRuleResponse(created), nil
}

// UpdateRule implements compensation.CompensationService.
func (s *CompensationServiceImpl) UpdateRule(ctx context.Context, companyID string, req compensation.UpdateRuleRequest) (compensation.RuleResponse, error) {
	existing, err := s.ruleRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return compensation.RuleResponse{}, err
	}

	rule, err := req.Apply(existing)
	if err != nil {
		return compensation.RuleResponse{}, err
	}

	updated, err := s.ruleRepo.Update(ctx, rule)
	if err != nil {
		return compensation.RuleResponse{}, err
	}
	return compensation.NewRuleResponse(updated), nil
}

// GetRule implements compensation.CompensationService.
func (s *CompensationServiceImpl) GetRule(ctx context.Context, companyID string, id string) (compensation.RuleResponse, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return compensation.RuleResponse{}, err
	}
	return compensation.NewRuleResponse(rule), nil
}

// ListRules implements compensation.CompensationService.
func (s *CompensationServiceImpl) ListRules(ctx context.Context, companyID string, filter compensation.RuleFilter) ([]compensation.RuleResponse, error) {
	rules, err := s.ruleRepo.List(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	resp := make([]compensation.RuleResponse, 0, len(rules))
	for _, r := range rules {
		resp = append(resp, compensation.NewRuleResponse(r))
	}
	return resp, nil
}

// ========== ASSIGNMENTS ==========

// AssignRule implements compensation.CompensationService.
func (s *CompensationServiceImpl) AssignRule(ctx context.Context, companyID string, req compensation.AssignRuleRequest) (compensation.AssignmentResponse, error) {
	assignment, err := req.ToAssignment(companyID)
	if err != nil {
		return compensation.AssignmentResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, assignment.EmployeeID, companyID); err != nil {
		return compensation.AssignmentResponse{}, err
	}
	rule, err := s.ruleRepo.GetByID(ctx, assignment.RuleID, companyID)
	if err != nil {
		return compensation.AssignmentResponse{}, err
	}

	var created compensation.Assignment
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkOverlap(ctx, assignment); err != nil {
			return err
		}
		created, err = s.assignmentRepo.Create(ctx, assignment)
		return err
	})
	if err != nil {
		return compensation.AssignmentResponse{}, err
	}

	created.Rule = &rule
	slog.Info("Compensation rule assigned", "company_id", companyID, "employee_id", created.EmployeeID, "rule_id", created.RuleID, "assignment_id", created.ID)
	return compensation.NewAssignmentResponse(created), nil
}

// UpdateAssignment implements compensation.CompensationService.
func (s *CompensationServiceImpl) UpdateAssignment(ctx context.Context, companyID string, req compensation.UpdateAssignmentRequest) (compensation.AssignmentResponse, error) {
	var updated compensation.Assignment
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.assignmentRepo.GetByID(ctx, req.ID, companyID)
		if err != nil {
			return err
		}

		assignment, err := req.Apply(existing)
		if err != nil {
			return err
		}

		if err := s.checkOverlap(ctx, assignment); err != nil {
			return err
		}
		updated, err = s.assignmentRepo.Update(ctx, assignment)
		return err
	})
	if err != nil {
		return compensation.AssignmentResponse{}, err
	}

	if rule, err := s.ruleRepo.GetByID(ctx, updated.RuleID, companyID); err == nil {
		updated.Rule = &rule
	}
	return compensation.NewAssignmentResponse(updated), nil
}

// checkOverlap must run inside a transaction: the lock it takes is held until that transaction
// ends, so the check and the following write are atomic per (employee, rule).
func (s *CompensationServiceImpl) checkOverlap(ctx context.Context, a compensation.Assignment) error {
	if !a.IsActive {
		return nil
	}

	if err := s.assignmentRepo.LockEmployeeRule(ctx, a.CompanyID, a.EmployeeID, a.RuleID); err != nil {
		return fmt.Errorf("failed to lock assignments: %w", err)
	}

	existing, err := s.assignmentRepo.ListActiveForRule(ctx, a.CompanyID, a.EmployeeID, a.RuleID)
	if err != nil {
		return fmt.Errorf("failed to list active assignments: %w", err)
	}
	for _, other := range existing {
		if other.ID == a.ID {
			continue
		}
		if a.Overlaps(other) {
			return compensation.ErrAssignmentOverlap
		}
	}
	return nil
}

// ListEmployeeAssignments implements compensation.CompensationService.
func (s *CompensationServiceImpl) ListEmployeeAssignments(ctx context.Context, companyID string, employeeID string) ([]compensation.AssignmentResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID, companyID); err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.ListByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	resp := make([]compensation.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp = append(resp, compensation.NewAssignmentResponse(a))
	}
	return resp, nil
}
