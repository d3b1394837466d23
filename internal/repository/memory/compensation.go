package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
)

type ruleRepository struct {
	s *Store
}

func NewRuleRepository(s *Store) compensation.RuleRepository {
	return &ruleRepository{s: s}
}

// Create implements compensation.RuleRepository.
func (r *ruleRepository) Create(ctx context.Context, rule compensation.Rule) (compensation.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.data.rules {
		if existing.CompanyID == rule.CompanyID && existing.Code == rule.Code {
			return compensation.Rule{}, compensation.ErrRuleCodeExists
		}
	}

	rule.ID = newID()
	now := r.s.now()
	rule.CreatedAt, rule.UpdatedAt = now, now
	r.s.data.rules[rule.ID] = rule
	return rule, nil
}

// GetByID implements compensation.RuleRepository.
func (r *ruleRepository) GetByID(ctx context.Context, id string, companyID string) (compensation.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rule, ok := r.s.data.rules[id]
	if !ok || rule.CompanyID != companyID {
		return compensation.Rule{}, compensation.ErrRuleNotFound
	}
	return rule, nil
}

// GetByCode implements compensation.RuleRepository.
func (r *ruleRepository) GetByCode(ctx context.Context, companyID string, code string) (compensation.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rule := range r.s.data.rules {
		if rule.CompanyID == companyID && rule.Code == code {
			return rule, nil
		}
	}
	return compensation.Rule{}, compensation.ErrRuleNotFound
}

// List implements compensation.RuleRepository.
func (r *ruleRepository) List(ctx context.Context, companyID string, filter compensation.RuleFilter) ([]compensation.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []compensation.Rule
	for _, rule := range r.s.data.rules {
		if rule.CompanyID != companyID {
			continue
		}
		if filter.Type != nil && rule.Type != *filter.Type {
			continue
		}
		if filter.ActiveOnly && !rule.IsActive {
			continue
		}
		out = append(out, rule)
	}
	sortRules(out)
	return out, nil
}

// Update implements compensation.RuleRepository.
func (r *ruleRepository) Update(ctx context.Context, rule compensation.Rule) (compensation.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.data.rules[rule.ID]
	if !ok || existing.CompanyID != rule.CompanyID {
		return compensation.Rule{}, compensation.ErrRuleNotFound
	}
	rule.Code = existing.Code
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = r.s.now()
	r.s.data.rules[rule.ID] = rule
	return rule, nil
}

func sortRules(rules []compensation.Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].DisplayOrder != rules[j].DisplayOrder {
			return rules[i].DisplayOrder < rules[j].DisplayOrder
		}
		return rules[i].Code < rules[j].Code
	})
}

type assignmentRepository struct {
	s *Store
}

func NewAssignmentRepository(s *Store) compensation.AssignmentRepository {
	return &assignmentRepository{s: s}
}

// Create implements compensation.AssignmentRepository.
func (r *assignmentRepository) Create(ctx context.Context, a compensation.Assignment) (compensation.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.data.assignments {
		if existing.CompanyID == a.CompanyID && existing.EmployeeID == a.EmployeeID &&
			existing.RuleID == a.RuleID && existing.EffectiveFrom.Equal(a.EffectiveFrom) {
			return compensation.Assignment{}, compensation.ErrAssignmentExists
		}
	}

	a.ID = newID()
	now := r.s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	a.Rule = nil
	r.s.data.assignments[a.ID] = a
	return a, nil
}

// GetByID implements compensation.AssignmentRepository.
func (r *assignmentRepository) GetByID(ctx context.Context, id string, companyID string) (compensation.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.data.assignments[id]
	if !ok || a.CompanyID != companyID {
		return compensation.Assignment{}, compensation.ErrAssignmentNotFound
	}
	return a, nil
}

// Update implements compensation.AssignmentRepository.
func (r *assignmentRepository) Update(ctx context.Context, a compensation.Assignment) (compensation.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.data.assignments[a.ID]
	if !ok || existing.CompanyID != a.CompanyID {
		return compensation.Assignment{}, compensation.ErrAssignmentNotFound
	}
	for _, other := range r.s.data.assignments {
		if other.ID != a.ID && other.CompanyID == a.CompanyID && other.EmployeeID == a.EmployeeID &&
			other.RuleID == a.RuleID && other.EffectiveFrom.Equal(a.EffectiveFrom) {
			return compensation.Assignment{}, compensation.ErrAssignmentExists
		}
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = r.s.now()
	a.Rule = nil
	r.s.data.assignments[a.ID] = a
	return a, nil
}

// ListByEmployee implements compensation.AssignmentRepository.
func (r *assignmentRepository) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]compensation.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []compensation.Assignment
	for _, a := range r.s.data.assignments {
		if a.CompanyID == companyID && a.EmployeeID == employeeID {
			out = append(out, r.withRule(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EffectiveFrom.Equal(out[j].EffectiveFrom) {
			return out[i].EffectiveFrom.After(out[j].EffectiveFrom)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListActiveForRule implements compensation.AssignmentRepository.
func (r *assignmentRepository) ListActiveForRule(ctx context.Context, companyID, employeeID, ruleID string) ([]compensation.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []compensation.Assignment
	for _, a := range r.s.data.assignments {
		if a.CompanyID == companyID && a.EmployeeID == employeeID && a.RuleID == ruleID && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListEffective implements compensation.AssignmentRepository.
func (r *assignmentRepository) ListEffective(ctx context.Context, companyID, employeeID string, ruleType compensation.RuleType, period clock.DateRange) ([]compensation.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []compensation.Assignment
	for _, a := range r.s.data.assignments {
		if a.CompanyID != companyID || a.EmployeeID != employeeID || !a.IsActive {
			continue
		}
		if !period.Overlaps(a.EffectiveFrom, a.EffectiveTo) {
			continue
		}
		a = r.withRule(a)
		if a.Rule == nil || !a.Rule.IsActive || a.Rule.Type != ruleType {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rule.DisplayOrder != out[j].Rule.DisplayOrder {
			return out[i].Rule.DisplayOrder < out[j].Rule.DisplayOrder
		}
		return out[i].Rule.Code < out[j].Rule.Code
	})
	return out, nil
}

// LockEmployeeRule implements compensation.AssignmentRepository. Memory transactions are
// already serialised, so there is nothing to lock.
func (r *assignmentRepository) LockEmployeeRule(ctx context.Context, companyID, employeeID, ruleID string) error {
	return nil
}

// withRule must be called with the read lock held.
func (r *assignmentRepository) withRule(a compensation.Assignment) compensation.Assignment {
	if rule, ok := r.s.data.rules[a.RuleID]; ok {
		a.Rule = &rule
	}
	return a
}
