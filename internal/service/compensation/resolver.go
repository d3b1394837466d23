package compensation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

// Candidate is a rule selected for evaluation together with the assignment that selected it.
// Assignment is nil for organization defaults.
type Candidate struct {
	Rule       compensation.Rule
	Assignment *compensation.Assignment
}

// SelectRules is the two-tier lookup: the employee's assignments when there is at least one,
// otherwise every organization default. The two tiers are never mixed. The result is ordered by
// display_order, then code.
func SelectRules(assignments []compensation.Assignment, defaults []compensation.Rule) []Candidate {
	var out []Candidate
	if len(assignments) > 0 {
		for i := range assignments {
			a := assignments[i]
			if a.Rule == nil {
				continue
			}
			out = append(out, Candidate{Rule: *a.Rule, Assignment: &a})
		}
	} else {
		for _, r := range defaults {
			if !r.IsActive {
				continue
			}
			out = append(out, Candidate{Rule: r})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rule.DisplayOrder != out[j].Rule.DisplayOrder {
			return out[i].Rule.DisplayOrder < out[j].Rule.DisplayOrder
		}
		return out[i].Rule.Code < out[j].Rule.Code
	})
	return out
}

type ruleResolverImpl struct {
	ruleRepo       compensation.RuleRepository
	assignmentRepo compensation.AssignmentRepository
	clock          clock.Clock
}

func NewRuleResolver(ruleRepo compensation.RuleRepository, assignmentRepo compensation.AssignmentRepository, clk clock.Clock) compensation.RuleResolver {
	return &ruleResolverImpl{
		ruleRepo:       ruleRepo,
		assignmentRepo: assignmentRepo,
		clock:          clk,
	}
}

// ResolveLines implements compensation.RuleResolver.
func (r *ruleResolverImpl) ResolveLines(ctx context.Context, companyID, employeeID string, ruleType compensation.RuleType, period clock.DateRange, in compensation.Inputs) ([]compensation.Line, error) {
	assignments, err := r.assignmentRepo.ListEffective(ctx, companyID, employeeID, ruleType, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list effective assignments: %w", err)
	}

	var defaults []compensation.Rule
	if len(assignments) == 0 {
		defaults, err = r.ruleRepo.List(ctx, companyID, compensation.RuleFilter{Type: &ruleType, ActiveOnly: true})
		if err != nil {
			return nil, fmt.Errorf("failed to list default rules: %w", err)
		}
	}

	today := clock.Today(r.clock)
	candidates := SelectRules(assignments, defaults)
	lines := make([]compensation.Line, 0, len(candidates))
	for _, c := range candidates {
		// a default outside its own window is not applicable at all, so it gets no line
		if c.Assignment == nil && !IsEffective(c.Rule, nil, today) {
			continue
		}
		ruleID := c.Rule.ID
		line := compensation.Line{
			RuleID:          &ruleID,
			Code:            c.Rule.Code,
			Name:            c.Rule.Name,
			Type:            c.Rule.Type,
			CalculationType: c.Rule.CalculationType,
			DisplayOrder:    c.Rule.DisplayOrder,
			Amount:          EvaluateRule(c.Rule, c.Assignment, in, today),
		}
		if c.Assignment != nil {
			assignmentID := c.Assignment.ID
			line.AssignmentID = &assignmentID
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ResolveBasicPay implements compensation.RuleResolver.
func (r *ruleResolverImpl) ResolveBasicPay(ctx context.Context, companyID, employeeID string, period clock.DateRange) (decimal.Decimal, bool, error) {
	assignments, err := r.assignmentRepo.ListEffective(ctx, companyID, employeeID, compensation.RuleTypeEarning, period)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to list effective assignments: %w", err)
	}

	var latest *compensation.Assignment
	for i := range assignments {
		a := &assignments[i]
		if a.Rule == nil || a.Rule.Code != compensation.CodeBasic {
			continue
		}
		if latest == nil || a.EffectiveFrom.After(latest.EffectiveFrom) {
			latest = a
		}
	}
	if latest != nil && latest.Overrides.Amount != nil && latest.Overrides.Amount.IsPositive() {
		return *latest.Overrides.Amount, true, nil
	}

	rule, err := r.ruleRepo.GetByCode(ctx, companyID, compensation.CodeBasic)
	switch {
	case errors.Is(err, compensation.ErrRuleNotFound):
		return decimal.Zero, false, nil
	case err != nil:
		return decimal.Zero, false, fmt.Errorf("failed to get basic rule: %w", err)
	}
	if rule.IsActive && rule.Amount.IsPositive() {
		return rule.Amount, true, nil
	}
	return decimal.Zero, false, nil
}
