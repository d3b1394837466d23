package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ========== RULES ==========

type ruleRepositoryImpl struct {
	db *database.DB
}

func NewRuleRepository(db *database.DB) compensation.RuleRepository {
	return &ruleRepositoryImpl{db: db}
}

const ruleColumns = `
	id, company_id, code, name, short_name, type, calculation_type, amount, percentage, percentage_base,
	attendance_rate_per_hour, overtime_rate_per_hour, production_rate_per_unit, min_amount, max_amount,
	is_taxable, show_in_payslip, display_order, is_active, effective_from, effective_to, created_at, updated_at`

func ruleDest(r *compensation.Rule) []any {
	return []any{
		&r.ID, &r.CompanyID, &r.Code, &r.Name, &r.ShortName, &r.Type, &r.CalculationType,
		&r.Amount, &r.Percentage, &r.PercentageBase,
		&r.AttendanceRatePerHour, &r.OvertimeRatePerHour, &r.ProductionRatePerUnit, &r.MinAmount, &r.MaxAmount,
		&r.IsTaxable, &r.ShowInPayslip, &r.DisplayOrder, &r.IsActive, &r.EffectiveFrom, &r.EffectiveTo,
		&r.CreatedAt, &r.UpdatedAt,
	}
}

// Create implements compensation.RuleRepository.
func (r *ruleRepositoryImpl) Create(ctx context.Context, rule compensation.Rule) (compensation.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO compensation_rules (
			company_id, code, name, short_name, type, calculation_type, amount, percentage, percentage_base,
			attendance_rate_per_hour, overtime_rate_per_hour, production_rate_per_unit, min_amount, max_amount,
			is_taxable, show_in_payslip, display_order, is_active, effective_from, effective_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING ` + ruleColumns

	var created compensation.Rule
	err := q.QueryRow(ctx, query,
		rule.CompanyID, rule.Code, rule.Name, rule.ShortName, rule.Type, rule.CalculationType,
		rule.Amount, rule.Percentage, rule.PercentageBase,
		rule.AttendanceRatePerHour, rule.OvertimeRatePerHour, rule.ProductionRatePerUnit, rule.MinAmount, rule.MaxAmount,
		rule.IsTaxable, rule.ShowInPayslip, rule.DisplayOrder, rule.IsActive, rule.EffectiveFrom, rule.EffectiveTo,
	).Scan(ruleDest(&created)...)
	if err != nil {
		if isUniqueViolation(err, "uq_compensation_rules_code") {
			return compensation.Rule{}, compensation.ErrRuleCodeExists
		}
		return compensation.Rule{}, fmt.Errorf("failed to create compensation rule: %w", err)
	}
	return created, nil
}

// GetByID implements compensation.RuleRepository.
func (r *ruleRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (compensation.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM compensation_rules WHERE id = $1 AND company_id = $2`

	var rule compensation.Rule
	if err := q.QueryRow(ctx, query, id, companyID).Scan(ruleDest(&rule)...); err != nil {
		if err == pgx.ErrNoRows {
			return compensation.Rule{}, compensation.ErrRuleNotFound
		}
		return compensation.Rule{}, fmt.Errorf("failed to get compensation rule: %w", err)
	}
	return rule, nil
}

// GetByCode implements compensation.RuleRepository.
func (r *ruleRepositoryImpl) GetByCode(ctx context.Context, companyID string, code string) (compensation.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM compensation_rules WHERE company_id = $1 AND code = $2`

	var rule compensation.Rule
	if err := q.QueryRow(ctx, query, companyID, code).Scan(ruleDest(&rule)...); err != nil {
		if err == pgx.ErrNoRows {
			return compensation.Rule{}, compensation.ErrRuleNotFound
		}
		return compensation.Rule{}, fmt.Errorf("failed to get compensation rule by code: %w", err)
	}
	return rule, nil
}

// List implements compensation.RuleRepository.
func (r *ruleRepositoryImpl) List(ctx context.Context, companyID string, filter compensation.RuleFilter) ([]compensation.Rule, error) {
	q := GetQuerier(ctx, r.db)

	where := []string{"company_id = $1"}
	args := []interface{}{companyID}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}

	query := `SELECT ` + ruleColumns + ` FROM compensation_rules WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY display_order, code`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensation rules: %w", err)
	}
	defer rows.Close()

	var rules []compensation.Rule
	for rows.Next() {
		var rule compensation.Rule
		if err := rows.Scan(ruleDest(&rule)...); err != nil {
			return nil, fmt.Errorf("failed to scan compensation rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate compensation rules: %w", err)
	}
	return rules, nil
}

// Update implements compensation.RuleRepository. The code is immutable.
func (r *ruleRepositoryImpl) Update(ctx context.Context, rule compensation.Rule) (compensation.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE compensation_rules SET
			name = $3, short_name = $4, calculation_type = $5, amount = $6, percentage = $7, percentage_base = $8,
			attendance_rate_per_hour = $9, overtime_rate_per_hour = $10, production_rate_per_unit = $11,
			min_amount = $12, max_amount = $13, is_taxable = $14, show_in_payslip = $15, display_order = $16,
			is_active = $17, effective_from = $18, effective_to = $19, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + ruleColumns

	var updated compensation.Rule
	err := q.QueryRow(ctx, query,
		rule.ID, rule.CompanyID, rule.Name, rule.ShortName, rule.CalculationType, rule.Amount, rule.Percentage, rule.PercentageBase,
		rule.AttendanceRatePerHour, rule.OvertimeRatePerHour, rule.ProductionRatePerUnit,
		rule.MinAmount, rule.MaxAmount, rule.IsTaxable, rule.ShowInPayslip, rule.DisplayOrder,
		rule.IsActive, rule.EffectiveFrom, rule.EffectiveTo,
	).Scan(ruleDest(&updated)...)
	if err != nil {
		if err == pgx.ErrNoRows {
			return compensation.Rule{}, compensation.ErrRuleNotFound
		}
		return compensation.Rule{}, fmt.Errorf("failed to update compensation rule: %w", err)
	}
	return updated, nil
}

// ========== ASSIGNMENTS ==========

type assignmentRepositoryImpl struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) compensation.AssignmentRepository {
	return &assignmentRepositoryImpl{db: db}
}

const assignmentColumns = `
	a.id, a.company_id, a.employee_id, a.rule_id, a.amount, a.percentage, a.attendance_rate_per_hour,
	a.overtime_rate_per_hour, a.production_rate_per_unit, a.min_amount, a.max_amount,
	a.effective_from, a.effective_to, a.is_active, a.created_at, a.updated_at`

type assignmentRow struct {
	a                                                compensation.Assignment
	amount, percentage, attendanceRate, overtimeRate decimal.NullDecimal
	productionRate, minAmount, maxAmount             decimal.NullDecimal
}

func (row *assignmentRow) dest() []any {
	return []any{
		&row.a.ID, &row.a.CompanyID, &row.a.EmployeeID, &row.a.RuleID,
		&row.amount, &row.percentage, &row.attendanceRate, &row.overtimeRate,
		&row.productionRate, &row.minAmount, &row.maxAmount,
		&row.a.EffectiveFrom, &row.a.EffectiveTo, &row.a.IsActive, &row.a.CreatedAt, &row.a.UpdatedAt,
	}
}

func (row *assignmentRow) assignment() compensation.Assignment {
	a := row.a
	a.Overrides = compensation.Overrides{
		Amount:                fromNullDecimal(row.amount),
		Percentage:            fromNullDecimal(row.percentage),
		AttendanceRatePerHour: fromNullDecimal(row.attendanceRate),
		OvertimeRatePerHour:   fromNullDecimal(row.overtimeRate),
		ProductionRatePerUnit: fromNullDecimal(row.productionRate),
		MinAmount:             fromNullDecimal(row.minAmount),
		MaxAmount:             fromNullDecimal(row.maxAmount),
	}
	return a
}

func overrideArgs(o compensation.Overrides) []any {
	return []any{
		toNullDecimal(o.Amount), toNullDecimal(o.Percentage), toNullDecimal(o.AttendanceRatePerHour),
		toNullDecimal(o.OvertimeRatePerHour), toNullDecimal(o.ProductionRatePerUnit),
		toNullDecimal(o.MinAmount), toNullDecimal(o.MaxAmount),
	}
}

// Create implements compensation.AssignmentRepository.
func (r *assignmentRepositoryImpl) Create(ctx context.Context, a compensation.Assignment) (compensation.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO rule_assignments AS a (
			company_id, employee_id, rule_id, amount, percentage, attendance_rate_per_hour,
			overtime_rate_per_hour, production_rate_per_unit, min_amount, max_amount,
			effective_from, effective_to, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + assignmentColumns

	args := append([]any{a.CompanyID, a.EmployeeID, a.RuleID}, overrideArgs(a.Overrides)...)
	args = append(args, a.EffectiveFrom, a.EffectiveTo, a.IsActive)

	var row assignmentRow
	if err := q.QueryRow(ctx, query, args...).Scan(row.dest()...); err != nil {
		if isUniqueViolation(err, "uq_rule_assignments_start") {
			return compensation.Assignment{}, compensation.ErrAssignmentExists
		}
		return compensation.Assignment{}, fmt.Errorf("failed to create rule assignment: %w", err)
	}
	return row.assignment(), nil
}

// GetByID implements compensation.AssignmentRepository.
func (r *assignmentRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (compensation.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + assignmentColumns + ` FROM rule_assignments a WHERE a.id = $1 AND a.company_id = $2`

	var row assignmentRow
	if err := q.QueryRow(ctx, query, id, companyID).Scan(row.dest()...); err != nil {
		if err == pgx.ErrNoRows {
			return compensation.Assignment{}, compensation.ErrAssignmentNotFound
		}
		return compensation.Assignment{}, fmt.Errorf("failed to get rule assignment: %w", err)
	}
	return row.assignment(), nil
}

// Update implements compensation.AssignmentRepository.
func (r *assignmentRepositoryImpl) Update(ctx context.Context, a compensation.Assignment) (compensation.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE rule_assignments AS a SET
			amount = $3, percentage = $4, attendance_rate_per_hour = $5, overtime_rate_per_hour = $6,
			production_rate_per_unit = $7, min_amount = $8, max_amount = $9,
			effective_from = $10, effective_to = $11, is_active = $12, updated_at = NOW()
		WHERE a.id = $1 AND a.company_id = $2
		RETURNING ` + assignmentColumns

	args := append([]any{a.ID, a.CompanyID}, overrideArgs(a.Overrides)...)
	args = append(args, a.EffectiveFrom, a.EffectiveTo, a.IsActive)

	var row assignmentRow
	if err := q.QueryRow(ctx, query, args...).Scan(row.dest()...); err != nil {
		if err == pgx.ErrNoRows {
			return compensation.Assignment{}, compensation.ErrAssignmentNotFound
		}
		if isUniqueViolation(err, "uq_rule_assignments_start") {
			return compensation.Assignment{}, compensation.ErrAssignmentExists
		}
		return compensation.Assignment{}, fmt.Errorf("failed to update rule assignment: %w", err)
	}
	return row.assignment(), nil
}

// queryWithRule runs a query selecting assignmentColumns followed by ruleColumns prefixed
// with r. and returns the assignments with Rule populated.
func (r *assignmentRepositoryImpl) queryWithRule(ctx context.Context, query string, args ...any) ([]compensation.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule assignments: %w", err)
	}
	defer rows.Close()

	var out []compensation.Assignment
	for rows.Next() {
		var (
			row  assignmentRow
			rule compensation.Rule
		)
		if err := rows.Scan(append(row.dest(), ruleDest(&rule)...)...); err != nil {
			return nil, fmt.Errorf("failed to scan rule assignment: %w", err)
		}
		a := row.assignment()
		a.Rule = &rule
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rule assignments: %w", err)
	}
	return out, nil
}

var prefixedRuleColumns = func() string {
	cols := strings.Split(ruleColumns, ",")
	for i, c := range cols {
		cols[i] = "r." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}()

// ListByEmployee implements compensation.AssignmentRepository.
func (r *assignmentRepositoryImpl) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]compensation.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `, ` + prefixedRuleColumns + `
		FROM rule_assignments a
		JOIN compensation_rules r ON r.id = a.rule_id AND r.company_id = a.company_id
		WHERE a.company_id = $1 AND a.employee_id = $2
		ORDER BY a.effective_from DESC, r.code
	`
	return r.queryWithRule(ctx, query, companyID, employeeID)
}

// ListActiveForRule implements compensation.AssignmentRepository.
func (r *assignmentRepositoryImpl) ListActiveForRule(ctx context.Context, companyID, employeeID, ruleID string) ([]compensation.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + assignmentColumns + `
		FROM rule_assignments a
		WHERE a.company_id = $1 AND a.employee_id = $2 AND a.rule_id = $3 AND a.is_active = TRUE
		ORDER BY a.effective_from
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rule assignments: %w", err)
	}
	defer rows.Close()

	var out []compensation.Assignment
	for rows.Next() {
		var row assignmentRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan rule assignment: %w", err)
		}
		out = append(out, row.assignment())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rule assignments: %w", err)
	}
	return out, nil
}

// ListEffective implements compensation.AssignmentRepository.
func (r *assignmentRepositoryImpl) ListEffective(ctx context.Context, companyID, employeeID string, ruleType compensation.RuleType, period clock.DateRange) ([]compensation.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `, ` + prefixedRuleColumns + `
		FROM rule_assignments a
		JOIN compensation_rules r ON r.id = a.rule_id AND r.company_id = a.company_id
		WHERE a.company_id = $1 AND a.employee_id = $2
		  AND a.is_active = TRUE AND r.is_active = TRUE AND r.type = $3
		  AND a.effective_from <= $5
		  AND (a.effective_to IS NULL OR a.effective_to >= $4)
		ORDER BY r.display_order, r.code, a.effective_from
	`
	return r.queryWithRule(ctx, query, companyID, employeeID, ruleType, clock.DateOf(period.Start), clock.DateOf(period.End))
}

// LockEmployeeRule implements compensation.AssignmentRepository. The advisory lock is
// released when the surrounding transaction ends.
func (r *assignmentRepositoryImpl) LockEmployeeRule(ctx context.Context, companyID, employeeID, ruleID string) error {
	q := GetQuerier(ctx, r.db)

	key := "rule_assignment:" + companyID + ":" + employeeID + ":" + ruleID
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("failed to lock rule assignments: %w", err)
	}
	return nil
}
