package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// ========== PERIODS ==========

type periodRepositoryImpl struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) payroll.PeriodRepository {
	return &periodRepositoryImpl{db: db}
}

const periodColumns = `id, company_id, name, period_type, start_date, end_date, pay_date, status, processed_at, created_at, updated_at`

func periodDest(p *payroll.Period) []any {
	return []any{
		&p.ID, &p.CompanyID, &p.Name, &p.PeriodType, &p.StartDate, &p.EndDate, &p.PayDate,
		&p.Status, &p.ProcessedAt, &p.CreatedAt, &p.UpdatedAt,
	}
}

// Create implements payroll.PeriodRepository.
func (r *periodRepositoryImpl) Create(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO pay_periods (company_id, name, period_type, start_date, end_date, pay_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + periodColumns

	var created payroll.Period
	err := q.QueryRow(ctx, query,
		period.CompanyID, period.Name, period.PeriodType, period.StartDate, period.EndDate, period.PayDate, period.Status,
	).Scan(periodDest(&created)...)
	if err != nil {
		if isUniqueViolation(err, "uq_pay_periods_range") {
			return payroll.Period{}, payroll.ErrPeriodExists
		}
		return payroll.Period{}, fmt.Errorf("failed to create pay period: %w", err)
	}
	return created, nil
}

// GetByID implements payroll.PeriodRepository.
func (r *periodRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM pay_periods WHERE id = $1 AND company_id = $2`

	var p payroll.Period
	if err := q.QueryRow(ctx, query, id, companyID).Scan(periodDest(&p)...); err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to get pay period: %w", err)
	}
	return p, nil
}

// List implements payroll.PeriodRepository.
func (r *periodRepositoryImpl) List(ctx context.Context, companyID string, status *payroll.PeriodStatus) ([]payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM pay_periods WHERE company_id = $1`
	args := []interface{}{companyID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY start_date DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pay periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.Period
	for rows.Next() {
		var p payroll.Period
		if err := rows.Scan(periodDest(&p)...); err != nil {
			return nil, fmt.Errorf("failed to scan pay period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pay periods: %w", err)
	}
	return periods, nil
}

// TransitionStatus implements payroll.PeriodRepository.
func (r *periodRepositoryImpl) TransitionStatus(ctx context.Context, id string, companyID string, from, to payroll.PeriodStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE pay_periods
		SET status = $4,
			processed_at = CASE WHEN $4 = 'completed' THEN NOW() ELSE processed_at END,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = $3
	`

	tag, err := q.Exec(ctx, query, id, companyID, from, to)
	if err != nil {
		return fmt.Errorf("failed to update pay period status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing matched: tell a missing period apart from a status race.
	if _, err := r.GetByID(ctx, id, companyID); err != nil {
		return err
	}
	return payroll.ErrStatusConflict
}

// ========== PAYSLIPS ==========

type payslipRepositoryImpl struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payroll.PayslipRepository {
	return &payslipRepositoryImpl{db: db}
}

const payslipColumns = `
	p.id, p.company_id, p.employee_id, p.period_id,
	p.basic_salary, p.allowances, p.overtime_pay, p.bonus, p.other_earnings,
	p.provident_fund, p.tax_deduction, p.late_attendance_deduction, p.other_deductions,
	p.gross_salary, p.total_deductions, p.net_salary,
	p.attended_days, p.late_days, p.absent_days, p.worked_hours, p.overtime_hours,
	p.generated_at, p.created_at, p.updated_at`

func payslipDest(p *payroll.Payslip) []any {
	return []any{
		&p.ID, &p.CompanyID, &p.EmployeeID, &p.PeriodID,
		&p.BasicSalary, &p.Allowances, &p.OvertimePay, &p.Bonus, &p.OtherEarnings,
		&p.ProvidentFund, &p.TaxDeduction, &p.LateAttendanceDeduction, &p.OtherDeductions,
		&p.GrossSalary, &p.TotalDeductions, &p.NetSalary,
		&p.AttendedDays, &p.LateDays, &p.AbsentDays, &p.WorkedHours, &p.OvertimeHours,
		&p.GeneratedAt, &p.CreatedAt, &p.UpdatedAt,
	}
}

// Upsert implements payroll.PayslipRepository.
func (r *payslipRepositoryImpl) Upsert(ctx context.Context, slip payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payslips AS p (
			company_id, employee_id, period_id,
			basic_salary, allowances, overtime_pay, bonus, other_earnings,
			provident_fund, tax_deduction, late_attendance_deduction, other_deductions,
			gross_salary, total_deductions, net_salary,
			attended_days, late_days, absent_days, worked_hours, overtime_hours, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT ON CONSTRAINT uq_payslips_employee_period DO UPDATE SET
			basic_salary = EXCLUDED.basic_salary,
			allowances = EXCLUDED.allowances,
			overtime_pay = EXCLUDED.overtime_pay,
			bonus = EXCLUDED.bonus,
			other_earnings = EXCLUDED.other_earnings,
			provident_fund = EXCLUDED.provident_fund,
			tax_deduction = EXCLUDED.tax_deduction,
			late_attendance_deduction = EXCLUDED.late_attendance_deduction,
			other_deductions = EXCLUDED.other_deductions,
			gross_salary = EXCLUDED.gross_salary,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			attended_days = EXCLUDED.attended_days,
			late_days = EXCLUDED.late_days,
			absent_days = EXCLUDED.absent_days,
			worked_hours = EXCLUDED.worked_hours,
			overtime_hours = EXCLUDED.overtime_hours,
			generated_at = EXCLUDED.generated_at,
			updated_at = NOW()
		RETURNING ` + payslipColumns

	var saved payroll.Payslip
	err := q.QueryRow(ctx, query,
		slip.CompanyID, slip.EmployeeID, slip.PeriodID,
		slip.BasicSalary, slip.Allowances, slip.OvertimePay, slip.Bonus, slip.OtherEarnings,
		slip.ProvidentFund, slip.TaxDeduction, slip.LateAttendanceDeduction, slip.OtherDeductions,
		slip.GrossSalary, slip.TotalDeductions, slip.NetSalary,
		slip.AttendedDays, slip.LateDays, slip.AbsentDays, slip.WorkedHours, slip.OvertimeHours, slip.GeneratedAt,
	).Scan(payslipDest(&saved)...)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to upsert payslip: %w", err)
	}
	return saved, nil
}

// ReplaceComponents implements payroll.PayslipRepository. The delete and the inserts go out
// as one batch.
func (r *payslipRepositoryImpl) ReplaceComponents(ctx context.Context, payslipID string, companyID string, comps []payroll.Component) error {
	q := GetQuerier(ctx, r.db)

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM payslip_components WHERE payslip_id = $1 AND company_id = $2`, payslipID, companyID)
	for _, c := range comps {
		batch.Queue(`
			INSERT INTO payslip_components (
				company_id, payslip_id, rule_id, component_type, name, code, calculation_type, amount, display_order
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			companyID, payslipID, c.RuleID, c.ComponentType, c.Name, c.Code, c.CalculationType, c.Amount, c.DisplayOrder,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to replace payslip components: %w", err)
		}
	}
	return nil
}

// GetByID implements payroll.PayslipRepository.
func (r *payslipRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `, e.full_name
		FROM payslips p
		LEFT JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1 AND p.company_id = $2
	`

	var slip payroll.Payslip
	if err := q.QueryRow(ctx, query, id, companyID).Scan(append(payslipDest(&slip), &slip.EmployeeName)...); err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, company_id, payslip_id, rule_id, component_type, name, code, calculation_type, amount, display_order
		FROM payslip_components
		WHERE payslip_id = $1 AND company_id = $2
		ORDER BY CASE component_type WHEN 'earning' THEN 0 ELSE 1 END, display_order
	`, id, companyID)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c payroll.Component
		if err := rows.Scan(
			&c.ID, &c.CompanyID, &c.PayslipID, &c.RuleID, &c.ComponentType, &c.Name, &c.Code,
			&c.CalculationType, &c.Amount, &c.DisplayOrder,
		); err != nil {
			return payroll.Payslip{}, fmt.Errorf("failed to scan payslip component: %w", err)
		}
		slip.Components = append(slip.Components, c)
	}
	if err := rows.Err(); err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to iterate payslip components: %w", err)
	}
	return slip, nil
}

// ListByPeriod implements payroll.PayslipRepository.
func (r *payslipRepositoryImpl) ListByPeriod(ctx context.Context, periodID string, companyID string) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `, e.full_name
		FROM payslips p
		LEFT JOIN employees e ON e.id = p.employee_id
		WHERE p.period_id = $1 AND p.company_id = $2
		ORDER BY e.full_name, p.id
	`

	rows, err := q.Query(ctx, query, periodID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var slips []payroll.Payslip
	for rows.Next() {
		var slip payroll.Payslip
		if err := rows.Scan(append(payslipDest(&slip), &slip.EmployeeName)...); err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		slips = append(slips, slip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payslips: %w", err)
	}
	return slips, nil
}

// Summarize implements payroll.PayslipRepository.
func (r *payslipRepositoryImpl) Summarize(ctx context.Context, periodID string, companyID string) (payroll.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*),
			COALESCE(SUM(basic_salary), 0), COALESCE(SUM(allowances), 0), COALESCE(SUM(overtime_pay), 0),
			COALESCE(SUM(gross_salary), 0), COALESCE(SUM(total_deductions), 0), COALESCE(SUM(net_salary), 0)
		FROM payslips
		WHERE period_id = $1 AND company_id = $2
	`

	sum := payroll.Summary{PeriodID: periodID}
	err := q.QueryRow(ctx, query, periodID, companyID).Scan(
		&sum.EmployeeCount, &sum.TotalBasicSalary, &sum.TotalAllowances, &sum.TotalOvertime,
		&sum.TotalGross, &sum.TotalDeductions, &sum.TotalNet,
	)
	if err != nil {
		return payroll.Summary{}, fmt.Errorf("failed to summarize payslips: %w", err)
	}
	return sum, nil
}

// ========== SALARY STRUCTURES ==========

type salaryStructureRepositoryImpl struct {
	db *database.DB
}

func NewSalaryStructureRepository(db *database.DB) payroll.SalaryStructureRepository {
	return &salaryStructureRepositoryImpl{db: db}
}

// Create implements payroll.SalaryStructureRepository.
func (r *salaryStructureRepositoryImpl) Create(ctx context.Context, s payroll.SalaryStructure) (payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_structures (company_id, employee_id, basic_salary, effective_date, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, company_id, employee_id, basic_salary, effective_date, is_active, created_at, updated_at
	`

	var created payroll.SalaryStructure
	err := q.QueryRow(ctx, query, s.CompanyID, s.EmployeeID, s.BasicSalary, s.EffectiveDate, s.IsActive).Scan(
		&created.ID, &created.CompanyID, &created.EmployeeID, &created.BasicSalary,
		&created.EffectiveDate, &created.IsActive, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return payroll.SalaryStructure{}, fmt.Errorf("failed to create salary structure: %w", err)
	}
	return created, nil
}

// GetCurrent implements payroll.SalaryStructureRepository.
func (r *salaryStructureRepositoryImpl) GetCurrent(ctx context.Context, companyID, employeeID string, asOf time.Time) (payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, basic_salary, effective_date, is_active, created_at, updated_at
		FROM salary_structures
		WHERE company_id = $1 AND employee_id = $2 AND is_active = TRUE AND effective_date <= $3
		ORDER BY effective_date DESC, id DESC
		LIMIT 1
	`

	var s payroll.SalaryStructure
	err := q.QueryRow(ctx, query, companyID, employeeID, asOf).Scan(
		&s.ID, &s.CompanyID, &s.EmployeeID, &s.BasicSalary, &s.EffectiveDate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.SalaryStructure{}, payroll.ErrSalaryStructureNotFound
		}
		return payroll.SalaryStructure{}, fmt.Errorf("failed to get salary structure: %w", err)
	}
	return s, nil
}
