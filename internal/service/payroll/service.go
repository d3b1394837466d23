package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

type PayrollServiceImpl struct {
	transactor     database.Transactor
	periodRepo     payroll.PeriodRepository
	payslipRepo    payroll.PayslipRepository
	salaryRepo     payroll.SalaryStructureRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	resolver       compensation.RuleResolver
	clock          clock.Clock
	workers        int
}

func NewPayrollService(
	transactor database.Transactor,
	periodRepo payroll.PeriodRepository,
	payslipRepo payroll.PayslipRepository,
	salaryRepo payroll.SalaryStructureRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	resolver compensation.RuleResolver,
	clk clock.Clock,
	workers int,
) payroll.PayrollService {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &PayrollServiceImpl{
		transactor:     transactor,
		periodRepo:     periodRepo,
		payslipRepo:    payslipRepo,
		salaryRepo:     salaryRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		resolver:       resolver,
		clock:          clk,
		workers:        workers,
	}
}

// ========== PERIODS ==========

// CreatePeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, companyID string, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	period, err := req.ToPeriod(companyID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	created, err := s.periodRepo.Create(ctx, period)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	slog.Info("Pay period created", "company_id", companyID, "period_id", created.ID, "start_date", created.StartDate.Format("2006-01-02"), "end_date", created.EndDate.Format("2006-01-02"))
	return payroll.NewPeriodResponse(created), nil
}

// GetPeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, companyID string, id string) (payroll.PeriodResponse, error) {
	period, err := s.periodRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(period), nil
}

// ListPeriods implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, companyID string, status *payroll.PeriodStatus) ([]payroll.PeriodResponse, error) {
	periods, err := s.periodRepo.List(ctx, companyID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list pay periods: %w", err)
	}

	resp := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		resp = append(resp, payroll.NewPeriodResponse(p))
	}
	return resp, nil
}

// GetPeriodSummary implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPeriodSummary(ctx context.Context, companyID string, periodID string) (payroll.Summary, error) {
	if _, err := s.periodRepo.GetByID(ctx, periodID, companyID); err != nil {
		return payroll.Summary{}, err
	}

	summary, err := s.payslipRepo.Summarize(ctx, periodID, companyID)
	if err != nil {
		return payroll.Summary{}, fmt.Errorf("failed to summarize payroll: %w", err)
	}
	return summary, nil
}

// ========== RUN ==========

type outcome struct {
	payslip payroll.Payslip
	err     error
}

// RunPayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) RunPayroll(ctx context.Context, companyID string, periodID string) (payroll.RunResult, error) {
	period, err := s.periodRepo.GetByID(ctx, periodID, companyID)
	if err != nil {
		return payroll.RunResult{}, err
	}
	if period.Status != payroll.PeriodStatusDraft {
		return payroll.RunResult{}, payroll.ErrPeriodNotDraft
	}

	employees, err := s.payableEmployees(ctx, companyID)
	if err != nil {
		return payroll.RunResult{}, err
	}
	if len(employees) == 0 {
		return payroll.RunResult{}, payroll.ErrNoActiveEmployees
	}

	if err := s.periodRepo.TransitionStatus(ctx, period.ID, companyID, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing); err != nil {
		if errors.Is(err, payroll.ErrStatusConflict) {
			return payroll.RunResult{}, payroll.ErrPeriodNotDraft
		}
		return payroll.RunResult{}, fmt.Errorf("failed to start payroll run: %w", err)
	}

	result := payroll.RunResult{
		PeriodID:       period.ID,
		Status:         payroll.PeriodStatusProcessing,
		TotalEmployees: len(employees),
		Errors:         []string{},
	}
	slog.Info("Payroll run started", "company_id", companyID, "period_id", period.ID, "employees", len(employees))

	outcomes := make([]outcome, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, emp := range employees {
		g.Go(func() error {
			slip, err := s.calculate(gctx, period, emp)
			if err != nil {
				if !errors.Is(err, payroll.ErrNoBasicSalary) {
					return fmt.Errorf("employee %s: %w", emp.ID, err)
				}
				outcomes[i].err = err
				return nil
			}
			outcomes[i].payslip = slip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("Payroll run aborted", "company_id", companyID, "period_id", period.ID, "error", err)
		result.Status = s.revertToDraft(ctx, period)
		return result, fmt.Errorf("failed to calculate payroll: %w", err)
	}

	var payslips []payroll.Payslip
	for i, o := range outcomes {
		if o.err != nil {
			slog.Warn("Employee skipped in payroll run", "period_id", period.ID, "employee_id", employees[i].ID, "error", o.err)
			result.Errors = append(result.Errors, o.err.Error())
			continue
		}
		payslips = append(payslips, o.payslip)
	}

	if len(payslips) == 0 {
		result.Status = s.revertToDraft(ctx, period)
		return result, payroll.ErrRunFailed
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, slip := range payslips {
			if err := s.save(ctx, slip); err != nil {
				return err
			}
		}
		return s.periodRepo.TransitionStatus(ctx, period.ID, companyID, payroll.PeriodStatusProcessing, payroll.PeriodStatusCompleted)
	})
	if err != nil {
		slog.Error("Payroll run could not be saved", "company_id", companyID, "period_id", period.ID, "error", err)
		result.Status = s.revertToDraft(ctx, period)
		return result, fmt.Errorf("failed to save payroll run: %w", err)
	}

	result.Status = payroll.PeriodStatusCompleted
	result.Created = len(payslips)
	slog.Info("Payroll run completed", "company_id", companyID, "period_id", period.ID, "created", result.Created, "failed", len(result.Errors))
	return result, nil
}

// revertToDraft returns a processing period to draft. It ignores ctx cancellation so an
// aborted run never leaves the period stuck in processing.
func (s *PayrollServiceImpl) revertToDraft(ctx context.Context, period payroll.Period) payroll.PeriodStatus {
	err := s.periodRepo.TransitionStatus(context.WithoutCancel(ctx), period.ID, period.CompanyID, payroll.PeriodStatusProcessing, payroll.PeriodStatusDraft)
	if err != nil {
		slog.Error("Failed to revert pay period to draft", "period_id", period.ID, "error", err)
		return payroll.PeriodStatusProcessing
	}
	return payroll.PeriodStatusDraft
}

func (s *PayrollServiceImpl) payableEmployees(ctx context.Context, companyID string) ([]employee.Employee, error) {
	all, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active employees: %w", err)
	}
	employees := make([]employee.Employee, 0, len(all))
	for _, e := range all {
		if e.IsPayable() {
			employees = append(employees, e)
		}
	}
	return employees, nil
}

// calculate computes one employee's payslip for the period without writing anything. A missing
// basic salary is reported as ErrNoBasicSalary; every other error is a storage fault.
func (s *PayrollServiceImpl) calculate(ctx context.Context, period payroll.Period, emp employee.Employee) (payroll.Payslip, error) {
	rng := period.Range()

	basic, err := s.basicPay(ctx, period, emp)
	if err != nil {
		return payroll.Payslip{}, err
	}

	att, err := s.attendanceRepo.Summarize(ctx, period.CompanyID, emp.ID, rng.Start, rng.End)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to summarize attendance: %w", err)
	}

	in := compensation.Inputs{
		BaseAmount:      basic,
		AttendanceHours: att.WorkedHours,
		OvertimeHours:   att.OvertimeHours,
		ProductionUnits: decimal.Zero,
	}

	earnings, err := s.resolver.ResolveLines(ctx, period.CompanyID, emp.ID, compensation.RuleTypeEarning, rng, in)
	if err != nil {
		return payroll.Payslip{}, err
	}
	deductions, err := s.resolver.ResolveLines(ctx, period.CompanyID, emp.ID, compensation.RuleTypeDeduction, rng, in)
	if err != nil {
		return payroll.Payslip{}, err
	}

	slip := BuildPayslip(earnings, deductions, att)
	slip.CompanyID = period.CompanyID
	slip.EmployeeID = emp.ID
	slip.PeriodID = period.ID
	slip.GeneratedAt = s.clock.Now().UTC()
	return slip, nil
}

// basicPay tries the BASIC assignment, then the BASIC rule, then the salary structure.
func (s *PayrollServiceImpl) basicPay(ctx context.Context, period payroll.Period, emp employee.Employee) (decimal.Decimal, error) {
	amount, ok, err := s.resolver.ResolveBasicPay(ctx, period.CompanyID, emp.ID, period.Range())
	if err != nil {
		return decimal.Zero, err
	}
	if ok {
		return amount, nil
	}

	structure, err := s.salaryRepo.GetCurrent(ctx, period.CompanyID, emp.ID, period.EndDate)
	switch {
	case errors.Is(err, payroll.ErrSalaryStructureNotFound):
		return decimal.Zero, fmt.Errorf("%w for %s", payroll.ErrNoBasicSalary, emp.FullName)
	case err != nil:
		return decimal.Zero, fmt.Errorf("failed to get salary structure: %w", err)
	}
	if !structure.BasicSalary.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w for %s", payroll.ErrNoBasicSalary, emp.FullName)
	}
	return structure.BasicSalary, nil
}

// save upserts the payslip and replaces its components. Callers provide the transaction.
func (s *PayrollServiceImpl) save(ctx context.Context, slip payroll.Payslip) error {
	saved, err := s.payslipRepo.Upsert(ctx, slip)
	if err != nil {
		return fmt.Errorf("failed to save payslip for employee %s: %w", slip.EmployeeID, err)
	}
	if err := s.payslipRepo.ReplaceComponents(ctx, saved.ID, slip.CompanyID, slip.Components); err != nil {
		return fmt.Errorf("failed to save payslip components for employee %s: %w", slip.EmployeeID, err)
	}
	return nil
}

// RecalculatePayslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) RecalculatePayslip(ctx context.Context, companyID string, payslipID string) (payroll.PayslipResponse, error) {
	existing, err := s.payslipRepo.GetByID(ctx, payslipID, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	period, err := s.periodRepo.GetByID(ctx, existing.PeriodID, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	if period.Status != payroll.PeriodStatusDraft && period.Status != payroll.PeriodStatusCompleted {
		return payroll.PayslipResponse{}, payroll.ErrPeriodNotRecalculable
	}

	emp, err := s.employeeRepo.GetByID(ctx, existing.EmployeeID, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	slip, err := s.calculate(ctx, period, emp)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.save(ctx, slip)
	})
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	updated, err := s.payslipRepo.GetByID(ctx, payslipID, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	slog.Info("Payslip recalculated", "company_id", companyID, "payslip_id", payslipID, "net_salary", updated.NetSalary.String())
	return payroll.NewPayslipResponse(updated), nil
}

// ========== PAYSLIPS ==========

// GetPayslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, companyID string, id string) (payroll.PayslipResponse, error) {
	slip, err := s.payslipRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return payroll.NewPayslipResponse(slip), nil
}

// ListPayslips implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, companyID string, periodID string) ([]payroll.PayslipResponse, error) {
	if _, err := s.periodRepo.GetByID(ctx, periodID, companyID); err != nil {
		return nil, err
	}

	slips, err := s.payslipRepo.ListByPeriod(ctx, periodID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}

	resp := make([]payroll.PayslipResponse, 0, len(slips))
	for _, p := range slips {
		resp = append(resp, payroll.NewPayslipResponse(p))
	}
	return resp, nil
}

// ========== SALARY STRUCTURES ==========

// CreateSalaryStructure implements payroll.PayrollService.
func (s *PayrollServiceImpl) CreateSalaryStructure(ctx context.Context, companyID string, req payroll.CreateSalaryStructureRequest) (payroll.SalaryStructureResponse, error) {
	structure, err := req.ToSalaryStructure(companyID)
	if err != nil {
		return payroll.SalaryStructureResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, structure.EmployeeID, companyID); err != nil {
		return payroll.SalaryStructureResponse{}, err
	}

	created, err := s.salaryRepo.Create(ctx, structure)
	if err != nil {
		return payroll.SalaryStructureResponse{}, err
	}
	return payroll.NewSalaryStructureResponse(created), nil
}
