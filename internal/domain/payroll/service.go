package payroll

import (
	"context"
)

type PayrollService interface {
	// Periods
	CreatePeriod(ctx context.Context, companyID string, req CreatePeriodRequest) (PeriodResponse, error)
	GetPeriod(ctx context.Context, companyID string, id string) (PeriodResponse, error)
	ListPeriods(ctx context.Context, companyID string, status *PeriodStatus) ([]PeriodResponse, error)
	GetPeriodSummary(ctx context.Context, companyID string, periodID string) (Summary, error)

	// RunPayroll computes a payslip for every active employee of a draft period. When no payslip
	// could be created the period returns to draft and ErrRunFailed is returned with the result.
	RunPayroll(ctx context.Context, companyID string, periodID string) (RunResult, error)

	// RecalculatePayslip recomputes one payslip and replaces its components.
	RecalculatePayslip(ctx context.Context, companyID string, payslipID string) (PayslipResponse, error)

	// Payslips
	GetPayslip(ctx context.Context, companyID string, id string) (PayslipResponse, error)
	ListPayslips(ctx context.Context, companyID string, periodID string) ([]PayslipResponse, error)

	// Salary structures
	CreateSalaryStructure(ctx context.Context, companyID string, req CreateSalaryStructureRequest) (SalaryStructureResponse, error)
}
