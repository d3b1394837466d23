package payroll

import (
	"context"
	"time"
)

// All methods take companyID so one company can never read another's payroll.
type PeriodRepository interface {
	Create(ctx context.Context, period Period) (Period, error)
	GetByID(ctx context.Context, id string, companyID string) (Period, error)
	List(ctx context.Context, companyID string, status *PeriodStatus) ([]Period, error)
	// TransitionStatus sets the status to `to` only if it is currently `from`, returning
	// ErrStatusConflict otherwise.
	TransitionStatus(ctx context.Context, id string, companyID string, from, to PeriodStatus) error
}

type PayslipRepository interface {
	// Upsert inserts the payslip or overwrites the one already stored for the same
	// (company, employee, period).
	Upsert(ctx context.Context, payslip Payslip) (Payslip, error)
	// ReplaceComponents deletes every component of the payslip and inserts comps.
	ReplaceComponents(ctx context.Context, payslipID string, companyID string, comps []Component) error
	// GetByID returns the payslip with its components.
	GetByID(ctx context.Context, id string, companyID string) (Payslip, error)
	ListByPeriod(ctx context.Context, periodID string, companyID string) ([]Payslip, error)
	Summarize(ctx context.Context, periodID string, companyID string) (Summary, error)
}

type SalaryStructureRepository interface {
	Create(ctx context.Context, s SalaryStructure) (SalaryStructure, error)
	// GetCurrent returns the latest active structure effective on or before asOf.
	GetCurrent(ctx context.Context, companyID, employeeID string, asOf time.Time) (SalaryStructure, error)
}
