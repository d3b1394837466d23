package payroll

import "errors"

var (
	ErrPeriodNotFound          = errors.New("pay period not found")
	ErrPeriodExists            = errors.New("pay period already exists for this date range")
	ErrPeriodNotDraft          = errors.New("pay period is not in draft status")
	ErrPeriodNotRecalculable   = errors.New("payslips of this pay period cannot be recalculated")
	ErrNoActiveEmployees       = errors.New("no active employees found")
	ErrRunFailed               = errors.New("payroll run created no payslips")
	ErrPayslipNotFound         = errors.New("payslip not found")
	ErrNoBasicSalary           = errors.New("no basic salary configured")
	ErrSalaryStructureNotFound = errors.New("salary structure not found")
	ErrStatusConflict          = errors.New("pay period status changed concurrently")
)
