package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

type PeriodStatus string

const (
	PeriodStatusDraft      PeriodStatus = "draft"
	PeriodStatusProcessing PeriodStatus = "processing"
	PeriodStatusCompleted  PeriodStatus = "completed"
	PeriodStatusCancelled  PeriodStatus = "cancelled"
)

var PeriodStatusValues = []string{
	string(PeriodStatusDraft),
	string(PeriodStatusProcessing),
	string(PeriodStatusCompleted),
	string(PeriodStatusCancelled),
}

type PeriodType string

const (
	PeriodTypeMonthly  PeriodType = "monthly"
	PeriodTypeBiweekly PeriodType = "biweekly"
	PeriodTypeWeekly   PeriodType = "weekly"
)

var PeriodTypeValues = []string{
	string(PeriodTypeMonthly),
	string(PeriodTypeBiweekly),
	string(PeriodTypeWeekly),
}

// Period is the accounting window a payroll run covers.
type Period struct {
	ID          string
	CompanyID   string
	Name        string
	PeriodType  PeriodType
	StartDate   time.Time
	EndDate     time.Time
	PayDate     time.Time
	Status      PeriodStatus
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Period) Range() clock.DateRange {
	return clock.DateRange{Start: p.StartDate, End: p.EndDate}
}

// SalaryStructure is the last-resort source of an employee's basic pay.
type SalaryStructure struct {
	ID            string
	CompanyID     string
	EmployeeID    string
	BasicSalary   decimal.Decimal
	EffectiveDate time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Rule codes that feed the payslip's summary buckets. Any other code lands in the
// "other" bucket of its type.
const (
	CodeOvertime      = "OT"
	CodeProvidentFund = "PF"
	CodeLate          = "LATE"
)

var (
	AllowanceCodes = []string{"HRA", "TA", "MA", "SA"}
	TaxCodes       = []string{"TDS", "TAX"}
)

type Payslip struct {
	ID         string
	CompanyID  string
	EmployeeID string
	PeriodID   string

	// Earnings
	BasicSalary   decimal.Decimal
	Allowances    decimal.Decimal
	OvertimePay   decimal.Decimal
	Bonus         decimal.Decimal
	OtherEarnings decimal.Decimal

	// Deductions
	ProvidentFund           decimal.Decimal
	TaxDeduction            decimal.Decimal
	LateAttendanceDeduction decimal.Decimal
	OtherDeductions         decimal.Decimal

	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal

	// Attendance the payslip was computed from
	AttendedDays  int
	LateDays      int
	AbsentDays    int
	WorkedHours   decimal.Decimal
	OvertimeHours decimal.Decimal

	GeneratedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Components []Component

	// DTO
	EmployeeName *string
}

// Component is one line item of a payslip.
type Component struct {
	ID              string
	CompanyID       string
	PayslipID       string
	RuleID          *string
	ComponentType   compensation.RuleType
	Name            string
	Code            string
	CalculationType compensation.CalculationType
	Amount          decimal.Decimal
	DisplayOrder    int
}

// RunResult reports the outcome of a payroll run. Errors holds one message per employee
// that could not be paid.
type RunResult struct {
	PeriodID       string       `json:"period_id"`
	Status         PeriodStatus `json:"status"`
	TotalEmployees int          `json:"total_employees"`
	Created        int          `json:"payslips_created"`
	Errors         []string     `json:"errors"`
}

type Summary struct {
	PeriodID         string          `json:"period_id"`
	EmployeeCount    int             `json:"employee_count"`
	TotalBasicSalary decimal.Decimal `json:"total_basic_salary"`
	TotalAllowances  decimal.Decimal `json:"total_allowances"`
	TotalOvertime    decimal.Decimal `json:"total_overtime"`
	TotalGross       decimal.Decimal `json:"total_gross_salary"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	TotalNet         decimal.Decimal `json:"total_net_salary"`
}
