package payroll

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

type CreatePeriodRequest struct {
	Name       string `json:"name"`
	PeriodType string `json:"period_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	PayDate    string `json:"pay_date"`
}

func (r *CreatePeriodRequest) ToPeriod(companyID string) (Period, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	periodType := r.PeriodType
	if periodType == "" {
		periodType = string(PeriodTypeMonthly)
	}
	if !validator.IsInSlice(periodType, PeriodTypeValues) {
		errs = append(errs, validator.ValidationError{Field: "period_type", Message: "period_type must be one of: " + strings.Join(PeriodTypeValues, ", ")})
	}

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	pay, okPay := validator.IsValidDate(r.PayDate)
	if !okPay {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "pay_date must be in YYYY-MM-DD format"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be on or after start_date"})
	}
	if okStart && okPay && pay.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "pay_date must be on or after start_date"})
	}

	if len(errs) > 0 {
		return Period{}, errs
	}

	return Period{
		CompanyID:  companyID,
		Name:       strings.TrimSpace(r.Name),
		PeriodType: PeriodType(periodType),
		StartDate:  start,
		EndDate:    end,
		PayDate:    pay,
		Status:     PeriodStatusDraft,
	}, nil
}

type PeriodResponse struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	PeriodType  PeriodType   `json:"period_type"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	PayDate     string       `json:"pay_date"`
	Status      PeriodStatus `json:"status"`
	ProcessedAt *time.Time   `json:"processed_at,omitempty"`
}

func NewPeriodResponse(p Period) PeriodResponse {
	return PeriodResponse{
		ID:          p.ID,
		Name:        p.Name,
		PeriodType:  p.PeriodType,
		StartDate:   p.StartDate.Format("2006-01-02"),
		EndDate:     p.EndDate.Format("2006-01-02"),
		PayDate:     p.PayDate.Format("2006-01-02"),
		Status:      p.Status,
		ProcessedAt: p.ProcessedAt,
	}
}

// ParsePeriodStatus validates an optional status query parameter.
func ParsePeriodStatus(s string) (*PeriodStatus, error) {
	if s == "" {
		return nil, nil
	}
	if !validator.IsInSlice(s, PeriodStatusValues) {
		return nil, validator.ValidationErrors{{Field: "status", Message: "status must be one of: " + strings.Join(PeriodStatusValues, ", ")}}
	}
	status := PeriodStatus(s)
	return &status, nil
}

// ========== PAYSLIP DTOs ==========

type ComponentResponse struct {
	RuleID          *string                      `json:"rule_id,omitempty"`
	ComponentType   compensation.RuleType        `json:"component_type"`
	Name            string                       `json:"name"`
	Code            string                       `json:"code"`
	CalculationType compensation.CalculationType `json:"calculation_type"`
	Amount          decimal.Decimal              `json:"amount"`
	DisplayOrder    int                          `json:"display_order"`
}

type PayslipResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	PeriodID     string  `json:"period_id"`

	BasicSalary             decimal.Decimal `json:"basic_salary"`
	Allowances              decimal.Decimal `json:"allowances"`
	OvertimePay             decimal.Decimal `json:"overtime_pay"`
	Bonus                   decimal.Decimal `json:"bonus"`
	OtherEarnings           decimal.Decimal `json:"other_earnings"`
	ProvidentFund           decimal.Decimal `json:"provident_fund"`
	TaxDeduction            decimal.Decimal `json:"tax_deduction"`
	LateAttendanceDeduction decimal.Decimal `json:"late_attendance_deduction"`
	OtherDeductions         decimal.Decimal `json:"other_deductions"`
	GrossSalary             decimal.Decimal `json:"gross_salary"`
	TotalDeductions         decimal.Decimal `json:"total_deductions"`
	NetSalary               decimal.Decimal `json:"net_salary"`

	AttendedDays  int             `json:"attended_days"`
	LateDays      int             `json:"late_days"`
	AbsentDays    int             `json:"absent_days"`
	WorkedHours   decimal.Decimal `json:"worked_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`

	GeneratedAt time.Time `json:"generated_at"`

	Earnings   []ComponentResponse `json:"earnings,omitempty"`
	Deductions []ComponentResponse `json:"deductions,omitempty"`
}

func NewPayslipResponse(p Payslip) PayslipResponse {
	resp := PayslipResponse{
		ID:                      p.ID,
		EmployeeID:              p.EmployeeID,
		EmployeeName:            p.EmployeeName,
		PeriodID:                p.PeriodID,
		BasicSalary:             p.BasicSalary,
		Allowances:              p.Allowances,
		OvertimePay:             p.OvertimePay,
		Bonus:                   p.Bonus,
		OtherEarnings:           p.OtherEarnings,
		ProvidentFund:           p.ProvidentFund,
		TaxDeduction:            p.TaxDeduction,
		LateAttendanceDeduction: p.LateAttendanceDeduction,
		OtherDeductions:         p.OtherDeductions,
		GrossSalary:             p.GrossSalary,
		TotalDeductions:         p.TotalDeductions,
		NetSalary:               p.NetSalary,
		AttendedDays:            p.AttendedDays,
		LateDays:                p.LateDays,
		AbsentDays:              p.AbsentDays,
		WorkedHours:             p.WorkedHours,
		OvertimeHours:           p.OvertimeHours,
		GeneratedAt:             p.GeneratedAt,
	}
	for _, c := range p.Components {
		cr := ComponentResponse{
			RuleID:          c.RuleID,
			ComponentType:   c.ComponentType,
			Name:            c.Name,
			Code:            c.Code,
			CalculationType: c.CalculationType,
			Amount:          c.Amount,
			DisplayOrder:    c.DisplayOrder,
		}
		if c.ComponentType == compensation.RuleTypeEarning {
			resp.Earnings = append(resp.Earnings, cr)
		} else {
			resp.Deductions = append(resp.Deductions, cr)
		}
	}
	return resp
}

// ========== SALARY STRUCTURE DTOs ==========

type CreateSalaryStructureRequest struct {
	EmployeeID    string          `json:"-"`
	BasicSalary   decimal.Decimal `json:"basic_salary"`
	EffectiveDate string          `json:"effective_date"`
}

func (r *CreateSalaryStructureRequest) ToSalaryStructure(companyID string) (SalaryStructure, error) {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	if !r.BasicSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "basic_salary must be greater than zero"})
	}
	date, ok := validator.IsValidDate(r.EffectiveDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "effective_date must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return SalaryStructure{}, errs
	}
	return SalaryStructure{
		CompanyID:     companyID,
		EmployeeID:    r.EmployeeID,
		BasicSalary:   r.BasicSalary,
		EffectiveDate: date,
		IsActive:      true,
	}, nil
}

type SalaryStructureResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	BasicSalary   decimal.Decimal `json:"basic_salary"`
	EffectiveDate string          `json:"effective_date"`
	IsActive      bool            `json:"is_active"`
}

func NewSalaryStructureResponse(s SalaryStructure) SalaryStructureResponse {
	return SalaryStructureResponse{
		ID:            s.ID,
		EmployeeID:    s.EmployeeID,
		BasicSalary:   s.BasicSalary,
		EffectiveDate: s.EffectiveDate.Format("2006-01-02"),
		IsActive:      s.IsActive,
	}
}
