package payroll

import (
	"slices"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// BuildPayslip folds evaluated lines and an attendance summary into a payslip. Each line lands
// in exactly one bucket by code and buckets accumulate, so the flat fields always add up to
// gross and total deductions.
func BuildPayslip(earnings, deductions []compensation.Line, att attendance.Summary) payroll.Payslip {
	p := payroll.Payslip{
		BasicSalary:             decimal.Zero,
		Allowances:              decimal.Zero,
		OvertimePay:             decimal.Zero,
		Bonus:                   decimal.Zero,
		OtherEarnings:           decimal.Zero,
		ProvidentFund:           decimal.Zero,
		TaxDeduction:            decimal.Zero,
		LateAttendanceDeduction: decimal.Zero,
		OtherDeductions:         decimal.Zero,
		GrossSalary:             decimal.Zero,
		TotalDeductions:         decimal.Zero,

		AttendedDays:  att.AttendedDays,
		LateDays:      att.LateDays,
		AbsentDays:    att.AbsentDays,
		WorkedHours:   att.WorkedHours,
		OvertimeHours: att.OvertimeHours,
	}

	for _, l := range earnings {
		switch {
		case l.Code == compensation.CodeBasic:
			p.BasicSalary = p.BasicSalary.Add(l.Amount)
		case l.Code == payroll.CodeOvertime:
			p.OvertimePay = p.OvertimePay.Add(l.Amount)
		case slices.Contains(payroll.AllowanceCodes, l.Code):
			p.Allowances = p.Allowances.Add(l.Amount)
		default:
			p.OtherEarnings = p.OtherEarnings.Add(l.Amount)
		}
		p.GrossSalary = p.GrossSalary.Add(l.Amount)
	}

	for _, l := range deductions {
		switch {
		case l.Code == payroll.CodeProvidentFund:
			p.ProvidentFund = p.ProvidentFund.Add(l.Amount)
		case slices.Contains(payroll.TaxCodes, l.Code):
			p.TaxDeduction = p.TaxDeduction.Add(l.Amount)
		case l.Code == payroll.CodeLate:
			p.LateAttendanceDeduction = p.LateAttendanceDeduction.Add(l.Amount)
		default:
			p.OtherDeductions = p.OtherDeductions.Add(l.Amount)
		}
		p.TotalDeductions = p.TotalDeductions.Add(l.Amount)
	}

	p.NetSalary = p.GrossSalary.Sub(p.TotalDeductions)
	p.Components = append(toComponents(earnings), toComponents(deductions)...)
	return p
}

// display_order restarts at zero for each component type
func toComponents(lines []compensation.Line) []payroll.Component {
	comps := make([]payroll.Component, 0, len(lines))
	for i, l := range lines {
		comps = append(comps, payroll.Component{
			RuleID:          l.RuleID,
			ComponentType:   l.Type,
			Name:            l.Name,
			Code:            l.Code,
			CalculationType: l.CalculationType,
			Amount:          l.Amount,
			DisplayOrder:    i,
		})
	}
	return comps
}
