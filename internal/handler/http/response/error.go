package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Employee / schedule
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, schedule.ErrNoScheduleFound):
		NotFound(w, "No work schedule found for date")

	// Attendance
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrInvalidImportFile):
		BadRequest(w, err.Error(), nil)

	// Compensation
	case errors.Is(err, compensation.ErrRuleNotFound):
		NotFound(w, "Compensation rule not found")
	case errors.Is(err, compensation.ErrAssignmentNotFound):
		NotFound(w, "Rule assignment not found")
	case errors.Is(err, compensation.ErrRuleCodeExists):
		Conflict(w, "Compensation rule code already exists")
	case errors.Is(err, compensation.ErrAssignmentExists):
		Conflict(w, "Rule assignment already starts on this date")
	case errors.Is(err, compensation.ErrAssignmentOverlap):
		Conflict(w, "Rule assignment overlaps an existing active assignment")

	// Payroll
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Pay period not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrPeriodExists):
		Conflict(w, "Pay period already exists for this date range")
	case errors.Is(err, payroll.ErrPeriodNotDraft):
		Conflict(w, "Pay period is not in draft status")
	case errors.Is(err, payroll.ErrStatusConflict):
		Conflict(w, "Pay period status changed, retry the request")
	case errors.Is(err, payroll.ErrSalaryStructureNotFound):
		NotFound(w, "Salary structure not found")
	case errors.Is(err, payroll.ErrPeriodNotRecalculable):
		Conflict(w, "Payslips of this pay period cannot be recalculated")
	case errors.Is(err, payroll.ErrNoActiveEmployees):
		BadRequest(w, "No active employees found", nil)
	case errors.Is(err, payroll.ErrNoBasicSalary):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
