package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
)

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	employeeRepo      employee.EmployeeRepository
	clock             clock.Clock
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, employeeRepo employee.EmployeeRepository, clk clock.Clock) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		employeeRepo:      employeeRepo,
		clock:             clk,
	}
}

// RegisterJobs schedules the nightly evaluation of the previous day.
func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration, hour int) {
	scheduler.AddDailyJob("evaluate_previous_day_attendance", interval, hour, j.EvaluatePreviousDay)
}

// EvaluatePreviousDay evaluates yesterday's attendance for every company with payable
// employees. A failing company does not stop the others.
func (j *AttendanceJobs) EvaluatePreviousDay(ctx context.Context) error {
	date := clock.Today(j.clock).AddDate(0, 0, -1)
	slog.Info("Cron: Starting attendance evaluation", "date", date.Format("2006-01-02"))

	companyIDs, err := j.employeeRepo.ListCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	var errs []error
	for _, companyID := range companyIDs {
		result, err := j.attendanceService.EvaluateDay(ctx, companyID, date)
		if err != nil {
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}
		slog.Info("Cron: Attendance evaluated",
			"company_id", companyID,
			"evaluated", result.Evaluated,
			"failed", len(result.Errors),
		)
	}

	return errors.Join(errs...)
}
