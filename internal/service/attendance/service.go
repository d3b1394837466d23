package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/gocarina/gocsv"
)

type AttendanceServiceImpl struct {
	transactor     database.Transactor
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	resolver       schedule.Resolver
	clock          clock.Clock
}

func NewAttendanceService(
	transactor database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	resolver schedule.Resolver,
	clk clock.Clock,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		transactor:     transactor,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		resolver:       resolver,
		clock:          clk,
	}
}

// EvaluateAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EvaluateAttendance(ctx context.Context, companyID, employeeID string, date time.Time) (attendance.Record, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID, companyID); err != nil {
		return attendance.Record{}, err
	}

	var rec attendance.Record
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.evaluate(ctx, companyID, employeeID, clock.DateOf(date))
		return err
	})
	if err != nil {
		return attendance.Record{}, err
	}
	return rec, nil
}

// evaluate loads or creates the record, recomputes it against the resolved schedule and saves it.
func (s *AttendanceServiceImpl) evaluate(ctx context.Context, companyID, employeeID string, date time.Time) (attendance.Record, error) {
	rec, err := s.attendanceRepo.GetOrCreate(ctx, companyID, employeeID, date)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to load attendance record: %w", err)
	}

	var res *schedule.Resolution
	resolved, err := s.resolver.Resolve(ctx, companyID, employeeID, date)
	switch {
	case err == nil:
		res = &resolved
	case errors.Is(err, schedule.ErrNoScheduleFound):
		// evaluated as absent
	default:
		return attendance.Record{}, err
	}

	Evaluate(&rec, res)
	now := s.clock.Now().UTC()
	rec.EvaluatedAt = &now

	if err := s.attendanceRepo.SaveEvaluation(ctx, rec); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to save attendance evaluation: %w", err)
	}
	return rec, nil
}

// EvaluateDay implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EvaluateDay(ctx context.Context, companyID string, date time.Time) (attendance.EvaluateDayResult, error) {
	date = clock.DateOf(date)
	result := attendance.EvaluateDayResult{
		Date:   date.Format("2006-01-02"),
		Errors: []string{},
	}

	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return result, fmt.Errorf("failed to list active employees: %w", err)
	}

	for _, emp := range employees {
		err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := s.evaluate(ctx, companyID, emp.ID, date)
			return err
		})
		if err != nil {
			slog.Warn("Attendance evaluation failed", "company_id", companyID, "employee_id", emp.ID, "date", result.Date, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", emp.FullName, err))
			continue
		}
		result.Evaluated++
	}

	slog.Info("Attendance day evaluated", "company_id", companyID, "date", result.Date, "evaluated", result.Evaluated, "failed", len(result.Errors))
	return result, nil
}

// ImportPunches implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ImportPunches(ctx context.Context, companyID string, r io.Reader) (attendance.ImportResult, error) {
	var rows []*attendance.PunchRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return attendance.ImportResult{}, fmt.Errorf("%w: %v", attendance.ErrInvalidImportFile, err)
	}

	result := attendance.ImportResult{Rows: len(rows), Errors: []string{}}
	for i, row := range rows {
		// header is line 1
		line := i + 2
		if err := s.importRow(ctx, companyID, row); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.Imported++
	}

	slog.Info("Punches imported", "company_id", companyID, "rows", result.Rows, "imported", result.Imported)
	return result, nil
}

func (s *AttendanceServiceImpl) importRow(ctx context.Context, companyID string, row *attendance.PunchRow) error {
	date, punches, err := row.Parse()
	if err != nil {
		return err
	}
	if _, err := s.employeeRepo.GetByID(ctx, row.EmployeeID, companyID); err != nil {
		return err
	}

	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.attendanceRepo.GetOrCreate(ctx, companyID, row.EmployeeID, date)
		if err != nil {
			return fmt.Errorf("failed to load attendance record: %w", err)
		}
		if err := s.attendanceRepo.SavePunches(ctx, rec.ID, companyID, punches); err != nil {
			return fmt.Errorf("failed to save punches: %w", err)
		}
		_, err = s.evaluate(ctx, companyID, row.EmployeeID, date)
		return err
	})
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, companyID string, filter attendance.AttendanceFilter) ([]attendance.Record, error) {
	if _, err := s.employeeRepo.GetByID(ctx, filter.EmployeeID, companyID); err != nil {
		return nil, err
	}

	records, err := s.attendanceRepo.ListByEmployee(ctx, companyID, filter.EmployeeID, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	return records, nil
}
