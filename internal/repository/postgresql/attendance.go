package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	id, company_id, employee_id, date, check_in_time, check_out_time, break_start_time, break_end_time,
	total_hours, working_hours, break_hours, overtime_hours, is_late, late_minutes,
	is_early_departure, early_departure_minutes, status, evaluated_at, created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var (
		rec                                  attendance.Record
		checkIn, checkOut, breakStart, brEnd pgtype.Time
	)
	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &rec.Date,
		&checkIn, &checkOut, &breakStart, &brEnd,
		&rec.TotalHours, &rec.WorkingHours, &rec.BreakHours, &rec.OvertimeHours,
		&rec.IsLate, &rec.LateMinutes, &rec.IsEarlyDeparture, &rec.EarlyDepartureMinutes,
		&rec.Status, &rec.EvaluatedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}
	rec.CheckInTime = fromPgTime(checkIn)
	rec.CheckOutTime = fromPgTime(checkOut)
	rec.BreakStartTime = fromPgTime(breakStart)
	rec.BreakEndTime = fromPgTime(brEnd)
	return rec, nil
}

// GetOrCreate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetOrCreate(ctx context.Context, companyID, employeeID string, date time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	// DO UPDATE with a no-op assignment makes RETURNING yield the existing row as well.
	query := `
		INSERT INTO attendance_records (company_id, employee_id, date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT uq_attendance_records_employee_date
		DO UPDATE SET company_id = EXCLUDED.company_id
		RETURNING ` + attendanceColumns

	rec, err := scanAttendance(q.QueryRow(ctx, query, companyID, employeeID, clock.DateOf(date), attendance.StatusAbsent))
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to get or create attendance record: %w", err)
	}
	return rec, nil
}

// GetByEmployeeDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeDate(ctx context.Context, companyID, employeeID string, date time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE company_id = $1 AND employee_id = $2 AND date = $3`

	rec, err := scanAttendance(q.QueryRow(ctx, query, companyID, employeeID, clock.DateOf(date)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return rec, nil
}

// SavePunches implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) SavePunches(ctx context.Context, id string, companyID string, punches attendance.Punches) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records
		SET check_in_time = $3, check_out_time = $4, break_start_time = $5, break_end_time = $6, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, id, companyID,
		toPgTime(punches.CheckInTime), toPgTime(punches.CheckOutTime),
		toPgTime(punches.BreakStartTime), toPgTime(punches.BreakEndTime),
	)
	if err != nil {
		return fmt.Errorf("failed to save punches: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// SaveEvaluation implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) SaveEvaluation(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records
		SET total_hours = $3, working_hours = $4, break_hours = $5, overtime_hours = $6,
			is_late = $7, late_minutes = $8, is_early_departure = $9, early_departure_minutes = $10,
			status = $11, evaluated_at = $12, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, rec.ID, rec.CompanyID,
		rec.TotalHours, rec.WorkingHours, rec.BreakHours, rec.OvertimeHours,
		rec.IsLate, rec.LateMinutes, rec.IsEarlyDeparture, rec.EarlyDepartureMinutes,
		rec.Status, rec.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save attendance evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE company_id = $1 AND employee_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date`

	rows, err := q.Query(ctx, query, companyID, employeeID, clock.DateOf(from), clock.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}

// Summarize implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Summarize(ctx context.Context, companyID, employeeID string, from, to time.Time) (attendance.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('present', 'late', 'half_day')),
			COUNT(*) FILTER (WHERE status IN ('present', 'late', 'half_day') AND is_late),
			COUNT(*) FILTER (WHERE status = 'absent'),
			COALESCE(SUM(working_hours) FILTER (WHERE status IN ('present', 'late', 'half_day')), 0),
			COALESCE(SUM(overtime_hours) FILTER (WHERE status IN ('present', 'late', 'half_day')), 0)
		FROM attendance_records
		WHERE company_id = $1 AND employee_id = $2 AND date BETWEEN $3 AND $4
	`

	sum := attendance.Summary{EmployeeID: employeeID}
	err := q.QueryRow(ctx, query, companyID, employeeID, clock.DateOf(from), clock.DateOf(to)).Scan(
		&sum.AttendedDays, &sum.LateDays, &sum.AbsentDays, &sum.WorkedHours, &sum.OvertimeHours,
	)
	if err != nil {
		return attendance.Summary{}, fmt.Errorf("failed to summarize attendance: %w", err)
	}
	return sum, nil
}
