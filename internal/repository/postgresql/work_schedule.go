package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgtype"
)

type workScheduleRepositoryImpl struct {
	db *database.DB
}

func NewWorkScheduleRepository(db *database.DB) schedule.WorkScheduleRepository {
	return &workScheduleRepositoryImpl{db: db}
}

// FindCandidates implements schedule.WorkScheduleRepository.
func (w *workScheduleRepositoryImpl) FindCandidates(ctx context.Context, companyID, employeeID string, date time.Time) ([]schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT ws.id, ws.company_id, ws.name, ws.shift_id, ws.start_date, ws.end_date,
			ws.monday, ws.tuesday, ws.wednesday, ws.thursday, ws.friday, ws.saturday, ws.sunday,
			ws.is_active, ws.created_at, ws.updated_at,
			(SELECT array_agg(wse.employee_id::text ORDER BY wse.employee_id)
				FROM work_schedule_employees wse WHERE wse.work_schedule_id = ws.id) AS employee_ids,
			s.id, s.company_id, s.name, s.code, s.start_time, s.end_time,
			s.break_start_time, s.break_end_time, s.working_hours, s.grace_period_minutes,
			s.overtime_start_after_hours, s.is_active, s.created_at, s.updated_at
		FROM work_schedules ws
		JOIN shifts s ON s.id = ws.shift_id AND s.company_id = ws.company_id
		WHERE ws.company_id = $1
		  AND ws.is_active = TRUE
		  AND ws.start_date <= $3::date
		  AND (ws.end_date IS NULL OR ws.end_date >= $3::date)
		  AND EXISTS (
			SELECT 1 FROM work_schedule_employees wse
			WHERE wse.work_schedule_id = ws.id AND wse.employee_id = $2
		  )
		ORDER BY ws.start_date DESC, ws.created_at DESC, ws.id DESC
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, clock.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query work schedules: %w", err)
	}
	defer rows.Close()

	var schedules []schedule.WorkSchedule
	for rows.Next() {
		var (
			ws                               schedule.WorkSchedule
			employeeIDs                      []string
			start, end, breakStart, breakEnd pgtype.Time
		)
		d := &ws.WorkingDays
		err := rows.Scan(
			&ws.ID, &ws.CompanyID, &ws.Name, &ws.ShiftID, &ws.StartDate, &ws.EndDate,
			&d[0], &d[1], &d[2], &d[3], &d[4], &d[5], &d[6],
			&ws.IsActive, &ws.CreatedAt, &ws.UpdatedAt,
			&employeeIDs,
			&ws.Shift.ID, &ws.Shift.CompanyID, &ws.Shift.Name, &ws.Shift.Code, &start, &end,
			&breakStart, &breakEnd, &ws.Shift.WorkingHours, &ws.Shift.GracePeriodMinutes,
			&ws.Shift.OvertimeStartAfterHours, &ws.Shift.IsActive, &ws.Shift.CreatedAt, &ws.Shift.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work schedule: %w", err)
		}
		ws.EmployeeIDs = employeeIDs
		ws.Shift.StartTime = *fromPgTime(start)
		ws.Shift.EndTime = *fromPgTime(end)
		ws.Shift.BreakStartTime = fromPgTime(breakStart)
		ws.Shift.BreakEndTime = fromPgTime(breakEnd)
		schedules = append(schedules, ws)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work schedules: %w", err)
	}
	return schedules, nil
}
