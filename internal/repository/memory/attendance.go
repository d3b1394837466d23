package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

type attendanceRepository struct {
	s *Store
}

func NewAttendanceRepository(s *Store) attendance.AttendanceRepository {
	return &attendanceRepository{s: s}
}

// GetOrCreate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetOrCreate(ctx context.Context, companyID, employeeID string, date time.Time) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := recordKey{companyID: companyID, employeeID: employeeID, date: clock.DateOf(date)}
	if id, ok := r.s.data.recordIndex[key]; ok {
		return r.s.data.records[id], nil
	}

	now := r.s.now()
	rec := attendance.Record{
		ID:            newID(),
		CompanyID:     companyID,
		EmployeeID:    employeeID,
		Date:          key.date,
		TotalHours:    decimal.Zero,
		WorkingHours:  decimal.Zero,
		BreakHours:    decimal.Zero,
		OvertimeHours: decimal.Zero,
		Status:        attendance.StatusAbsent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.s.data.records[rec.ID] = rec
	r.s.data.recordIndex[key] = rec.ID
	return rec, nil
}

// GetByEmployeeDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeDate(ctx context.Context, companyID, employeeID string, date time.Time) (attendance.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.data.recordIndex[recordKey{companyID: companyID, employeeID: employeeID, date: clock.DateOf(date)}]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return r.s.data.records[id], nil
}

// SavePunches implements attendance.AttendanceRepository.
func (r *attendanceRepository) SavePunches(ctx context.Context, id string, companyID string, punches attendance.Punches) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.data.records[id]
	if !ok || rec.CompanyID != companyID {
		return attendance.ErrAttendanceNotFound
	}
	rec.CheckInTime = punches.CheckInTime
	rec.CheckOutTime = punches.CheckOutTime
	rec.BreakStartTime = punches.BreakStartTime
	rec.BreakEndTime = punches.BreakEndTime
	rec.UpdatedAt = r.s.now()
	r.s.data.records[id] = rec
	return nil
}

// SaveEvaluation implements attendance.AttendanceRepository.
func (r *attendanceRepository) SaveEvaluation(ctx context.Context, in attendance.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.data.records[in.ID]
	if !ok || rec.CompanyID != in.CompanyID {
		return attendance.ErrAttendanceNotFound
	}
	rec.TotalHours = in.TotalHours
	rec.WorkingHours = in.WorkingHours
	rec.BreakHours = in.BreakHours
	rec.OvertimeHours = in.OvertimeHours
	rec.IsLate = in.IsLate
	rec.LateMinutes = in.LateMinutes
	rec.IsEarlyDeparture = in.IsEarlyDeparture
	rec.EarlyDepartureMinutes = in.EarlyDepartureMinutes
	rec.Status = in.Status
	rec.EvaluatedAt = in.EvaluatedAt
	rec.UpdatedAt = r.s.now()
	r.s.data.records[in.ID] = rec
	return nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rng := clock.DateRange{Start: clock.DateOf(from), End: clock.DateOf(to)}
	var out []attendance.Record
	for _, rec := range r.s.data.records {
		if rec.CompanyID == companyID && rec.EmployeeID == employeeID && rng.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Summarize implements attendance.AttendanceRepository.
func (r *attendanceRepository) Summarize(ctx context.Context, companyID, employeeID string, from, to time.Time) (attendance.Summary, error) {
	records, err := r.ListByEmployee(ctx, companyID, employeeID, from, to)
	if err != nil {
		return attendance.Summary{}, err
	}
	return attendance.Summarize(employeeID, records), nil
}
