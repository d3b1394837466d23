package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// REQUEST DTOs
// ========================================

type EvaluateAttendanceRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
}

func (r *EvaluateAttendanceRequest) Validate() (time.Time, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}

	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return time.Time{}, errs
	}
	return date, nil
}

type EvaluateDayRequest struct {
	Date string `json:"date"`
}

func (r *EvaluateDayRequest) Validate() (time.Time, error) {
	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}}
	}
	return date, nil
}

type AttendanceFilter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
}

// ParseAttendanceFilter builds a filter from query parameters. from/to default to the
// current month when omitted.
func ParseAttendanceFilter(employeeID, from, to string, today time.Time) (AttendanceFilter, error) {
	var errs validator.ValidationErrors
	filter := AttendanceFilter{EmployeeID: employeeID}

	if !validator.IsValidUUID(employeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}

	filter.From = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	filter.To = filter.From.AddDate(0, 1, -1)
	if from != "" {
		d, ok := validator.IsValidDate(from)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
		}
		filter.From = d
	}
	if to != "" {
		d, ok := validator.IsValidDate(to)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
		}
		filter.To = d
	}
	if len(errs) == 0 && filter.To.Before(filter.From) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must not be before from"})
	}

	if len(errs) > 0 {
		return AttendanceFilter{}, errs
	}
	return filter, nil
}

// PunchRow is one line of a punch import file.
type PunchRow struct {
	EmployeeID string `csv:"employee_id"`
	Date       string `csv:"date"`
	CheckIn    string `csv:"check_in"`
	CheckOut   string `csv:"check_out"`
	BreakStart string `csv:"break_start"`
	BreakEnd   string `csv:"break_end"`
}

// Parse validates the row and converts it to a date plus punches. Empty time cells stay unset.
func (r PunchRow) Parse() (time.Time, Punches, error) {
	var errs validator.ValidationErrors
	var p Punches

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be in YYYY-MM-DD format"})
	}

	fields := []struct {
		name  string
		value string
		dst   **clock.TimeOfDay
	}{
		{"check_in", r.CheckIn, &p.CheckInTime},
		{"check_out", r.CheckOut, &p.CheckOutTime},
		{"break_start", r.BreakStart, &p.BreakStartTime},
		{"break_end", r.BreakEnd, &p.BreakEndTime},
	}
	for _, f := range fields {
		if validator.IsEmpty(f.value) {
			continue
		}
		t, err := clock.ParseTimeOfDay(f.value)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: f.name, Message: "must be HH:MM or HH:MM:SS"})
			continue
		}
		*f.dst = &t
	}

	if len(errs) > 0 {
		return time.Time{}, Punches{}, errs
	}
	return date, p, nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type RecordResponse struct {
	ID                    string           `json:"id"`
	EmployeeID            string           `json:"employee_id"`
	Date                  string           `json:"date"`
	CheckInTime           *clock.TimeOfDay `json:"check_in_time"`
	CheckOutTime          *clock.TimeOfDay `json:"check_out_time"`
	BreakStartTime        *clock.TimeOfDay `json:"break_start_time,omitempty"`
	BreakEndTime          *clock.TimeOfDay `json:"break_end_time,omitempty"`
	TotalHours            decimal.Decimal  `json:"total_hours"`
	WorkingHours          decimal.Decimal  `json:"working_hours"`
	BreakHours            decimal.Decimal  `json:"break_hours"`
	OvertimeHours         decimal.Decimal  `json:"overtime_hours"`
	IsLate                bool             `json:"is_late"`
	LateMinutes           int              `json:"late_minutes"`
	IsEarlyDeparture      bool             `json:"is_early_departure"`
	EarlyDepartureMinutes int              `json:"early_departure_minutes"`
	Status                Status           `json:"status"`
	EvaluatedAt           *time.Time       `json:"evaluated_at,omitempty"`
}

func NewRecordResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:                    r.ID,
		EmployeeID:            r.EmployeeID,
		Date:                  r.Date.Format("2006-01-02"),
		CheckInTime:           r.CheckInTime,
		CheckOutTime:          r.CheckOutTime,
		BreakStartTime:        r.BreakStartTime,
		BreakEndTime:          r.BreakEndTime,
		TotalHours:            r.TotalHours,
		WorkingHours:          r.WorkingHours,
		BreakHours:            r.BreakHours,
		OvertimeHours:         r.OvertimeHours,
		IsLate:                r.IsLate,
		LateMinutes:           r.LateMinutes,
		IsEarlyDeparture:      r.IsEarlyDeparture,
		EarlyDepartureMinutes: r.EarlyDepartureMinutes,
		Status:                r.Status,
		EvaluatedAt:           r.EvaluatedAt,
	}
}

type EvaluateDayResult struct {
	Date      string   `json:"date"`
	Evaluated int      `json:"evaluated"`
	Errors    []string `json:"errors"`
}

type ImportResult struct {
	Rows     int      `json:"rows"`
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}
