package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
	StatusHoliday Status = "holiday"
)

// Record is one employee's attendance for one date. Punch times are written by ingestion;
// everything below them is computed by the evaluator.
type Record struct {
	ID             string
	CompanyID      string
	EmployeeID     string
	Date           time.Time
	CheckInTime    *clock.TimeOfDay
	CheckOutTime   *clock.TimeOfDay
	BreakStartTime *clock.TimeOfDay
	BreakEndTime   *clock.TimeOfDay

	TotalHours            decimal.Decimal
	WorkingHours          decimal.Decimal
	BreakHours            decimal.Decimal
	OvertimeHours         decimal.Decimal
	IsLate                bool
	LateMinutes           int
	IsEarlyDeparture      bool
	EarlyDepartureMinutes int
	Status                Status
	EvaluatedAt           *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Punches are the raw inputs delivered by device sync or manual entry.
type Punches struct {
	CheckInTime    *clock.TimeOfDay
	CheckOutTime   *clock.TimeOfDay
	BreakStartTime *clock.TimeOfDay
	BreakEndTime   *clock.TimeOfDay
}

// Summary aggregates a date range of records for payroll.
type Summary struct {
	EmployeeID    string
	AttendedDays  int // present, late and half-day records
	LateDays      int
	AbsentDays    int
	WorkedHours   decimal.Decimal
	OvertimeHours decimal.Decimal
}

// IsAttended reports whether the status counts as a day worked.
func (s Status) IsAttended() bool {
	return s == StatusPresent || s == StatusLate || s == StatusHalfDay
}

// Summarize folds records into a Summary. Hours and late days only count on attended days.
func Summarize(employeeID string, records []Record) Summary {
	sum := Summary{
		EmployeeID:    employeeID,
		WorkedHours:   decimal.Zero,
		OvertimeHours: decimal.Zero,
	}
	for _, r := range records {
		if r.Status == StatusAbsent {
			sum.AbsentDays++
			continue
		}
		if !r.Status.IsAttended() {
			continue
		}
		sum.AttendedDays++
		sum.WorkedHours = sum.WorkedHours.Add(r.WorkingHours)
		sum.OvertimeHours = sum.OvertimeHours.Add(r.OvertimeHours)
		if r.IsLate {
			sum.LateDays++
		}
	}
	return sum
}
