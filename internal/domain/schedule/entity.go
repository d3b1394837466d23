package schedule

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

// Shift is the daily time window an employee is expected to work.
type Shift struct {
	ID                      string
	CompanyID               string
	Name                    string
	Code                    string
	StartTime               clock.TimeOfDay
	EndTime                 clock.TimeOfDay
	BreakStartTime          *clock.TimeOfDay
	BreakEndTime            *clock.TimeOfDay
	WorkingHours            decimal.Decimal
	GracePeriodMinutes      int
	OvertimeStartAfterHours decimal.Decimal
	IsActive                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (s Shift) HasBreak() bool {
	return s.BreakStartTime != nil && s.BreakEndTime != nil
}

// WorkSchedule binds a set of employees to a shift over a date range.
type WorkSchedule struct {
	ID          string
	CompanyID   string
	Name        string
	ShiftID     string
	StartDate   time.Time
	EndDate     *time.Time // nil = open-ended
	WorkingDays [7]bool    // Monday=0 ... Sunday=6
	IsActive    bool
	EmployeeIDs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Shift Shift
}

// Covers reports whether the schedule is active and its range includes date.
func (w WorkSchedule) Covers(date time.Time) bool {
	if !w.IsActive || w.StartDate.After(date) {
		return false
	}
	return w.EndDate == nil || !w.EndDate.Before(date)
}

func (w WorkSchedule) HasEmployee(employeeID string) bool {
	for _, id := range w.EmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}

func (w WorkSchedule) IsWorkingDay(date time.Time) bool {
	return w.WorkingDays[WeekdayIndex(date)]
}

// WeekdayIndex maps a date to Monday=0 ... Sunday=6.
func WeekdayIndex(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// Resolution is the schedule that applies to one employee on one date.
type Resolution struct {
	Schedule     WorkSchedule
	Shift        Shift
	IsWorkingDay bool
}
