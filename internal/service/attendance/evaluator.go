package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

var (
	secondsPerHour = decimal.NewFromInt(3600)
	two            = decimal.NewFromInt(2)
)

// Evaluate computes rec's hours, lateness, early departure and status from its punches and
// the schedule resolved for its date. res is nil when no schedule applies. Fields from a
// previous evaluation are always cleared first.
//
// Status precedence: a short day is half_day even when the check-in was also late.
func Evaluate(rec *attendance.Record, res *schedule.Resolution) {
	resetComputed(rec)

	switch {
	case res == nil:
		rec.Status = attendance.StatusAbsent
		return
	case !res.IsWorkingDay:
		rec.Status = attendance.StatusHoliday
		return
	case rec.CheckInTime == nil || rec.CheckOutTime == nil:
		rec.Status = attendance.StatusAbsent
		return
	}

	shift := res.Shift
	shiftStart, shiftEnd := clock.Span(rec.Date, shift.StartTime, shift.EndTime)
	checkIn, checkOut := clock.Span(rec.Date, *rec.CheckInTime, *rec.CheckOutTime)

	rec.TotalHours = hoursBetween(checkIn, checkOut)

	switch {
	case rec.BreakStartTime != nil && rec.BreakEndTime != nil:
		rec.BreakHours = hoursBetween(clock.Span(rec.Date, *rec.BreakStartTime, *rec.BreakEndTime))
	case shift.HasBreak():
		rec.BreakHours = hoursBetween(clock.Span(rec.Date, *shift.BreakStartTime, *shift.BreakEndTime))
	}

	rec.WorkingHours = rec.TotalHours.Sub(rec.BreakHours).Round(2)

	grace := time.Duration(shift.GracePeriodMinutes) * time.Minute

	if late := checkIn.Sub(shiftStart); late > grace {
		rec.IsLate = true
		rec.LateMinutes = int(late / time.Minute)
	}
	if early := shiftEnd.Sub(checkOut); early > grace {
		rec.IsEarlyDeparture = true
		rec.EarlyDepartureMinutes = int(early / time.Minute)
	}

	if overtime := rec.WorkingHours.Sub(shift.OvertimeStartAfterHours); overtime.IsPositive() {
		rec.OvertimeHours = overtime.Round(2)
	}

	switch {
	case rec.TotalHours.LessThan(shift.WorkingHours.Div(two)):
		rec.Status = attendance.StatusHalfDay
	case rec.IsLate:
		rec.Status = attendance.StatusLate
	default:
		rec.Status = attendance.StatusPresent
	}
}

func hoursBetween(from, to time.Time) decimal.Decimal {
	seconds := decimal.NewFromInt(int64(to.Sub(from) / time.Second))
	return seconds.Div(secondsPerHour).Round(2)
}

func resetComputed(rec *attendance.Record) {
	rec.TotalHours = decimal.Zero
	rec.WorkingHours = decimal.Zero
	rec.BreakHours = decimal.Zero
	rec.OvertimeHours = decimal.Zero
	rec.IsLate = false
	rec.LateMinutes = 0
	rec.IsEarlyDeparture = false
	rec.EarlyDepartureMinutes = 0
}
