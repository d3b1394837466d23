package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func tod(s string) *clock.TimeOfDay {
	t := clock.MustTimeOfDay(s)
	return &t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dayShift() schedule.Shift {
	return schedule.Shift{
		StartTime:               clock.MustTimeOfDay("09:00"),
		EndTime:                 clock.MustTimeOfDay("17:00"),
		WorkingHours:            dec("8"),
		GracePeriodMinutes:      15,
		OvertimeStartAfterHours: dec("8"),
	}
}

func workingDay(shift schedule.Shift) *schedule.Resolution {
	return &schedule.Resolution{Shift: shift, IsWorkingDay: true}
}

func record(in, out *clock.TimeOfDay) attendance.Record {
	return attendance.Record{
		Date:         time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		CheckInTime:  in,
		CheckOutTime: out,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestEvaluate_OvernightShift(t *testing.T) {
	shift := dayShift()
	shift.StartTime = clock.MustTimeOfDay("22:00")
	shift.EndTime = clock.MustTimeOfDay("06:00")

	rec := record(tod("22:10"), tod("06:05"))
	Evaluate(&rec, workingDay(shift))

	assertDecimal(t, "7.92", rec.TotalHours)
	assertDecimal(t, "7.92", rec.WorkingHours)
	assert.False(t, rec.IsLate)
	assert.False(t, rec.IsEarlyDeparture)
	assertDecimal(t, "0", rec.OvertimeHours)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
}

func TestEvaluate_GracePeriodBoundary(t *testing.T) {
	tests := []struct {
		name        string
		checkIn     string
		wantLate    bool
		wantMinutes int
		wantStatus  attendance.Status
	}{
		{"on time", "09:00", false, 0, attendance.StatusPresent},
		{"exactly at grace", "09:15", false, 0, attendance.StatusPresent},
		{"one minute past grace", "09:16", true, 16, attendance.StatusLate},
		{"seconds are floored", "09:20:45", true, 20, attendance.StatusLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(tod(tt.checkIn), tod("17:00"))
			Evaluate(&rec, workingDay(dayShift()))

			assert.Equal(t, tt.wantLate, rec.IsLate)
			assert.Equal(t, tt.wantMinutes, rec.LateMinutes)
			assert.Equal(t, tt.wantStatus, rec.Status)
		})
	}
}

func TestEvaluate_HalfDayOverridesLate(t *testing.T) {
	rec := record(tod("09:30"), tod("12:00"))
	Evaluate(&rec, workingDay(dayShift()))

	assert.True(t, rec.IsLate)
	assert.Equal(t, 30, rec.LateMinutes)
	assertDecimal(t, "2.5", rec.TotalHours)
	assert.Equal(t, attendance.StatusHalfDay, rec.Status)
}

func TestEvaluate_NoSchedule(t *testing.T) {
	rec := record(tod("09:00"), tod("17:00"))
	rec.IsLate = true
	rec.LateMinutes = 12
	rec.TotalHours = dec("8")

	Evaluate(&rec, nil)

	assert.Equal(t, attendance.StatusAbsent, rec.Status)
	assert.False(t, rec.IsLate)
	assert.Zero(t, rec.LateMinutes)
	assertDecimal(t, "0", rec.TotalHours)
}

func TestEvaluate_NonWorkingDay(t *testing.T) {
	rec := record(tod("09:00"), tod("17:00"))
	Evaluate(&rec, &schedule.Resolution{Shift: dayShift(), IsWorkingDay: false})

	assert.Equal(t, attendance.StatusHoliday, rec.Status)
	assertDecimal(t, "0", rec.WorkingHours)
}

func TestEvaluate_MissingPunch(t *testing.T) {
	rec := record(tod("09:00"), nil)
	Evaluate(&rec, workingDay(dayShift()))
	assert.Equal(t, attendance.StatusAbsent, rec.Status)

	rec = record(nil, tod("17:00"))
	Evaluate(&rec, workingDay(dayShift()))
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
}

func TestEvaluate_Breaks(t *testing.T) {
	shift := dayShift()
	shift.EndTime = clock.MustTimeOfDay("18:00")
	shift.BreakStartTime = tod("12:00")
	shift.BreakEndTime = tod("13:00")

	t.Run("shift break", func(t *testing.T) {
		rec := record(tod("09:00"), tod("18:00"))
		Evaluate(&rec, workingDay(shift))

		assertDecimal(t, "9", rec.TotalHours)
		assertDecimal(t, "1", rec.BreakHours)
		assertDecimal(t, "8", rec.WorkingHours)
		assertDecimal(t, "0", rec.OvertimeHours)
	})

	t.Run("record break wins over shift break", func(t *testing.T) {
		rec := record(tod("09:00"), tod("18:00"))
		rec.BreakStartTime = tod("12:00")
		rec.BreakEndTime = tod("12:20")
		Evaluate(&rec, workingDay(shift))

		assertDecimal(t, "0.33", rec.BreakHours)
		assertDecimal(t, "8.67", rec.WorkingHours)
		assertDecimal(t, "0.67", rec.OvertimeHours)
	})

	t.Run("half-set record break falls back to shift", func(t *testing.T) {
		rec := record(tod("09:00"), tod("18:00"))
		rec.BreakStartTime = tod("12:00")
		Evaluate(&rec, workingDay(shift))

		assertDecimal(t, "1", rec.BreakHours)
	})
}

func TestEvaluate_Overtime(t *testing.T) {
	rec := record(tod("09:00"), tod("19:30"))
	Evaluate(&rec, workingDay(dayShift()))

	assertDecimal(t, "10.5", rec.TotalHours)
	assertDecimal(t, "2.5", rec.OvertimeHours)
	assert.False(t, rec.IsEarlyDeparture)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
}

func TestEvaluate_EarlyDeparture(t *testing.T) {
	rec := record(tod("09:00"), tod("16:30"))
	Evaluate(&rec, workingDay(dayShift()))

	assert.True(t, rec.IsEarlyDeparture)
	assert.Equal(t, 30, rec.EarlyDepartureMinutes)
	// early departure does not change status
	assert.Equal(t, attendance.StatusPresent, rec.Status)

	rec = record(tod("09:00"), tod("16:45"))
	Evaluate(&rec, workingDay(dayShift()))
	assert.False(t, rec.IsEarlyDeparture)
	assert.Zero(t, rec.EarlyDepartureMinutes)
}
