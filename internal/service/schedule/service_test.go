package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScheduleRepo struct {
	schedules []schedule.WorkSchedule
	err       error
}

func (r stubScheduleRepo) FindCandidates(ctx context.Context, companyID, employeeID string, date time.Time) ([]schedule.WorkSchedule, error) {
	return r.schedules, r.err
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekdays() [7]bool {
	return [7]bool{true, true, true, true, true, false, false}
}

func newSchedule(id string, start time.Time, end *time.Time) schedule.WorkSchedule {
	return schedule.WorkSchedule{
		ID:          id,
		StartDate:   start,
		EndDate:     end,
		WorkingDays: weekdays(),
		IsActive:    true,
		EmployeeIDs: []string{"emp-1"},
		Shift: schedule.Shift{
			ID:        "shift-" + id,
			StartTime: clock.MustTimeOfDay("09:00"),
			EndTime:   clock.MustTimeOfDay("17:00"),
		},
	}
}

func TestResolver_PicksLatestStartDate(t *testing.T) {
	older := newSchedule("a", date(2024, 1, 1), nil)
	newer := newSchedule("b", date(2024, 3, 1), nil)
	resolver := NewResolver(stubScheduleRepo{schedules: []schedule.WorkSchedule{older, newer}})

	// Monday
	res, err := resolver.Resolve(context.Background(), "co", "emp-1", date(2024, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, "b", res.Schedule.ID)
	assert.Equal(t, "shift-b", res.Shift.ID)
	assert.True(t, res.IsWorkingDay)
}

func TestResolver_NonWorkingDay(t *testing.T) {
	resolver := NewResolver(stubScheduleRepo{schedules: []schedule.WorkSchedule{newSchedule("a", date(2024, 1, 1), nil)}})

	// Saturday
	res, err := resolver.Resolve(context.Background(), "co", "emp-1", date(2024, 3, 9))
	require.NoError(t, err)
	assert.Equal(t, "a", res.Schedule.ID)
	assert.False(t, res.IsWorkingDay)
}

func TestResolver_NoneFound(t *testing.T) {
	end := date(2024, 1, 31)
	expired := newSchedule("a", date(2024, 1, 1), &end)
	inactive := newSchedule("b", date(2024, 1, 1), nil)
	inactive.IsActive = false
	future := newSchedule("c", date(2024, 6, 1), nil)
	otherEmployee := newSchedule("d", date(2024, 1, 1), nil)
	otherEmployee.EmployeeIDs = []string{"emp-2"}

	resolver := NewResolver(stubScheduleRepo{schedules: []schedule.WorkSchedule{expired, inactive, future, otherEmployee}})

	_, err := resolver.Resolve(context.Background(), "co", "emp-1", date(2024, 3, 4))
	assert.ErrorIs(t, err, schedule.ErrNoScheduleFound)
}

func TestResolver_EndDateInclusive(t *testing.T) {
	end := date(2024, 3, 4)
	resolver := NewResolver(stubScheduleRepo{schedules: []schedule.WorkSchedule{newSchedule("a", date(2024, 1, 1), &end)}})

	res, err := resolver.Resolve(context.Background(), "co", "emp-1", date(2024, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, "a", res.Schedule.ID)
}

func TestResolver_RepositoryError(t *testing.T) {
	boom := errors.New("connection refused")
	resolver := NewResolver(stubScheduleRepo{err: boom})

	_, err := resolver.Resolve(context.Background(), "co", "emp-1", date(2024, 3, 4))
	assert.ErrorIs(t, err, boom)
}

func TestPickSchedule_TieBreak(t *testing.T) {
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	first := newSchedule("0001", date(2024, 1, 1), nil)
	first.CreatedAt = created
	second := newSchedule("0002", date(2024, 1, 1), nil)
	second.CreatedAt = created.Add(time.Hour)

	got, ok := PickSchedule([]schedule.WorkSchedule{second, first}, "emp-1", date(2024, 2, 1))
	require.True(t, ok)
	assert.Equal(t, "0002", got.ID, "later creation wins when start dates tie")

	second.CreatedAt = created
	got, ok = PickSchedule([]schedule.WorkSchedule{second, first}, "emp-1", date(2024, 2, 1))
	require.True(t, ok)
	assert.Equal(t, "0002", got.ID, "greater ID wins when start and creation tie")

	got, ok = PickSchedule([]schedule.WorkSchedule{first, second}, "emp-1", date(2024, 2, 1))
	require.True(t, ok)
	assert.Equal(t, "0002", got.ID, "order of candidates does not matter")
}
