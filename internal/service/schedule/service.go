package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
)

type resolverImpl struct {
	workScheduleRepo schedule.WorkScheduleRepository
}

func NewResolver(workScheduleRepo schedule.WorkScheduleRepository) schedule.Resolver {
	return &resolverImpl{workScheduleRepo: workScheduleRepo}
}

// Resolve implements schedule.Resolver.
func (s *resolverImpl) Resolve(ctx context.Context, companyID, employeeID string, date time.Time) (schedule.Resolution, error) {
	date = clock.DateOf(date)

	candidates, err := s.workScheduleRepo.FindCandidates(ctx, companyID, employeeID, date)
	if err != nil {
		return schedule.Resolution{}, fmt.Errorf("failed to find work schedules: %w", err)
	}

	ws, ok := PickSchedule(candidates, employeeID, date)
	if !ok {
		return schedule.Resolution{}, schedule.ErrNoScheduleFound
	}

	return schedule.Resolution{
		Schedule:     ws,
		Shift:        ws.Shift,
		IsWorkingDay: ws.IsWorkingDay(date),
	}, nil
}

// PickSchedule selects the schedule in force for the employee on date: the covering schedule
// with the latest start date, then the most recently created, then the greatest ID.
func PickSchedule(candidates []schedule.WorkSchedule, employeeID string, date time.Time) (schedule.WorkSchedule, bool) {
	matching := make([]schedule.WorkSchedule, 0, len(candidates))
	for _, ws := range candidates {
		if ws.Covers(date) && ws.HasEmployee(employeeID) {
			matching = append(matching, ws)
		}
	}
	if len(matching) == 0 {
		return schedule.WorkSchedule{}, false
	}

	sort.SliceStable(matching, func(i, j int) bool {
		a, b := matching[i], matching[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.After(b.StartDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	return matching[0], true
}
