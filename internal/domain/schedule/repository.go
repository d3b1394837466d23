package schedule

import (
	"context"
	"time"
)

type WorkScheduleRepository interface {
	// FindCandidates returns the active schedules that include the employee and cover date,
	// each with its Shift populated.
	FindCandidates(ctx context.Context, companyID, employeeID string, date time.Time) ([]WorkSchedule, error)
}
