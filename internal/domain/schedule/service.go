package schedule

import (
	"context"
	"time"
)

type Resolver interface {
	// Resolve returns ErrNoScheduleFound when no schedule applies on date.
	Resolve(ctx context.Context, companyID, employeeID string, date time.Time) (Resolution, error)
}
