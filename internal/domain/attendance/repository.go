package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// GetOrCreate returns the record for (company, employee, date), inserting an empty one if
	// none exists. Concurrent callers converge on the same row.
	GetOrCreate(ctx context.Context, companyID, employeeID string, date time.Time) (Record, error)
	GetByEmployeeDate(ctx context.Context, companyID, employeeID string, date time.Time) (Record, error)
	SavePunches(ctx context.Context, id string, companyID string, punches Punches) error
	// SaveEvaluation persists the computed fields and status of rec.
	SaveEvaluation(ctx context.Context, rec Record) error
	ListByEmployee(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]Record, error)
	Summarize(ctx context.Context, companyID, employeeID string, from, to time.Time) (Summary, error)
}
