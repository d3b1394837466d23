package attendance

import (
	"context"
	"io"
	"time"
)

type AttendanceService interface {
	// EvaluateAttendance resolves the schedule for the date, computes the record and persists it.
	EvaluateAttendance(ctx context.Context, companyID, employeeID string, date time.Time) (Record, error)

	// EvaluateDay evaluates every active employee of the company for date.
	EvaluateDay(ctx context.Context, companyID string, date time.Time) (EvaluateDayResult, error)

	// ImportPunches reads a CSV of punch rows, stores the raw times and re-evaluates each record.
	ImportPunches(ctx context.Context, companyID string, r io.Reader) (ImportResult, error)

	ListAttendance(ctx context.Context, companyID string, filter AttendanceFilter) ([]Record, error)
}
