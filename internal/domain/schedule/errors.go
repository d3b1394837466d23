package schedule

import "errors"

var (
	ErrNoScheduleFound = errors.New("no work schedule found for date")
	ErrShiftNotFound   = errors.New("shift not found")
)
