package attendance

import "errors"

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidImportFile  = errors.New("invalid punch import file")
)
