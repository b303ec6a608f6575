package attendance

import "errors"

var (
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrInvalidType    = errors.New("invalid attendance type")
	ErrHoursRequired  = errors.New("hours must be positive for hour-based attendance")
)
