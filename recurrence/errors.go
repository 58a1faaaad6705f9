package recurrence

import "errors"

// Build-time validation errors. All are deterministic and caller-input
// derived; surface them as a rejected request, never retry.
var (
	ErrUnsupportedFrequency = errors.New("unsupported frequency")
	ErrInvalidInterval      = errors.New("interval must be between 1 and 365")
	ErrInvalidWeekday       = errors.New("invalid weekday")
	ErrInvalidDayOfMonth    = errors.New("invalid day of month")
	ErrInvalidMonthlyMode   = errors.New("invalid monthly mode")
	ErrInvalidSetPosition   = errors.New("invalid set position")
)
