package monitor

import "errors"

var (
	// ErrInvalidDate is returned when a report date is zero.
	ErrInvalidDate = errors.New("monitor: invalid date")
	// ErrInvalidPeriod is returned for an unknown summary period.
	ErrInvalidPeriod = errors.New("monitor: invalid period")
	// ErrStatNotFound is returned when a daily stat row is missing.
	ErrStatNotFound = errors.New("monitor: daily stat not found")
)
