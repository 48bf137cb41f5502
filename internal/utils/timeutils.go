package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseTime accepts RFC3339 (with optional fractional seconds) or a bare YYYY-MM-DD date,
// which is taken as midnight UTC.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: want RFC3339 or YYYY-MM-DD", value)
	}
	return t, nil
}

// DurationHours converts a pair of timestamps into an absolute hour duration.
func DurationHours(start, end time.Time) float64 {
	if end.Before(start) {
		start, end = end, start
	}
	return end.Sub(start).Hours()
}
