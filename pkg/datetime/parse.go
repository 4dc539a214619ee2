// Package datetime provides date and time utility functions.
package datetime

import (
	"time"
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for fixed constants and tests where the string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// MinutesSince returns the fractional number of minutes from epoch to now.
// The result is negative when now is before epoch.
func MinutesSince(epoch, now time.Time) float64 {
	return now.Sub(epoch).Minutes()
}
