// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"strings"
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// StartOfDayUTC zeroes the time-of-day components of t in UTC.
// Analytics buckets are keyed by this value.
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DateOnlyLayout is the layout accepted for date-only query parameters
const DateOnlyLayout = "2006-01-02"

// ParseDateParam parses a query parameter in YYYY-MM-DD or RFC3339 form.
// dateOnly reports whether the value carried no time-of-day.
func ParseDateParam(value string) (t time.Time, dateOnly bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateOnlyLayout, value); err == nil {
		return t.UTC(), true, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", value)
}
