// Package datetime provides the UTC date helpers used to map timestamps onto
// budget months.
package datetime

import (
	"encoding/json"
	"strings"
	"time"
)

// Standard formats used throughout the application.
const (
	// DateFormat is the date-only format (YYYY-MM-DD).
	DateFormat = "2006-01-02"

	// MonthFormat identifies a budget month (YYYY-MM).
	MonthFormat = "2006-01"
)

// DateTime is a UTC timestamp that serializes as RFC3339 and also accepts
// a bare YYYY-MM-DD on input.
type DateTime struct {
	time.Time
}

// Now returns the current datetime in UTC.
func Now() DateTime {
	return DateTime{time.Now().UTC()}
}

// MarshalJSON implements json.Marshaler.
func (dt DateTime) MarshalJSON() ([]byte, error) {
	if dt.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(dt.UTC().Format(time.RFC3339))
}

// UnmarshalJSON implements json.Unmarshaler.
func (dt *DateTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), "\"")
	if s == "" || s == "null" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse(DateFormat, s)
		if err != nil {
			return err
		}
	}
	dt.Time = t.UTC()
	return nil
}

// StartOfMonth returns the first day of the month at 00:00:00 UTC.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of the month at 23:59:59.999999999 UTC.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// MonthRange returns the half-open interval [start, end) covering the given
// calendar month in UTC.
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ValidMonth reports whether month is in 1..12.
func ValidMonth(month int) bool {
	return month >= 1 && month <= 12
}
