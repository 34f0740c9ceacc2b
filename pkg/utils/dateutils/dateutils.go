package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Common date layouts used throughout the application
const (
	LayoutDate        = "2006-01-02"
	LayoutCompactDate = "20060102"
	LayoutDateTime    = "2006-01-02 15:04:05"
	MinValidYear      = 2005
)

// DefaultLookbackDays is the default distance between start and end date
const DefaultLookbackDays = 7

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD) in UTC
func ParseDate(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, fmt.Errorf("date cannot be empty")
	}

	t, err := time.ParseInLocation(LayoutDate, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: expected YYYY-MM-DD, got %s", date)
	}

	if t.Year() < MinValidYear {
		return time.Time{}, fmt.Errorf("date %s is before minimum valid year %d", date, MinValidYear)
	}

	return t, nil
}

// FormatDate formats t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(LayoutDate)
}

// NormalizeDate converts provider date values to YYYY-MM-DD.
// Supports "2006-01-02", "20060102" and "2006-01-02 15:04:05".
func NormalizeDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	formats := []string{
		LayoutDate,
		LayoutCompactDate,
		LayoutDateTime,
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, value, time.UTC); err == nil {
			return t.Format(LayoutDate), true
		}
	}

	return "", false
}

// AddDays shifts an ISO date by n days
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DateRange returns every date from start to end inclusive.
// An inverted range yields an empty slice.
func DateRange(start, end time.Time) []string {
	if start.After(end) {
		return []string{}
	}

	dates := make([]string, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, FormatDate(d))
	}
	return dates
}

// MaxTime returns the later of a and b
func MaxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// Today returns the current UTC calendar date at midnight
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// DefaultRange returns the default report range relative to today:
// today-7 through today.
func DefaultRange(today time.Time) (string, string) {
	return FormatDate(today.AddDate(0, 0, -DefaultLookbackDays)), FormatDate(today)
}
