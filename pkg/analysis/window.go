package analysis

import (
	"time"

	"adreport/pkg/utils/dateutils"
)

// WindowSet holds every comparison window derived from a report range.
// Windows are clipped to the start date, never padded.
type WindowSet struct {
	All       []string `json:"all"`
	Yesterday []string `json:"yesterday"`
	DayBefore []string `json:"day_before"`
	Last7     []string `json:"last7"`
	Prev7     []string `json:"prev7"`
	Last30    []string `json:"last30"`
	Prev30    []string `json:"prev30"`
}

// CalculateWindows derives the windows for the inclusive range start..end.
// Rolling windows end the day before end because the last day is usually
// still incomplete when the report runs.
func CalculateWindows(start, end string) (WindowSet, error) {
	s, err := dateutils.ParseDate(start)
	if err != nil {
		return WindowSet{}, NewValidationError("start_date", start, err.Error())
	}
	e, err := dateutils.ParseDate(end)
	if err != nil {
		return WindowSet{}, NewValidationError("end_date", end, err.Error())
	}
	if s.After(e) {
		return WindowSet{}, NewValidationError("start_date", start, "start date is after end date "+end)
	}

	ws := WindowSet{
		All:       dateutils.DateRange(s, e),
		Yesterday: clippedDay(s, e.AddDate(0, 0, -1)),
		DayBefore: clippedDay(s, e.AddDate(0, 0, -2)),
	}
	ws.Last7, ws.Prev7 = rollingWindows(s, e, 7)
	ws.Last30, ws.Prev30 = rollingWindows(s, e, 30)

	return ws, nil
}

func clippedDay(start, day time.Time) []string {
	if day.Before(start) {
		return []string{}
	}
	return []string{dateutils.FormatDate(day)}
}

// rollingWindows returns the n-day window ending the day before end and the
// n-day window before that, both clipped to start.
func rollingWindows(start, end time.Time, n int) ([]string, []string) {
	lastEnd := end.AddDate(0, 0, -1)
	lastStart := dateutils.MaxTime(start, lastEnd.AddDate(0, 0, -(n-1)))
	if lastStart.After(lastEnd) {
		return []string{}, []string{}
	}

	prevEnd := lastStart.AddDate(0, 0, -1)
	prevStart := dateutils.MaxTime(start, prevEnd.AddDate(0, 0, -(n-1)))

	return dateutils.DateRange(lastStart, lastEnd), dateutils.DateRange(prevStart, prevEnd)
}
