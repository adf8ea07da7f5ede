package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	LayoutDate     = "2006-01-02"
	layoutClock    = "15:04"
	layoutClockSec = "15:04:05"
)

// ParseDate parses YYYY-MM-DD, or a full RFC 3339 timestamp, as midnight of
// that calendar day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(LayoutDate, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: expected YYYY-MM-DD", s)
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// CombineDateClock parses date (YYYY-MM-DD) and clock (HH:MM or HH:MM:SS)
// into a single instant in loc.
func CombineDateClock(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	clock = strings.TrimSpace(clock)
	layout := layoutClock
	if strings.Count(clock, ":") == 2 {
		layout = layoutClockSec
	}
	c, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: expected HH:MM", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), 0, day.Location()), nil
}

// DayWindow returns [day, day+24h] for the calendar day starting at day.
func DayWindow(day time.Time) (time.Time, time.Time) {
	return day, day.Add(24 * time.Hour)
}

// FormatDateTime renders t as "YYYY-MM-DD HH:MM" in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02 15:04")
}
