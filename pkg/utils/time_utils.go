package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Marketplace local time (UK). Falls back to UTC when tzdata is missing.
var marketLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Europe/London"); err == nil {
		return loc
	}
	return time.UTC
}()

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Today returns the current marketplace calendar date at UTC midnight so it
// compares directly with values from ParseDate.
func Today(now time.Time) time.Time {
	local := now.In(marketLoc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseClock parses HH:MM into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("time must be HH:MM: %w", err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FromUnixSeconds(t *int64) *time.Time {
	if t == nil || *t <= 0 {
		return nil
	}
	v := time.Unix(*t, 0).UTC()
	return &v
}
