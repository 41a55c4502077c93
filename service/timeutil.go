package service

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// parseDate parses a "YYYY-MM-DD" date.
func parseDate(value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return d, nil
}

// parseClock converts an "HH:MM" string to minutes since midnight.
func parseClock(value string) (int, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid time format, use HH:MM")
	}
	return t.Hour()*60 + t.Minute(), nil
}

// formatClock converts minutes since midnight back to "HH:MM".
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// formatClock12 renders an "HH:MM" string in 12-hour form for notification
// text, matching the original message formatting. Invalid input is returned
// unchanged.
func formatClock12(value string) string {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return value
	}
	return t.Format("03:04 PM")
}

// scheduleWeekday maps a date to the Monday-based weekday index used by
// doctor schedules.
func scheduleWeekday(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// rangesOverlap reports whether [startA, endA) and [startB, endB) intersect.
func rangesOverlap(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}
