// Package utils provides utility functions for the dashboard.
package utils //nolint:revive // utils is a common and acceptable package name

import "time"

// DateLabel formats a day the way the dashboard charts label it, e.g. "Oct 18".
func DateLabel(t time.Time) string {
	return t.Format("Jan 2")
}

// HourLabel formats an hour for the hourly charts, e.g. "6AM" or "12PM".
func HourLabel(t time.Time) string {
	return t.Format("3PM")
}

// StartOfDay returns midnight of the day containing t, in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
