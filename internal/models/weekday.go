package models

import "strings"

const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// Weekdays lists the planning cycle in canonical order.
var Weekdays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayLabels = map[string]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

// IsWeekday reports whether day is one of the canonical lowercase weekday names.
func IsWeekday(day string) bool {
	_, ok := weekdayLabels[day]
	return ok
}

// WeekdayLabel returns the display label for a weekday key.
func WeekdayLabel(day string) string {
	if label, ok := weekdayLabels[strings.ToLower(day)]; ok {
		return label
	}
	return day
}
