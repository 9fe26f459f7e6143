package domain

import "time"

// DateRange expands a center date into an inclusive window of calendar days,
// daysBefore days back through daysAfter days forward, ascending. Each element
// is UTC midnight of its day; any time-of-day on the center date is discarded.
func DateRange(center time.Time, daysBefore, daysAfter int) []time.Time {
	day := time.Date(center.Year(), center.Month(), center.Day(), 0, 0, 0, 0, time.UTC)

	dates := make([]time.Time, 0, daysBefore+daysAfter+1)
	for i := -daysBefore; i <= daysAfter; i++ {
		dates = append(dates, day.AddDate(0, 0, i))
	}
	return dates
}
