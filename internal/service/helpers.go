package service

import "time"

// weekStart returns the start of the week containing t, at midnight.
// startDay is "sunday" or "monday" (the default).
func weekStart(t time.Time, startDay string) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // days since Monday
	if startDay == "sunday" {
		offset = int(t.Weekday())
	}
	start := t.AddDate(0, 0, -offset)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
}
