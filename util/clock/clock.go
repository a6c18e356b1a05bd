// Package clock supplies "today" as a calendar date so that due-date
// arithmetic is deterministic in tests.
package clock

import "time"

type Clock interface {
	Today() time.Time
}

// System truncates wall time to a UTC calendar date.
type System struct{}

func (System) Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// Fixed always reports the same date.
type Fixed struct{ Date time.Time }

func (f Fixed) Today() time.Time { return f.Date }

// On builds a Fixed clock from a calendar date.
func On(year int, month time.Month, day int) Fixed {
	return Fixed{Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}
