package core

import "time"

// Clock tells the services what "now" and "today" are.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// DayBounds returns the start of the day containing t and the start of the next day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// FormatTimeAmPm renders t as "03:04 PM".
func FormatTimeAmPm(t time.Time) string {
	return t.Format("03:04 PM")
}
