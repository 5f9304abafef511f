package clock

import (
	"time"

	"leverlab/internal/platform/day"
)

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Today is the UTC calendar date of the clock's current instant.
func Today(c Clock) day.Date {
	return day.FromTime(c.Now())
}
