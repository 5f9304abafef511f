// Package day models calendar dates with UTC-midnight semantics.
package day

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Date is a calendar date. The zero value means "unset".
type Date struct {
	year  int
	month time.Month
	day   int
}

func New(year int, month time.Month, d int) Date {
	return FromTime(time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
}

// FromTime takes the UTC calendar date of t.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return Date{year: u.Year(), month: u.Month(), day: u.Day()}
}

func Parse(raw string) (Date, error) {
	t, err := time.Parse(Layout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return FromTime(t), nil
}

func MustParse(raw string) Date {
	d, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(Layout)
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// DaysSince returns the whole number of days from earlier to d.
func (d Date) DaysSince(earlier Date) int {
	return int(d.Time().Sub(earlier.Time()).Hours() / 24)
}

// InclusiveDays counts the days in [start, end], never less than 1.
func InclusiveDays(start, end Date) int {
	n := end.DaysSince(start) + 1
	if n < 1 {
		return 1
	}
	return n
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(raw []byte) error {
	if len(raw) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(raw))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ISOWeekKey renders the ISO-8601 week of d as YYYY-Www.
func (d Date) ISOWeekKey() string {
	year, week := d.Time().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
