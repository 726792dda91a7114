package core

import (
	"time"
)

// ISODate is the wire format for calendar dates exchanged with storage and
// API clients. Conversion to and from this format happens exactly once at
// those boundaries, never mid-computation.
const ISODate = "2006-01-02"

// Date is a timezone-less calendar day. It is backed by a time.Time pinned
// to midnight UTC so that whole-day arithmetic can never drift across DST
// or zone boundaries.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day. Out-of-range components are
// normalized the way time.Date normalizes them (day 0 is the last day of the
// previous month).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day in the local clock, re-anchored to
// UTC midnight.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// DateOf strips the time-of-day and location from t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO-8601 YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return Date{}, ErrUnparsableDate
	}
	return Date{Time: t}, nil
}

// ISO formats the date in the YYYY-MM-DD wire format.
func (d Date) ISO() string {
	return d.Format(ISODate)
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d falls on an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// After reports whether d falls on a later calendar day than o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

// Validate rejects the zero date.
func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b precedes a. Both operands are UTC midnights, so the
// division is always exact.
func DaysBetween(a, b Date) int {
	return int(b.Time.Sub(a.Time) / (24 * time.Hour))
}

// MonthsBetween returns the signed month-count difference from a to b,
// ignoring the day components.
func MonthsBetween(a, b Date) int {
	return (b.Year()-a.Year())*12 + b.Month() - a.Month()
}

// MonthStart returns the first day of the date's month.
func (d Date) MonthStart() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// MonthEnd returns the last day of the date's month.
func (d Date) MonthEnd() Date {
	return NewDate(d.Year(), d.Month()+1, 0)
}
