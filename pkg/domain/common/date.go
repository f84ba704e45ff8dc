// Package common holds calendar helpers shared by the domain packages.
//
// Ledger dates are calendar dates, not instants. They are carried as
// time.Time values normalized to midnight UTC so they order, compare and
// persist consistently.
package common

import "time"

// DateLayout is the canonical textual form of a ledger date.
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date at midnight UTC. The calendar date is
// taken in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a ledger date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthClamped moves d to dayOfMonth in the following month. When the
// following month is shorter than dayOfMonth the last day of that month is
// used, so Jan 31 + 1 month is Feb 28 (or 29), never a date in March.
func AddMonthClamped(d time.Time, dayOfMonth int) time.Time {
	y, m, _ := DateOf(d).Date()
	m++
	if m > time.December {
		m = time.January
		y++
	}
	if dayOfMonth < 1 {
		dayOfMonth = 1
	}
	if last := DaysIn(y, m); dayOfMonth > last {
		dayOfMonth = last
	}
	return Date(y, m, dayOfMonth)
}

// Between reports whether d lies in the closed range [from, to].
func Between(d, from, to time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(from)) && !d.After(DateOf(to))
}
