// Package budget implements the calendar arithmetic and the spent-vs-limit
// rule used to reconcile monthly budgets against recorded expenses.
package budget

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrInvalidMonth = errors.New("month must be in YYYY-MM format")
	ErrInvalidDate  = errors.New("date must be in YYYY-MM-DD format")
	ErrRangeOrder   = errors.New("start must be <= end")
)

var monthRE = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Month identifies a calendar month. Its token form is YYYY-MM.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM token.
func ParseMonth(s string) (Month, error) {
	if !monthRE.MatchString(s) {
		return Month{}, ErrInvalidMonth
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t, evaluated in UTC.
func MonthOf(t time.Time) Month {
	u := t.UTC()
	return Month{Year: u.Year(), Month: u.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start is the first instant of the month (inclusive).
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following month (exclusive). Adding one
// calendar month keeps 28, 29, 30 and 31 day months correct.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

func (m Month) Next() Month { return MonthOf(m.End()) }

func (m Month) Prev() Month { return MonthOf(m.Start().AddDate(0, -1, 0)) }

// Contains reports whether t falls inside [Start, End).
func (m Month) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(m.Start()) && u.Before(m.End())
}

// Range is an inclusive window of whole days, [From, To].
type Range struct {
	From time.Time
	To   time.Time
}

// ParseRange builds [start 00:00:00.000, end 23:59:59.999] in UTC from two
// YYYY-MM-DD tokens.
func ParseRange(start, end string) (Range, error) {
	s, err := ParseDay(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseDay(end)
	if err != nil {
		return Range{}, err
	}
	if s.After(e) {
		return Range{}, ErrRangeOrder
	}
	return Range{From: s, To: e.Add(24*time.Hour - time.Millisecond)}, nil
}

// Contains reports whether t falls inside [From, To].
func (r Range) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(r.From) && !u.After(r.To)
}

// ParseDay parses YYYY-MM-DD as midnight UTC.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the instant in UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := ParseDay(s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD or RFC 3339")
	}
	return t.UTC(), nil
}
