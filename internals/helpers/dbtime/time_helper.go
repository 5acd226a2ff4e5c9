// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Clock is injected into services so tests can pin "now".
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T; Advance moves it forward.
type FixedClock struct {
	T time.Time
}

func (f *FixedClock) Now() time.Time { return f.T }

func (f *FixedClock) Advance(d time.Duration) { f.T = f.T.Add(d) }

// DateOf is the calendar date of t as seen in loc, stored as UTC midnight so that
// date columns compare equal across drivers.
func DateOf(t time.Time, loc *time.Location) datatypes.Date {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// ParseDate accepts YYYY-MM-DD.
func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return datatypes.Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return datatypes.Date(t.UTC()), nil
}

func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}

// FormatDatePtr returns nil for a nil date.
func FormatDatePtr(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := FormatDate(*d)
	return &s
}

// MonthRange returns [first day of month, first day of next month).
// An empty yearMonth means the month containing now in loc.
func MonthRange(yearMonth string, now time.Time, loc *time.Location) (from, to datatypes.Date, err error) {
	var first time.Time
	if ym := strings.TrimSpace(yearMonth); ym == "" {
		today := time.Time(DateOf(now, loc))
		first = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		t, perr := time.Parse(MonthLayout, ym)
		if perr != nil {
			return from, to, fmt.Errorf("invalid month %q, expected YYYY-MM", yearMonth)
		}
		first = t.UTC()
	}
	return datatypes.Date(first), datatypes.Date(first.AddDate(0, 1, 0)), nil
}

// MonthBounds is MonthRange as instants: local midnight of the first day to local midnight
// of the next month's first day. Used for timestamp columns.
func MonthBounds(yearMonth string, now time.Time, loc *time.Location) (start, end time.Time, err error) {
	from, to, err := MonthRange(yearMonth, now, loc)
	if err != nil {
		return start, end, err
	}
	return StartOfDay(from, loc), StartOfDay(to, loc), nil
}

// StartOfDay is local midnight of the calendar date d, as a UTC instant so that
// text-stored timestamps (sqlite) compare correctly.
func StartOfDay(d datatypes.Date, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, dd := time.Time(d).Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, loc).UTC()
}
