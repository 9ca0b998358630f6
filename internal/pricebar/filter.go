package pricebar

import (
	"fmt"
	"time"
)

// DateFilter selects which trading days of a series are kept.
// A filter built by Day is exact; one built by Range is inclusive on both ends.
type DateFilter struct {
	Start time.Time
	End   time.Time
	Exact bool
}

// Day keeps only bars dated d.
func Day(d time.Time) DateFilter {
	d = Truncate(d)
	return DateFilter{Start: d, End: d, Exact: true}
}

// Range keeps bars dated within [start, end].
func Range(start, end time.Time) DateFilter {
	return DateFilter{Start: Truncate(start), End: Truncate(end)}
}

// Yesterday returns the calendar day before now in loc.
func Yesterday(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).AddDate(0, 0, -1).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the clock part of t, keeping its calendar date, as midnight UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f DateFilter) Match(d time.Time) bool {
	d = Truncate(d)
	return !d.Before(f.Start) && !d.After(f.End)
}

func (f DateFilter) Validate() error {
	if f.Start.IsZero() || f.End.IsZero() {
		return fmt.Errorf("date filter needs both start and end")
	}
	if f.End.Before(f.Start) {
		return fmt.Errorf("date filter end %s is before start %s",
			f.End.Format(DateLayout), f.Start.Format(DateLayout))
	}
	return nil
}

func (f DateFilter) String() string {
	if f.Exact {
		return "on " + f.Start.Format(DateLayout)
	}
	return fmt.Sprintf("between %s and %s", f.Start.Format(DateLayout), f.End.Format(DateLayout))
}
