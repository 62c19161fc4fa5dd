package domain

import (
	"fmt"
	"time"
)

// DateFilterKind selects a preset history range.
type DateFilterKind string

const (
	DateFilterAllTime   DateFilterKind = "all_time"
	DateFilterToday     DateFilterKind = "today"
	DateFilterYesterday DateFilterKind = "yesterday"
	DateFilterLastWeek  DateFilterKind = "last_week"
	DateFilterLastMonth DateFilterKind = "last_month"
	DateFilterCustom    DateFilterKind = "custom"
)

// DateFilter narrows history to a range of calendar days.
// From and To are only read for DateFilterCustom and are inclusive days.
// A zero From or To leaves that side of the range open.
type DateFilter struct {
	Kind DateFilterKind `json:"kind"`
	From time.Time      `json:"from,omitzero"`
	To   time.Time      `json:"to,omitzero"`
}

// DateRange is a half-open [After, Before) interval. A zero bound is open.
type DateRange struct {
	After  time.Time
	Before time.Time
}

// IsZero reports whether the range is unbounded on both sides.
func (r DateRange) IsZero() bool {
	return r.After.IsZero() && r.Before.IsZero()
}

// Validate checks the filter is internally consistent.
func (f DateFilter) Validate() error {
	switch f.Kind {
	case "", DateFilterAllTime, DateFilterToday, DateFilterYesterday,
		DateFilterLastWeek, DateFilterLastMonth:
		return nil
	case DateFilterCustom:
		if f.From.IsZero() && f.To.IsZero() {
			return &ValidationError{Field: "filter", Reason: "custom range needs from or to"}
		}
		if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
			return &ValidationError{Field: "filter", Reason: "to is before from"}
		}
		return nil
	}
	return &ValidationError{Field: "filter", Reason: fmt.Sprintf("unknown date filter %q", f.Kind)}
}

// Resolve converts the filter into a concrete time range relative to now,
// using loc to decide where calendar days begin.
func (f DateFilter) Resolve(now time.Time, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	today := StartOfDay(now, loc)

	switch f.Kind {
	case DateFilterToday:
		return DateRange{After: today, Before: today.AddDate(0, 0, 1)}
	case DateFilterYesterday:
		return DateRange{After: today.AddDate(0, 0, -1), Before: today}
	case DateFilterLastWeek:
		return DateRange{After: today.AddDate(0, 0, -6), Before: today.AddDate(0, 0, 1)}
	case DateFilterLastMonth:
		return DateRange{After: monthBefore(today).AddDate(0, 0, 1), Before: today.AddDate(0, 0, 1)}
	case DateFilterCustom:
		var r DateRange
		if !f.From.IsZero() {
			r.After = StartOfDay(f.From, loc)
		}
		if !f.To.IsZero() {
			r.Before = StartOfDay(f.To, loc).AddDate(0, 0, 1)
		}
		return r
	}
	return DateRange{}
}

// monthBefore returns the same day one month earlier, clamped to the last
// day of that month (Mar 31 gives Feb 28 or 29).
func monthBefore(day time.Time) time.Time {
	first := time.Date(day.Year(), day.Month()-1, 1, 0, 0, 0, 0, day.Location())
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(day.Day(), last), 0, 0, 0, 0, day.Location())
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
