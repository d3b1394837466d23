package clock

import "time"

// Clock supplies the current instant. Services take a Clock so "today" can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a Clock reading the wall clock in loc (UTC when nil).
func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed is a Clock that always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Today truncates the clock's current instant to a calendar date at UTC midnight.
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// DateOf keeps the calendar date of t and drops the time and zone.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(date time.Time) bool {
	return !date.Before(r.Start) && !date.After(r.End)
}

// Overlaps reports whether [from, to] intersects the range. A nil to is unbounded.
func (r DateRange) Overlaps(from time.Time, to *time.Time) bool {
	if from.After(r.End) {
		return false
	}
	return to == nil || !to.Before(r.Start)
}

// IntervalsOverlap reports whether two inclusive date intervals intersect; nil ends are open.
func IntervalsOverlap(aFrom time.Time, aTo *time.Time, bFrom time.Time, bTo *time.Time) bool {
	if aTo != nil && aTo.Before(bFrom) {
		return false
	}
	if bTo != nil && bTo.Before(aFrom) {
		return false
	}
	return true
}
