package core

import "time"

// BudgetInterval is the half-open [Start, End) date range an accounting
// month spans. It is derived, never persisted.
type BudgetInterval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the interval.
func (iv BudgetInterval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// ContainsDate parses a YYYY-MM-DD string and checks membership. Malformed
// dates are simply outside the interval.
func (iv BudgetInterval) ContainsDate(s string) bool {
	t, err := ParseDate(s)
	if err != nil {
		return false
	}
	return iv.Contains(t)
}

// Days returns the number of calendar days in the interval.
func (iv BudgetInterval) Days() int {
	return int(iv.End.Sub(iv.Start).Hours() / 24)
}

// Overlaps reports whether [from, to] (inclusive on both ends) intersects
// the interval.
func (iv BudgetInterval) Overlaps(from, to time.Time) bool {
	return !to.Before(iv.Start) && from.Before(iv.End)
}

// ResolveInterval anchors the budgeting period of a month to income
// receipt: the interval runs from the payday occurrence at or before the
// first day of the month up to, but not including, the next payday
// occurrence. A payday of 1 (or anything lower) degrades to the plain
// calendar month. Paydays past the end of a short month clamp to its last
// valid day, so payday 31 lands on Feb 28 rather than skipping a month.
func ResolveInterval(month MonthKey, payday int) BudgetInterval {
	first := month.Time()
	if first.IsZero() {
		return BudgetInterval{}
	}
	if payday <= 1 {
		return BudgetInterval{Start: first, End: first.AddDate(0, 1, 0)}
	}

	prev := first.AddDate(0, -1, 0)
	start := paydayIn(prev.Year(), prev.Month(), payday)
	end := paydayIn(first.Year(), first.Month(), payday)
	return BudgetInterval{Start: start, End: end}
}

// paydayIn returns the payday date within a month, clamped to the month's
// last day.
func paydayIn(year int, month time.Month, payday int) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if payday > last {
		payday = last
	}
	return time.Date(year, month, payday, 0, 0, 0, 0, time.UTC)
}
