package core

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveIntervalCalendarMonth(t *testing.T) {
	iv := ResolveInterval("2025-03", 1)
	if !iv.Start.Equal(date(2025, 3, 1)) || !iv.End.Equal(date(2025, 4, 1)) {
		t.Fatalf("payday 1 should give the calendar month, got %v..%v", iv.Start, iv.End)
	}
}

func TestResolveIntervalPaydayAnchor(t *testing.T) {
	// Payday 25: March's budget runs from Feb 25 up to (not including) Mar 25.
	iv := ResolveInterval("2025-03", 25)
	if !iv.Start.Equal(date(2025, 2, 25)) {
		t.Fatalf("start = %v, want 2025-02-25", iv.Start)
	}
	if !iv.End.Equal(date(2025, 3, 25)) {
		t.Fatalf("end = %v, want 2025-03-25", iv.End)
	}
	if iv.Contains(date(2025, 3, 25)) {
		t.Fatalf("end must be exclusive")
	}
	if !iv.Contains(date(2025, 2, 25)) {
		t.Fatalf("start must be inclusive")
	}
}

func TestResolveIntervalClampsShortMonths(t *testing.T) {
	// Payday 31 in a 30/28-day month clamps to the last valid day.
	iv := ResolveInterval("2025-03", 31)
	if !iv.Start.Equal(date(2025, 2, 28)) {
		t.Fatalf("start = %v, want 2025-02-28 (clamped)", iv.Start)
	}
	if !iv.End.Equal(date(2025, 3, 31)) {
		t.Fatalf("end = %v, want 2025-03-31", iv.End)
	}

	iv = ResolveInterval("2025-05", 31)
	if !iv.Start.Equal(date(2025, 4, 30)) {
		t.Fatalf("start = %v, want 2025-04-30 (clamped)", iv.Start)
	}
}

func TestResolveIntervalDeterministic(t *testing.T) {
	a := ResolveInterval("2025-07", 15)
	b := ResolveInterval("2025-07", 15)
	if a != b {
		t.Fatalf("same inputs must give identical intervals: %v vs %v", a, b)
	}
}

func TestResolveIntervalInvalidMonth(t *testing.T) {
	iv := ResolveInterval("garbage", 15)
	if !iv.Start.IsZero() || !iv.End.IsZero() {
		t.Fatalf("invalid month key should give the zero interval, got %v", iv)
	}
}

func TestIntervalContainsDate(t *testing.T) {
	iv := ResolveInterval("2025-03", 1)
	if !iv.ContainsDate("2025-03-15") {
		t.Fatalf("2025-03-15 should be inside")
	}
	if iv.ContainsDate("2025-04-01") {
		t.Fatalf("2025-04-01 should be outside")
	}
	if iv.ContainsDate("bogus") {
		t.Fatalf("malformed dates are outside every interval")
	}
}

func TestIntervalDaysAndOverlap(t *testing.T) {
	iv := ResolveInterval("2025-02", 1)
	if got := iv.Days(); got != 28 {
		t.Fatalf("Days() = %d, want 28", got)
	}
	if !iv.Overlaps(date(2025, 1, 20), date(2025, 2, 2)) {
		t.Fatalf("range spilling into the interval should overlap")
	}
	if iv.Overlaps(date(2025, 3, 1), date(2025, 3, 10)) {
		t.Fatalf("range after the interval should not overlap")
	}
}
