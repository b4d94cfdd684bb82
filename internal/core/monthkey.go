package core

import (
	"fmt"
	"strings"
	"time"
)

// MonthKey identifies an accounting month as "YYYY-MM". It is the unit of
// periodicity for every resolution the engine performs.
type MonthKey string

const monthKeyLayout = "2006-01"

// ParseMonthKey validates a YYYY-MM string and returns it as a MonthKey.
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(monthKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("parse month key %q: %w", s, ErrInvalidMonthKey)
	}
	return MonthKeyFor(t.Year(), int(t.Month())), nil
}

// MonthKeyFor builds the key for a given year and 1-based month.
func MonthKeyFor(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, month))
}

// MonthKeyOf returns the key of the month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKeyFor(t.Year(), int(t.Month()))
}

// Time returns midnight UTC on the first day of the month. The zero time
// is returned for malformed keys.
func (m MonthKey) Time() time.Time {
	t, err := time.Parse(monthKeyLayout, string(m))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Valid reports whether the key parses as YYYY-MM.
func (m MonthKey) Valid() bool {
	_, err := time.Parse(monthKeyLayout, string(m))
	return err == nil
}

// Add returns the key n months away (n may be negative).
func (m MonthKey) Add(n int) MonthKey {
	return MonthKeyOf(m.Time().AddDate(0, n, 0))
}

// Before reports whether m sorts strictly before other. Keys are
// zero-padded, so lexical order is chronological order.
func (m MonthKey) Before(other MonthKey) bool { return m < other }

// After reports whether m sorts strictly after other.
func (m MonthKey) After(other MonthKey) bool { return m > other }

// MonthsUntil returns the whole-month distance from m to other; negative
// when other precedes m.
func (m MonthKey) MonthsUntil(other MonthKey) int {
	a, b := m.Time(), other.Time()
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
