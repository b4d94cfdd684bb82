package memory

import (
	"context"
	"fmt"
	"sync"

	"budsjett/internal/core"
	"budsjett/internal/engine"
)

// Store keeps the latest exported report per month in memory. Used as the
// default export backend and in tests.
type Store struct {
	mu      sync.Mutex
	reports map[core.MonthKey]engine.Report
	exports int
}

func New() *Store {
	return &Store{reports: make(map[core.MonthKey]engine.Report)}
}

// ExportReport stores the report and returns a synthetic reference.
func (s *Store) ExportReport(_ context.Context, rep engine.Report) (string, error) {
	if !rep.Month.Valid() {
		return "", core.ErrInvalidMonthKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[rep.Month] = rep
	s.exports++
	return fmt.Sprintf("mem:%s:%d", rep.Month, s.exports), nil
}

// ReadReport returns the last exported report for a month.
func (s *Store) ReadReport(_ context.Context, month core.MonthKey) (engine.Report, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.reports[month]
	return rep, ok, nil
}

// Exports returns how many reports have been written.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
