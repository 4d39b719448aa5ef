// Package session holds the per-session interactive state: the last
// submitted search query and the set of donor names the user has marked as
// false positives. This is the only process-lifetime mutable state in the
// application, and it is explicit rather than ambient: every component that
// needs it receives a *Session.
package session

import (
	"sync"

	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/query"
)

// Session is the explicit interaction context for one interactive run.
// Safe for concurrent use; the TUI mutates it from its update loop.
type Session struct {
	mu        sync.RWMutex
	rawQuery  string
	parsed    query.Query
	excluded  map[string]bool
	lookback  int
}

// New creates an empty session with the given lookback window in years.
func New(lookbackYears int) *Session {
	return &Session{
		excluded: make(map[string]bool),
		lookback: lookbackYears,
	}
}

// SetQuery parses and installs a new search query. Submitting a new query
// atomically clears the exclusion set: exclusions marked against a previous
// search must never silently carry over to the next one.
func (s *Session) SetQuery(raw string) (query.Query, error) {
	parsed, err := query.Parse(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawQuery = raw
	s.parsed = parsed
	s.excluded = make(map[string]bool)
	return parsed, nil
}

// Query returns the last parsed query, or nil if none has been submitted.
func (s *Session) Query() query.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parsed
}

// RawQuery returns the last raw query string.
func (s *Session) RawQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rawQuery
}

// LookbackYears returns the configured search window.
func (s *Session) LookbackYears() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookback
}

// Toggle marks a donor as included (removed from the exclusion set) or
// excluded (added to it). Idempotent: toggling to the current state is a
// no-op.
func (s *Session) Toggle(donor string, included bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if included {
		delete(s.excluded, donor)
	} else {
		s.excluded[donor] = true
	}
}

// Excluded reports whether a donor is currently excluded.
func (s *Session) Excluded(donor string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.excluded[donor]
}

// ExclusionCount returns the number of excluded donors.
func (s *Session) ExclusionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.excluded)
}

// Apply removes every record whose display donor name is in the exclusion
// set. Input order is preserved. The same set is applied to every
// jurisdiction, before both display and export.
func (s *Session) Apply(records []model.Donation) []model.Donation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.excluded) == 0 {
		return records
	}
	out := make([]model.Donation, 0, len(records))
	for _, r := range records {
		if s.excluded[r.Donor] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Reset clears both the query and the exclusion set in one step, so neither
// can be left referencing the other's stale state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawQuery = ""
	s.parsed = nil
	s.excluded = make(map[string]bool)
}
