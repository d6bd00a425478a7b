package store

import (
	"context"
	"sort"
	"sync"

	"cartelera/internal/event"
)

// MemoryStore is an in-memory EventStore and BlacklistStore used by tests
// and dry runs.
type MemoryStore struct {
	mu        sync.RWMutex
	events    map[string]event.Event // keyed by ID
	blacklist map[string]string      // source|externalID → reason
}

var (
	_ EventStore     = (*MemoryStore)(nil)
	_ BlacklistStore = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:    make(map[string]event.Event),
		blacklist: make(map[string]string),
	}
}

// FindByFilters returns matching events ordered by date.
func (s *MemoryStore) FindByFilters(_ context.Context, f Filters) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]event.Event, 0)
	for _, evt := range s.events {
		if !f.DateFrom.IsZero() && evt.Date.Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && evt.Date.After(f.DateTo) {
			continue
		}
		if f.City != "" && evt.City != f.City {
			continue
		}
		if f.Country != "" && evt.Country != f.Country {
			continue
		}
		if f.Category != "" && evt.Category != f.Category {
			continue
		}
		if f.Source != "" && evt.Source != f.Source {
			continue
		}
		matches = append(matches, evt)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })
	if f.Limit > 0 && len(matches) > f.Limit {
		matches = matches[:f.Limit]
	}
	return matches, nil
}

// UpsertMany stores events keyed by ID, replacing existing entries.
func (s *MemoryStore) UpsertMany(_ context.Context, events []event.Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range events {
		s.events[evt.ID] = evt
	}
	return len(events), nil
}

// FindByID returns the event with the given ID or ErrNotFound.
func (s *MemoryStore) FindByID(_ context.Context, id string) (event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evt, ok := s.events[id]
	if !ok {
		return event.Event{}, ErrNotFound
	}
	return evt, nil
}

// DeleteByID removes a single event.
func (s *MemoryStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// DeleteAll removes every event and returns the count.
func (s *MemoryStore) DeleteAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.events)
	s.events = make(map[string]event.Event)
	return n, nil
}

// Count returns the number of stored events.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), nil
}

// IsBlacklisted reports whether (source, externalID) is excluded.
func (s *MemoryStore) IsBlacklisted(_ context.Context, source, externalID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blacklist[source+"|"+externalID]
	return ok, nil
}

// AddToBlacklist records a (source, externalID) exclusion.
func (s *MemoryStore) AddToBlacklist(_ context.Context, source, externalID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[source+"|"+externalID] = reason
	return nil
}

// ClearAll empties the blacklist and returns the count removed.
func (s *MemoryStore) ClearAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.blacklist)
	s.blacklist = make(map[string]string)
	return n, nil
}
