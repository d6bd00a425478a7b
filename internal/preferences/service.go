package preferences

import (
	"sync"
	"time"

	"cartelera/internal/event"
	"cartelera/internal/logger"
	"cartelera/internal/rules"
)

// DefaultTTL is how long loaded rules are reused before re-reading storage.
const DefaultTTL = 5 * time.Minute

// Service answers preference checks with a TTL-cached copy of the stored
// rules. A storage failure reuses the last good rules (or accepts
// everything when none were ever loaded), so preference-store hiccups never
// drop events.
type Service struct {
	storage Storage
	ttl     time.Duration

	mu      sync.Mutex
	cached  Rules
	loaded  bool
	fetched time.Time
}

var _ rules.PreferenceChecker = (*Service)(nil)

// NewService creates a preference service over storage. ttl <= 0 uses
// DefaultTTL.
func NewService(storage Storage, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{storage: storage, ttl: ttl}
}

// ShouldAcceptEvent checks evt against the current rules.
func (s *Service) ShouldAcceptEvent(evt event.Event) rules.ValidationResult {
	return s.current().ShouldAcceptEvent(evt)
}

// Invalidate drops the cached rules so the next check re-reads storage.
// Call after updating preferences.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.fetched = time.Time{}
}

// Update saves new rules and invalidates the cache.
func (s *Service) Update(r Rules) error {
	if err := s.storage.Save(r); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

func (s *Service) current() Rules {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && time.Since(s.fetched) < s.ttl {
		return s.cached
	}

	r, err := s.storage.Load()
	if err != nil {
		logger.Warn("loading preferences failed, reusing last known rules", logger.Fields{
			"error": err.Error(),
		})
		if s.loaded {
			return s.cached
		}
		return Rules{}
	}

	s.cached = r
	s.loaded = true
	s.fetched = time.Now()
	return s.cached
}
