package cache

import (
	"sync"
	"time"
)

// Store memoizes serialized action outputs under canonical keys with a TTL.
// Implementations must be safe for concurrent use; values are opaque bytes
// so cached and live objects can never share structure.
type Store interface {
	// Get returns the stored value, or false when absent or expired.
	Get(key string) ([]byte, bool)

	// Set stores value under key for ttl. Non-positive TTLs are ignored.
	Set(key string, value []byte, ttl time.Duration)
}

// cleanupInterval paces the lazy sweep of expired entries.
const cleanupInterval = 10 * time.Minute

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is the in-process Store used by default.
type MemoryStore struct {
	mu          sync.RWMutex
	entries     map[string]entry
	lastCleanup time.Time

	// now is replaceable in tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// SetNowFunc replaces the store's clock, for tests.
func (s *MemoryStore) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Get returns a copy of the stored value when present and fresh.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expiresAt) {
		return nil, false
	}

	cp := make([]byte, len(e.value))
	copy(cp, e.value)
	return cp, true
}

// Set stores a copy of value under key for ttl.
func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	cp := make([]byte, len(value))
	copy(cp, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.entries[key] = entry{value: cp, expiresAt: now.Add(ttl)}
	s.cleanupLocked(now)
}

// Len reports the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	now := s.now()
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) cleanupLocked(now time.Time) {
	if now.Sub(s.lastCleanup) < cleanupInterval {
		return
	}
	s.lastCleanup = now
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

// ClampTTL folds upstream freshness hints (seconds) into one TTL: the
// minimum positive hint, clamped into [1s, ceiling]. No usable hint means
// the ceiling applies.
func ClampTTL(hintsSeconds []int, ceiling time.Duration) time.Duration {
	if ceiling < time.Second {
		ceiling = time.Second
	}

	best := 0
	for _, h := range hintsSeconds {
		if h <= 0 {
			continue
		}
		if best == 0 || h < best {
			best = h
		}
	}
	if best == 0 {
		return ceiling
	}

	ttl := time.Duration(best) * time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	if ttl > ceiling {
		ttl = ceiling
	}
	return ttl
}
