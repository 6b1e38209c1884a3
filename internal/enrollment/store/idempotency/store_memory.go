package idempotency

import (
	"context"
	"sync"
	"time"

	id "benefits-bff/pkg/domain"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// InMemory is a single-process Store used when Redis is not configured.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]entry), now: time.Now}
}

// lookup returns the live entry for key, dropping it when expired.
// Caller holds mu.
func (s *InMemory) lookup(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

func (s *InMemory) Reserve(_ context.Context, key string, ttl time.Duration) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.lookup(key); ok {
		if e.value == pendingMarker {
			return Reservation{State: InFlight}, nil
		}
		return Reservation{State: Completed, EnrollmentID: id.EnrollmentID(e.value)}, nil
	}
	s.entries[key] = entry{value: pendingMarker, expiresAt: s.now().Add(ttl)}
	return Reservation{State: Acquired}, nil
}

func (s *InMemory) Complete(_ context.Context, key string, enrollmentID id.EnrollmentID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: enrollmentID.String(), expiresAt: s.now().Add(ttl)}
	return nil
}

// Release frees a key still pending. A completed binding is left alone.
func (s *InMemory) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.lookup(key); ok && e.value == pendingMarker {
		delete(s.entries, key)
	}
	return nil
}
