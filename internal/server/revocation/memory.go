package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store used when no redis URL is configured.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Revoke(_ context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !expiresAt.After(now) {
		return nil
	}
	s.revoked[id] = expiresAt
	s.purge(now)
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[id]
	if !ok {
		return false, nil
	}
	if !exp.After(s.now()) {
		delete(s.revoked, id)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Close() error { return nil }

// purge drops expired entries; callers hold mu.
func (s *MemoryStore) purge(now time.Time) {
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
}
