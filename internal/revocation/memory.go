package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process Store. Used in tests and
// single-node development setups.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.TokenHash]; ok {
		return nil
	}
	rec.CreatedAt = time.Now()
	s.records[rec.TokenHash] = rec
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[tokenHash]
	return ok, nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for hash, rec := range s.records {
		if rec.ExpiresAt != nil && rec.ExpiresAt.Before(now) {
			delete(s.records, hash)
			removed++
		}
	}
	return removed, nil
}
