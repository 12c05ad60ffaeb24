package cache

import (
	"context"
	"sync"
	"time"

	"github.com/roamio/discovery-api/types"
)

// MemoryStore is the default in-process tile store. It is safe for concurrent
// use but local to one instance; multi-instance deployments that need a shared
// view should configure the redis store instead.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return entry.clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, key, provider string, records []types.NormalizedRecord, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		entry = NewEntry()
		s.entries[key] = entry
	}
	entry.Records[provider] = append([]types.NormalizedRecord(nil), records...)
	entry.FetchedAt[provider] = fetchedAt
	return nil
}
