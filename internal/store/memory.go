package store

import (
	"context"
	"sync"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is the volatile in-process backend used when no hosted store
// is configured.  Construct one per process or per test; it is never shared
// through package state.
type MemoryStore struct {
	// mu serialises multi-key operations (Del, FlushAll) against SetNX so a
	// conditional put never observes a half-deleted namespace.
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewMemoryStore returns an empty MemoryStore.  Entries never expire.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrNil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, ErrNil
	}
	return clone(b), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.cache.Set(key, clone(value), gocache.NoExpiration)
	return nil
}

func (s *MemoryStore) SetNX(_ context.Context, key string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cache.Add(key, clone(value), gocache.NoExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	items := s.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		if Match(pattern, k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := s.cache.Get(k); ok {
			s.cache.Delete(k)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) FlushAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Flush()
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
