package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryBucket struct {
	count     int64
	windowEnd time.Time
}

// MemoryStore is the single-process fallback. Counters reset on restart,
// which is exactly the weakness the Redis store exists to fix.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*memoryBucket)}
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]

	if !ok || now.After(b.windowEnd) {
		b = &memoryBucket{windowEnd: now.Add(window)}
		s.buckets[key] = b
	}

	b.count++

	return b.count, time.Until(b.windowEnd), nil
}

func (s *MemoryStore) Count(_ context.Context, key string) (int64, time.Duration, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]

	if !ok {
		return 0, 0, nil
	}

	if now.After(b.windowEnd) {
		delete(s.buckets, key)
		return 0, 0, nil
	}

	return b.count, time.Until(b.windowEnd), nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.buckets, key)
	s.mu.Unlock()

	return nil
}
