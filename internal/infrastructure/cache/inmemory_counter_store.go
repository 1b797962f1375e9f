package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryCounterStore implements CounterStore with a mutex-guarded map.
// Counters reset lazily on access; a background sweep drops idle keys.
type InMemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	stop     chan struct{}
	stopOnce sync.Once
}

type windowCounter struct {
	count     int64
	windowEnd time.Time
}

// NewInMemoryCounterStore creates an in-memory counter store
func NewInMemoryCounterStore() *InMemoryCounterStore {
	s := &InMemoryCounterStore{
		counters: make(map[string]*windowCounter),
		stop:     make(chan struct{}),
	}
	go s.cleanup()
	return s
}

// Increment bumps the counter for key, resetting it when its window elapsed
func (s *InMemoryCounterStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c, exists := s.counters[key]
	if !exists || now.After(c.windowEnd) {
		s.counters[key] = &windowCounter{count: 1, windowEnd: now.Add(window)}
		return 1, nil
	}

	c.count++
	return c.count, nil
}

// Close stops the background cleanup
func (s *InMemoryCounterStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *InMemoryCounterStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for key, c := range s.counters {
				if now.After(c.windowEnd) {
					delete(s.counters, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ CounterStore = (*InMemoryCounterStore)(nil)
