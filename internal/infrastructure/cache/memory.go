package cache

import (
	"context"
	"sync"
	"time"

	"github.com/instafinder/backend/internal/domain"
)

// DefaultCleanupInterval is how often expired entries are swept
const DefaultCleanupInterval = time.Minute

// EvictFunc is called, outside the lock, for every entry removed by
// expiry, Delete, or Close
type EvictFunc func(key string, value interface{})

// item is a single entry with its expiration
type item struct {
	value      interface{}
	expiration time.Time
}

// MemoryStore is a thread-safe in-memory store with TTL support. Values are
// kept by reference so live objects such as sessions can be stored.
type MemoryStore struct {
	data    map[string]item
	mutex   sync.RWMutex
	onEvict EvictFunc
	now     func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a MemoryStore
type Option func(*MemoryStore)

// WithEvictFunc registers a callback for removed entries
func WithEvictFunc(fn EvictFunc) Option {
	return func(s *MemoryStore) { s.onEvict = fn }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates a store and starts its janitor. Call Close to stop it.
func NewMemoryStore(cleanupInterval time.Duration, opts ...Option) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	store := &MemoryStore{
		data: make(map[string]item),
		now:  time.Now,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(store)
	}

	go store.janitor(cleanupInterval)

	return store
}

// Get retrieves a value from the store
func (s *MemoryStore) Get(ctx context.Context, key string) (interface{}, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entry, exists := s.data[key]
	if !exists || s.now().After(entry.expiration) {
		return nil, domain.ErrCacheMiss
	}

	return entry.value, nil
}

// Set stores a value with TTL, replacing and refreshing any existing entry
func (s *MemoryStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = item{
		value:      value,
		expiration: s.now().Add(ttl),
	}

	return nil
}

// Delete removes a value from the store
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	entry, exists := s.data[key]
	delete(s.data, key)
	s.mutex.Unlock()

	if exists {
		s.evicted(key, entry.value)
	}
	return nil
}

// Exists checks if a key exists and is not expired
func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entry, exists := s.data[key]
	if !exists {
		return false, nil
	}

	return !s.now().After(entry.expiration), nil
}

// Size returns the number of stored entries, expired or not
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Sweep removes expired entries and returns how many were removed
func (s *MemoryStore) Sweep() int {
	s.mutex.Lock()
	now := s.now()
	expired := make(map[string]interface{})
	for key, entry := range s.data {
		if now.After(entry.expiration) {
			expired[key] = entry.value
			delete(s.data, key)
		}
	}
	s.mutex.Unlock()

	for key, value := range expired {
		s.evicted(key, value)
	}
	return len(expired)
}

// Close stops the janitor and evicts every remaining entry
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done

		s.mutex.Lock()
		remaining := s.data
		s.data = make(map[string]item)
		s.mutex.Unlock()

		for key, entry := range remaining {
			s.evicted(key, entry.value)
		}
	})
}

func (s *MemoryStore) evicted(key string, value interface{}) {
	if s.onEvict != nil {
		s.onEvict(key, value)
	}
}

// janitor sweeps expired entries until Close
func (s *MemoryStore) janitor(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}
