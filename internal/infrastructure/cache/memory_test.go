package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/instafinder/backend/internal/domain"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_SetAndGet(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(time.Hour, WithClock(clock.Now))
	defer store.Close()
	ctx := context.Background()

	type session struct{ id string }
	live := &session{id: "abc"}

	if err := store.Set(ctx, "session:abc", live, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "session:abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != live {
		t.Errorf("Get() = %p, want the same pointer %p", got, live)
	}

	clock.Advance(2 * time.Minute)

	if _, err := store.Get(ctx, "session:abc"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after expiry error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryStore_Get_CacheMiss(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	defer store.Close()

	_, err := store.Get(context.Background(), "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryStore_SetRefreshesTTL(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(time.Hour, WithClock(clock.Now))
	defer store.Close()
	ctx := context.Background()

	store.Set(ctx, "k", "v", time.Minute)
	clock.Advance(50 * time.Second)
	store.Set(ctx, "k", "v", time.Minute)
	clock.Advance(50 * time.Second)

	if _, err := store.Get(ctx, "k"); err != nil {
		t.Errorf("Get() error = %v, want refreshed entry", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	var evicted []string
	store := NewMemoryStore(time.Hour, WithEvictFunc(func(key string, value interface{}) {
		evicted = append(evicted, key)
	}))
	defer store.Close()
	ctx := context.Background()

	key := "delete-test"
	if err := store.Set(ctx, key, "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}

	if _, err := store.Get(ctx, key); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
	if len(evicted) != 1 || evicted[0] != key {
		t.Errorf("evicted = %v, want [%s]", evicted, key)
	}
}

func TestMemoryStore_Exists(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(time.Hour, WithClock(clock.Now))
	defer store.Close()
	ctx := context.Background()

	exists, err := store.Exists(ctx, "exists-test")
	if err != nil || exists {
		t.Errorf("Exists() = %v, %v; want false, nil", exists, err)
	}

	store.Set(ctx, "exists-test", "value", time.Minute)

	exists, err = store.Exists(ctx, "exists-test")
	if err != nil || !exists {
		t.Errorf("Exists() = %v, %v; want true, nil", exists, err)
	}

	clock.Advance(time.Hour)

	exists, err = store.Exists(ctx, "exists-test")
	if err != nil || exists {
		t.Errorf("Exists() after expiry = %v, %v; want false, nil", exists, err)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := newFakeClock()
	evicted := map[string]interface{}{}
	store := NewMemoryStore(time.Hour,
		WithClock(clock.Now),
		WithEvictFunc(func(key string, value interface{}) { evicted[key] = value }),
	)
	defer store.Close()
	ctx := context.Background()

	store.Set(ctx, "short", 1, time.Second)
	store.Set(ctx, "long", 2, time.Hour)

	if n := store.Sweep(); n != 0 {
		t.Errorf("Sweep() = %d, want 0 before expiry", n)
	}

	clock.Advance(time.Minute)

	if n := store.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if size := store.Size(); size != 1 {
		t.Errorf("Size() = %d, want 1", size)
	}
	if evicted["short"] != 1 {
		t.Errorf("evicted = %v, want short evicted", evicted)
	}
}

func TestMemoryStore_Close(t *testing.T) {
	var mu sync.Mutex
	evicted := 0
	store := NewMemoryStore(time.Millisecond, WithEvictFunc(func(string, interface{}) {
		mu.Lock()
		evicted++
		mu.Unlock()
	}))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		store.Set(ctx, string(rune('a'+i)), i, time.Hour)
	}

	store.Close()
	store.Close()

	mu.Lock()
	defer mu.Unlock()
	if evicted != 3 {
		t.Errorf("evicted = %d, want 3", evicted)
	}
	if size := store.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after Close", size)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n))
			store.Set(ctx, key, n, time.Minute)
			store.Get(ctx, key)
			store.Exists(ctx, key)
			store.Delete(ctx, key)
		}(i)
	}
	wg.Wait()
}
