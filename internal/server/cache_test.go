package server

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time           { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(size int, ttl time.Duration) (*lruCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	c := newLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_Eviction(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // a is now most recent
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s missing", key)
		}
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestLRUCache_Overwrite(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("a", "2")

	if v, _ := c.Get("a"); v != "2" {
		t.Errorf("a = %q, want 2", v)
	}
	if c.Size() != 1 {
		t.Errorf("size = %d, want 1", c.Size())
	}
}

func TestLRUCache_TTL(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("a", "1")
	clock.advance(30 * time.Second)
	c.Set("b", "2")

	if _, ok := c.Get("a"); !ok {
		t.Fatal("a expired early")
	}

	clock.advance(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b expired early")
	}

	clock.advance(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("size = %d, want 0", c.Size())
	}
}

func TestLRUCache_Purge(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Purge()

	if c.Size() != 0 {
		t.Errorf("size = %d after purge", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("a survived purge")
	}
}
