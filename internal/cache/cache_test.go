package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestPutGet(t *testing.T) {
	c := New(10)
	c.Put("job-1", "results", time.Minute)

	got, ok := c.Get("job-1")
	if !ok || got != "results" {
		t.Errorf("Get() = %v, %v", got, ok)
	}

	if _, ok := c.Get("absent"); ok {
		t.Error("Get(absent) = true")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	const n = 5
	c := New(n)

	for i := 0; i < n+1; i++ {
		c.Put(fmt.Sprintf("job-%d", i), i, time.Minute)
	}

	if c.Len() != n {
		t.Fatalf("Len() = %d, want %d", c.Len(), n)
	}
	// Exactly the oldest-inserted entry is gone.
	if _, ok := c.Get("job-0"); ok {
		t.Error("oldest entry survived capacity eviction")
	}
	for i := 1; i <= n; i++ {
		if _, ok := c.Get(fmt.Sprintf("job-%d", i)); !ok {
			t.Errorf("job-%d missing after eviction", i)
		}
	}
}

func TestExpiredEntryAbsentBeforeSweep(t *testing.T) {
	c := New(10)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("job-1", "results", time.Second)

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("job-1"); ok {
		t.Error("Get() returned an expired entry before the sweep ran")
	}
	// Still counted until swept.
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestSweep(t *testing.T) {
	c := New(10)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("old-1", 1, time.Second)
	c.Put("old-2", 2, time.Second)
	c.Put("fresh", 3, time.Hour)

	now = now.Add(time.Minute)
	if removed := c.Sweep(); removed != 2 {
		t.Errorf("Sweep() = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() after sweep = %d, want 1", c.Len())
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry removed by sweep")
	}
}

func TestPutRefreshKeepsPosition(t *testing.T) {
	c := New(2)
	c.Put("a", 1, time.Minute)
	c.Put("b", 2, time.Minute)

	// Refreshing "a" does not move it to the back of the queue.
	c.Put("a", 10, time.Minute)
	c.Put("c", 3, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Error("refreshed entry should still be oldest and evicted")
	}
	if got, ok := c.Get("c"); !ok || got != 3 {
		t.Errorf("Get(c) = %v, %v", got, ok)
	}
}

func TestRemove(t *testing.T) {
	c := New(3)
	c.Put("a", 1, time.Minute)
	c.Remove("a")
	c.Remove("never-existed")

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}

	// Order bookkeeping stays consistent after removal.
	c.Put("b", 2, time.Minute)
	c.Put("c", 3, time.Minute)
	c.Put("d", 4, time.Minute)
	c.Put("e", 5, time.Minute)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted as oldest")
	}
}
