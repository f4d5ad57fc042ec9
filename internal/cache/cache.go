package cache

import (
	"sync"
	"time"

	"media-orchestrator/internal/logging"
	"media-orchestrator/internal/metrics"
)

// Entry is one cached job result.
type Entry struct {
	JobID     string
	Results   any
	ExpiresAt time.Time
}

// Cache is a bounded, TTL-based store of completed job results. Entries
// are insertion-ordered; inserting at capacity evicts the oldest
// inserted entry, independent of expiry-based removal by Sweep.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry
	order   []string
	maxSize int
	now     func() time.Time
}

// New creates a cache bounded at maxSize entries. maxSize < 1 is
// treated as 1.
func New(maxSize int) *Cache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Cache{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Put stores results for a job with the given TTL. Storing an existing
// job id refreshes its value and TTL without changing its insertion
// position.
func (c *Cache) Put(jobID string, results any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[jobID]; ok {
		e.Results = results
		e.ExpiresAt = c.now().Add(ttl)
		return
	}

	if len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		metrics.CacheEvictions.WithLabelValues("capacity").Inc()
		logging.Debug("Result cache at capacity, evicted %s", oldest)
	}

	c.entries[jobID] = &Entry{
		JobID:     jobID,
		Results:   results,
		ExpiresAt: c.now().Add(ttl),
	}
	c.order = append(c.order, jobID)
	metrics.CacheSize.Set(float64(len(c.entries)))
}

// Get returns the cached results for a job. Expired entries are never
// returned, even before the sweep removes them.
func (c *Cache) Get(jobID string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[jobID]
	if !ok || c.now().After(e.ExpiresAt) {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	metrics.CacheHits.Inc()
	return e.Results, true
}

// Remove deletes a job's entry if present.
func (c *Cache) Remove(jobID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(jobID)
}

func (c *Cache) removeLocked(jobID string) {
	if _, ok := c.entries[jobID]; !ok {
		return
	}
	delete(c.entries, jobID)
	for i, id := range c.order {
		if id == jobID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	metrics.CacheSize.Set(float64(len(c.entries)))
}

// Sweep removes every expired entry and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expired []string
	for id, e := range c.entries {
		if now.After(e.ExpiresAt) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		c.removeLocked(id)
		metrics.CacheEvictions.WithLabelValues("expired").Inc()
	}

	if len(expired) > 0 {
		logging.Debug("Result cache sweep removed %d expired entries", len(expired))
	}
	return len(expired)
}

// Len returns the number of entries, including any not yet swept
// expired entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
