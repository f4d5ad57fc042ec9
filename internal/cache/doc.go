// Package cache provides the bounded, TTL-based store of completed job
// results. Size never exceeds the configured bound: inserting at
// capacity evicts the oldest-inserted entry, while the periodic sweep
// independently removes expired entries.
package cache
