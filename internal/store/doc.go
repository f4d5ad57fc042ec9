// Package store persists finalized result envelopes to SQLite for
// audit. It implements the orchestrator's persistence sink; writes are
// fire-and-forget from the orchestrator's perspective, so a store
// failure degrades audit history without affecting job outcomes.
package store
