// Package processor defines the contract every concrete media backend
// must honor, plus the shared behavior available to all implementers:
// retry with linear backoff for transient failures, monotonic progress
// reporting, and the uniform result envelope.
//
// Concrete backends live behind this contract so the orchestrator gets
// identical observability and error semantics regardless of what the
// backend actually does. A backend records recoverable problems as
// envelope warnings or errors and degrades the envelope status rather
// than failing the call; only validation failures reject outright.
package processor
