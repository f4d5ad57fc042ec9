// Package status exposes the telemetry HTTP surface: health and
// liveness probes, the aggregate system status, per-job status lookup,
// performance reports, recent persisted envelopes, and prometheus
// metrics.
package status
