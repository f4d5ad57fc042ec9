// Package metrics provides Prometheus instrumentation for the orchestrator.
//
// All metrics are registered with the default registry via promauto and are
// prefixed with "media_orchestrator_". Expose them by mounting
// promhttp.Handler() on the status listener.
//
// Metrics fall into six groups:
//
//   - Job metrics: counts, durations, in-flight gauge, and stuck-job
//     reclamations maintained by the orchestrator.
//   - Cache metrics: result cache size, hits, misses, and evictions split
//     by reason (capacity vs. expiry).
//   - Capability metrics: per-provider attempts and failures plus fallback
//     and exhaustion counters per capability.
//   - Retry metrics: processor-level retry attempts and terminal failures.
//   - Monitor metrics: sampled system and application gauges and the alert
//     transition counter.
//   - Sink metrics: persistence writes and their latency.
//
// Record metrics from other packages through the exported variables:
//
//	metrics.JobsTotal.WithLabelValues("image", "completed").Inc()
//	metrics.JobDuration.WithLabelValues("image").Observe(0.123)
package metrics
