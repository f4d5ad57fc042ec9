// Package monitor samples system and application metrics on a fixed
// interval and drives threshold-based alerting with hysteresis.
//
// # Sampling
//
// Each sample combines runtime memory statistics (heap allocation
// against GOMEMLIMIT or a configured ceiling), load averages read from
// /proc via prometheus/procfs (zero on platforms without procfs), an
// estimated CPU percentage (1-minute load normalized by core count),
// and application metrics derived from orchestrator stats: throughput
// as the job-count delta over elapsed minutes, error rate as
// failed/(failed+completed), queue depth, and average processing time.
// Samples append to a bounded ring buffer; the oldest entry is evicted
// on overflow.
//
// # Alerting
//
// Each tracked metric runs an independent two-state machine. Crossing
// the threshold transitions idle to active (warning, or critical past
// the metric's multiplier); dropping below transitions active to
// resolved. Only transitions produce alert events, so a metric sitting
// above its threshold fires once, not once per sample. One alert is
// active per metric at a time; escalation from warning to critical is
// itself a transition. Observers registered with OnAlert are invoked
// synchronously.
//
// # Reporting
//
// Report aggregates a time window into per-metric average, peak, and
// trend (first-half versus second-half average, signed percent), plus
// rule-based recommendations keyed off fixed thresholds.
package monitor
