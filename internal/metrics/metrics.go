package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_orchestrator_jobs_total",
			Help: "Total number of processing jobs by media type and status",
		},
		[]string{"type", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_orchestrator_job_duration_seconds",
			Help:    "Processing job duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"type"},
	)

	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_orchestrator_jobs_in_flight",
			Help: "Number of jobs currently being processed",
		},
	)

	JobsReclaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_orchestrator_jobs_reclaimed_total",
			Help: "Total number of stuck jobs force-failed by the sweep",
		},
	)
)

// Result cache metrics
var (
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_orchestrator_cache_entries",
			Help: "Number of entries in the result cache",
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_orchestrator_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_orchestrator_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_orchestrator_cache_evictions_total",
			Help: "Total number of cache evictions by reason",
		},
		[]string{"reason"}, // "capacity" or "expired"
	)
)

// Capability metrics
var (
	CapabilityAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_orchestrator_capability_attempts_total",
			Help: "Total number of capability provider invocations",
		},
		[]string{"capability", "provider"},
	)

	CapabilityFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_orchestrator_capability_failures_total",
			Help: "Total number of capability provider failures",
		},
		[]string{"capability", "provider"},
	)

	CapabilityFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_orchestrator_capability_fallbacks_total",
			Help: "Total number of fallbacks to a lower-priority provider",
		},
		[]string{"capability"},
	)

	CapabilityExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_orchestrator_capability_exhausted_total",
			Help: "Total number of capability executions that exhausted every provider",
		},
		[]string{"capability"},
	)
)

// Processor retry metrics
var (
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_orchestrator_retry_attempts_total",
			Help: "Total number of retried processor operations",
		},
		[]string{"operation"},
	)

	RetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_orchestrator_retry_failures_total",
			Help: "Total number of operations that failed after all retries",
		},
		[]string{"operation"},
	)
)

// Performance monitor metrics
var (
	MonitorMemoryPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_orchestrator_monitor_memory_percent",
			Help: "Heap usage as a percentage of the configured memory limit",
		},
	)

	MonitorCPUPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_orchestrator_monitor_cpu_percent",
			Help: "Estimated CPU usage percentage (load average / cores)",
		},
	)

	MonitorErrorRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_orchestrator_monitor_error_rate_percent",
			Help: "Job error rate percentage over the process lifetime",
		},
	)

	MonitorThroughput = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_orchestrator_monitor_throughput_jobs_per_minute",
			Help: "Derived job throughput in jobs per minute",
		},
	)

	AlertsFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_orchestrator_alerts_total",
			Help: "Total number of alert state transitions",
		},
		[]string{"metric", "severity"},
	)
)

// Persistence sink metrics
var (
	SinkWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_orchestrator_sink_writes_total",
			Help: "Total number of envelope writes to the persistence sink",
		},
		[]string{"status"},
	)

	SinkWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_orchestrator_sink_write_duration_seconds",
			Help:    "Envelope persistence write duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// HTTP metrics for the telemetry surface
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_orchestrator_http_requests_total",
			Help: "Total number of HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_orchestrator_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_orchestrator_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_orchestrator_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
