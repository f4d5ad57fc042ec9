package monitor

import (
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/procfs"

	"media-orchestrator/internal/logging"
	"media-orchestrator/internal/metrics"
)

// SystemMetrics holds one sample of process and host metrics.
type SystemMetrics struct {
	MemoryPct float64 `json:"memoryPct"`
	CPUPct    float64 `json:"cpuPct"`
	Load1     float64 `json:"load1"`
	Load5     float64 `json:"load5"`
	Load15    float64 `json:"load15"`
}

// AppMetrics holds one sample of application metrics derived from the
// stats pushed by the orchestrator.
type AppMetrics struct {
	Throughput      float64 `json:"throughput"` // jobs per minute
	ErrorRatePct    float64 `json:"errorRatePct"`
	QueueDepth      float64 `json:"queueDepth"`
	AvgProcessingMs float64 `json:"avgProcessingTimeMs"`
}

// Snapshot is one entry in the metric history ring buffer.
type Snapshot struct {
	Timestamp   time.Time     `json:"timestamp"`
	System      SystemMetrics `json:"system"`
	Application AppMetrics    `json:"application"`
}

// Stats is the application state pushed by the orchestrator on demand.
type Stats struct {
	TotalJobs       int64
	CompletedJobs   int64
	FailedJobs      int64
	ActiveJobs      int
	AvgProcessingMs float64
}

// StatsProvider supplies application stats to the sampler.
type StatsProvider interface {
	MonitorStats() Stats
}

// Config tunes the performance monitor.
type Config struct {
	// SampleInterval is how often metrics are sampled.
	SampleInterval time.Duration
	// HistorySize bounds the metric ring buffer.
	HistorySize int
	// WarmupSamples is how many samples are collected before baselines
	// are reported.
	WarmupSamples int
	// Thresholds maps metric name to its alert threshold. Known metric
	// names: memory_percent, cpu_percent, error_rate_percent,
	// queue_depth.
	Thresholds map[string]float64
	// MemoryLimitBytes is the memory ceiling for usage percentage.
	// 0 means use GOMEMLIMIT if set, else total runtime memory.
	MemoryLimitBytes int64
}

// DefaultConfig returns the monitor defaults.
func DefaultConfig() Config {
	return Config{
		SampleInterval: 30 * time.Second,
		HistorySize:    120,
		WarmupSamples:  5,
		Thresholds: map[string]float64{
			MetricMemory:     70,
			MetricCPU:        80,
			MetricErrorRate:  5,
			MetricQueueDepth: 50,
		},
	}
}

// Monitor periodically samples system and application metrics, keeps a
// bounded history, and drives threshold-based hysteretic alerting.
type Monitor struct {
	config   Config
	provider StatsProvider
	memLimit int64

	mu        sync.RWMutex
	history   []Snapshot
	alerts    map[string]*alertState
	observers []AlertObserver

	// throughput derivation state
	lastJobCount   int64
	lastSampleTime time.Time

	stopOnce sync.Once
	stopChan chan struct{}
}

// New creates a Monitor. provider may be nil, in which case application
// metrics stay zero.
func New(config Config, provider StatsProvider) *Monitor {
	if config.HistorySize < 1 {
		config.HistorySize = 1
	}
	if config.Thresholds == nil {
		config.Thresholds = DefaultConfig().Thresholds
	}

	limit := config.MemoryLimitBytes
	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < 1<<62 {
			limit = goMemLimit
			logging.Info("Performance monitor using GOMEMLIMIT: %.1f MB", float64(limit)/(1024*1024))
		}
	}

	return &Monitor{
		config:   config,
		provider: provider,
		memLimit: limit,
		alerts:   make(map[string]*alertState),
		stopChan: make(chan struct{}),
	}
}

// Start begins the sampling loop.
func (m *Monitor) Start() {
	go m.sampleLoop()
}

// Stop stops the sampling loop. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) sampleLoop() {
	// Sample immediately so status queries have data before the first tick.
	m.Sample()

	ticker := time.NewTicker(m.config.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sample()
		case <-m.stopChan:
			return
		}
	}
}

// Sample collects one snapshot, appends it to the history, updates
// gauges, and evaluates alerts. Exposed for tests and for callers that
// want an immediate reading.
func (m *Monitor) Sample() Snapshot {
	snap := Snapshot{
		Timestamp: time.Now(),
		System:    m.sampleSystem(),
	}

	if m.provider != nil {
		snap.Application = m.deriveApp(m.provider.MonitorStats(), snap.Timestamp)
	}

	m.mu.Lock()
	m.history = append(m.history, snap)
	if len(m.history) > m.config.HistorySize {
		m.history = m.history[1:]
	}
	m.mu.Unlock()

	metrics.MonitorMemoryPercent.Set(snap.System.MemoryPct)
	metrics.MonitorCPUPercent.Set(snap.System.CPUPct)
	metrics.MonitorErrorRate.Set(snap.Application.ErrorRatePct)
	metrics.MonitorThroughput.Set(snap.Application.Throughput)

	m.evaluateAlerts(snap)
	return snap
}

func (m *Monitor) sampleSystem() SystemMetrics {
	var sys SystemMetrics

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	limit := m.memLimit
	if limit <= 0 {
		limit = int64(ms.Sys)
	}
	if limit > 0 {
		sys.MemoryPct = float64(ms.Alloc) / float64(limit) * 100
	}

	if fs, err := procfs.NewDefaultFS(); err == nil {
		if load, err := fs.LoadAvg(); err == nil {
			sys.Load1 = load.Load1
			sys.Load5 = load.Load5
			sys.Load15 = load.Load15
		}
	}

	// CPU usage estimated from the 1-minute load average normalized by
	// core count.
	if cores := runtime.NumCPU(); cores > 0 {
		sys.CPUPct = sys.Load1 / float64(cores) * 100
		if sys.CPUPct > 100 {
			sys.CPUPct = 100
		}
	}

	return sys
}

// deriveApp converts cumulative orchestrator stats into rate-based
// application metrics.
func (m *Monitor) deriveApp(stats Stats, now time.Time) AppMetrics {
	app := AppMetrics{
		QueueDepth:      float64(stats.ActiveJobs),
		AvgProcessingMs: stats.AvgProcessingMs,
	}

	if done := stats.CompletedJobs + stats.FailedJobs; done > 0 {
		app.ErrorRatePct = float64(stats.FailedJobs) / float64(done) * 100
	}

	m.mu.Lock()
	if !m.lastSampleTime.IsZero() {
		elapsed := now.Sub(m.lastSampleTime).Minutes()
		if elapsed > 0 {
			app.Throughput = float64(stats.TotalJobs-m.lastJobCount) / elapsed
		}
	}
	m.lastJobCount = stats.TotalJobs
	m.lastSampleTime = now
	m.mu.Unlock()

	return app
}

// History returns a copy of the snapshot ring buffer, oldest first.
func (m *Monitor) History() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Snapshot(nil), m.history...)
}

// Baselines returns the rolling average of each tracked metric over the
// full history. The second return value is false until the warm-up
// window has elapsed.
func (m *Monitor) Baselines() (map[string]float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.history) < m.config.WarmupSamples {
		return nil, false
	}

	sums := make(map[string]float64, 4)
	for _, s := range m.history {
		sums[MetricMemory] += s.System.MemoryPct
		sums[MetricCPU] += s.System.CPUPct
		sums[MetricErrorRate] += s.Application.ErrorRatePct
		sums[MetricQueueDepth] += s.Application.QueueDepth
	}
	n := float64(len(m.history))
	for k := range sums {
		sums[k] /= n
	}
	return sums, true
}
