package monitor

import (
	"time"

	"media-orchestrator/internal/logging"
	"media-orchestrator/internal/metrics"
)

// Tracked metric names.
const (
	MetricMemory     = "memory_percent"
	MetricCPU        = "cpu_percent"
	MetricErrorRate  = "error_rate_percent"
	MetricQueueDepth = "queue_depth"
)

// Severity classifies an alert event.
type Severity string

const (
	// SeverityWarning is a threshold crossing.
	SeverityWarning Severity = "warning"
	// SeverityCritical is a crossing past the metric's critical multiplier.
	SeverityCritical Severity = "critical"
	// SeverityResolved clears an active alert.
	SeverityResolved Severity = "resolved"
)

// Alert is one alert state transition event.
type Alert struct {
	Metric    string    `json:"type"`
	Severity  Severity  `json:"severity"`
	Threshold float64   `json:"threshold"`
	Value     float64   `json:"currentValue"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertObserver receives alert transition events.
type AlertObserver func(Alert)

// criticalMultiplier scales a metric's threshold to its critical level.
// Error rate doubles before it is critical; resource metrics escalate
// sooner.
func criticalMultiplier(metric string) float64 {
	switch metric {
	case MetricErrorRate:
		return 2.0
	case MetricQueueDepth:
		return 1.5
	default:
		return 1.2
	}
}

// alertState is the per-metric two-state machine. Events are emitted
// only on transitions, never on repeated samples above threshold.
type alertState struct {
	active   bool
	severity Severity
}

// OnAlert registers an observer for alert transitions. Observers are
// invoked synchronously from the sampling goroutine.
func (m *Monitor) OnAlert(fn AlertObserver) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// ActiveAlerts returns the currently active alerts, one per metric.
func (m *Monitor) ActiveAlerts() map[string]Severity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Severity)
	for metric, st := range m.alerts {
		if st.active {
			out[metric] = st.severity
		}
	}
	return out
}

func (m *Monitor) evaluateAlerts(snap Snapshot) {
	values := map[string]float64{
		MetricMemory:     snap.System.MemoryPct,
		MetricCPU:        snap.System.CPUPct,
		MetricErrorRate:  snap.Application.ErrorRatePct,
		MetricQueueDepth: snap.Application.QueueDepth,
	}

	var fired []Alert

	m.mu.Lock()
	for metric, value := range values {
		threshold, ok := m.config.Thresholds[metric]
		if !ok || threshold <= 0 {
			continue
		}

		st := m.alerts[metric]
		if st == nil {
			st = &alertState{}
			m.alerts[metric] = st
		}

		severity := SeverityWarning
		if value >= threshold*criticalMultiplier(metric) {
			severity = SeverityCritical
		}

		switch {
		case value >= threshold && !st.active:
			st.active = true
			st.severity = severity
			fired = append(fired, Alert{
				Metric: metric, Severity: severity,
				Threshold: threshold, Value: value, Timestamp: snap.Timestamp,
			})
		case value >= threshold && st.active && st.severity == SeverityWarning && severity == SeverityCritical:
			// Escalation is a transition too.
			st.severity = SeverityCritical
			fired = append(fired, Alert{
				Metric: metric, Severity: SeverityCritical,
				Threshold: threshold, Value: value, Timestamp: snap.Timestamp,
			})
		case value < threshold && st.active:
			st.active = false
			st.severity = ""
			fired = append(fired, Alert{
				Metric: metric, Severity: SeverityResolved,
				Threshold: threshold, Value: value, Timestamp: snap.Timestamp,
			})
		}
	}
	observers := append([]AlertObserver(nil), m.observers...)
	m.mu.Unlock()

	for _, a := range fired {
		metrics.AlertsFired.WithLabelValues(a.Metric, string(a.Severity)).Inc()
		if a.Severity == SeverityResolved {
			logging.Info("Alert resolved: %s at %.1f (threshold %.1f)", a.Metric, a.Value, a.Threshold)
		} else {
			logging.Warn("Alert %s: %s at %.1f (threshold %.1f)", a.Severity, a.Metric, a.Value, a.Threshold)
		}
		for _, fn := range observers {
			fn(a)
		}
	}
}
