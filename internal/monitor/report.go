package monitor

import (
	"fmt"
	"time"
)

// MetricSummary aggregates one metric over a report window.
type MetricSummary struct {
	Average float64 `json:"average"`
	Peak    float64 `json:"peak"`
	// TrendPct is the signed percentage change between the first-half
	// and second-half averages of the window.
	TrendPct float64 `json:"trendPct"`
}

// Report aggregates the metric history over a time window.
type Report struct {
	Window          time.Duration            `json:"window"`
	Samples         int                      `json:"samples"`
	Metrics         map[string]MetricSummary `json:"metrics"`
	Recommendations []string                 `json:"recommendations"`
}

// Report aggregates the history within the window ending now and
// attaches rule-based recommendations.
func (m *Monitor) Report(window time.Duration) Report {
	cutoff := time.Now().Add(-window)

	m.mu.RLock()
	var samples []Snapshot
	for _, s := range m.history {
		if s.Timestamp.After(cutoff) {
			samples = append(samples, s)
		}
	}
	m.mu.RUnlock()

	r := Report{
		Window:  window,
		Samples: len(samples),
		Metrics: make(map[string]MetricSummary, 4),
	}
	if len(samples) == 0 {
		return r
	}

	extract := map[string]func(Snapshot) float64{
		MetricMemory:     func(s Snapshot) float64 { return s.System.MemoryPct },
		MetricCPU:        func(s Snapshot) float64 { return s.System.CPUPct },
		MetricErrorRate:  func(s Snapshot) float64 { return s.Application.ErrorRatePct },
		MetricQueueDepth: func(s Snapshot) float64 { return s.Application.QueueDepth },
	}

	for metric, get := range extract {
		values := make([]float64, len(samples))
		for i, s := range samples {
			values[i] = get(s)
		}
		r.Metrics[metric] = summarize(values)
	}

	r.Recommendations = m.recommend(r)
	return r
}

func summarize(values []float64) MetricSummary {
	var sum, peak float64
	for _, v := range values {
		sum += v
		if v > peak {
			peak = v
		}
	}
	s := MetricSummary{
		Average: sum / float64(len(values)),
		Peak:    peak,
	}

	if len(values) >= 2 {
		half := len(values) / 2
		first := values[:half]
		second := values[half:]

		var firstSum, secondSum float64
		for _, v := range first {
			firstSum += v
		}
		for _, v := range second {
			secondSum += v
		}
		firstAvg := firstSum / float64(len(first))
		secondAvg := secondSum / float64(len(second))
		if firstAvg != 0 {
			s.TrendPct = (secondAvg - firstAvg) / firstAvg * 100
		}
	}
	return s
}

// recommend applies fixed-threshold rules to the aggregated window.
func (m *Monitor) recommend(r Report) []string {
	var recs []string

	if mem, ok := r.Metrics[MetricMemory]; ok && mem.Average > 70 {
		recs = append(recs, fmt.Sprintf(
			"sustained memory usage at %.1f%%: scale memory or lower max_concurrent_jobs", mem.Average))
	}
	if cpu, ok := r.Metrics[MetricCPU]; ok && cpu.Average > 80 {
		recs = append(recs, fmt.Sprintf(
			"sustained CPU usage at %.1f%%: add cores or reduce concurrency", cpu.Average))
	}
	if er, ok := r.Metrics[MetricErrorRate]; ok && er.Average > 5 {
		recs = append(recs, fmt.Sprintf(
			"error rate at %.1f%%: investigate failing capability providers", er.Average))
	}
	if qd, ok := r.Metrics[MetricQueueDepth]; ok && qd.TrendPct > 50 && qd.Average > 1 {
		recs = append(recs, fmt.Sprintf(
			"queue depth growing %.0f%% across the window: raise max_concurrent_jobs or add capacity", qd.TrendPct))
	}

	return recs
}
