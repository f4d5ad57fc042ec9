package processor

import "sync"

// ProgressSink receives progress updates. Percent is 0-100.
type ProgressSink func(percent float64, stage string)

// ProgressReporter tracks a monotonically non-decreasing 0-100 progress
// value paired with a human-readable stage message. Safe for concurrent
// use.
type ProgressReporter struct {
	mu      sync.Mutex
	percent float64
	stage   string
	sink    ProgressSink
}

// NewProgressReporter creates a reporter. sink may be nil.
func NewProgressReporter(sink ProgressSink) *ProgressReporter {
	return &ProgressReporter{sink: sink}
}

// Report records progress. Values are clamped to 0-100 and never move
// backwards; a regressing update keeps the prior percentage but still
// updates the stage message.
func (p *ProgressReporter) Report(percent float64, stage string) {
	if p == nil {
		return
	}

	p.mu.Lock()
	if percent > 100 {
		percent = 100
	}
	if percent > p.percent {
		p.percent = percent
	}
	p.stage = stage
	percent = p.percent
	sink := p.sink
	p.mu.Unlock()

	if sink != nil {
		sink(percent, stage)
	}
}

// Current returns the latest progress value and stage message.
func (p *ProgressReporter) Current() (float64, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent, p.stage
}
