package orchestrator

import (
	"time"

	"media-orchestrator/internal/mediatype"
	"media-orchestrator/internal/processor"
)

// State is a job lifecycle state.
type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// rank orders states for the monotonic transition check.
func (s State) rank() int {
	switch s {
	case StateQueued:
		return 0
	case StateProcessing:
		return 1
	case StateCompleted, StateFailed:
		return 2
	}
	return -1
}

func (s State) terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job is one tracked processing run. Fields are guarded by the
// orchestrator's job table mutex; the progress reporter is internally
// synchronized and safe to read without it.
type Job struct {
	ID        string
	MediaType mediatype.Type
	OwnerID   string
	Filename  string
	State     State
	StartTime time.Time
	Features  map[string]bool
	Progress  *processor.ProgressReporter
	Err       error
}

// transition advances the job state. Transitions only move forward and
// terminal states are immutable; an invalid transition is a no-op.
func (j *Job) transition(to State) bool {
	if j.State.terminal() || to.rank() <= j.State.rank() {
		return false
	}
	j.State = to
	return true
}

// JobStatus is the externally visible view of a job, served from the
// active table or the result cache.
type JobStatus struct {
	ID        string              `json:"id"`
	State     State               `json:"state"`
	MediaType mediatype.Type      `json:"mediaType,omitempty"`
	Progress  float64             `json:"progress"`
	Stage     string              `json:"stage,omitempty"`
	StartTime time.Time           `json:"startTime,omitempty"`
	Elapsed   time.Duration       `json:"elapsed,omitempty"`
	FromCache bool                `json:"fromCache,omitempty"`
	Envelope  *processor.Envelope `json:"envelope,omitempty"`
}
