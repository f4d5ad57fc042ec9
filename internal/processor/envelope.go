package processor

import (
	"time"
)

// Status is the terminal status of a result envelope.
type Status string

const (
	// StatusCompleted means processing finished with no recorded issues.
	StatusCompleted Status = "completed"
	// StatusCompletedWithErrors means issues were recorded but usable
	// output was still produced.
	StatusCompletedWithErrors Status = "completed_with_errors"
	// StatusFailed means no usable output exists.
	StatusFailed Status = "failed"
)

// Issue is one recorded error or warning.
type Issue struct {
	Message   string    `json:"message"`
	Context   string    `json:"context,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Processor string    `json:"processor"`
}

// InputDescriptor summarizes the processed input without retaining the
// buffer.
type InputDescriptor struct {
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int    `json:"size"`
}

// Envelope is the uniform result of one processing run.
type Envelope struct {
	OwnerID       string          `json:"ownerId"`
	Input         InputDescriptor `json:"input"`
	ProcessorType string          `json:"processorType"`
	StartTime     time.Time       `json:"startTime"`
	EndTime       time.Time       `json:"endTime"`
	Duration      time.Duration   `json:"duration"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
	Results       map[string]any  `json:"results"`
	Errors        []Issue         `json:"errors,omitempty"`
	Warnings      []Issue         `json:"warnings,omitempty"`
	Status        Status          `json:"status"`
}

// NewEnvelope starts an envelope for one processing run.
func NewEnvelope(processorType string, input Input) *Envelope {
	return &Envelope{
		OwnerID:       input.OwnerID,
		ProcessorType: processorType,
		StartTime:     time.Now(),
		Input: InputDescriptor{
			Filename: input.Filename,
			MimeType: input.MimeType,
			Size:     len(input.Data),
		},
		Metadata: map[string]any{},
		Results:  map[string]any{},
	}
}

// AddResult records a named result value.
func (e *Envelope) AddResult(key string, value any) {
	e.Results[key] = value
}

// AddError records an error issue.
func (e *Envelope) AddError(message, context string) {
	e.Errors = append(e.Errors, Issue{
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Processor: e.ProcessorType,
	})
}

// AddWarning records a warning issue.
func (e *Envelope) AddWarning(message, context string) {
	e.Warnings = append(e.Warnings, Issue{
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Processor: e.ProcessorType,
	})
}

// Finalize stamps the end time and derives the status: failed when no
// usable output exists, completed_with_errors when issues were recorded
// alongside output, completed otherwise.
func (e *Envelope) Finalize() *Envelope {
	e.EndTime = time.Now()
	e.Duration = e.EndTime.Sub(e.StartTime)

	switch {
	case len(e.Results) == 0 && len(e.Errors) > 0:
		e.Status = StatusFailed
	case len(e.Errors) > 0 || len(e.Warnings) > 0:
		e.Status = StatusCompletedWithErrors
	default:
		e.Status = StatusCompleted
	}
	return e
}
