package processor

import (
	"context"
	"errors"
	"fmt"

	"media-orchestrator/internal/capability"
	"media-orchestrator/internal/mediatype"
)

// Input is the unit of work handed to a processor.
type Input struct {
	// Data is the raw content buffer.
	Data []byte
	// Filename is the original file name, if known.
	Filename string
	// MimeType is the declared MIME type, if known.
	MimeType string
	// OwnerID identifies the submitter of the content.
	OwnerID string
	// Meta carries any additional caller-supplied metadata.
	Meta map[string]any
}

// CapabilityExecutor runs a named capability through its provider
// fallback chain. *capability.Registry satisfies it.
type CapabilityExecutor interface {
	Available(name string) bool
	Execute(ctx context.Context, name string, input any) (*capability.Result, error)
}

// Options is the merged processing options snapshot for one job:
// base config, type-specific config, caller metadata, and resolved
// feature flags.
type Options struct {
	// Features maps feature name to availability for this job.
	Features map[string]bool
	// Settings is the merged configuration for the detected type.
	Settings map[string]any
	// Capabilities executes optional features with provider fallback.
	// May be nil, in which case every feature is skipped.
	Capabilities CapabilityExecutor
}

// RunFeature executes one optional feature against the envelope: a
// disabled or unavailable feature records a skip warning, provider
// failures that preceded a success are recorded as warnings, and an
// exhausted chain surfaces as an envelope error. The result value is
// recorded under the feature name.
func (o Options) RunFeature(ctx context.Context, name string, input any, env *Envelope) {
	if !o.Features[name] || o.Capabilities == nil {
		env.AddWarning("feature skipped: not available", name)
		return
	}

	res, err := o.Capabilities.Execute(ctx, name, input)
	if err != nil {
		env.AddError(fmt.Sprintf("feature failed: %v", err), name)
		return
	}
	for _, f := range res.Failures {
		env.AddWarning(fmt.Sprintf("provider %s failed, fell back: %v", f.Provider, f.Err), name)
	}
	env.AddResult(name, res.Output)
}

// ErrValidation marks inputs rejected before any work is attempted.
// Validation failures are never retried.
var ErrValidation = errors.New("input validation failed")

// TransientError wraps a failure that is safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Processor is the contract every concrete media backend must honor.
// The contract exists so the orchestrator gets uniform observability
// and error semantics regardless of backend.
type Processor interface {
	// Initialize prepares the processor with its merged configuration.
	Initialize(cfg map[string]any) error

	// Validate checks an input before processing. A returned error
	// rejects the job outright and is never retried.
	Validate(input Input) error

	// Process runs the analysis and returns a result envelope. Progress
	// may be nil. Process must honor ctx cancellation.
	Process(ctx context.Context, input Input, opts Options, progress *ProgressReporter) (*Envelope, error)

	// Cleanup releases any per-owner resources. An empty ownerID
	// releases everything.
	Cleanup(ownerID string) error

	// SupportedTypes returns the media categories this processor handles.
	SupportedTypes() []mediatype.Type

	// Capabilities returns the capability names this processor can use.
	Capabilities() []string
}

// ValidateInput applies the shared pre-flight checks: non-empty data
// and a configured size ceiling (0 disables the ceiling).
func ValidateInput(input Input, maxBytes int) error {
	if len(input.Data) == 0 {
		return fmt.Errorf("%w: empty input buffer", ErrValidation)
	}
	if maxBytes > 0 && len(input.Data) > maxBytes {
		return fmt.Errorf("%w: input is %d bytes, limit is %d", ErrValidation, len(input.Data), maxBytes)
	}
	return nil
}
