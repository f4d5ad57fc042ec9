package capability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"media-orchestrator/internal/logging"
	"media-orchestrator/internal/metrics"
)

// ErrExhausted is returned when every provider in a capability's
// fallback chain has failed.
var ErrExhausted = errors.New("all capability providers failed")

// ErrUnknownCapability is returned for capability names that were never
// registered.
var ErrUnknownCapability = errors.New("unknown capability")

// Provider is a concrete backend for a capability. Providers are tried
// in registration (priority) order.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Ready reports whether the provider can currently serve requests
	// (credentials present, endpoint reachable, model loaded).
	Ready() bool
	// Execute runs the capability against the input.
	Execute(ctx context.Context, input any) (any, error)
}

// Descriptor declares a capability: its name, its priority-ordered
// provider chain, and an optional enable predicate (typically a config
// flag). Descriptors are immutable after registration.
type Descriptor struct {
	Name      string
	Providers []Provider
	Enabled   func() bool
}

// ProviderFailure records one provider-level failure inside a fallback
// chain.
type ProviderFailure struct {
	Provider string
	Err      error
}

// Result is the outcome of a capability execution: the output of the
// first provider that succeeded, plus any failures that preceded it.
type Result struct {
	Output   any
	Provider string
	Failures []ProviderFailure
}

// Registry holds capability descriptors and executes them with
// automatic fallback.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{capabilities: make(map[string]Descriptor)}
}

// Register adds a capability. Re-registering a name replaces the prior
// descriptor.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("capability name must not be empty")
	}

	r.mu.Lock()
	r.capabilities[d.Name] = d
	r.mu.Unlock()

	logging.Debug("Registered capability %s with %d providers", d.Name, len(d.Providers))
	return nil
}

// Names returns the registered capability names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.capabilities))
	for name := range r.capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available reports whether a capability can currently execute: its
// enable predicate passes and at least one provider is ready. Unknown
// capabilities are unavailable.
func (r *Registry) Available(name string) bool {
	r.mu.RLock()
	d, ok := r.capabilities[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	if d.Enabled != nil && !d.Enabled() {
		return false
	}
	for _, p := range d.Providers {
		if p.Ready() {
			return true
		}
	}
	return false
}

// Execute runs a capability through its fallback chain: providers are
// tried in priority order, a provider failure is logged and recorded
// but execution falls through to the next provider. Only exhausting the
// full chain is a terminal failure.
func (r *Registry) Execute(ctx context.Context, name string, input any) (*Result, error) {
	r.mu.RLock()
	d, ok := r.capabilities[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCapability, name)
	}

	if d.Enabled != nil && !d.Enabled() {
		return nil, fmt.Errorf("%w: %s is disabled", ErrExhausted, name)
	}

	res := &Result{}
	var lastErr error
	for i, p := range d.Providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !p.Ready() {
			logging.Debug("Capability %s: provider %s not ready, skipping", name, p.Name())
			continue
		}

		if i > 0 {
			metrics.CapabilityFallbacks.WithLabelValues(name).Inc()
		}
		metrics.CapabilityAttempts.WithLabelValues(name, p.Name()).Inc()

		out, err := p.Execute(ctx, input)
		if err == nil {
			res.Output = out
			res.Provider = p.Name()
			return res, nil
		}

		lastErr = err
		res.Failures = append(res.Failures, ProviderFailure{Provider: p.Name(), Err: err})
		metrics.CapabilityFailures.WithLabelValues(name, p.Name()).Inc()
		logging.Warn("Capability %s: provider %s failed, falling through: %v", name, p.Name(), err)
	}

	metrics.CapabilityExhausted.WithLabelValues(name).Inc()
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExhausted, name, lastErr)
	}
	return nil, fmt.Errorf("%w: %s has no ready providers", ErrExhausted, name)
}

// Summary describes registered capabilities for status reporting.
func (r *Registry) Summary() map[string]CapabilityStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]CapabilityStatus, len(r.capabilities))
	for name, d := range r.capabilities {
		st := CapabilityStatus{
			Enabled: d.Enabled == nil || d.Enabled(),
		}
		for _, p := range d.Providers {
			st.Providers = append(st.Providers, ProviderStatus{Name: p.Name(), Ready: p.Ready()})
			if p.Ready() {
				st.Ready = true
			}
		}
		st.Available = st.Enabled && st.Ready
		out[name] = st
	}
	return out
}

// CapabilityStatus summarizes one capability for status reporting.
type CapabilityStatus struct {
	Enabled   bool             `json:"enabled"`
	Ready     bool             `json:"ready"`
	Available bool             `json:"available"`
	Providers []ProviderStatus `json:"providers"`
}

// ProviderStatus summarizes one provider for status reporting.
type ProviderStatus struct {
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}
