package processor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"media-orchestrator/internal/capability"
)

func featureRegistry(t *testing.T, providers ...capability.Provider) *capability.Registry {
	t.Helper()
	reg := capability.NewRegistry()
	if err := reg.Register(capability.Descriptor{Name: "analyze", Providers: providers}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg
}

func TestRunFeatureDisabled(t *testing.T) {
	opts := Options{Features: map[string]bool{"analyze": false}}
	env := NewEnvelope("test", Input{})

	opts.RunFeature(context.Background(), "analyze", nil, env)

	if len(env.Warnings) != 1 || !strings.Contains(env.Warnings[0].Message, "feature skipped") {
		t.Errorf("warnings = %v, want one skip warning", env.Warnings)
	}
	if len(env.Results) != 0 || len(env.Errors) != 0 {
		t.Errorf("results/errors = %v/%v, want none", env.Results, env.Errors)
	}
}

func TestRunFeatureNilExecutor(t *testing.T) {
	opts := Options{Features: map[string]bool{"analyze": true}}
	env := NewEnvelope("test", Input{})

	opts.RunFeature(context.Background(), "analyze", nil, env)

	if len(env.Warnings) != 1 {
		t.Errorf("warnings = %v, want one skip warning", env.Warnings)
	}
}

func TestRunFeatureSuccess(t *testing.T) {
	reg := featureRegistry(t, &capability.FuncProvider{
		ProviderName: "primary",
		ExecuteFn: func(context.Context, any) (any, error) {
			return "findings", nil
		},
	})
	opts := Options{Features: map[string]bool{"analyze": true}, Capabilities: reg}
	env := NewEnvelope("test", Input{})

	opts.RunFeature(context.Background(), "analyze", nil, env)

	if got := env.Results["analyze"]; got != "findings" {
		t.Errorf("result = %v, want findings", got)
	}
	if len(env.Warnings) != 0 || len(env.Errors) != 0 {
		t.Errorf("warnings/errors = %v/%v, want none", env.Warnings, env.Errors)
	}
}

func TestRunFeatureFallbackRecordsWarning(t *testing.T) {
	reg := featureRegistry(t,
		&capability.FuncProvider{
			ProviderName: "primary",
			ExecuteFn: func(context.Context, any) (any, error) {
				return nil, errors.New("model unavailable")
			},
		},
		&capability.FuncProvider{
			ProviderName: "backup",
			ExecuteFn: func(context.Context, any) (any, error) {
				return "findings", nil
			},
		},
	)
	opts := Options{Features: map[string]bool{"analyze": true}, Capabilities: reg}
	env := NewEnvelope("test", Input{})

	opts.RunFeature(context.Background(), "analyze", nil, env)

	if got := env.Results["analyze"]; got != "findings" {
		t.Errorf("result = %v, want findings", got)
	}
	if len(env.Warnings) != 1 || !strings.Contains(env.Warnings[0].Message, "primary") {
		t.Errorf("warnings = %v, want one fallback warning naming the failed provider", env.Warnings)
	}
}

func TestRunFeatureExhaustedRecordsError(t *testing.T) {
	reg := featureRegistry(t, &capability.FuncProvider{
		ProviderName: "primary",
		ExecuteFn: func(context.Context, any) (any, error) {
			return nil, errors.New("model unavailable")
		},
	})
	opts := Options{Features: map[string]bool{"analyze": true}, Capabilities: reg}
	env := NewEnvelope("test", Input{})

	opts.RunFeature(context.Background(), "analyze", nil, env)

	if len(env.Errors) != 1 {
		t.Fatalf("errors = %v, want one", env.Errors)
	}
	if _, ok := env.Results["analyze"]; ok {
		t.Error("result recorded despite exhausted provider chain")
	}
	if env.Finalize().Status != StatusFailed {
		t.Errorf("status = %v, want failed with no results", env.Status)
	}
}
