package capability

import (
	"context"
	"errors"
	"testing"
)

func okProvider(name string, output any) Provider {
	return &FuncProvider{
		ProviderName: name,
		ExecuteFn: func(context.Context, any) (any, error) {
			return output, nil
		},
	}
}

func failingProvider(name string, err error) Provider {
	return &FuncProvider{
		ProviderName: name,
		ExecuteFn: func(context.Context, any) (any, error) {
			return nil, err
		},
	}
}

func notReadyProvider(name string) Provider {
	return &FuncProvider{
		ProviderName: name,
		ReadyFn:      func() bool { return false },
		ExecuteFn: func(context.Context, any) (any, error) {
			panic("executed a provider that is not ready")
		},
	}
}

func TestExecuteFallback(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Descriptor{
		Name: "ocr",
		Providers: []Provider{
			failingProvider("primary", errors.New("quota exceeded")),
			okProvider("secondary", "recognized text"),
		},
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	res, err := r.Execute(context.Background(), "ocr", []byte("img"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Output != "recognized text" {
		t.Errorf("Output = %v", res.Output)
	}
	if res.Provider != "secondary" {
		t.Errorf("Provider = %q, want secondary", res.Provider)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("len(Failures) = %d, want exactly 1", len(res.Failures))
	}
	if res.Failures[0].Provider != "primary" {
		t.Errorf("failure provider = %q", res.Failures[0].Provider)
	}
}

func TestExecuteExhausted(t *testing.T) {
	r := NewRegistry()
	last := errors.New("also broken")
	_ = r.Register(Descriptor{
		Name: "transcription",
		Providers: []Provider{
			failingProvider("a", errors.New("broken")),
			failingProvider("b", last),
		},
	})

	_, err := r.Execute(context.Background(), "transcription", nil)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Execute() error = %v, want ErrExhausted", err)
	}
	if !errors.Is(err, last) {
		t.Errorf("Execute() error does not wrap last provider error: %v", err)
	}
}

func TestExecuteSkipsNotReady(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(Descriptor{
		Name: "detect",
		Providers: []Provider{
			notReadyProvider("offline"),
			okProvider("online", 42),
		},
	})

	res, err := r.Execute(context.Background(), "detect", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Provider != "online" || res.Output != 42 {
		t.Errorf("result = %+v", res)
	}
	// Skipped providers are not failures.
	if len(res.Failures) != 0 {
		t.Errorf("len(Failures) = %d, want 0", len(res.Failures))
	}
}

func TestExecuteUnknownAndDisabled(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Execute(context.Background(), "nope", nil); !errors.Is(err, ErrUnknownCapability) {
		t.Errorf("Execute(unknown) error = %v", err)
	}

	_ = r.Register(Descriptor{
		Name:      "disabled",
		Providers: []Provider{okProvider("p", 1)},
		Enabled:   func() bool { return false },
	})
	if _, err := r.Execute(context.Background(), "disabled", nil); !errors.Is(err, ErrExhausted) {
		t.Errorf("Execute(disabled) error = %v", err)
	}
}

func TestExecuteNoReadyProviders(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(Descriptor{
		Name:      "empty",
		Providers: []Provider{notReadyProvider("a")},
	})

	_, err := r.Execute(context.Background(), "empty", nil)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Execute() error = %v, want ErrExhausted", err)
	}
}

func TestExecuteHonorsContext(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(Descriptor{
		Name:      "slow",
		Providers: []Provider{okProvider("p", 1)},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Execute(ctx, "slow", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestAvailable(t *testing.T) {
	enabled := true
	r := NewRegistry()
	_ = r.Register(Descriptor{
		Name:      "ocr",
		Providers: []Provider{okProvider("p", nil)},
		Enabled:   func() bool { return enabled },
	})
	_ = r.Register(Descriptor{
		Name:      "offline",
		Providers: []Provider{notReadyProvider("p")},
	})

	if !r.Available("ocr") {
		t.Error("Available(ocr) = false")
	}

	enabled = false
	if r.Available("ocr") {
		t.Error("Available(ocr) = true with flag off")
	}

	if r.Available("offline") {
		t.Error("Available(offline) = true with no ready provider")
	}
	if r.Available("unknown") {
		t.Error("Available(unknown) = true")
	}
}

func TestSummaryAndNames(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(Descriptor{Name: "b", Providers: []Provider{okProvider("p1", nil)}})
	_ = r.Register(Descriptor{Name: "a", Providers: []Provider{notReadyProvider("p2")}})

	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v", names)
	}

	sum := r.Summary()
	if !sum["b"].Available {
		t.Error("b should be available")
	}
	if sum["a"].Available {
		t.Error("a should not be available")
	}
	if len(sum["a"].Providers) != 1 || sum["a"].Providers[0].Name != "p2" {
		t.Errorf("summary providers = %+v", sum["a"].Providers)
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Descriptor{}); err == nil {
		t.Error("Register() accepted empty name")
	}
}
