package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	available := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		want       int
	}{
		{name: "cpu bound", multiplier: 1.0, limit: 0, want: available},
		{name: "io bound", multiplier: 2.0, limit: 0, want: available * 2},
		{name: "capped by limit", multiplier: 2.0, limit: 1, want: 1},
		{name: "never below one", multiplier: 0.0001, limit: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.multiplier, tt.limit); got != tt.want {
				t.Errorf("Count(%v, %d) = %d, want %d", tt.multiplier, tt.limit, got, tt.want)
			}
		})
	}
}

func TestCountEnvOverride(t *testing.T) {
	t.Setenv("ORCHESTRATOR_WORKERS", "7")
	if got := Count(1.0, 0); got != 7 {
		t.Errorf("Count() = %d, want 7", got)
	}
	// Limit still caps an explicit override.
	if got := Count(1.0, 3); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}

	t.Setenv("ORCHESTRATOR_WORKERS", "garbage")
	if got := Count(1.0, 0); got != runtime.GOMAXPROCS(0) {
		t.Errorf("Count() with bad override = %d", got)
	}
}

func TestHelpers(t *testing.T) {
	if ForCPU(1) != 1 || ForIO(1) != 1 || ForMixed(1) != 1 {
		t.Error("limit of 1 not respected")
	}
}
