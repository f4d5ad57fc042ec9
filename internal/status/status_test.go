package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"media-orchestrator/internal/capability"
	"media-orchestrator/internal/config"
	"media-orchestrator/internal/mediatype"
	"media-orchestrator/internal/orchestrator"
	"media-orchestrator/internal/processor"
)

type fakeProcessor struct{}

func (fakeProcessor) Initialize(map[string]any) error { return nil }
func (fakeProcessor) Validate(input processor.Input) error {
	return processor.ValidateInput(input, 0)
}
func (fakeProcessor) Process(_ context.Context, input processor.Input, _ processor.Options, _ *processor.ProgressReporter) (*processor.Envelope, error) {
	env := processor.NewEnvelope("fake", input)
	env.AddResult("ok", true)
	return env.Finalize(), nil
}
func (fakeProcessor) Cleanup(string) error { return nil }
func (fakeProcessor) SupportedTypes() []mediatype.Type {
	return []mediatype.Type{mediatype.TypeImage}
}
func (fakeProcessor) Capabilities() []string { return nil }

func newTestHandlers(t *testing.T, withProcessor bool) (*Handlers, *orchestrator.Orchestrator) {
	t.Helper()
	o := orchestrator.New(config.New(), capability.NewRegistry(), nil)
	if withProcessor {
		if err := o.RegisterProcessor(fakeProcessor{}); err != nil {
			t.Fatalf("RegisterProcessor: %v", err)
		}
	}
	return New(o, nil, nil), o
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name          string
		withProcessor bool
		wantCode      int
		wantStatus    string
	}{
		{"ready", true, http.StatusOK, "healthy"},
		{"no processors", false, http.StatusServiceUnavailable, "starting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandlers(t, tt.withProcessor)
			rec := httptest.NewRecorder()
			h.HealthCheck(rec, httptest.NewRequest("GET", "/healthz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantCode)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantStatus)
			}
		})
	}
}

func TestLivenessCheck(t *testing.T) {
	h, _ := newTestHandlers(t, false)
	rec := httptest.NewRecorder()
	h.LivenessCheck(rec, httptest.NewRequest("GET", "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}
}

func TestSystemStatusEndpoint(t *testing.T) {
	h, _ := newTestHandlers(t, true)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d, want 200", resp.StatusCode)
	}
	var st orchestrator.SystemStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !st.Initialized {
		t.Error("Initialized = false, want true")
	}
}

func TestJobStatusEndpoint(t *testing.T) {
	h, o := newTestHandlers(t, true)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	env, err := o.ProcessContent(context.Background(),
		[]byte{0xFF, 0xD8, 0xFF, 0xE0}, map[string]any{"filename": "a.jpg"})
	if err != nil {
		t.Fatalf("ProcessContent: %v", err)
	}
	jobID := env.Metadata["jobId"].(string)

	resp, err := http.Get(srv.URL + "/api/jobs/" + jobID)
	if err != nil {
		t.Fatalf("GET /api/jobs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status code = %d, want 200", resp.StatusCode)
	}

	missing, err := http.Get(srv.URL + "/api/jobs/no-such-id")
	if err != nil {
		t.Fatalf("GET /api/jobs: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("status code for unknown job = %d, want 404", missing.StatusCode)
	}
}

func TestPerformanceReportDisabled(t *testing.T) {
	h, _ := newTestHandlers(t, true)
	rec := httptest.NewRecorder()
	h.PerformanceReport(rec, httptest.NewRequest("GET", "/api/performance", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want 404 when monitor is nil", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestHandlers(t, true)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status code = %d, want 200", resp.StatusCode)
	}
}
