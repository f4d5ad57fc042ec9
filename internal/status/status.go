package status

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-orchestrator/internal/logging"
	"media-orchestrator/internal/monitor"
	"media-orchestrator/internal/orchestrator"
	"media-orchestrator/internal/store"
)

// Version and Commit are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// Handlers serves the telemetry endpoints. It is read-only: content
// never flows through this surface.
type Handlers struct {
	orch  *orchestrator.Orchestrator
	mon   *monitor.Monitor
	store *store.Store
	start time.Time
}

// New creates the telemetry handlers. mon and st may be nil.
func New(orch *orchestrator.Orchestrator, mon *monitor.Monitor, st *store.Store) *Handlers {
	return &Handlers{orch: orch, mon: mon, store: st, start: time.Now()}
}

// Router builds the telemetry router.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", h.SystemStatus).Methods("GET")
	api.HandleFunc("/jobs/{id}", h.JobStatus).Methods("GET")
	api.HandleFunc("/performance", h.PerformanceReport).Methods("GET")
	api.HandleFunc("/envelopes", h.RecentEnvelopes).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return r
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status       string `json:"status"`
	Ready        bool   `json:"ready"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	ActiveJobs   int    `json:"activeJobs"`
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports readiness: healthy once at least one processor is
// registered.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	st := h.orch.GetSystemStatus()

	response := HealthResponse{
		Ready:        st.Initialized,
		Version:      Version,
		Uptime:       time.Since(h.start).Round(time.Second).String(),
		ActiveJobs:   len(st.ActiveJobs),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	w.Header().Set("Content-Type", "application/json")
	if st.Initialized {
		response.Status = "healthy"
		w.WriteHeader(http.StatusOK)
	} else {
		response.Status = "starting"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, response)
}

// LivenessCheck always returns 200 while the process is up.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// SystemStatus serves the orchestrator's aggregate state.
func (h *Handlers) SystemStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.orch.GetSystemStatus())
}

// JobStatus serves the state of one job by id.
func (h *Handlers) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	st, err := h.orch.GetJobStatus(id)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, st)
}

// PerformanceReport serves the monitor's windowed report. The window is
// taken from the "window" query parameter, default 15m.
func (h *Handlers) PerformanceReport(w http.ResponseWriter, r *http.Request) {
	if h.mon == nil {
		writeJSONError(w, "performance monitoring disabled", http.StatusNotFound)
		return
	}

	window := 15 * time.Minute
	if raw := r.URL.Query().Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			writeJSONError(w, "invalid window: "+err.Error(), http.StatusBadRequest)
			return
		}
		window = d
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.mon.Report(window))
}

// RecentEnvelopes serves the latest persisted envelopes, newest first.
func (h *Handlers) RecentEnvelopes(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSONError(w, "persistence disabled", http.StatusNotFound)
		return
	}

	records, err := h.store.Recent(r.Context(), 50)
	if err != nil {
		logging.Error("Failed to read recent envelopes: %v", err)
		writeJSONError(w, "failed to read envelopes", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, records)
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}
