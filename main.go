package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"media-orchestrator/internal/capability"
	"media-orchestrator/internal/config"
	"media-orchestrator/internal/imageproc"
	"media-orchestrator/internal/logging"
	"media-orchestrator/internal/metrics"
	"media-orchestrator/internal/middleware"
	"media-orchestrator/internal/monitor"
	"media-orchestrator/internal/orchestrator"
	"media-orchestrator/internal/status"
	"media-orchestrator/internal/store"
)

// capabilityProviders maps capability names to the config section whose
// external command backs them.
var capabilityProviders = map[string]string{
	"object_detection":   "vision",
	"description":        "vision",
	"scene_analysis":     "vision",
	"ocr":                "vision",
	"transcription":      "speech",
	"language_detection": "language",
}

func main() {
	startTime := time.Now()

	// Load configuration
	configFile := os.Getenv("MO_CONFIG_FILE")
	cfg, err := config.Load(configFile)
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}
	if configFile != "" {
		logging.Info("Loaded configuration overrides from %s", configFile)
		if err := cfg.Watch(); err != nil {
			logging.Warn("Configuration watch unavailable: %v", err)
		} else {
			defer cfg.StopWatch()
		}
	}

	metrics.SetAppInfo(status.Version, status.Commit, runtime.Version())

	// Build the capability registry from configured providers
	registry := capability.NewRegistry()
	for name, section := range capabilityProviders {
		d := capability.Descriptor{
			Name:    name,
			Enabled: func() bool { return cfg.GetBool("providers."+section+".enabled", true) },
		}
		if command := cfg.GetString("providers."+section+".command", ""); command != "" {
			d.Providers = append(d.Providers, &capability.ExecProvider{
				ProviderName: section,
				Command:      command,
			})
		}
		if err := registry.Register(d); err != nil {
			logging.Fatal("Failed to register capability %s: %v", name, err)
		}
	}

	// Initialize the envelope store
	var sink orchestrator.EnvelopeSink
	var st *store.Store
	dbPath := cfg.GetString("base.db_path", "data/envelopes.db")
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			logging.Fatal("Failed to create store directory: %v", err)
		}
		dbStart := time.Now()
		st, err = store.New(context.Background(), dbPath)
		if err != nil {
			logging.Fatal("Failed to initialize envelope store: %v", err)
		}
		defer st.Close()
		sink = st
		logging.Info("Envelope store ready at %s in %v", dbPath, time.Since(dbStart).Round(time.Millisecond))
	} else {
		logging.Info("Envelope persistence disabled")
	}

	// Initialize the orchestrator
	orch := orchestrator.New(cfg, registry, sink)
	if err := orch.RegisterProcessor(imageproc.New()); err != nil {
		logging.Fatal("Failed to register image processor: %v", err)
	}
	orch.Start()

	// Initialize the performance monitor
	monCfg := monitor.DefaultConfig()
	monCfg.SampleInterval = cfg.GetDuration("performance.sample_interval", monCfg.SampleInterval)
	monCfg.HistorySize = cfg.GetInt("performance.history_size", monCfg.HistorySize)
	monCfg.WarmupSamples = cfg.GetInt("performance.warmup_samples", monCfg.WarmupSamples)
	for name := range monCfg.Thresholds {
		monCfg.Thresholds[name] = cfg.GetFloat("performance.thresholds."+name, monCfg.Thresholds[name])
	}
	mon := monitor.New(monCfg, orch)
	mon.OnAlert(func(a monitor.Alert) {
		logging.Warn("Performance alert: %s %s at %.1f (threshold %.1f)",
			a.Metric, a.Severity, a.Value, a.Threshold)
	})
	mon.Start()

	// Telemetry server
	h := status.New(orch, mon, st)
	mwConfig := middleware.DefaultConfig()
	handler := middleware.Logger(mwConfig)(middleware.Metrics(mwConfig)(h.Router()))
	srv := &http.Server{
		Addr:         cfg.GetString("base.listen_addr", ":8080"),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, orch, mon)

	logging.Info("media-orchestrator %s listening on %s (started in %v)",
		status.Version, srv.Addr, time.Since(startTime).Round(time.Millisecond))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, orch *orchestrator.Orchestrator, mon *monitor.Monitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logging.Info("Received %s, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mon.Stop()
	orch.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}
	logging.Info("Shutdown complete")
}
