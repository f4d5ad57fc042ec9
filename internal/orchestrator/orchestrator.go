package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"media-orchestrator/internal/cache"
	"media-orchestrator/internal/capability"
	"media-orchestrator/internal/config"
	"media-orchestrator/internal/logging"
	"media-orchestrator/internal/mediatype"
	"media-orchestrator/internal/metrics"
	"media-orchestrator/internal/monitor"
	"media-orchestrator/internal/processor"
	"media-orchestrator/internal/workers"
)

// ErrJobNotFound is returned when a job id is neither active nor cached.
var ErrJobNotFound = errors.New("job not found")

// ErrNoProcessor is returned when no processor is registered for the
// detected media type.
var ErrNoProcessor = errors.New("no processor registered for media type")

// movingAvgWindow bounds the processing-time moving average.
const movingAvgWindow = 100

// EnvelopeSink persists finalized envelopes. Sink failures are logged,
// never propagated to the caller. *store.Store satisfies it.
type EnvelopeSink interface {
	Store(ctx context.Context, jobID, mediaType string, env *processor.Envelope) error
}

// rollingStats accumulates job counters and a bounded moving average of
// processing durations.
type rollingStats struct {
	total     int64
	completed int64
	failed    int64
	durations []float64 // milliseconds, newest appended, bounded
}

func (s *rollingStats) record(d time.Duration, failed bool) {
	s.total++
	if failed {
		s.failed++
	} else {
		s.completed++
	}
	s.durations = append(s.durations, float64(d.Milliseconds()))
	if len(s.durations) > movingAvgWindow {
		s.durations = s.durations[1:]
	}
}

func (s *rollingStats) avgMs() float64 {
	if len(s.durations) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.durations {
		sum += v
	}
	return sum / float64(len(s.durations))
}

// Orchestrator coordinates media processing: detection, dispatch,
// feature resolution, bounded concurrency, result caching, and
// background reclamation. Construct with New; there is no package-level
// instance.
type Orchestrator struct {
	cfg      *config.Manager
	registry *capability.Registry
	cache    *cache.Cache
	sink     EnvelopeSink
	detector *mediatype.Detector
	gate     *semaphore.Weighted

	mu         sync.Mutex
	jobs       map[string]*Job
	processors map[mediatype.Type]processor.Processor
	stats      rollingStats

	startTime time.Time
	stopOnce  sync.Once
	stopChan  chan struct{}
}

// New creates an orchestrator bound to a configuration manager and a
// capability registry. sink may be nil to disable persistence.
func New(cfg *config.Manager, registry *capability.Registry, sink EnvelopeSink) *Orchestrator {
	limit := cfg.GetInt("base.max_concurrent_jobs", 0)
	if limit < 1 {
		limit = workers.ForMixed(0)
	}

	o := &Orchestrator{
		cfg:        cfg,
		registry:   registry,
		sink:       sink,
		cache:      cache.New(cfg.GetInt("base.cache_max_entries", 1000)),
		gate:       semaphore.NewWeighted(int64(limit)),
		jobs:       make(map[string]*Job),
		processors: make(map[mediatype.Type]processor.Processor),
		startTime:  time.Now(),
		stopChan:   make(chan struct{}),
	}

	logging.Info("Orchestrator created with concurrency limit %d", limit)
	return o
}

// RegisterProcessor initializes a processor with its merged per-type
// configuration and registers it for every type it supports. A type can
// have at most one processor.
func (o *Orchestrator) RegisterProcessor(p processor.Processor) error {
	types := p.SupportedTypes()
	if len(types) == 0 {
		return fmt.Errorf("processor supports no media types")
	}

	for _, t := range types {
		if !t.Valid() {
			return fmt.Errorf("processor declares invalid media type %q", t)
		}
	}

	settings := o.cfg.Section("base")
	for _, t := range types {
		for k, v := range o.cfg.Section(string(t)) {
			settings[k] = v
		}
	}
	if err := p.Initialize(settings); err != nil {
		return fmt.Errorf("initializing processor: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, t := range types {
		if _, ok := o.processors[t]; ok {
			return fmt.Errorf("processor already registered for type %s", t)
		}
	}
	for _, t := range types {
		o.processors[t] = p
		logging.Info("Registered %s processor", t)
	}
	return nil
}

// SetDetector overrides the default media type detector, typically with
// one built from configured extension sets.
func (o *Orchestrator) SetDetector(d *mediatype.Detector) {
	o.detector = d
}

// ProcessContent runs one piece of content through the pipeline and
// returns its finalized envelope. meta may carry "filename", "mimeType",
// "mediaType", and "ownerId" hints; remaining keys are passed through to
// the processor as settings. The job id is recorded in the envelope
// metadata under "jobId".
func (o *Orchestrator) ProcessContent(ctx context.Context, data []byte, meta map[string]any) (*processor.Envelope, error) {
	job := &Job{
		ID:        uuid.New().String(),
		OwnerID:   metaString(meta, "ownerId"),
		Filename:  metaString(meta, "filename"),
		State:     StateQueued,
		StartTime: time.Now(),
		Progress:  processor.NewProgressReporter(nil),
	}

	o.mu.Lock()
	o.jobs[job.ID] = job
	o.mu.Unlock()
	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	mt, err := o.detect(data, meta)
	if err != nil {
		o.removeJob(job.ID)
		metrics.JobsTotal.WithLabelValues("unknown", "rejected").Inc()
		return nil, fmt.Errorf("%w: %v", processor.ErrValidation, err)
	}

	o.mu.Lock()
	job.MediaType = mt
	proc, ok := o.processors[mt]
	o.mu.Unlock()
	if !ok {
		o.removeJob(job.ID)
		metrics.JobsTotal.WithLabelValues(string(mt), "rejected").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNoProcessor, mt)
	}

	input := processor.Input{
		Data:     data,
		Filename: job.Filename,
		MimeType: metaString(meta, "mimeType"),
		OwnerID:  job.OwnerID,
		Meta:     meta,
	}
	if err := proc.Validate(input); err != nil {
		o.removeJob(job.ID)
		metrics.JobsTotal.WithLabelValues(string(mt), "rejected").Inc()
		return nil, err
	}

	opts := o.buildOptions(mt, meta)
	o.mu.Lock()
	job.Features = opts.Features
	job.transition(StateProcessing)
	o.mu.Unlock()

	if err := o.gate.Acquire(ctx, 1); err != nil {
		o.removeJob(job.ID)
		return nil, err
	}
	defer o.gate.Release(1)

	logging.Debug("Job %s: processing %s content (%d bytes)", job.ID, mt, len(data))

	var env *processor.Envelope
	retryCfg := processor.RetryConfig{
		MaxAttempts: o.cfg.GetInt("base.retry_max_attempts", 3),
		BaseDelay:   o.cfg.GetDuration("base.retry_base_delay", 250*time.Millisecond),
	}
	err = processor.RetryWithBackoff(ctx, "process_"+string(mt), retryCfg, func() error {
		var perr error
		env, perr = proc.Process(ctx, input, opts, job.Progress)
		return perr
	})

	if err != nil {
		o.finishJob(job, nil, err)
		return nil, fmt.Errorf("processing %s content: %w", mt, err)
	}

	// Backends are not required to build envelopes through NewEnvelope.
	if env.Metadata == nil {
		env.Metadata = map[string]any{}
	}
	env.Metadata["jobId"] = job.ID
	env.Metadata["mediaType"] = string(mt)
	o.finishJob(job, env, nil)
	return env, nil
}

// detect resolves the media type via the configured detector or the
// package defaults.
func (o *Orchestrator) detect(data []byte, meta map[string]any) (mediatype.Type, error) {
	md := mediatype.Metadata{
		Type:     metaString(meta, "mediaType"),
		Filename: metaString(meta, "filename"),
		MimeType: metaString(meta, "mimeType"),
	}
	if o.detector != nil {
		return o.detector.Detect(data, md)
	}
	return mediatype.Detect(data, md)
}

// buildOptions merges base config, type config, and caller metadata
// into the processing options snapshot, and resolves feature flags
// against capability availability.
func (o *Orchestrator) buildOptions(mt mediatype.Type, meta map[string]any) processor.Options {
	settings := o.cfg.Section("base")
	for k, v := range o.cfg.Section(string(mt)) {
		settings[k] = v
	}
	for k, v := range meta {
		settings[k] = v
	}

	features := make(map[string]bool)
	for name, raw := range o.cfg.Section(string(mt) + ".features") {
		enabled, _ := raw.(bool)
		features[name] = enabled && o.registry.Available(name)
	}

	return processor.Options{
		Features:     features,
		Settings:     settings,
		Capabilities: o.registry,
	}
}

// finishJob records the outcome, updates rolling metrics, caches and
// persists successful envelopes, and removes the job from the active
// table. One job's failure never touches another job's record.
func (o *Orchestrator) finishJob(job *Job, env *processor.Envelope, err error) {
	duration := time.Since(job.StartTime)
	failed := err != nil || (env != nil && env.Status == processor.StatusFailed)

	o.mu.Lock()
	if _, active := o.jobs[job.ID]; !active {
		// Reclaimed by the sweep while still running; the sweep already
		// recorded the outcome.
		o.mu.Unlock()
		logging.Warn("Job %s finished after being reclaimed as stuck, result discarded", job.ID)
		return
	}
	if failed {
		job.Err = err
		job.transition(StateFailed)
	} else {
		job.transition(StateCompleted)
	}
	o.stats.record(duration, failed)
	delete(o.jobs, job.ID)
	o.mu.Unlock()

	status := "completed"
	if failed {
		status = "failed"
	}
	metrics.JobsTotal.WithLabelValues(string(job.MediaType), status).Inc()
	metrics.JobDuration.WithLabelValues(string(job.MediaType)).Observe(duration.Seconds())

	if env == nil {
		logging.Warn("Job %s failed after %v: %v", job.ID, duration.Round(time.Millisecond), err)
		return
	}

	if o.cfg.GetBool("base.cache_enabled", true) {
		ttl := o.cfg.GetDuration("base.cache_ttl", time.Hour)
		o.cache.Put(job.ID, env, ttl)
	}
	o.persist(job.ID, string(job.MediaType), env)

	logging.Info("Job %s %s in %v (%s, %d results, %d warnings)",
		job.ID, env.Status, duration.Round(time.Millisecond), job.MediaType,
		len(env.Results), len(env.Warnings))
}

// persist writes the envelope to the sink in the background. Sink
// failures are logged, never surfaced to the caller.
func (o *Orchestrator) persist(jobID, mediaType string, env *processor.Envelope) {
	if o.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Write instrumentation lives in the sink itself.
		if err := o.sink.Store(ctx, jobID, mediaType, env); err != nil {
			logging.Warn("Failed to persist envelope for job %s: %v", jobID, err)
		}
	}()
}

func (o *Orchestrator) removeJob(id string) {
	o.mu.Lock()
	delete(o.jobs, id)
	o.mu.Unlock()
}

// GetJobStatus returns the state of an active job, or its cached result
// with FromCache set. Expired cache entries are treated as absent.
func (o *Orchestrator) GetJobStatus(id string) (*JobStatus, error) {
	o.mu.Lock()
	if job, ok := o.jobs[id]; ok {
		// Snapshot the job fields before releasing the lock; they are
		// written under o.mu by the processing and sweep paths.
		st := &JobStatus{
			ID:        job.ID,
			State:     job.State,
			MediaType: job.MediaType,
			StartTime: job.StartTime,
			Elapsed:   time.Since(job.StartTime),
		}
		progress := job.Progress
		o.mu.Unlock()
		st.Progress, st.Stage = progress.Current()
		return st, nil
	}
	o.mu.Unlock()

	if cached, ok := o.cache.Get(id); ok {
		env, _ := cached.(*processor.Envelope)
		st := &JobStatus{ID: id, State: StateCompleted, FromCache: true, Envelope: env}
		if env != nil {
			st.Progress = 100
			if env.Status == processor.StatusFailed {
				st.State = StateFailed
			}
			if mt, ok := env.Metadata["mediaType"].(string); ok {
				st.MediaType = mediatype.Type(mt)
			}
		}
		return st, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// SystemStatus is the aggregate state served by the status endpoint.
type SystemStatus struct {
	Initialized  bool                                   `json:"initialized"`
	Uptime       string                                 `json:"uptime"`
	ActiveJobs   []JobStatus                            `json:"activeJobs"`
	CacheSize    int                                    `json:"cacheSize"`
	Metrics      StatsSummary                           `json:"metrics"`
	Processors   map[string][]string                    `json:"processors"`
	Capabilities map[string]capability.CapabilityStatus `json:"capabilities"`
	Config       map[string]any                         `json:"config"`
}

// StatsSummary is the rolling job counters snapshot.
type StatsSummary struct {
	TotalJobs       int64   `json:"totalJobs"`
	CompletedJobs   int64   `json:"completedJobs"`
	FailedJobs      int64   `json:"failedJobs"`
	AvgProcessingMs float64 `json:"avgProcessingTimeMs"`
}

// GetSystemStatus reports orchestrator, processor, capability, and
// configuration state.
func (o *Orchestrator) GetSystemStatus() SystemStatus {
	o.mu.Lock()
	active := make([]JobStatus, 0, len(o.jobs))
	for _, job := range o.jobs {
		pct, stage := job.Progress.Current()
		active = append(active, JobStatus{
			ID:        job.ID,
			State:     job.State,
			MediaType: job.MediaType,
			Progress:  pct,
			Stage:     stage,
			StartTime: job.StartTime,
			Elapsed:   time.Since(job.StartTime),
		})
	}
	procs := make(map[string][]string, len(o.processors))
	for t, p := range o.processors {
		procs[string(t)] = p.Capabilities()
	}
	stats := StatsSummary{
		TotalJobs:       o.stats.total,
		CompletedJobs:   o.stats.completed,
		FailedJobs:      o.stats.failed,
		AvgProcessingMs: o.stats.avgMs(),
	}
	initialized := len(o.processors) > 0
	o.mu.Unlock()

	return SystemStatus{
		Initialized:  initialized,
		Uptime:       time.Since(o.startTime).Round(time.Second).String(),
		ActiveJobs:   active,
		CacheSize:    o.cache.Len(),
		Metrics:      stats,
		Processors:   procs,
		Capabilities: o.registry.Summary(),
		Config:       o.cfg.Section("base"),
	}
}

// MonitorStats implements monitor.StatsProvider.
func (o *Orchestrator) MonitorStats() monitor.Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return monitor.Stats{
		TotalJobs:       o.stats.total,
		CompletedJobs:   o.stats.completed,
		FailedJobs:      o.stats.failed,
		ActiveJobs:      len(o.jobs),
		AvgProcessingMs: o.stats.avgMs(),
	}
}

// Start launches the background sweep loop.
func (o *Orchestrator) Start() {
	go o.sweepLoop()
}

// Stop terminates the sweep loop and releases processor resources.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() { close(o.stopChan) })

	o.mu.Lock()
	seen := make(map[processor.Processor]bool)
	var procs []processor.Processor
	for _, p := range o.processors {
		if !seen[p] {
			seen[p] = true
			procs = append(procs, p)
		}
	}
	o.mu.Unlock()

	for _, p := range procs {
		if err := p.Cleanup(""); err != nil {
			logging.Warn("Processor cleanup failed: %v", err)
		}
	}
}

func (o *Orchestrator) sweepLoop() {
	interval := o.cfg.GetDuration("base.sweep_interval", time.Minute)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Debug("Sweep loop started with interval %v", interval)
	for {
		select {
		case <-ticker.C:
			o.sweep()
		case <-o.stopChan:
			logging.Debug("Sweep loop stopped")
			return
		}
	}
}

// sweep evicts expired cache entries and force-fails jobs stuck past
// the staleness threshold.
func (o *Orchestrator) sweep() {
	if n := o.cache.Sweep(); n > 0 {
		logging.Debug("Sweep removed %d expired cache entries", n)
	}

	stale := o.cfg.GetDuration("base.stale_job_timeout", 10*time.Minute)
	cutoff := time.Now().Add(-stale)

	o.mu.Lock()
	var reclaimed []*Job
	for id, job := range o.jobs {
		if job.StartTime.Before(cutoff) {
			job.Err = fmt.Errorf("job exceeded staleness threshold %v", stale)
			job.transition(StateFailed)
			o.stats.record(time.Since(job.StartTime), true)
			delete(o.jobs, id)
			reclaimed = append(reclaimed, job)
		}
	}
	o.mu.Unlock()

	for _, job := range reclaimed {
		metrics.JobsReclaimed.Inc()
		metrics.JobsTotal.WithLabelValues(string(job.MediaType), "failed").Inc()
		logging.Warn("Reclaimed stuck job %s (%s, started %v ago)",
			job.ID, job.MediaType, time.Since(job.StartTime).Round(time.Second))
	}
}

// Cache exposes the result cache for status reporting and tests.
func (o *Orchestrator) Cache() *cache.Cache { return o.cache }

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	s, _ := meta[key].(string)
	return s
}
