package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-orchestrator/internal/logging"
	"media-orchestrator/internal/metrics"
	"media-orchestrator/internal/processor"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Record is one persisted envelope row.
type Record struct {
	JobID     string              `json:"jobId"`
	MediaType string              `json:"mediaType"`
	Status    processor.Status    `json:"status"`
	Envelope  *processor.Envelope `json:"envelope"`
	CreatedAt time.Time           `json:"createdAt"`
}

// Store is a SQLite-backed persistence sink for finalized result
// envelopes. The orchestrator calls it fire-and-forget, once per job.
type Store struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the envelope store at dbPath. The parent
// directory must exist and be writable.
func New(ctx context.Context, dbPath string) (*Store, error) {
	// WAL mode and busy_timeout mirror the concurrency settings that
	// keep "database is locked" errors away under parallel jobs.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open envelope store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close store after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to envelope store: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close store after init failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize envelope schema: %w", err)
	}

	logging.Info("Envelope store initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS envelopes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		owner_id TEXT NOT NULL,
		media_type TEXT NOT NULL,
		status TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		envelope TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_envelopes_owner ON envelopes(owner_id);
	CREATE INDEX IF NOT EXISTS idx_envelopes_created ON envelopes(created_at);
	`

	initCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(initCtx, schema)
	return err
}

// Store persists one finalized envelope. Implements the orchestrator's
// EnvelopeSink.
func (s *Store) Store(ctx context.Context, jobID, mediaType string, env *processor.Envelope) error {
	start := time.Now()

	payload, err := json.Marshal(env)
	if err != nil {
		metrics.SinkWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to encode envelope for %s: %w", jobID, err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(writeCtx,
		`INSERT INTO envelopes (job_id, owner_id, media_type, status, duration_ms, envelope)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(job_id) DO UPDATE SET
		   status = excluded.status,
		   duration_ms = excluded.duration_ms,
		   envelope = excluded.envelope`,
		jobID, env.OwnerID, mediaType, string(env.Status), env.Duration.Milliseconds(), string(payload),
	)
	if err != nil {
		metrics.SinkWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to persist envelope for %s: %w", jobID, err)
	}

	metrics.SinkWritesTotal.WithLabelValues("success").Inc()
	metrics.SinkWriteDuration.Observe(time.Since(start).Seconds())
	return nil
}

// Recent returns up to limit most recently persisted records, newest
// first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		limit = 1
	}

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(queryCtx,
		`SELECT job_id, media_type, status, envelope, created_at
		 FROM envelopes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query envelopes: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn("failed to close envelope rows: %v", err)
		}
	}()

	var records []Record
	for rows.Next() {
		var r Record
		var payload string
		if err := rows.Scan(&r.JobID, &r.MediaType, &r.Status, &payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan envelope row: %w", err)
		}
		var env processor.Envelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			logging.Warn("Corrupt envelope payload for job %s: %v", r.JobID, err)
		} else {
			r.Envelope = &env
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of persisted envelopes.
func (s *Store) Count(ctx context.Context) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	err := s.db.QueryRowContext(queryCtx, `SELECT COUNT(*) FROM envelopes`).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
