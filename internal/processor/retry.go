package processor

import (
	"context"
	"time"

	"media-orchestrator/internal/logging"
	"media-orchestrator/internal/metrics"
)

// RetryConfig configures retry behavior for transient operation failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the delay after the first failure; the delay before
	// attempt n is BaseDelay * n.
	BaseDelay time.Duration
}

// DefaultRetryConfig returns the shared retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   250 * time.Millisecond,
	}
}

// RetryWithBackoff runs op up to cfg.MaxAttempts times. Only transient
// failures are retried; validation failures and other errors return
// immediately. The delay scales linearly with the attempt number and
// the wait respects ctx cancellation.
func RetryWithBackoff(ctx context.Context, name string, cfg RetryConfig, op func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			if attempt > 1 {
				logging.Info("Operation %s succeeded on attempt %d", name, attempt)
			}
			return nil
		}
		lastErr = err

		if !IsTransient(err) {
			return err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := time.Duration(attempt) * cfg.BaseDelay
		logging.Debug("Operation %s failed (attempt %d/%d), retrying in %v: %v",
			name, attempt, cfg.MaxAttempts, delay, err)
		metrics.RetryAttempts.WithLabelValues(name).Inc()

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	logging.Warn("Operation %s failed after %d attempts: %v", name, cfg.MaxAttempts, lastErr)
	metrics.RetryFailures.WithLabelValues(name).Inc()
	return lastErr
}
