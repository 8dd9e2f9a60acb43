package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation and reports it to a logger and metrics.
type Timer struct {
	operation string
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
}

// StartTimer creates a new timer for the given operation.
func StartTimer(operation string) *Timer {
	return &Timer{operation: operation, start: time.Now()}
}

// WithLogger logs the outcome at Debug (success) or Warn (failure).
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics records duration and count labelled by operation and status.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// Stop records a successful operation.
func (t *Timer) Stop() time.Duration {
	return t.StopWithError(nil)
}

// StopWithError records the operation, counting it as failed when err != nil.
func (t *Timer) StopWithError(err error) time.Duration {
	duration := time.Since(t.start)

	if t.logger != nil {
		if err != nil {
			t.logger.Warn("operation failed", "operation", t.operation, DurationKey, duration.Milliseconds(), ErrorKey, err)
		} else {
			t.logger.Debug("operation completed", "operation", t.operation, DurationKey, duration.Milliseconds())
		}
	}

	if t.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
			t.metrics.Counter(MetricOperationErrors, 1, T("operation", t.operation))
		}
		t.metrics.Timing(MetricOperationDuration, duration, T("operation", t.operation), T("status", status))
		t.metrics.Counter(MetricOperationTotal, 1, T("operation", t.operation), T("status", status))
	}

	return duration
}
