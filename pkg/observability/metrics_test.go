package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter("requests", 1, T("method", "GET"), T("route", "/meals"))
	m.Counter("requests", 2, T("route", "/meals"), T("method", "GET"))
	m.Gauge("lag", 1.5)
	m.Histogram("size", 3)
	m.Timing("latency", time.Second)

	assert.Equal(t, int64(3), m.GetCounter("requests", T("method", "GET"), T("route", "/meals")))
	assert.Equal(t, 1.5, m.GetGauge("lag"))
	assert.Equal(t, []float64{3}, m.GetHistogram("size"))
	assert.Equal(t, []time.Duration{time.Second}, m.GetTimings("latency"))
}

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.Counter("x", 1)
		m.Gauge("x", 1)
		m.Histogram("x", 1)
		m.Timing("x", time.Second)
	})
}

func TestPrometheusMetrics(t *testing.T) {
	p := NewPrometheusMetrics()

	p.Counter(MetricReschedules, 1, T("outcome", "adjusted"))
	p.Counter(MetricReschedules, 2, T("outcome", "adjusted"))
	p.Counter(MetricReschedules, 1, T("unexpected", "label"))
	p.Gauge(MetricOutboxPending, 4)
	p.Timing(MetricHTTPDuration, 250*time.Millisecond, T("method", "GET"))

	vec := p.counters[MetricReschedules]
	require.NotNil(t, vec)
	assert.Equal(t, 3.0, testutil.ToFloat64(vec.WithLabelValues("adjusted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.dropped))

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "mealslot_slots_reschedules_total")
	assert.Contains(t, string(body), "mealslot_outbox_pending 4")
	assert.Contains(t, string(body), "mealslot_http_request_duration_seconds_bucket")
}

func TestTimer(t *testing.T) {
	m := NewInMemoryMetrics()

	StartTimer("reschedule").WithMetrics(m).Stop()
	StartTimer("reschedule").WithMetrics(m).StopWithError(errors.New("boom"))

	assert.Equal(t, int64(1), m.GetCounter(MetricOperationTotal, T("operation", "reschedule"), T("status", "ok")))
	assert.Equal(t, int64(1), m.GetCounter(MetricOperationTotal, T("operation", "reschedule"), T("status", "error")))
	assert.Equal(t, int64(1), m.GetCounter(MetricOperationErrors, T("operation", "reschedule")))
}

func TestHealthRegistry(t *testing.T) {
	r := NewHealthRegistry()
	r.Register("database", PingChecker("database", func(context.Context) error { return nil }))

	assert.Equal(t, HealthStatusHealthy, r.Check(context.Background()).Status)

	r.Register("cache", OptionalPingChecker("redis", func(context.Context) error { return errors.New("refused") }))
	h := r.Check(context.Background())
	assert.Equal(t, HealthStatusDegraded, h.Status)
	assert.Contains(t, h.Checks["cache"].Message, "refused")

	r.Register("database", PingChecker("database", func(context.Context) error { return errors.New("down") }))
	assert.Equal(t, HealthStatusUnhealthy, r.Check(context.Background()).Status)
}
