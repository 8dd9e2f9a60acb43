package observability

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics on a private Prometheus registry.
// Vectors are created on first use; the label set of that first call is
// fixed for the metric and later calls with other keys are dropped.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	dropped    prometheus.Counter
}

// NewPrometheusMetrics creates a registry with Go runtime and process collectors.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mealslot_metrics_dropped_total",
		Help: "Samples discarded because their labels did not match the metric.",
	})
	reg.MustRegister(dropped)

	return &PrometheusMetrics{
		registry:   reg,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		dropped:    dropped,
	}
}

// Registry exposes the underlying registry.
func (p *PrometheusMetrics) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the exposition format.
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	keys, labels := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: promName(name, "_total"),
			Help: name,
		}, keys)
		if !p.register(vec) {
			p.mu.Unlock()
			return
		}
		p.counters[name] = vec
	}
	p.mu.Unlock()

	c, err := vec.GetMetricWith(labels)
	if err != nil {
		p.dropped.Inc()
		return
	}
	c.Add(float64(value))
}

func (p *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	keys, labels := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: promName(name, ""),
			Help: name,
		}, keys)
		if !p.register(vec) {
			p.mu.Unlock()
			return
		}
		p.gauges[name] = vec
	}
	p.mu.Unlock()

	g, err := vec.GetMetricWith(labels)
	if err != nil {
		p.dropped.Inc()
		return
	}
	g.Set(value)
}

func (p *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	p.observe(name, "", value, tags)
}

// Timing records seconds into a histogram suffixed _seconds.
func (p *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	p.observe(name, "_seconds", duration.Seconds(), tags)
}

func (p *PrometheusMetrics) observe(name, suffix string, value float64, tags []Tag) {
	keys, labels := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    promName(name, suffix),
			Help:    name,
			Buckets: prometheus.DefBuckets,
		}, keys)
		if !p.register(vec) {
			p.mu.Unlock()
			return
		}
		p.histograms[name] = vec
	}
	p.mu.Unlock()

	h, err := vec.GetMetricWith(labels)
	if err != nil {
		p.dropped.Inc()
		return
	}
	h.Observe(value)
}

// register must be called with mu held.
func (p *PrometheusMetrics) register(c prometheus.Collector) bool {
	if err := p.registry.Register(c); err != nil {
		p.dropped.Inc()
		return false
	}
	return true
}

func splitTags(tags []Tag) ([]string, prometheus.Labels) {
	sorted := sortedTags(tags)
	keys := make([]string, 0, len(sorted))
	labels := make(prometheus.Labels, len(sorted))
	for _, t := range sorted {
		k := sanitize(t.Key)
		keys = append(keys, k)
		labels[k] = t.Value
	}
	sort.Strings(keys)
	return keys, labels
}

func promName(name, suffix string) string {
	n := sanitize(name)
	if suffix != "" && !strings.HasSuffix(n, suffix) {
		n += suffix
	}
	return n
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
