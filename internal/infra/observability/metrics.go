package observability

import (
	"time"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	demoFallbacks   *prometheus.CounterVec
	exports         *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bff_request_duration_seconds",
				Help:    "Duration of upstream operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_upstream_errors_total",
				Help: "Total failed calls to the billing backend.",
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_cache_hits_total",
				Help: "List views served from the per-session cache.",
			},
			[]string{"screen"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_cache_misses_total",
				Help: "List views that had to be loaded.",
			},
			[]string{"screen"},
		),
		demoFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_demo_fallbacks_total",
				Help: "Screens served with placeholder data.",
			},
			[]string{"screen"},
		),
		exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_exports_total",
				Help: "CSV exports produced.",
			},
			[]string{"screen"},
		),
	}
}

// RecordRequestDuration records the duration of an upstream operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter.
func (m *Metrics) IncrUpstreamError(operation string) {
	m.upstreamErrors.WithLabelValues(operation).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(screen string) {
	m.cacheHits.WithLabelValues(screen).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(screen string) {
	m.cacheMisses.WithLabelValues(screen).Inc()
}

// IncrDemoFallback counts a screen answered with placeholder data.
func (m *Metrics) IncrDemoFallback(screen string) {
	m.demoFallbacks.WithLabelValues(screen).Inc()
}

// IncrExport counts a CSV export.
func (m *Metrics) IncrExport(screen string) {
	m.exports.WithLabelValues(screen).Inc()
}

// Snapshot sums the counters across labels for GET /api/ops/stats.
func (m *Metrics) Snapshot() *domain.OpsStats {
	hits := sumCounter(m.cacheHits)
	misses := sumCounter(m.cacheMisses)

	rate := float64(0)
	if hits+misses > 0 {
		rate = hits / (hits + misses)
	}

	return &domain.OpsStats{
		UpstreamErrors: sumCounter(m.upstreamErrors),
		DemoFallbacks:  sumCounter(m.demoFallbacks),
		Exports:        sumCounter(m.exports),
		CacheHitRate:   rate,
		Period:         "since_start",
	}
}

// sumCounter collects every child of a CounterVec and adds their values.
func sumCounter(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 64)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	total := float64(0)
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}
