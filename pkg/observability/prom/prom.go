// Package prom implements the observability hooks on top of Prometheus
// collectors. A one-shot CLI has nothing to scrape, so the collected
// metrics are written once to a node_exporter textfile at exit.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/debstatus/pkg/observability"
)

const namespace = "debstatus"

// Hooks records query, cache and worker pool events.
type Hooks struct {
	registry *prometheus.Registry

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	queryRows     *prometheus.HistogramVec
	queryErrors   *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	packages        *prometheus.CounterVec
	packageDuration prometheus.Histogram
	runTasks        prometheus.Gauge
	runWorkers      prometheus.Gauge
	runDuration     prometheus.Gauge
	runFailures     prometheus.Counter
}

var (
	_ observability.QueryHooks    = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.ClassifyHooks = (*Hooks)(nil)
)

// New registers all collectors on a fresh registry.
func New() *Hooks {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Hooks{
		registry: reg,
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Database round trips by release and table.",
		}, []string{"release", "table"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Database round trip latency.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"release", "table"}),
		queryRows: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_rows",
			Help:      "Version rows returned per query.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16},
		}, []string{"release", "table"}),
		queryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_errors_total",
			Help:      "Failed database round trips.",
		}, []string{"release", "table"}),
		cacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Fresh status cache entries served.",
		}, []string{"release"}),
		cacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Status cache lookups that fell through to the database.",
		}, []string{"release"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the status cache.",
		}, []string{"release"}),
		packages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packages_total",
			Help:      "Classified packages by packaging tier.",
		}, []string{"tier"}),
		packageDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "package_duration_seconds",
			Help:      "Time from dispatch to result per package.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		runTasks: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_packages",
			Help:      "Packages submitted in the last run.",
		}),
		runWorkers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_workers",
			Help:      "Worker pool size of the last run.",
		}),
		runDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		runFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Runs aborted by an error.",
		}),
	}
}

// Install registers h as the global query, cache and classify hooks.
func (h *Hooks) Install() {
	observability.SetQueryHooks(h)
	observability.SetCacheHooks(h)
	observability.SetClassifyHooks(h)
}

// Registry exposes the underlying registry.
func (h *Hooks) Registry() *prometheus.Registry { return h.registry }

// WriteTextfile writes all metrics to path in the text exposition format.
func (h *Hooks) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, h.registry)
}

func (h *Hooks) OnQuery(_ context.Context, release, table string, rows int, d time.Duration, err error) {
	h.queries.WithLabelValues(release, table).Inc()
	h.queryDuration.WithLabelValues(release, table).Observe(d.Seconds())
	if err != nil {
		h.queryErrors.WithLabelValues(release, table).Inc()
		return
	}
	h.queryRows.WithLabelValues(release, table).Observe(float64(rows))
}

func (h *Hooks) OnCacheHit(_ context.Context, release string) {
	h.cacheHits.WithLabelValues(release).Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, release string) {
	h.cacheMisses.WithLabelValues(release).Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, release string, size int) {
	h.cacheBytes.WithLabelValues(release).Add(float64(size))
}

func (h *Hooks) OnRunStart(_ context.Context, tasks, workers int) {
	h.runTasks.Set(float64(tasks))
	h.runWorkers.Set(float64(workers))
}

func (h *Hooks) OnPackage(_ context.Context, tier string, d time.Duration) {
	h.packages.WithLabelValues(tier).Inc()
	h.packageDuration.Observe(d.Seconds())
}

func (h *Hooks) OnRunComplete(_ context.Context, _ int, d time.Duration, err error) {
	h.runDuration.Set(d.Seconds())
	if err != nil {
		h.runFailures.Inc()
	}
}
