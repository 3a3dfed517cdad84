// Package promhooks implements the observability hook sets on Prometheus.
//
// Metrics live in a private registry so tests and embedders can create as
// many instances as they like:
//
//	m := promhooks.New()
//	observability.SetGraphHooks(m)
//	http.Handle("/metrics", m.Handler())
package promhooks

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/plangraph/pkg/observability"
	"github.com/matzehuels/plangraph/pkg/plangraph"
)

const namespace = "plangraph"

// Metrics records hook events as Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	buildLevels   prometheus.Histogram
	heuristics    *prometheus.HistogramVec
	unsolvable    *prometheus.CounterVec
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	requests      *prometheus.CounterVec
	reqDuration   *prometheus.HistogramVec
	reqErrors     *prometheus.CounterVec
}

// New creates a Metrics with its own registry, including the Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_builds_total",
			Help:      "Planning graphs built, by outcome.",
		}, []string{"outcome"}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_build_duration_seconds",
			Help:      "Time spent building and evaluating a planning graph.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}),
		buildLevels: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_levels",
			Help:      "Levels expanded per planning graph.",
			Buckets:   prometheus.LinearBuckets(0, 2, 16),
		}),
		heuristics: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "heuristic_duration_seconds",
			Help:      "Time to compute one heuristic value.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 16),
		}, []string{"heuristic"}),
		unsolvable: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heuristic_unsolvable_total",
			Help:      "Heuristic evaluations that found the goal unreachable.",
		}, []string{"heuristic"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache lookups and writes, by key type and event.",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses, by route and status code.",
		}, []string{"method", "route", "code"}),
		reqDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reqErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP requests that failed with an error.",
		}, []string{"method", "route"}),
	}
}

// Registry returns the registry holding every metric.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WriteTextfile writes the current metrics to path for the node exporter's
// textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) OnBuildStart(context.Context, string, int, int) {}

func (m *Metrics) OnBuildComplete(_ context.Context, _ string, levels int, _ bool, d time.Duration, err error) {
	if err != nil {
		m.builds.WithLabelValues("error").Inc()
		return
	}
	m.builds.WithLabelValues("ok").Inc()
	m.buildDuration.Observe(d.Seconds())
	m.buildLevels.Observe(float64(levels))
}

func (m *Metrics) OnHeuristic(_ context.Context, heuristic string, value int, d time.Duration) {
	m.heuristics.WithLabelValues(heuristic).Observe(d.Seconds())
	if value == plangraph.Unsolvable {
		m.unsolvable.WithLabelValues(heuristic).Inc()
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.reqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, route string, _ error) {
	m.reqErrors.WithLabelValues(method, route).Inc()
}

var (
	_ observability.GraphHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)
