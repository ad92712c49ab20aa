// Package metrics exports corkboard observability events to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/corkboard/pkg/observability"
)

const namespace = "corkboard"

// Metrics holds the collectors of one registry. It implements every hook
// interface of pkg/observability.
type Metrics struct {
	registry *prometheus.Registry

	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	corrections  prometheus.Counter
	gestures     *prometheus.CounterVec
	stackChanges *prometheus.CounterVec

	writes        *prometheus.CounterVec
	writeDuration *prometheus.HistogramVec
	writeDrops    *prometheus.CounterVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  prometheus.Counter

	clientRequests *prometheus.CounterVec
	clientDuration *prometheus.HistogramVec
	clientErrors   *prometheus.CounterVec

	serverInFlight prometheus.Gauge
	serverRequests *prometheus.CounterVec
	serverDuration *prometheus.HistogramVec
}

var (
	_ observability.BoardHooks = (*Metrics)(nil)
	_ observability.WriteHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "board", Name: "loads_total",
			Help: "Board loads and resyncs by result.",
		}, []string{"result"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "board", Name: "load_duration_seconds",
			Help:    "Duration of board loads.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		corrections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "board", Name: "corrections_total",
			Help: "Item positions rewritten by reconciliation.",
		}),
		gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "board", Name: "gestures_total",
			Help: "Finished item gestures by outcome.",
		}, []string{"outcome"}),
		stackChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "board", Name: "stack_changes_total",
			Help: "Stack membership changes by kind.",
		}, []string{"change"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "writeback", Name: "writes_total",
			Help: "Position writes by origin and result.",
		}, []string{"origin", "result"}),
		writeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "writeback", Name: "write_duration_seconds",
			Help:    "Duration of position writes.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"origin"}),
		writeDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "writeback", Name: "dropped_total",
			Help: "Position writes dropped before delivery.",
		}, []string{"origin"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "events_total",
			Help: "Render cache hits, misses and sets.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "written_bytes_total",
			Help: "Bytes written to the render cache.",
		}),
		clientRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "client", Name: "requests_total",
			Help: "Backend requests by method and status.",
		}, []string{"method", "status"}),
		clientDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "client", Name: "request_duration_seconds",
			Help:    "Duration of backend requests.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method"}),
		clientErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "client", Name: "errors_total",
			Help: "Backend requests that failed without a response.",
		}, []string{"method"}),
		serverInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		}),
		serverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		serverDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.loads, m.loadDuration, m.corrections, m.gestures, m.stackChanges,
		m.writes, m.writeDuration, m.writeDrops,
		m.cacheEvents, m.cacheBytes,
		m.clientRequests, m.clientDuration, m.clientErrors,
		m.serverInFlight, m.serverRequests, m.serverDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Install registers m as the global observability hooks.
func (m *Metrics) Install() {
	observability.SetBoardHooks(m)
	observability.SetWriteHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument is chi middleware recording request counts and latency by route
// pattern. Requests to /metrics are not recorded.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		m.serverInFlight.Inc()
		defer m.serverInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.serverRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.serverDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// =============================================================================
// Hook implementations
// =============================================================================

func (m *Metrics) OnLoad(_ context.Context, _ string, _, corrections int, d time.Duration, err error) {
	m.loads.WithLabelValues(result(err)).Inc()
	m.loadDuration.Observe(d.Seconds())
	m.corrections.Add(float64(corrections))
}

func (m *Metrics) OnGesture(_ context.Context, _, outcome string) {
	m.gestures.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OnStackChange(_ context.Context, _, change string) {
	m.stackChanges.WithLabelValues(change).Inc()
}

func (m *Metrics) OnWrite(_ context.Context, origin string, d time.Duration, err error) {
	m.writes.WithLabelValues(origin, result(err)).Inc()
	m.writeDuration.WithLabelValues(origin).Observe(d.Seconds())
}

func (m *Metrics) OnDrop(_ context.Context, origin string) {
	m.writeDrops.WithLabelValues(origin).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, _, _ string, status int, d time.Duration) {
	m.clientRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.clientDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, _, _ string, _ error) {
	m.clientErrors.WithLabelValues(method).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
