// Package metrics owns the Prometheus registry for the HTTP surface and the
// worker pool. Each Metrics value has its own registry so tests do not share
// collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/todo-app/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "todo"

// Metrics holds every collector exported by the server.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	inFlightRequests prometheus.Gauge

	poolQueued    *prometheus.CounterVec
	poolCompleted *prometheus.CounterVec
	poolWait      *prometheus.HistogramVec
	poolRun       *prometheus.HistogramVec
	poolDepth     prometheus.Gauge
	poolWorkers   prometheus.Gauge
}

// Ensure Metrics can observe the worker pool.
var _ worker.Observer = (*Metrics)(nil)

// New creates a registry with the Go runtime and process collectors plus the
// application collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.3, 1, 3},
			},
			[]string{"method", "route"},
		),
		inFlightRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests",
			},
		),

		poolQueued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "worker_pool",
				Name:      "requests_queued_total",
				Help:      "Requests submitted to the worker pool",
			},
			[]string{"kind"},
		),
		poolCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "worker_pool",
				Name:      "requests_completed_total",
				Help:      "Requests executed by a worker, by outcome",
			},
			[]string{"kind", "outcome"},
		),
		poolWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "worker_pool",
				Name:      "queue_wait_seconds",
				Help:      "Time a request spent in a worker mailbox",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"kind"},
		),
		poolRun: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "worker_pool",
				Name:      "execution_seconds",
				Help:      "Time a worker spent executing a request",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"kind"},
		),
		poolDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "worker_pool",
				Name:      "queue_depth",
				Help:      "Requests queued or executing across all workers",
			},
		),
		poolWorkers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "worker_pool",
				Name:      "workers",
				Help:      "Number of running workers",
			},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RequestStarted increments the in-flight gauge and returns a func that
// decrements it.
func (m *Metrics) RequestStarted() func() {
	m.inFlightRequests.Inc()
	return m.inFlightRequests.Dec
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RequestQueued implements worker.Observer.
func (m *Metrics) RequestQueued(kind worker.Kind) {
	m.poolQueued.WithLabelValues(string(kind)).Inc()
	m.poolDepth.Inc()
}

// RequestCompleted implements worker.Observer.
func (m *Metrics) RequestCompleted(kind worker.Kind, failed bool, wait, run time.Duration) {
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	m.poolCompleted.WithLabelValues(string(kind), outcome).Inc()
	m.poolWait.WithLabelValues(string(kind)).Observe(wait.Seconds())
	m.poolRun.WithLabelValues(string(kind)).Observe(run.Seconds())
	m.poolDepth.Dec()
}

// WorkersRunning implements worker.Observer.
func (m *Metrics) WorkersRunning(n int) {
	m.poolWorkers.Set(float64(n))
}
