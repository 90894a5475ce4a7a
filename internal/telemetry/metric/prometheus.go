package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rest0"

// Request outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Connection error stages.
const (
	StageAccept  = "accept"
	StageRead    = "read"
	StageHandler = "handler"
	StageAction  = "action"
	StagePanic   = "panic"
)

// Refresh results.
const (
	RefreshChanged   = "changed"
	RefreshUnchanged = "unchanged"
	RefreshFailed    = "failed"
	RefreshFatal     = "fatal"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  prometheus.Histogram
	InflightRequests prometheus.Gauge
	ConnectionErrors *prometheus.CounterVec

	RefreshTotal       *prometheus.CounterVec
	RefreshLastSuccess prometheus.Gauge

	BuildInfo *prometheus.GaugeVec
}

// NewRegistry creates a registry with the rest0 instruments plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests handled, by outcome.",
		}, []string{"outcome"}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from accepted connection to closed response.",
			Buckets:   prometheus.DefBuckets,
		}),
		InflightRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_requests",
			Help:      "Connections currently being handled.",
		}),
		ConnectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_errors_total",
			Help:      "Per-connection failures, by stage.",
		}, []string{"stage"}),
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_refresh_total",
			Help:      "Configuration refresh attempts, by result.",
		}, []string{"result"}),
		RefreshLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "config_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful configuration resolve.",
		}),
		BuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information; value is always 1.",
		}, []string{"version", "commit", "go_version"}),
	}

	reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.InflightRequests,
		r.ConnectionErrors,
		r.RefreshTotal,
		r.RefreshLastSuccess,
		r.BuildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	if r == nil {
		return
	}
	r.registry.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RequestStarted records a new in-flight request. The returned func must be
// called exactly once with the request outcome.
func (r *Registry) RequestStarted() func(outcome string) {
	if r == nil {
		return func(string) {}
	}
	start := time.Now()
	r.InflightRequests.Inc()
	return func(outcome string) {
		r.InflightRequests.Dec()
		r.RequestDuration.Observe(time.Since(start).Seconds())
		r.RequestsTotal.WithLabelValues(outcome).Inc()
	}
}

// ConnectionError counts a per-connection failure at the given stage.
func (r *Registry) ConnectionError(stage string) {
	if r == nil {
		return
	}
	r.ConnectionErrors.WithLabelValues(stage).Inc()
}

// Refresh counts a refresh attempt. Successful results also move the
// last-success timestamp to at.
func (r *Registry) Refresh(result string, at time.Time) {
	if r == nil {
		return
	}
	r.RefreshTotal.WithLabelValues(result).Inc()
	if result == RefreshChanged || result == RefreshUnchanged {
		r.RefreshLastSuccess.Set(float64(at.UnixNano()) / 1e9)
	}
}

// SetBuildInfo publishes the build information gauge.
func (r *Registry) SetBuildInfo(version, commit, goVersion string) {
	if r == nil {
		return
	}
	r.BuildInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
