// Package metric provides Prometheus metrics for System Validator.
package metric

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
)

const namespace = "sysvalidator"

// Load results used as the "result" label.
const (
	ResultOK              = "ok"
	ResultParseError      = "parse_error"
	ResultValidationError = "validation_error"
	ResultError           = "error"
)

// Registry holds all application metrics on a private Prometheus
// registry.
type Registry struct {
	registry *prometheus.Registry

	// Configuration metrics
	ConfigLoads        *prometheus.CounterVec
	ConfigLoadDuration prometheus.Histogram
	ConfigKeys         prometheus.Gauge
	ConfigLastSuccess  prometheus.Gauge
	ConfigGeneration   prometheus.Gauge

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

var (
	global     *Registry
	globalOnce sync.Once
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler serves the process-wide registry.
func Handler() http.Handler {
	return Global().Handler()
}

// NewRegistry creates a registry with all metrics registered, plus the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,

		ConfigLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_loads_total",
			Help:      "Configuration loads by result.",
		}, []string{"result"}),

		ConfigLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "config_load_duration_seconds",
			Help:      "Time spent reading, merging and validating configuration.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),

		ConfigKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "config_keys",
			Help:      "Top-level keys in the last successful load.",
		}),

		ConfigLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "config_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful load.",
		}),

		ConfigGeneration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "config_generation",
			Help:      "Reload generation of the current snapshot.",
		}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Status panel requests by method, route and status.",
		}, []string{"method", "route", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Status panel request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.ConfigLoads,
		r.ConfigLoadDuration,
		r.ConfigKeys,
		r.ConfigLastSuccess,
		r.ConfigGeneration,
		r.RequestsTotal,
		r.RequestDuration,
	)

	return r
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}

// ObserveLoad records one configuration load. It satisfies
// confloader.Observer.
func (r *Registry) ObserveLoad(_ string, elapsed time.Duration, keys int, err error) {
	r.ConfigLoads.WithLabelValues(LoadResult(err)).Inc()
	r.ConfigLoadDuration.Observe(elapsed.Seconds())
	if err == nil {
		r.ConfigKeys.Set(float64(keys))
		r.ConfigLastSuccess.SetToCurrentTime()
	}
}

// SetGeneration records the reload generation.
func (r *Registry) SetGeneration(gen uint64) {
	r.ConfigGeneration.Set(float64(gen))
}

// RecordRequest increments the request counter.
func (r *Registry) RecordRequest(method, route, status string) {
	r.RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// ObserveRequestDuration records request latency in seconds.
func (r *Registry) ObserveRequestDuration(method, route string, seconds float64) {
	r.RequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// LoadResult maps a load error to its result label.
func LoadResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case confloader.IsParseError(err):
		return ResultParseError
	case errors.Is(err, confloader.ErrInvalidDSN):
		return ResultValidationError
	default:
		return ResultError
	}
}

var _ confloader.Observer = (*Registry)(nil)
