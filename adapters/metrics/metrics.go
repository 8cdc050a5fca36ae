// Package metrics provides Prometheus metrics collection for tiergate.
package metrics

import (
	"time"

	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tiergate"

// Collector holds all Prometheus metrics for tiergate.
type Collector struct {
	// HTTP metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	AuthFailures     *prometheus.CounterVec

	// Enforcement metrics
	Decisions *prometheus.CounterVec

	// Usage metrics
	UsageCalls          *prometheus.CounterVec
	UsageRecordFailures prometheus.Counter
	UsagePrunes         prometheus.Counter

	// Subscription metrics
	UpgradeRequests *prometheus.CounterVec
	TierChanges     *prometheus.CounterVec

	// Backend metrics
	BackendDuration *prometheus.HistogramVec
	BackendErrors   *prometheus.CounterVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered on the default Prometheus registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector on a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Total number of authentication failures",
			},
			[]string{"reason"},
		),

		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Access and quota decisions by check, tier and outcome code",
			},
			[]string{"check", "tier", "code"},
		),

		UsageCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "usage_recorded_total",
				Help:      "Calls recorded in the usage ledger by model",
			},
			[]string{"model"},
		),
		UsageRecordFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "usage_record_failures_total",
				Help:      "Usage records that could not be written",
			},
		),
		UsagePrunes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "usage_pruned_total",
				Help:      "Usage records removed by retention",
			},
		),

		UpgradeRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upgrade_requests_total",
				Help:      "Upgrade requests by outcome code",
			},
			[]string{"code"},
		),
		TierChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tier_changes_total",
				Help:      "Operator tier changes by target tier",
			},
			[]string{"tier"},
		),

		BackendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_duration_seconds",
				Help:      "Generation backend call duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"model"},
		),
		BackendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_errors_total",
				Help:      "Generation backend failures",
			},
			[]string{"model"},
		),

		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// StatusClass collapses an HTTP status into 2xx/3xx/4xx/5xx to bound label
// cardinality.
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Decision implements ports.Meter.
func (c *Collector) Decision(check string, t tier.Tier, code string) {
	label := string(t)
	if label == "" {
		label = "none"
	}
	c.Decisions.WithLabelValues(check, label, code).Inc()
}

// UsageRecorded implements ports.Meter.
func (c *Collector) UsageRecorded(model string, weight int64) {
	c.UsageCalls.WithLabelValues(model).Add(float64(weight))
}

// UsageRecordFailed implements ports.Meter.
func (c *Collector) UsageRecordFailed() {
	c.UsageRecordFailures.Inc()
}

// UsagePruned implements ports.Meter.
func (c *Collector) UsagePruned(n int64) {
	c.UsagePrunes.Add(float64(n))
}

// UpgradeRequested implements ports.Meter.
func (c *Collector) UpgradeRequested(code string) {
	c.UpgradeRequests.WithLabelValues(code).Inc()
}

// TierChanged implements ports.Meter.
func (c *Collector) TierChanged(t tier.Tier) {
	c.TierChanges.WithLabelValues(string(t)).Inc()
}

// BackendCall implements ports.Meter.
func (c *Collector) BackendCall(model string, d time.Duration, err error) {
	c.BackendDuration.WithLabelValues(model).Observe(d.Seconds())
	if err != nil {
		c.BackendErrors.WithLabelValues(model).Inc()
	}
}

// Ensure interface compliance.
var _ ports.Meter = (*Collector)(nil)
