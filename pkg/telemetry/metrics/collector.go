package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus registry and all gateway metrics.
//
// Metrics:
//   - ganymede_requests_total: Completion requests by alias, provider, and status
//   - ganymede_request_duration_seconds: End-to-end request latency (histogram)
//   - ganymede_upstream_latency_seconds: Upstream provider call latency (histogram)
//   - ganymede_completion_retries_total: Retried completion attempts by alias and reason
//   - ganymede_stream_sessions_total: Streamed sessions by terminal outcome
//   - ganymede_stream_keepalive_frames_total: Keepalive frames written while waiting upstream
//   - ganymede_provider_aliases: Registered model aliases per provider (gauge)
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	upstreamLatency *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
	streamSessions  *prometheus.CounterVec
	keepaliveFrames *prometheus.CounterVec
	providerAliases *prometheus.GaugeVec
}

// Stream session outcomes recorded by RecordStreamSession.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// NewCollector creates a collector and registers all metrics with the given
// registry. If registry is nil a new one is created.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Completion requests by alias, provider, and status",
			},
			[]string{"alias", "provider", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "End-to-end completion request latency in seconds",
				// LLM completions routinely take tens of seconds
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"alias", "provider"},
		),

		upstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_latency_seconds",
				Help:      "Upstream provider call latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"provider", "model"},
		),

		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_retries_total",
				Help:      "Retried completion attempts by alias and reason",
			},
			[]string{"alias", "reason"},
		),

		streamSessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_sessions_total",
				Help:      "Streamed sessions by terminal outcome",
			},
			[]string{"outcome"},
		),

		keepaliveFrames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_keepalive_frames_total",
				Help:      "Keepalive frames written while waiting for upstream",
			},
			[]string{"alias"},
		),

		providerAliases: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "provider_aliases",
				Help:      "Registered model aliases per provider",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.upstreamLatency,
		c.retriesTotal,
		c.streamSessions,
		c.keepaliveFrames,
		c.providerAliases,
	)

	return c
}

// RecordRequest records one completed (or failed) completion request.
func (c *Collector) RecordRequest(alias, provider, status string, duration time.Duration) {
	c.requestsTotal.WithLabelValues(alias, provider, status).Inc()
	c.requestDuration.WithLabelValues(alias, provider).Observe(duration.Seconds())
}

// RecordUpstreamLatency records the latency of a single upstream provider call.
func (c *Collector) RecordUpstreamLatency(provider, model string, duration time.Duration) {
	c.upstreamLatency.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordRetry records one retried completion attempt.
func (c *Collector) RecordRetry(alias, reason string) {
	c.retriesTotal.WithLabelValues(alias, reason).Inc()
}

// RecordStreamSession records the terminal outcome of a streamed session.
func (c *Collector) RecordStreamSession(outcome string) {
	c.streamSessions.WithLabelValues(outcome).Inc()
}

// RecordKeepaliveFrame records one keepalive frame written to a client.
func (c *Collector) RecordKeepaliveFrame(alias string) {
	c.keepaliveFrames.WithLabelValues(alias).Inc()
}

// UpdateAliasCounts replaces the per-provider alias gauge with the given
// counts. Providers absent from the map keep their previous value, so callers
// should pass counts for every live provider (zero included).
func (c *Collector) UpdateAliasCounts(counts map[string]int) {
	for provider, n := range counts {
		c.providerAliases.WithLabelValues(provider).Set(float64(n))
	}
}

// RemoveProvider drops the alias gauge series for a destroyed provider.
func (c *Collector) RemoveProvider(provider string) {
	c.providerAliases.DeleteLabelValues(provider)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
