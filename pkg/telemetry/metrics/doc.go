// Package metrics provides Prometheus instrumentation for the gateway.
//
// A single Collector owns the registry and every metric series. Components
// receive the Collector and record through its typed methods rather than
// touching Prometheus primitives directly.
//
// # Metrics
//
// Request path:
//   - ganymede_requests_total{alias, provider, status}
//   - ganymede_request_duration_seconds{alias, provider}
//   - ganymede_upstream_latency_seconds{provider, model}
//   - ganymede_completion_retries_total{alias, reason}
//
// Streaming:
//   - ganymede_stream_sessions_total{outcome}
//   - ganymede_stream_keepalive_frames_total{alias}
//
// Provider directory:
//   - ganymede_provider_aliases{provider}
//
// # Usage
//
//	collector := metrics.NewCollector("ganymede", nil)
//	collector.RecordRequest("openai/gpt-4o", "openai", "ok", elapsed)
//	http.Handle("/metrics", collector.Handler())
package metrics
