// Package handlers implements the gateway's HTTP endpoints.
//
// # Endpoints
//
// Client surface (OpenAI-compatible):
//   - POST /v1/chat/completions: ChatHandler. Non-streaming requests return
//     the upstream JSON body unchanged; "stream": true requests receive an
//     emulated SSE stream with keepalive frames while the single upstream
//     round trip runs.
//   - GET /v1/models: ModelsHandler. Lists the routable aliases.
//
// Operational surface:
//   - GET /healthz: HealthHandler. Liveness plus per-provider alias counts.
//   - POST /admin/providers/{name}/refresh: RefreshHandler. Re-fetches one
//     provider's model list.
//   - GET /admin/usage: UsageHandler. Recent completions and token totals
//     from the usage ledger.
//
// # Recording
//
// A shared Recorder wraps the completion orchestrator for both the JSON and
// streaming paths, so every terminal outcome lands in the same Prometheus
// series and the same usage ledger regardless of transport. WrapCompleter
// tags entries with whether the client saw a stream.
//
// All error responses use the OpenAI error envelope; on the streaming path
// errors are delivered in-band as SSE frames once headers have been sent.
package handlers
