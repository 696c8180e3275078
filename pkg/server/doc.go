// Package server assembles the gateway's HTTP surface.
//
// NewServer takes the configuration and a Handlers bundle, mounts each
// non-nil handler on its route, and wraps the mux in the standard
// middleware chain (recovery, logging, request ID, CORS). Start blocks
// until the context is cancelled, a termination signal arrives, or
// RequestShutdown is called, then drains in-flight requests within the
// configured shutdown timeout.
//
// Routes:
//
//	POST /v1/chat/completions
//	GET  /v1/models
//	GET  /healthz
//	POST /admin/providers/{name}/refresh
//	GET  /admin/usage
//	GET  /metrics            (path configurable)
//
// The server itself knows nothing about routing or providers; all domain
// behavior lives behind the handlers it mounts.
package server
