// Package routing translates client-facing model aliases into provider
// calls and wraps completions with bounded retry.
//
// The Router is a stateless façade over the provider directory: it resolves
// the "<provider>/<model>" alias in a request, strips the provider prefix,
// forces the upstream call to be non-streaming, and returns the upstream
// response verbatim. The Orchestrator layers the retry policy on top:
// upstream failures and zero-token completions are retried immediately up
// to a configured bound, while alias and client resolution failures surface
// to the caller at once.
package routing
