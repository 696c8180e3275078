// Package proxy contains the HTTP plumbing shared by the gateway's
// endpoint handlers.
//
// It owns request parsing and validation for the OpenAI-compatible surface,
// response writing (JSON bodies, SSE frames, the [DONE] marker), and the
// mapping from internal error types to OpenAI error envelopes with the
// correct HTTP status.
//
// # Error mapping
//
// HandleError translates routing and provider errors:
//
//   - malformed or invalid request body: 400 invalid_request_error
//   - unknown model alias: 404 model_not_found
//   - provider missing for a resolved alias: 404 provider_unavailable
//   - retries exhausted or upstream 5xx: 502 bad_gateway
//   - upstream 429: 429 rate_limit_exceeded
//   - anything unrecognized: 500 server_error
//
// # SSE framing
//
// Every stream frame is "data: <json>\n\n" followed by a flush; the stream
// ends with the literal "data: [DONE]\n\n". The frame grammar itself lives
// in the stream subpackage; this package only knows how to put frames on
// the wire.
//
// Subpackages:
//   - types: wire-level request, response, chunk, and error envelopes
//   - handlers: the HTTP endpoints
//   - middleware: request ID, logging, CORS, panic recovery
//   - stream: the keepalive emitter for emulated streaming
package proxy
