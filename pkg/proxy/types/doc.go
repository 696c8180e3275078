// Package types defines the client-facing wire shapes the proxy emits that
// are not part of the canonical request/response model: streaming chunks,
// the model list envelope, and OpenAI-compatible error responses.
//
// The canonical chat completion request/response shapes live in
// pkg/providers, since the gateway forwards them verbatim between the two
// sides.
package types
