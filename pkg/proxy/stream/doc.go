// Package stream implements emulated Server-Sent-Events streaming.
//
// When a caller asks for a streamed chat completion, the gateway does not
// hold a streaming connection to the upstream. Instead the Emitter performs
// one non-streaming upstream round trip (through the retrying orchestrator)
// in the background while periodically writing keep-alive chunks to the
// client, then reframes the final response as a short sequence of SSE
// chunks terminated by the literal "data: [DONE]" marker.
//
// The Session is the per-request state machine coordinating the keep-alive
// ticker and the in-flight call: both check its cancelled/completed flags
// before every write, and the terminal transition happens at most once.
package stream
