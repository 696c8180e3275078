// Ganymede is an OpenAI-compatible chat completion gateway.
//
// It fronts multiple upstream LLM providers behind a single endpoint,
// routing requests by "<provider>/<model>" aliases, and serves streaming
// clients with emulated SSE: the upstream call is always non-streaming and
// the response is reframed as a short chunk sequence after keepalive frames.
//
// Usage:
//
//	# Start the gateway with the default configuration file
//	ganymede run
//
//	# Start with a custom configuration file
//	ganymede run --config /etc/ganymede/config.yaml
//
//	# Validate configuration without starting
//	ganymede validate
//
//	# Show version information
//	ganymede version
package main

func main() {
	Execute()
}
