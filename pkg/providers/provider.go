package providers

import "context"

// Client is the contract every upstream provider adapter implements.
// A client is constructed unvalidated by the registry and must not be used
// for completions until Create has succeeded.
//
// All methods accept a context.Context for cancellation and timeout control.
// Implementations must translate upstream wire failures (non-2xx statuses,
// malformed payloads) into the typed errors of this package before returning.
//
// Example usage:
//
//	client, err := registry.CreateClient("acme", cfg)
//	if err != nil {
//	    return err
//	}
//	if err := client.Create(ctx); err != nil {
//	    return err
//	}
//	models, err := client.Models(ctx)
type Client interface {
	// GetName returns the provider's configured name (e.g., "acme").
	GetName() string

	// GetType returns the provider's type tag (e.g., "openai", "generic").
	GetType() string

	// Create validates the client against the live upstream. It performs a
	// real connectivity and auth check, typically by fetching the model
	// list, and primes the model cache on success.
	Create(ctx context.Context) error

	// Completion sends a non-streaming chat completion request upstream and
	// returns the normalized response.
	Completion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)

	// Models returns the cached model list, fetching from the upstream only
	// if no successful fetch has happened yet.
	Models(ctx context.Context) ([]ModelInfo, error)

	// RefreshModels forces a refetch of the model list from the upstream
	// and replaces the cache on success.
	RefreshModels(ctx context.Context) ([]ModelInfo, error)

	// Close releases the client's resources (idle HTTP connections).
	// After calling Close, the client should not be used.
	Close() error
}
