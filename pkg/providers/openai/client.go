package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"mercator-hq/ganymede/pkg/providers"
)

// Client is the provider adapter for the OpenAI API and hosted
// OpenAI-compatible services that require authentication.
type Client struct {
	*providers.HTTPClient

	// modelsMu protects the cached model list
	modelsMu sync.RWMutex

	// models is the cached model list (nil until the first successful fetch)
	models []providers.ModelInfo
}

// NewClient creates a new OpenAI client from the configuration.
// The client is not validated; call Create before use.
func NewClient(config providers.ClientConfig) (*Client, error) {
	if config.Endpoint == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "endpoint",
			Message:  "endpoint is required",
		}
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "api_key is required for openai providers",
		}
	}

	return &Client{
		HTTPClient: providers.NewHTTPClient(config),
	}, nil
}

// Create validates the client against the live upstream by fetching the
// model list. A successful fetch proves connectivity and auth and primes
// the model cache.
func (c *Client) Create(ctx context.Context) error {
	if _, err := c.RefreshModels(ctx); err != nil {
		return fmt.Errorf("provider %q validation failed: %w", c.GetName(), err)
	}
	return nil
}

// Completion sends a non-streaming chat completion request upstream.
func (c *Client) Completion(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error) {
	var resp providers.ChatCompletionResponse
	if err := c.DoJSON(ctx, http.MethodPost, c.Endpoint("/chat/completions"), req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, &providers.ParseError{
			Provider: c.GetName(),
			Cause:    fmt.Errorf("completion response contains no choices"),
		}
	}

	return &resp, nil
}

// modelListResponse is the OpenAI model list envelope.
type modelListResponse struct {
	Object string                `json:"object"`
	Data   []providers.ModelInfo `json:"data"`
}

// Models returns the cached model list, fetching only if no successful
// fetch has happened yet.
func (c *Client) Models(ctx context.Context) ([]providers.ModelInfo, error) {
	c.modelsMu.RLock()
	cached := c.models
	c.modelsMu.RUnlock()

	if cached != nil {
		return cached, nil
	}
	return c.RefreshModels(ctx)
}

// RefreshModels forces a refetch of the upstream model list and replaces
// the cache on success. On failure the previous cache is left untouched.
func (c *Client) RefreshModels(ctx context.Context) ([]providers.ModelInfo, error) {
	var list modelListResponse
	if err := c.DoJSON(ctx, http.MethodGet, c.Endpoint("/models"), nil, &list); err != nil {
		return nil, err
	}

	c.modelsMu.Lock()
	c.models = list.Data
	c.modelsMu.Unlock()

	slog.Debug("refreshed provider models",
		"provider", c.GetName(),
		"models", len(list.Data),
	)

	return list.Data, nil
}
