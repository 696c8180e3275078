package generic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"mercator-hq/ganymede/pkg/providers"
)

// Client is the provider adapter for self-hosted OpenAI-compatible servers
// (Ollama, LM Studio, vLLM, and similar). Unlike the openai adapter it does
// not require an API key, and it tolerates servers that do not expose a
// model listing endpoint.
type Client struct {
	*providers.HTTPClient

	// modelsMu protects the cached model list
	modelsMu sync.RWMutex

	// models is the cached model list (nil until the first successful fetch)
	models []providers.ModelInfo
}

// NewClient creates a new generic client from the configuration.
// The client is not validated; call Create before use.
func NewClient(config providers.ClientConfig) (*Client, error) {
	if config.Endpoint == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "endpoint",
			Message:  "endpoint is required",
		}
	}

	return &Client{
		HTTPClient: providers.NewHTTPClient(config),
	}, nil
}

// Create validates the client against the live upstream by fetching the
// model list. Servers that answer 404 on /models still pass validation:
// reachability is proven, and the provider simply registers no aliases
// until a later refresh succeeds.
func (c *Client) Create(ctx context.Context) error {
	if _, err := c.RefreshModels(ctx); err != nil {
		var upstream *providers.UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound {
			slog.Warn("provider does not expose a model listing endpoint",
				"provider", c.GetName(),
			)
			c.modelsMu.Lock()
			c.models = []providers.ModelInfo{}
			c.modelsMu.Unlock()
			return nil
		}
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

	return list.Data, nil
}
