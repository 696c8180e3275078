package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// HTTPClient is the base implementation for HTTP-based provider adapters.
// It provides connection pooling, a single fixed per-request deadline, and
// translation of wire-level failures into typed errors.
//
// There is deliberately no retry at this layer: retry policy for completions
// belongs to the orchestrator, and model listing is never retried.
//
// Concrete adapters (openai, generic) embed this struct.
type HTTPClient struct {
	// config contains the provider configuration
	config ClientConfig

	// client is the HTTP client with connection pooling
	client *http.Client
}

// NewHTTPClient creates a new base HTTP client with connection pooling.
func NewHTTPClient(config ClientConfig) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPClient{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}
}

// GetName returns the provider's configured name.
func (c *HTTPClient) GetName() string {
	return c.config.Name
}

// GetType returns the provider's type tag.
func (c *HTTPClient) GetType() string {
	return c.config.Type
}

// GetConfig returns the provider's configuration.
func (c *HTTPClient) GetConfig() ClientConfig {
	return c.config
}

// Endpoint joins the configured base URL with a request path.
func (c *HTTPClient) Endpoint(path string) string {
	return strings.TrimRight(c.config.Endpoint, "/") + path
}

// Close releases idle connections held by the transport.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// upstreamErrorBody matches the OpenAI-style error envelope most compatible
// upstreams return on non-2xx responses.
type upstreamErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// DoJSON sends a JSON request and decodes a JSON response into out.
// Non-2xx responses become UpstreamError (with the upstream's own message
// and code when the body carries an error envelope); malformed success
// bodies become ParseError; transport failures become UpstreamError with a
// zero status code.
func (c *HTTPClient) DoJSON(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	slog.Debug("sending request to provider",
		"provider", c.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := c.client.Do(req)
	if err != nil {
		// Surface context cancellation as-is so callers can distinguish it.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &UpstreamError{
			Provider: c.config.Name,
			Message:  "request failed",
			Cause:    err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{
			Provider:   c.config.Name,
			StatusCode: resp.StatusCode,
			Message:    "failed to read response body",
			Cause:      err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.translateErrorResponse(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &ParseError{Provider: c.config.Name, Cause: err}
		}
	}

	return nil
}

// translateErrorResponse builds an UpstreamError from a non-2xx response.
// Unexpected body shapes are tolerated: the raw body becomes the message.
func (c *HTTPClient) translateErrorResponse(statusCode int, body []byte) error {
	var envelope upstreamErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &UpstreamError{
			Provider:   c.config.Name,
			StatusCode: statusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
		}
	}

	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(statusCode)
	}
	// Cap raw bodies so a misbehaving upstream cannot flood logs.
	if len(message) > 512 {
		message = message[:512]
	}

	return &UpstreamError{
		Provider:   c.config.Name,
		StatusCode: statusCode,
		Message:    message,
	}
}
