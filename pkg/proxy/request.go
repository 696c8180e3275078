package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/proxy/types"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (10MB).
	MaxRequestBodySize = 10 * 1024 * 1024
)

// ParseChatCompletionRequest parses an HTTP request body into the canonical
// chat completion request. It enforces the body size limit, validates the
// JSON, and checks the required fields, so downstream components can assume
// a schema-checked request.
func ParseChatCompletionRequest(r *http.Request) (*providers.ChatCompletionRequest, error) {
	limitedReader := io.LimitReader(r.Body, MaxRequestBodySize)

	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) >= MaxRequestBodySize {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Code:    types.CodeRequestTooLarge,
			Param:   "body",
		}
	}

	var req providers.ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	if err := validateChatCompletionRequest(&req); err != nil {
		return nil, err
	}

	return &req, nil
}

// validateChatCompletionRequest checks the fields the gateway itself relies
// on. Sampling parameter ranges are left to the upstream, which is the
// authority on what its models accept.
func validateChatCompletionRequest(req *providers.ChatCompletionRequest) error {
	if req.Model == "" {
		return &RequestError{
			Message: "model is required",
			Code:    types.CodeMissingField,
			Param:   "model",
		}
	}

	if len(req.Messages) == 0 {
		return &RequestError{
			Message: "messages must contain at least one message",
			Code:    types.CodeMissingField,
			Param:   "messages",
		}
	}

	for i, msg := range req.Messages {
		if msg.Role == "" {
			return &RequestError{
				Message: fmt.Sprintf("messages[%d].role is required", i),
				Code:    types.CodeMissingField,
				Param:   "messages",
			}
		}
	}

	return nil
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to an OpenAI-compatible error response.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}
