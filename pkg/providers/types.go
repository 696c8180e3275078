package providers

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message represents a single message in a conversation.
// The shape matches the OpenAI Chat Completions API exactly so requests and
// responses can be forwarded verbatim.
type Message struct {
	// Role is the author of the message ("system", "user", "assistant", or "tool").
	Role string `json:"role"`

	// Content is the text content of the message.
	// Can be a string or an array of content parts (for multimodal models).
	Content interface{} `json:"content"`

	// Name is the name of the author (optional, for user/assistant messages).
	Name string `json:"name,omitempty"`
}

// ContentText extracts plain text from a message content value.
// String content is returned as-is; multimodal content arrays are flattened
// to their text parts joined by a single space.
func ContentText(content interface{}) string {
	if content == nil {
		return ""
	}

	if str, ok := content.(string); ok {
		return str
	}

	arr, ok := content.([]interface{})
	if !ok {
		return fmt.Sprintf("%v", content)
	}

	var result string
	for _, part := range arr {
		partMap, ok := part.(map[string]interface{})
		if !ok {
			continue
		}
		if partType, _ := partMap["type"].(string); partType != "text" {
			continue
		}
		text, ok := partMap["text"].(string)
		if !ok {
			continue
		}
		if result != "" {
			result += " "
		}
		result += text
	}
	return result
}

// ChatCompletionRequest represents an OpenAI-compatible chat completion request.
// This is the canonical request shape used on both sides of the gateway: the
// inbound HTTP boundary decodes into it, and upstream adapters forward it.
type ChatCompletionRequest struct {
	// Model is the model identifier. On the client-facing side this is a
	// composite alias ("<provider>/<model>"); the router strips the provider
	// prefix before forwarding upstream.
	Model string `json:"model"`

	// Messages is the conversation history as a list of messages.
	Messages []Message `json:"messages"`

	// Temperature controls randomness in the response (0.0 to 2.0).
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0).
	TopP *float64 `json:"top_p,omitempty"`

	// N is the number of completions to generate for each prompt.
	N *int `json:"n,omitempty"`

	// Stream enables server-sent events (SSE) streaming on the client-facing
	// side. The upstream call is always issued with Stream=false; streaming
	// is emulated by the fake-stream emitter.
	Stream bool `json:"stream,omitempty"`

	// Stop is a list of sequences where generation will halt.
	Stop []string `json:"stop,omitempty"`

	// PresencePenalty penalizes tokens already present in the text (-2.0 to 2.0).
	PresencePenalty *float64 `json:"presence_penalty,omitempty"`

	// FrequencyPenalty penalizes tokens by frequency in the text (-2.0 to 2.0).
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`

	// User is a unique identifier for the end-user making the request.
	User string `json:"user,omitempty"`

	// Seed enables deterministic sampling where supported.
	Seed *int `json:"seed,omitempty"`
}

// Clone returns a shallow copy of the request. The router uses it so that
// forcing Stream=false and rewriting Model never mutate the caller's request.
func (r *ChatCompletionRequest) Clone() *ChatCompletionRequest {
	clone := *r
	return &clone
}

// ChatCompletionResponse represents an OpenAI-compatible chat completion
// response as returned by the upstream. The gateway returns it verbatim;
// the ID and Model fields reflect the upstream's own naming, not the alias.
type ChatCompletionResponse struct {
	// ID is the upstream-assigned completion identifier.
	ID string `json:"id"`

	// Object is always "chat.completion".
	Object string `json:"object"`

	// Created is the Unix timestamp of when the completion was created.
	Created int64 `json:"created"`

	// Model is the model that generated the response (upstream naming).
	Model string `json:"model"`

	// Choices is the list of completion choices (typically one).
	Choices []Choice `json:"choices"`

	// Usage contains token usage statistics.
	Usage Usage `json:"usage"`

	// SystemFingerprint identifies the backend configuration (optional).
	SystemFingerprint string `json:"system_fingerprint,omitempty"`
}

// Choice represents a single completion choice.
type Choice struct {
	// Index is the position of this choice in the list of choices.
	Index int `json:"index"`

	// Message is the generated message.
	Message Message `json:"message"`

	// FinishReason explains why the model stopped generating tokens
	// (stop, length, tool_calls, content_filter).
	FinishReason string `json:"finish_reason"`
}

// Usage contains token usage statistics for a completion.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens (prompt + completion).
	TotalTokens int `json:"total_tokens"`
}

// ModelInfo describes a single model reported by an upstream provider.
// Upstreams attach vendor-specific fields beyond the OpenAI baseline; those
// are preserved opaquely in Extra and re-emitted on marshal, so the gateway
// never loses information it does not understand.
type ModelInfo struct {
	// ID is the model identifier as reported by the upstream.
	ID string `json:"-"`

	// Object is the object type, normally "model".
	Object string `json:"-"`

	// Created is the Unix timestamp the model was created (0 if not reported).
	Created int64 `json:"-"`

	// OwnedBy is the organization that owns the model.
	OwnedBy string `json:"-"`

	// Extra holds upstream fields the gateway does not interpret.
	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes a model record, capturing unrecognized fields in Extra.
func (m *ModelInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &m.ID); err != nil {
			return fmt.Errorf("model id: %w", err)
		}
		delete(raw, "id")
	}
	if v, ok := raw["object"]; ok {
		if err := json.Unmarshal(v, &m.Object); err != nil {
			return fmt.Errorf("model object: %w", err)
		}
		delete(raw, "object")
	}
	if v, ok := raw["created"]; ok {
		if err := json.Unmarshal(v, &m.Created); err != nil {
			return fmt.Errorf("model created: %w", err)
		}
		delete(raw, "created")
	}
	if v, ok := raw["owned_by"]; ok {
		if err := json.Unmarshal(v, &m.OwnedBy); err != nil {
			return fmt.Errorf("model owned_by: %w", err)
		}
		delete(raw, "owned_by")
	}

	if len(raw) > 0 {
		m.Extra = raw
	}
	return nil
}

// MarshalJSON encodes the model record, re-emitting preserved Extra fields.
func (m ModelInfo) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.Extra)+4)
	for k, v := range m.Extra {
		out[k] = v
	}

	id, err := json.Marshal(m.ID)
	if err != nil {
		return nil, err
	}
	out["id"] = id

	object := m.Object
	if object == "" {
		object = "model"
	}
	obj, err := json.Marshal(object)
	if err != nil {
		return nil, err
	}
	out["object"] = obj

	if m.Created != 0 {
		created, err := json.Marshal(m.Created)
		if err != nil {
			return nil, err
		}
		out["created"] = created
	}
	if m.OwnedBy != "" {
		ownedBy, err := json.Marshal(m.OwnedBy)
		if err != nil {
			return nil, err
		}
		out["owned_by"] = ownedBy
	}

	return json.Marshal(out)
}

// ClientConfig contains the configuration a client adapter needs for one
// upstream endpoint. It is a subset of config.ProviderConfig with only the
// fields the adapters consume.
type ClientConfig struct {
	// Name is the provider identifier (e.g., "openai", "local-ollama").
	Name string

	// Type is the provider type tag ("openai", "generic").
	Type string

	// Endpoint is the API base URL (e.g., "https://api.openai.com/v1").
	Endpoint string

	// APIKey is the authentication key. Optional for generic providers.
	APIKey string

	// Timeout is the fixed per-request deadline for upstream calls.
	// It must be long enough to cover slow generations; there is no
	// additional timeout layered on the orchestrator's retry loop.
	Timeout time.Duration

	// Filter restricts which upstream models are registered as aliases.
	// Nil means all models pass.
	Filter *Filter

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool.
	IdleConnTimeout time.Duration
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Finish reason constants
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)
