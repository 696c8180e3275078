package types

// ChatCompletionStreamChunk represents a chunk in a streaming response.
// This is sent as Server-Sent Events (SSE) when stream=true. Keep-alive
// frames emitted while the upstream call is in flight use the same shape
// with an empty delta content and a nil finish reason, so they are
// indistinguishable from real content frames to SSE consumers.
type ChatCompletionStreamChunk struct {
	// ID is a unique identifier for the chat completion. Keep-alive frames
	// carry a temporary id generated once per session; terminal frames carry
	// the upstream's real completion id.
	ID string `json:"id"`

	// Object is always "chat.completion.chunk".
	Object string `json:"object"`

	// Created is the Unix timestamp of when the chunk was created.
	Created int64 `json:"created"`

	// Model is the model used for the completion.
	Model string `json:"model"`

	// Choices is a list of streaming choices.
	Choices []StreamChoice `json:"choices"`
}

// StreamChoice represents a single choice in a streaming response.
type StreamChoice struct {
	// Index is the index of this choice in the list of choices.
	Index int `json:"index"`

	// Delta contains incremental content.
	Delta Delta `json:"delta"`

	// FinishReason explains why the model stopped generating tokens.
	// Nil on every frame except per-choice finish frames.
	FinishReason *string `json:"finish_reason"`
}

// Delta contains incremental content in a streaming response.
type Delta struct {
	// Role is the role of the message author (only in the first chunk).
	Role string `json:"role,omitempty"`

	// Content is the incremental text content. Keep-alive frames always
	// carry the empty string, so the field is serialized unconditionally.
	Content string `json:"content"`
}

// ObjectChatCompletionChunk is the object tag for streaming chunks.
const ObjectChatCompletionChunk = "chat.completion.chunk"
