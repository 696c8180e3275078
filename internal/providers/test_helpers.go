// Package providers contains shared test doubles and helpers for exercising
// provider clients and the routing pipeline.
package providers

import (
	"time"

	"mercator-hq/ganymede/pkg/providers"
)

// TestConfig returns a minimal client configuration pointing at baseURL.
func TestConfig(name, providerType, baseURL string) providers.ClientConfig {
	return providers.ClientConfig{
		Name:     name,
		Type:     providerType,
		Endpoint: baseURL,
		APIKey:   "test-key",
		Timeout:  5 * time.Second,
	}
}

// TestMessage builds a single chat message.
func TestMessage(role, content string) providers.Message {
	return providers.Message{
		Role:    role,
		Content: content,
	}
}

// TestCompletionRequest builds a chat completion request for model with the
// given messages, defaulting to one user message when none are supplied.
func TestCompletionRequest(model string, messages ...providers.Message) *providers.ChatCompletionRequest {
	if len(messages) == 0 {
		messages = []providers.Message{TestMessage(providers.RoleUser, "hello")}
	}
	return &providers.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
}

// TestResponse builds a completion response with the given content and
// completion token count.
func TestResponse(model, content string, completionTokens int) *providers.ChatCompletionResponse {
	return &providers.ChatCompletionResponse{
		ID:      "chatcmpl-test",
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []providers.Choice{
			{
				Index: 0,
				Message: providers.Message{
					Role:    providers.RoleAssistant,
					Content: content,
				},
				FinishReason: providers.FinishReasonStop,
			},
		},
		Usage: providers.Usage{
			PromptTokens:     7,
			CompletionTokens: completionTokens,
			TotalTokens:      7 + completionTokens,
		},
	}
}
