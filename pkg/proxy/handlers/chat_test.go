package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	internal "mercator-hq/ganymede/internal/providers"
	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/proxy/stream"
	"mercator-hq/ganymede/pkg/routing"
)

// stubCompleter returns a fixed result.
type stubCompleter struct {
	resp  *providers.ChatCompletionResponse
	err   error
	calls int
}

func (s *stubCompleter) Run(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error) {
	s.calls++
	return s.resp, s.err
}

func newChatHandler(completer Completer) *ChatHandler {
	emitter := stream.NewEmitter(completer, time.Hour)
	return NewChatHandler(completer, emitter, nil)
}

const validBody = `{"model": "openai/gpt-4o", "messages": [{"role": "user", "content": "hello"}]}`

func TestChatHandler_NonStreaming(t *testing.T) {
	completer := &stubCompleter{resp: internal.TestResponse("gpt-4o", "hello back", 5)}
	handler := newChatHandler(completer)

	r := httptest.NewRequest("POST", "/v1/chat/completions", strings.NewReader(validBody))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp providers.ChatCompletionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.ID != "chatcmpl-test" {
		t.Errorf("response ID = %q, expected upstream body passed through", resp.ID)
	}
	if resp.Usage.CompletionTokens != 5 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if completer.calls != 1 {
		t.Errorf("expected 1 completion, got %d", completer.calls)
	}
}

func TestChatHandler_MethodNotAllowed(t *testing.T) {
	completer := &stubCompleter{resp: internal.TestResponse("gpt-4o", "x", 1)}
	handler := newChatHandler(completer)

	r := httptest.NewRequest("GET", "/v1/chat/completions", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != 400 {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if completer.calls != 0 {
		t.Errorf("expected no completion, got %d", completer.calls)
	}
}

func TestChatHandler_InvalidBody(t *testing.T) {
	completer := &stubCompleter{resp: internal.TestResponse("gpt-4o", "x", 1)}
	handler := newChatHandler(completer)

	r := httptest.NewRequest("POST", "/v1/chat/completions", strings.NewReader(`{"messages": []}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_request_error") {
		t.Errorf("expected OpenAI error envelope, got %s", w.Body.String())
	}
	if completer.calls != 0 {
		t.Errorf("expected no completion for invalid body, got %d", completer.calls)
	}
}

func TestChatHandler_UnknownModel(t *testing.T) {
	completer := &stubCompleter{err: &routing.AliasNotFoundError{Alias: "openai/gpt-4o"}}
	handler := newChatHandler(completer)

	r := httptest.NewRequest("POST", "/v1/chat/completions", strings.NewReader(validBody))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != 404 {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "model_not_found") {
		t.Errorf("expected model_not_found code, got %s", w.Body.String())
	}
}

func TestChatHandler_Streaming(t *testing.T) {
	completer := &stubCompleter{resp: internal.TestResponse("gpt-4o", "stream me", 4)}
	handler := newChatHandler(completer)

	body := `{"model": "openai/gpt-4o", "messages": [{"role": "user", "content": "hi"}], "stream": true}`
	r := httptest.NewRequest("POST", "/v1/chat/completions", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	out := w.Body.String()
	if !strings.HasSuffix(out, "data: [DONE]\n\n") {
		t.Errorf("stream must end with the [DONE] marker, got:\n%s", out)
	}
	if !strings.Contains(out, `"chat.completion.chunk"`) {
		t.Errorf("expected chunk frames, got:\n%s", out)
	}
	if !strings.Contains(out, `"stream me"`) {
		t.Errorf("expected full content delta, got:\n%s", out)
	}

	// Every frame is a data line.
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			t.Errorf("non-SSE line in stream: %q", line)
		}
	}
}

func TestChatHandler_StreamingFailureIsInBand(t *testing.T) {
	completer := &stubCompleter{err: &routing.MaxRetriesExceededError{
		Attempts: 3,
		LastErr:  &routing.EmptyCompletionError{Model: "openai/gpt-4o"},
	}}
	handler := newChatHandler(completer)

	body := `{"model": "openai/gpt-4o", "messages": [{"role": "user", "content": "hi"}], "stream": true}`
	r := httptest.NewRequest("POST", "/v1/chat/completions", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	// The SSE headers were already sent; the failure arrives as a frame.
	if w.Code != 200 {
		t.Errorf("status = %d, want 200 with in-band error", w.Code)
	}
	out := w.Body.String()
	if !strings.Contains(out, "completion_error") {
		t.Errorf("expected in-band error frame, got:\n%s", out)
	}
	if strings.Contains(out, "[DONE]") {
		t.Errorf("failed stream must not emit [DONE], got:\n%s", out)
	}
}
