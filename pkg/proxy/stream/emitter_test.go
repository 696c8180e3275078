package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	internal "mercator-hq/ganymede/internal/providers"
	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/proxy/types"
)

// recordingSink captures every frame the emitter writes, in order.
type recordingSink struct {
	mu     sync.Mutex
	chunks []*types.ChatCompletionStreamChunk
	errs   []*types.ErrorResponse
	done   int
	order  []string
}

func (r *recordingSink) WriteChunk(chunk *types.ChatCompletionStreamChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, chunk)
	r.order = append(r.order, "chunk")
	return nil
}

func (r *recordingSink) WriteError(errResp *types.ErrorResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, errResp)
	r.order = append(r.order, "error")
	return nil
}

func (r *recordingSink) WriteDone() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	r.order = append(r.order, "done")
	return nil
}

func (r *recordingSink) chunkCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chunks)
}

func (r *recordingSink) snapshot() ([]*types.ChatCompletionStreamChunk, []*types.ErrorResponse, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chunks := make([]*types.ChatCompletionStreamChunk, len(r.chunks))
	copy(chunks, r.chunks)
	errs := make([]*types.ErrorResponse, len(r.errs))
	copy(errs, r.errs)
	return chunks, errs, r.done
}

// blockingCompleter holds its result until release is closed.
type blockingCompleter struct {
	release chan struct{}
	resp    *providers.ChatCompletionResponse
	err     error
}

func (b *blockingCompleter) Run(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error) {
	<-b.release
	return b.resp, b.err
}

// instantCompleter resolves immediately.
type instantCompleter struct {
	resp *providers.ChatCompletionResponse
	err  error
}

func (i *instantCompleter) Run(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error) {
	return i.resp, i.err
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestEmitter_StreamEmitsKeepAlivesWhileUpstreamPending(t *testing.T) {
	completer := &blockingCompleter{
		release: make(chan struct{}),
		resp:    internal.TestResponse("gpt-4o", "slow answer", 4),
	}
	sink := &recordingSink{}
	emitter := NewEmitter(completer, 2*time.Millisecond)

	streamDone := make(chan struct{})
	go func() {
		emitter.Stream(context.Background(), sink, internal.TestCompletionRequest("openai/gpt-4o"))
		close(streamDone)
	}()

	waitFor(t, 2*time.Second, func() bool { return sink.chunkCount() >= 3 })
	close(completer.release)
	<-streamDone

	chunks, errs, done := sink.snapshot()
	if len(errs) != 0 {
		t.Fatalf("unexpected error frames: %+v", errs)
	}
	if done != 1 {
		t.Fatalf("expected exactly one [DONE], got %d", done)
	}

	// Everything before the terminal sequence is a keep-alive frame under
	// the shared temporary id.
	tempID := chunks[0].ID
	var keepalives int
	for _, c := range chunks {
		if c.ID == "chatcmpl-test" {
			break
		}
		keepalives++
		if c.ID != tempID {
			t.Errorf("keep-alive id changed from %q to %q", tempID, c.ID)
		}
		if len(c.Choices) != 1 {
			t.Fatalf("keep-alive frame with %d choices", len(c.Choices))
		}
		choice := c.Choices[0]
		if choice.Delta.Content != "" || choice.Delta.Role != "" || choice.FinishReason != nil {
			t.Errorf("keep-alive frame carries payload: %+v", choice)
		}
	}
	if keepalives < 3 {
		t.Errorf("expected at least 3 keep-alive frames, got %d", keepalives)
	}

	// Terminal frames use the upstream's id, not the temporary one.
	terminal := chunks[keepalives:]
	if len(terminal) == 0 {
		t.Fatal("expected terminal frames after the upstream result")
	}
	for _, c := range terminal {
		if c.ID != "chatcmpl-test" {
			t.Errorf("terminal frame kept temporary id %q", c.ID)
		}
		if c.Model != "gpt-4o" {
			t.Errorf("terminal frame model = %q, want upstream model", c.Model)
		}
	}
}

func TestEmitter_StreamTerminalSequence(t *testing.T) {
	resp := internal.TestResponse("gpt-4o", "the answer", 3)
	sink := &recordingSink{}
	emitter := NewEmitter(&instantCompleter{resp: resp}, time.Hour)

	emitter.Stream(context.Background(), sink, internal.TestCompletionRequest("openai/gpt-4o"))

	chunks, errs, done := sink.snapshot()
	if len(errs) != 0 {
		t.Fatalf("unexpected error frames: %+v", errs)
	}
	if done != 1 {
		t.Fatalf("expected one [DONE], got %d", done)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected role, content, and finish chunks, got %d", len(chunks))
	}

	role := chunks[0].Choices[0]
	if role.Delta.Role != providers.RoleAssistant || role.Delta.Content != "" {
		t.Errorf("expected leading role delta, got %+v", role.Delta)
	}
	if role.FinishReason != nil {
		t.Errorf("role chunk must not carry a finish reason, got %v", *role.FinishReason)
	}

	content := chunks[1].Choices[0]
	if content.Delta.Content != "the answer" {
		t.Errorf("expected full content in one delta, got %q", content.Delta.Content)
	}
	if content.FinishReason != nil {
		t.Errorf("content chunk must not carry a finish reason, got %v", *content.FinishReason)
	}

	finish := chunks[2].Choices[0]
	if finish.FinishReason == nil || *finish.FinishReason != providers.FinishReasonStop {
		t.Errorf("expected finish chunk with stop reason, got %+v", finish)
	}
	if finish.Delta.Content != "" {
		t.Errorf("finish chunk must carry an empty delta, got %q", finish.Delta.Content)
	}

	for i, c := range chunks {
		if c.ID != resp.ID || c.Created != resp.Created || c.Model != resp.Model {
			t.Errorf("chunk %d does not carry the upstream identity: %+v", i, c)
		}
		if c.Object != types.ObjectChatCompletionChunk {
			t.Errorf("chunk %d object = %q", i, c.Object)
		}
	}
}

func TestEmitter_StreamFinishChunkPerChoice(t *testing.T) {
	resp := internal.TestResponse("gpt-4o", "first", 2)
	resp.Choices = append(resp.Choices, providers.Choice{
		Index:        1,
		Message:      providers.Message{Role: providers.RoleAssistant, Content: "second"},
		FinishReason: providers.FinishReasonLength,
	})

	sink := &recordingSink{}
	emitter := NewEmitter(&instantCompleter{resp: resp}, time.Hour)

	emitter.Stream(context.Background(), sink, internal.TestCompletionRequest("openai/gpt-4o"))

	chunks, _, _ := sink.snapshot()
	// role + content + one finish per choice
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}

	finishFirst := chunks[2].Choices[0]
	finishSecond := chunks[3].Choices[0]
	if finishFirst.Index != 0 || finishFirst.FinishReason == nil || *finishFirst.FinishReason != providers.FinishReasonStop {
		t.Errorf("unexpected first finish chunk: %+v", finishFirst)
	}
	if finishSecond.Index != 1 || finishSecond.FinishReason == nil || *finishSecond.FinishReason != providers.FinishReasonLength {
		t.Errorf("unexpected second finish chunk: %+v", finishSecond)
	}
}

func TestEmitter_StreamDeliversFailureAsErrorFrame(t *testing.T) {
	sink := &recordingSink{}
	emitter := NewEmitter(&instantCompleter{err: errors.New("upstream exploded")}, time.Hour)

	emitter.Stream(context.Background(), sink, internal.TestCompletionRequest("openai/gpt-4o"))

	chunks, errs, done := sink.snapshot()
	if len(chunks) != 0 {
		t.Errorf("expected no content chunks on failure, got %d", len(chunks))
	}
	if done != 0 {
		t.Error("failed stream must not emit [DONE]")
	}
	if len(errs) != 1 {
		t.Fatalf("expected one error frame, got %d", len(errs))
	}
	if errs[0].Error.Type != types.ErrorTypeCompletion {
		t.Errorf("error frame type = %q, want %q", errs[0].Error.Type, types.ErrorTypeCompletion)
	}
	if errs[0].Error.Message != "upstream exploded" {
		t.Errorf("error frame message = %q", errs[0].Error.Message)
	}
}

func TestEmitter_StreamStopsOnClientDisconnect(t *testing.T) {
	completer := &blockingCompleter{
		release: make(chan struct{}),
		resp:    internal.TestResponse("gpt-4o", "discarded", 1),
	}
	defer close(completer.release)

	sink := &recordingSink{}
	emitter := NewEmitter(completer, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	streamDone := make(chan struct{})
	go func() {
		emitter.Stream(ctx, sink, internal.TestCompletionRequest("openai/gpt-4o"))
		close(streamDone)
	}()

	select {
	case <-streamDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after client disconnect")
	}

	chunks, errs, done := sink.snapshot()
	if len(chunks) != 0 || len(errs) != 0 || done != 0 {
		t.Errorf("disconnected stream wrote frames: %d chunks, %d errors, %d done", len(chunks), len(errs), done)
	}
}
