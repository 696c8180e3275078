package stream

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/proxy/types"
)

// Completer is the slice of the orchestrator the emitter depends on.
type Completer interface {
	Run(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error)
}

// FrameSink receives the SSE frames produced by the emitter. The HTTP
// handler adapts the response writer into one; tests substitute a recorder.
//
// A sink error is never propagated upward: the emitter treats it as the
// transport having closed and silently cancels the session.
type FrameSink interface {
	// WriteChunk writes one chat.completion.chunk frame.
	WriteChunk(chunk *types.ChatCompletionStreamChunk) error

	// WriteError writes one error frame.
	WriteError(errResp *types.ErrorResponse) error

	// WriteDone writes the literal terminal marker.
	WriteDone() error
}

// Emitter serves a protocol-correct SSE stream to the client while a single
// non-streaming upstream round trip runs in the background.
//
// While the orchestrator call is in flight, the emitter writes keep-alive
// chunks (empty delta content, nil finish reason) at the configured interval
// under a temporary completion id. When the call resolves, the keep-alive
// ticker stops first, then the final response is reframed as a short chunk
// sequence using the upstream's real id, timestamp, and model: an optional
// role delta, one delta carrying the entire content, a finish chunk per
// choice, and the [DONE] marker. Streaming is purely cosmetic; the content
// is never revealed incrementally.
//
// Client disconnection only sets the session's cancellation flag. The
// upstream call is not aborted; it runs to completion or exhaustion and its
// result is discarded.
type Emitter struct {
	completer Completer
	interval  time.Duration
}

// NewEmitter creates an emitter that keeps connections alive at the given
// interval while completions are in flight.
func NewEmitter(completer Completer, interval time.Duration) *Emitter {
	return &Emitter{
		completer: completer,
		interval:  interval,
	}
}

// outcome carries the orchestrator result across goroutines.
type outcome struct {
	resp *providers.ChatCompletionResponse
	err  error
}

// Stream drives one emulated streaming response to completion. It returns
// when the stream has closed for any reason; all failures are delivered
// in-band as SSE error frames, never as a Go error.
//
// ctx must be the client connection's context: its cancellation is the
// disconnect signal.
func (e *Emitter) Stream(ctx context.Context, sink FrameSink, req *providers.ChatCompletionRequest) {
	session := NewSession()

	// The upstream call deliberately survives client disconnection: the
	// session flags are the only cancellation channel, and a discarded
	// result is cheaper than tearing down a retry loop mid-attempt.
	upstreamCtx := context.WithoutCancel(ctx)

	resultCh := make(chan outcome, 1)
	go func() {
		resp, err := e.completer.Run(upstreamCtx, req)
		resultCh <- outcome{resp: resp, err: err}
	}()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			session.Cancel()
			slog.Debug("client disconnected during emulated stream",
				"model", req.Model,
				"temp_id", session.TempID(),
			)
			return

		case <-ticker.C:
			if !session.Writable() {
				return
			}
			if err := sink.WriteChunk(e.keepAliveChunk(session, req.Model)); err != nil {
				session.Cancel()
				slog.Debug("keep-alive write failed, treating as disconnect",
					"model", req.Model,
					"error", err,
				)
				return
			}

		case out := <-resultCh:
			ticker.Stop()
			if out.err != nil {
				e.closeWithError(session, sink, req.Model, out.err)
			} else {
				e.closeWithResponse(session, sink, out.resp)
			}
			return
		}
	}
}

// keepAliveChunk builds a frame indistinguishable in shape from a real
// content delta, with the empty string as content and no finish reason.
func (e *Emitter) keepAliveChunk(session *Session, model string) *types.ChatCompletionStreamChunk {
	return &types.ChatCompletionStreamChunk{
		ID:      session.TempID(),
		Object:  types.ObjectChatCompletionChunk,
		Created: session.TempCreated(),
		Model:   model,
		Choices: []types.StreamChoice{
			{Index: 0, Delta: types.Delta{Content: ""}},
		},
	}
}

// closeWithResponse emits the terminal chunk sequence for a successful
// completion: role delta (only if the first choice carries a role), one
// full-content delta, a finish chunk per choice, and the [DONE] marker.
// All terminal frames use the upstream's real id, timestamp, and model.
func (e *Emitter) closeWithResponse(session *Session, sink FrameSink, resp *providers.ChatCompletionResponse) {
	if !session.Complete() {
		// Client cancelled while the upstream call was in flight; the
		// result is discarded.
		return
	}

	chunk := func(choices ...types.StreamChoice) *types.ChatCompletionStreamChunk {
		return &types.ChatCompletionStreamChunk{
			ID:      resp.ID,
			Object:  types.ObjectChatCompletionChunk,
			Created: resp.Created,
			Model:   resp.Model,
			Choices: choices,
		}
	}

	if len(resp.Choices) > 0 && resp.Choices[0].Message.Role != "" {
		role := chunk(types.StreamChoice{
			Index: 0,
			Delta: types.Delta{Role: resp.Choices[0].Message.Role, Content: ""},
		})
		if err := sink.WriteChunk(role); err != nil {
			session.Cancel()
			return
		}
	}

	if len(resp.Choices) > 0 {
		content := chunk(types.StreamChoice{
			Index: 0,
			Delta: types.Delta{Content: providers.ContentText(resp.Choices[0].Message.Content)},
		})
		if err := sink.WriteChunk(content); err != nil {
			session.Cancel()
			return
		}
	}

	for _, choice := range resp.Choices {
		finishReason := choice.FinishReason
		finish := chunk(types.StreamChoice{
			Index:        choice.Index,
			Delta:        types.Delta{Content: ""},
			FinishReason: &finishReason,
		})
		if err := sink.WriteChunk(finish); err != nil {
			session.Cancel()
			return
		}
	}

	if err := sink.WriteDone(); err != nil {
		session.Cancel()
	}
}

// closeWithError delivers a completion failure as a single SSE error frame,
// unless the client already went away.
func (e *Emitter) closeWithError(session *Session, sink FrameSink, model string, err error) {
	if !session.Complete() {
		return
	}

	slog.Error("emulated stream completion failed",
		"model", model,
		"error", err,
	)

	errResp := types.NewErrorResponse(err.Error(), types.ErrorTypeCompletion, "", "")
	if writeErr := sink.WriteError(errResp); writeErr != nil {
		session.Cancel()
	}
}
