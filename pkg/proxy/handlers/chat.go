package handlers

import (
	"net/http"

	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/proxy"
	"mercator-hq/ganymede/pkg/proxy/stream"
	"mercator-hq/ganymede/pkg/proxy/types"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// ChatHandler serves POST /v1/chat/completions.
//
// Non-streaming requests run one orchestrated completion and return the
// upstream response body unchanged. Requests with "stream": true are handed
// to the SSE emitter, which keeps the connection alive while the same
// non-streaming completion runs in the background.
type ChatHandler struct {
	completer Completer
	emitter   *stream.Emitter
	metrics   *metrics.Collector
}

// NewChatHandler creates the chat completions handler. completer serves the
// JSON path; emitter serves the streaming path. metrics may be nil.
func NewChatHandler(completer Completer, emitter *stream.Emitter, collector *metrics.Collector) *ChatHandler {
	return &ChatHandler{
		completer: completer,
		emitter:   emitter,
		metrics:   collector,
	}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		proxy.WriteErrorResponse(w, types.NewInvalidRequestError(
			"Method not allowed. Use POST.", "", types.CodeInvalidValue))
		return
	}

	req, err := proxy.ParseChatCompletionRequest(r)
	if err != nil {
		proxy.WriteErrorResponse(w, proxy.HandleError(err))
		return
	}

	if req.Stream {
		h.serveStream(w, r, req)
		return
	}

	resp, err := h.completer.Run(r.Context(), req)
	if err != nil {
		proxy.WriteErrorResponse(w, proxy.HandleError(err))
		return
	}

	proxy.WriteJSONResponse(w, http.StatusOK, resp)
}

// serveStream runs the emulated SSE path. Everything after the headers is
// delivered in-band; transport failures only cancel the session.
func (h *ChatHandler) serveStream(w http.ResponseWriter, r *http.Request, req *providers.ChatCompletionRequest) {
	if _, ok := w.(http.Flusher); !ok {
		proxy.WriteErrorResponse(w, types.NewServerError(
			"Streaming is not supported by this connection."))
		return
	}

	proxy.SetSSEHeaders(w)

	sink := &countingSink{inner: &sseSink{w: w}, metrics: h.metrics, alias: req.Model}
	h.emitter.Stream(r.Context(), sink, req)

	if h.metrics != nil {
		h.metrics.RecordStreamSession(sink.outcome())
	}
}

// sseSink adapts an http.ResponseWriter into a stream.FrameSink.
type sseSink struct {
	w http.ResponseWriter
}

func (s *sseSink) WriteChunk(chunk *types.ChatCompletionStreamChunk) error {
	return proxy.WriteSSEChunk(s.w, chunk)
}

func (s *sseSink) WriteError(errResp *types.ErrorResponse) error {
	return proxy.WriteSSEError(s.w, errResp)
}

func (s *sseSink) WriteDone() error {
	return proxy.WriteSSEDone(s.w)
}

// countingSink layers frame accounting over a sink. A chunk with no role, no
// content, and no finish reason is a keepalive by the emitter's frame
// grammar; the last write observed decides the session outcome.
type countingSink struct {
	inner   stream.FrameSink
	metrics *metrics.Collector
	alias   string

	wroteDone  bool
	wroteError bool
}

func (s *countingSink) WriteChunk(chunk *types.ChatCompletionStreamChunk) error {
	if s.metrics != nil && isKeepalive(chunk) {
		s.metrics.RecordKeepaliveFrame(s.alias)
	}
	return s.inner.WriteChunk(chunk)
}

func (s *countingSink) WriteError(errResp *types.ErrorResponse) error {
	s.wroteError = true
	return s.inner.WriteError(errResp)
}

func (s *countingSink) WriteDone() error {
	s.wroteDone = true
	return s.inner.WriteDone()
}

func (s *countingSink) outcome() string {
	switch {
	case s.wroteDone:
		return metrics.OutcomeCompleted
	case s.wroteError:
		return metrics.OutcomeError
	default:
		return metrics.OutcomeCancelled
	}
}

func isKeepalive(chunk *types.ChatCompletionStreamChunk) bool {
	if len(chunk.Choices) != 1 {
		return false
	}
	choice := chunk.Choices[0]
	return choice.FinishReason == nil && choice.Delta.Role == "" && choice.Delta.Content == ""
}
