package handlers

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/proxy/middleware"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
	"mercator-hq/ganymede/pkg/usage"
)

// Completer is the slice of the completion orchestrator the handlers depend on.
type Completer interface {
	Run(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error)
}

// ModelLister lists the model aliases the gateway currently serves.
type ModelLister interface {
	ListModels() []providers.ModelInfo
}

// DirectoryAdmin is the slice of the provider directory exposed to the
// health and admin endpoints.
type DirectoryAdmin interface {
	Resolve(alias string) (string, bool)
	Providers() []string
	AliasCounts() map[string]int
	Refresh(ctx context.Context, name string) error
}

// Recorder persists and counts terminal completion outcomes. It is shared
// by the JSON and streaming paths so both land in the same metrics series
// and usage ledger.
//
// Both the metrics collector and the usage store may be nil; recording then
// degrades to a no-op for that backend.
type Recorder struct {
	metrics  *metrics.Collector
	store    *usage.Store
	resolver func(alias string) (string, bool)
}

// NewRecorder creates a recorder. resolver maps an alias to its provider
// name and is typically Directory.Resolve.
func NewRecorder(collector *metrics.Collector, store *usage.Store, resolver func(alias string) (string, bool)) *Recorder {
	return &Recorder{
		metrics:  collector,
		store:    store,
		resolver: resolver,
	}
}

// Record registers one terminal completion outcome.
func (rec *Recorder) Record(ctx context.Context, alias string, resp *providers.ChatCompletionResponse, err error, streamed bool, elapsed time.Duration) {
	if rec == nil {
		return
	}

	provider := ""
	if rec.resolver != nil {
		provider, _ = rec.resolver(alias)
	}

	status := usage.StatusOK
	if err != nil {
		status = usage.StatusError
	}

	if rec.metrics != nil {
		rec.metrics.RecordRequest(alias, provider, status, elapsed)
	}

	if rec.store == nil {
		return
	}

	entry := usage.Entry{
		RequestID: middleware.GetRequestID(ctx),
		Alias:     alias,
		Provider:  provider,
		Streamed:  streamed,
		Status:    status,
	}
	if resp != nil {
		entry.Model = resp.Model
		entry.PromptTokens = resp.Usage.PromptTokens
		entry.CompletionTokens = resp.Usage.CompletionTokens
		entry.TotalTokens = resp.Usage.TotalTokens
	}

	if recordErr := rec.store.Record(ctx, entry); recordErr != nil {
		slog.WarnContext(ctx, "failed to record usage entry",
			"alias", alias,
			"error", recordErr,
		)
	}
}

// WrapCompleter returns a Completer that records every terminal outcome
// before returning it. streamed tags the resulting usage entries; wire one
// wrapped instance into the SSE emitter and another into the JSON path.
func (rec *Recorder) WrapCompleter(inner Completer, streamed bool) Completer {
	return &recordingCompleter{inner: inner, rec: rec, streamed: streamed}
}

type recordingCompleter struct {
	inner    Completer
	rec      *Recorder
	streamed bool
}

func (c *recordingCompleter) Run(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error) {
	start := time.Now()
	resp, err := c.inner.Run(ctx, req)
	c.rec.Record(ctx, req.Model, resp, err, c.streamed, time.Since(start))
	return resp, err
}
