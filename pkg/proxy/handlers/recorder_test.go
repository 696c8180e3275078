package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	internal "mercator-hq/ganymede/internal/providers"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
	"mercator-hq/ganymede/pkg/usage"
)

func staticResolver(provider string) func(string) (string, bool) {
	return func(alias string) (string, bool) { return provider, true }
}

func TestRecorder_WrapCompleterRecordsSuccess(t *testing.T) {
	store, err := usage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	collector := metrics.NewCollector("test", nil)
	rec := NewRecorder(collector, store, staticResolver("openai"))

	inner := &stubCompleter{resp: internal.TestResponse("gpt-4o", "answer", 9)}
	wrapped := rec.WrapCompleter(inner, true)

	ctx := context.Background()
	resp, err := wrapped.Run(ctx, internal.TestCompletionRequest("openai/gpt-4o"))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if resp.Usage.CompletionTokens != 9 {
		t.Errorf("response altered by recording: %+v", resp.Usage)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 usage entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Alias != "openai/gpt-4o" || e.Provider != "openai" {
		t.Errorf("entry routing fields: %+v", e)
	}
	if e.Model != "gpt-4o" {
		t.Errorf("entry model = %q, want upstream model", e.Model)
	}
	if e.CompletionTokens != 9 || e.TotalTokens != 16 {
		t.Errorf("entry tokens: %+v", e)
	}
	if !e.Streamed {
		t.Error("entry must be tagged streamed")
	}
	if e.Status != usage.StatusOK {
		t.Errorf("entry status = %q", e.Status)
	}
}

func TestRecorder_WrapCompleterRecordsFailure(t *testing.T) {
	store, err := usage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	rec := NewRecorder(nil, store, staticResolver("openai"))
	inner := &stubCompleter{err: errors.New("upstream down")}
	wrapped := rec.WrapCompleter(inner, false)

	ctx := context.Background()
	if _, err := wrapped.Run(ctx, internal.TestCompletionRequest("openai/gpt-4o")); err == nil {
		t.Fatal("expected the inner error to propagate")
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 usage entry, got %d", len(entries))
	}
	if entries[0].Status != usage.StatusError {
		t.Errorf("entry status = %q, want error", entries[0].Status)
	}
	if entries[0].TotalTokens != 0 {
		t.Errorf("failed entry must carry zero tokens, got %+v", entries[0])
	}
	if entries[0].Streamed {
		t.Error("entry must not be tagged streamed")
	}
}

func TestRecorder_NilBackendsAreNoOps(t *testing.T) {
	rec := NewRecorder(nil, nil, nil)
	inner := &stubCompleter{resp: internal.TestResponse("gpt-4o", "x", 1)}
	wrapped := rec.WrapCompleter(inner, false)

	if _, err := wrapped.Run(context.Background(), internal.TestCompletionRequest("openai/gpt-4o")); err != nil {
		t.Fatalf("Run() failed with nil backends: %v", err)
	}

	// A nil recorder is likewise safe to call directly.
	var nilRec *Recorder
	nilRec.Record(context.Background(), "openai/gpt-4o", nil, nil, false, time.Millisecond)
}
