package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	internal "mercator-hq/ganymede/internal/providers"
	"mercator-hq/ganymede/pkg/providerfactory"
	"mercator-hq/ganymede/pkg/providers"
)

// newTestDirectory builds a directory whose "mock" factory hands out the
// given clients by provider name, with one spec per client.
func newTestDirectory(t *testing.T, clients ...*internal.MockClient) *providerfactory.Directory {
	t.Helper()

	byName := make(map[string]*internal.MockClient, len(clients))
	specs := make([]providerfactory.ProviderSpec, 0, len(clients))
	for _, c := range clients {
		byName[c.Name] = c
		specs = append(specs, providerfactory.ProviderSpec{
			Name:    c.Name,
			Enabled: true,
			Config:  providers.ClientConfig{Name: c.Name, Type: "mock"},
		})
	}

	registry := providerfactory.NewRegistry()
	registry.Register("mock", func(cc providers.ClientConfig) (providers.Client, error) {
		return byName[cc.Name], nil
	})

	d := providerfactory.NewDirectory(registry)
	if err := d.InitializeAll(context.Background(), specs); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	return d
}

func TestRouter_CompletionStripsPrefixAndDisablesStreaming(t *testing.T) {
	client := internal.NewMockClient("openai", "mock", "gpt-4o")
	client.CompletionResp = internal.TestResponse("gpt-4o", "hi", 3)

	router := NewRouter(newTestDirectory(t, client))

	req := internal.TestCompletionRequest("openai/gpt-4o")
	req.Stream = true

	resp, err := router.Completion(context.Background(), req)
	if err != nil {
		t.Fatalf("Completion() failed: %v", err)
	}
	if resp.Choices[0].Message.Content != "hi" {
		t.Errorf("expected upstream response to pass through, got %+v", resp)
	}

	calls := client.CompletionCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 upstream call, got %d", len(calls))
	}
	if calls[0].Model != "gpt-4o" {
		t.Errorf("expected provider prefix stripped, upstream saw model %q", calls[0].Model)
	}
	if calls[0].Stream {
		t.Error("expected upstream request to have Stream disabled")
	}

	// The caller's request must not be mutated.
	if req.Model != "openai/gpt-4o" {
		t.Errorf("caller request model changed to %q", req.Model)
	}
	if !req.Stream {
		t.Error("caller request Stream flag changed")
	}
}

func TestRouter_OnUpstreamObservesCall(t *testing.T) {
	client := internal.NewMockClient("openai", "mock", "gpt-4o")
	client.CompletionResp = internal.TestResponse("gpt-4o", "hi", 3)

	router := NewRouter(newTestDirectory(t, client))

	var provider, model string
	router.OnUpstream = func(p, m string, elapsed time.Duration) {
		provider, model = p, m
		if elapsed < 0 {
			t.Errorf("negative latency %v", elapsed)
		}
	}

	if _, err := router.Completion(context.Background(), internal.TestCompletionRequest("openai/gpt-4o")); err != nil {
		t.Fatalf("Completion() failed: %v", err)
	}
	if provider != "openai" || model != "gpt-4o" {
		t.Errorf("OnUpstream saw provider=%q model=%q", provider, model)
	}
}

func TestRouter_CompletionPreservesSlashesInModelID(t *testing.T) {
	client := internal.NewMockClient("hub", "mock", "org/model-7b")
	client.CompletionResp = internal.TestResponse("org/model-7b", "ok", 1)

	router := NewRouter(newTestDirectory(t, client))

	_, err := router.Completion(context.Background(), internal.TestCompletionRequest("hub/org/model-7b"))
	if err != nil {
		t.Fatalf("Completion() failed: %v", err)
	}

	calls := client.CompletionCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 upstream call, got %d", len(calls))
	}
	if calls[0].Model != "org/model-7b" {
		t.Errorf("expected only the provider prefix stripped, upstream saw model %q", calls[0].Model)
	}
}

func TestRouter_CompletionUnknownAlias(t *testing.T) {
	client := internal.NewMockClient("openai", "mock", "gpt-4o")

	router := NewRouter(newTestDirectory(t, client))

	_, err := router.Completion(context.Background(), internal.TestCompletionRequest("openai/no-such-model"))
	if err == nil {
		t.Fatal("expected error for unknown alias")
	}
	if !errors.Is(err, ErrAliasNotFound) {
		t.Errorf("expected ErrAliasNotFound, got %v", err)
	}

	var notFound *AliasNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *AliasNotFoundError, got %T", err)
	}
	if notFound.Alias != "openai/no-such-model" {
		t.Errorf("expected alias in error, got %q", notFound.Alias)
	}

	if got := len(client.CompletionCalls()); got != 0 {
		t.Errorf("expected no upstream calls for unknown alias, got %d", got)
	}
}

func TestRouter_ListModels(t *testing.T) {
	a := internal.NewMockClient("alpha", "mock", "m2", "m1")
	b := internal.NewMockClient("beta", "mock", "m1")

	router := NewRouter(newTestDirectory(t, a, b))

	models := router.ListModels()
	wantIDs := []string{"alpha/m1", "alpha/m2", "beta/m1"}
	if len(models) != len(wantIDs) {
		t.Fatalf("expected %d models, got %d", len(wantIDs), len(models))
	}
	for i, want := range wantIDs {
		if models[i].ID != want {
			t.Errorf("models[%d].ID = %q, want %q", i, models[i].ID, want)
		}
		if models[i].Object != "model" {
			t.Errorf("models[%d].Object = %q, want \"model\"", i, models[i].Object)
		}
	}
	if models[0].OwnedBy != "alpha" || models[2].OwnedBy != "beta" {
		t.Errorf("expected OwnedBy per provider, got %q and %q", models[0].OwnedBy, models[2].OwnedBy)
	}
}
