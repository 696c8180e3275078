package routing

import (
	"context"
	"errors"
	"testing"

	internal "mercator-hq/ganymede/internal/providers"
	"mercator-hq/ganymede/pkg/providers"
)

// scriptedRouter returns the scripted results in order, repeating the last
// one once the script is exhausted.
type scriptedRouter struct {
	results []completionResult
	calls   int
}

type completionResult struct {
	resp *providers.ChatCompletionResponse
	err  error
}

func (s *scriptedRouter) Completion(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error) {
	idx := s.calls
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	s.calls++
	r := s.results[idx]
	return r.resp, r.err
}

func TestOrchestrator_RunFirstAttemptSucceeds(t *testing.T) {
	router := &scriptedRouter{results: []completionResult{
		{resp: internal.TestResponse("gpt-4o", "hello", 5)},
	}}
	orch := NewOrchestrator(router, 3)

	resp, err := orch.Run(context.Background(), internal.TestCompletionRequest("openai/gpt-4o"))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if resp.Usage.CompletionTokens != 5 {
		t.Errorf("expected response passed through, got usage %+v", resp.Usage)
	}
	if router.calls != 1 {
		t.Errorf("expected 1 attempt, got %d", router.calls)
	}
}

func TestOrchestrator_RunRetriesEmptyCompletions(t *testing.T) {
	router := &scriptedRouter{results: []completionResult{
		{resp: internal.TestResponse("gpt-4o", "", 0)},
		{resp: internal.TestResponse("gpt-4o", "", 0)},
		{resp: internal.TestResponse("gpt-4o", "finally", 4)},
	}}
	orch := NewOrchestrator(router, 3)

	resp, err := orch.Run(context.Background(), internal.TestCompletionRequest("openai/gpt-4o"))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if resp.Choices[0].Message.Content != "finally" {
		t.Errorf("expected third attempt's response, got %+v", resp.Choices)
	}
	if router.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", router.calls)
	}
}

func TestOrchestrator_RunExhaustsBudgetOnPersistentEmptiness(t *testing.T) {
	router := &scriptedRouter{results: []completionResult{
		{resp: internal.TestResponse("gpt-4o", "", 0)},
	}}
	orch := NewOrchestrator(router, 3)

	_, err := orch.Run(context.Background(), internal.TestCompletionRequest("openai/gpt-4o"))
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if router.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", router.calls)
	}

	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Errorf("expected ErrMaxRetriesExceeded, got %v", err)
	}
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("expected wrapped ErrEmptyCompletion, got %v", err)
	}

	var exceeded *MaxRetriesExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected *MaxRetriesExceededError, got %T", err)
	}
	if exceeded.Attempts != 3 {
		t.Errorf("expected Attempts=3, got %d", exceeded.Attempts)
	}
}

func TestOrchestrator_RunRetriesUpstreamErrors(t *testing.T) {
	upstream := errors.New("connection reset")
	router := &scriptedRouter{results: []completionResult{
		{err: upstream},
		{resp: internal.TestResponse("gpt-4o", "recovered", 2)},
	}}
	orch := NewOrchestrator(router, 3)

	resp, err := orch.Run(context.Background(), internal.TestCompletionRequest("openai/gpt-4o"))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if resp.Choices[0].Message.Content != "recovered" {
		t.Errorf("expected second attempt's response, got %+v", resp.Choices)
	}
	if router.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", router.calls)
	}
}

func TestOrchestrator_RunDoesNotRetryNotFound(t *testing.T) {
	router := &scriptedRouter{results: []completionResult{
		{err: &AliasNotFoundError{Alias: "openai/missing"}},
	}}
	orch := NewOrchestrator(router, 5)

	_, err := orch.Run(context.Background(), internal.TestCompletionRequest("openai/missing"))
	if !errors.Is(err, ErrAliasNotFound) {
		t.Fatalf("expected ErrAliasNotFound, got %v", err)
	}
	if errors.Is(err, ErrMaxRetriesExceeded) {
		t.Error("not-found errors must not be wrapped in a retry error")
	}
	if router.calls != 1 {
		t.Errorf("expected exactly 1 attempt for not-found, got %d", router.calls)
	}
}

func TestOrchestrator_RunHonorsContextCancellation(t *testing.T) {
	router := &scriptedRouter{results: []completionResult{
		{err: errors.New("always fails")},
	}}
	orch := NewOrchestrator(router, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.Run(ctx, internal.TestCompletionRequest("openai/gpt-4o"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if router.calls != 0 {
		t.Errorf("expected no attempts after cancellation, got %d", router.calls)
	}
}

func TestOrchestrator_OnRetryReasons(t *testing.T) {
	router := &scriptedRouter{results: []completionResult{
		{err: errors.New("connection reset")},
		{resp: internal.TestResponse("gpt-4o", "", 0)},
		{resp: internal.TestResponse("gpt-4o", "done", 1)},
	}}
	orch := NewOrchestrator(router, 3)

	var reasons []string
	orch.OnRetry = func(alias, reason string) {
		if alias != "openai/gpt-4o" {
			t.Errorf("OnRetry alias = %q", alias)
		}
		reasons = append(reasons, reason)
	}

	if _, err := orch.Run(context.Background(), internal.TestCompletionRequest("openai/gpt-4o")); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	want := []string{"upstream_error", "empty_completion"}
	if len(reasons) != len(want) {
		t.Fatalf("reasons = %v, want %v", reasons, want)
	}
	for i := range want {
		if reasons[i] != want[i] {
			t.Errorf("reasons = %v, want %v", reasons, want)
			break
		}
	}
}

func TestNewOrchestrator_CoercesAttemptBudget(t *testing.T) {
	router := &scriptedRouter{results: []completionResult{
		{resp: internal.TestResponse("gpt-4o", "", 0)},
	}}
	orch := NewOrchestrator(router, 0)

	_, err := orch.Run(context.Background(), internal.TestCompletionRequest("openai/gpt-4o"))
	if err == nil {
		t.Fatal("expected error")
	}
	if router.calls != 1 {
		t.Errorf("expected budget coerced to 1 attempt, got %d", router.calls)
	}
}
