package routing

import (
	"context"
	"errors"
	"log/slog"

	"mercator-hq/ganymede/pkg/providers"
)

// CompletionRouter is the slice of the Router the orchestrator depends on.
type CompletionRouter interface {
	Completion(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error)
}

// Orchestrator wraps the router's completion call with bounded retry.
//
// Every router error is retryable, and so is a syntactically valid response
// whose usage reports zero completion tokens. That second case guards
// against upstreams that return well-formed but semantically empty
// completions. Error classes are not distinguished for backoff purposes:
// attempts are issued immediately, one after another, up to the configured
// bound. Total latency is therefore bounded only by attempts multiplied by
// the per-attempt upstream deadline.
type Orchestrator struct {
	router     CompletionRouter
	maxRetries int

	// OnRetry, when set, is invoked once per failed attempt with the
	// requested alias and a short reason tag.
	OnRetry func(alias, reason string)
}

// NewOrchestrator creates an orchestrator with the given attempt budget.
// maxRetries is the inclusive upper bound on attempts; values below one are
// treated as one.
func NewOrchestrator(router CompletionRouter, maxRetries int) *Orchestrator {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Orchestrator{
		router:     router,
		maxRetries: maxRetries,
	}
}

// Run calls the router's completion up to the attempt budget and returns the
// first non-empty, error-free response. When every attempt fails or yields
// an empty result, it returns MaxRetriesExceededError wrapping the last
// underlying error.
//
// Alias and client resolution failures are not retried: retrying cannot
// change the outcome of a table lookup, and the caller needs the not-found
// condition immediately.
func (o *Orchestrator) Run(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error) {
	var lastErr error

	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := o.router.Completion(ctx, req)
		if err != nil {
			if isNotFound(err) {
				return nil, err
			}

			slog.Warn("completion attempt failed",
				"model", req.Model,
				"attempt", attempt,
				"max_retries", o.maxRetries,
				"error", err,
			)
			lastErr = err
			if o.OnRetry != nil {
				o.OnRetry(req.Model, "upstream_error")
			}
			continue
		}

		if resp.Usage.CompletionTokens == 0 {
			slog.Warn("completion attempt returned empty result",
				"model", req.Model,
				"attempt", attempt,
				"max_retries", o.maxRetries,
			)
			lastErr = &EmptyCompletionError{Model: req.Model}
			if o.OnRetry != nil {
				o.OnRetry(req.Model, "empty_completion")
			}
			continue
		}

		return resp, nil
	}

	return nil, &MaxRetriesExceededError{
		Attempts: o.maxRetries,
		LastErr:  lastErr,
	}
}

// isNotFound reports whether the error is a non-retryable resolution failure.
func isNotFound(err error) bool {
	return errors.Is(err, ErrAliasNotFound) || errors.Is(err, ErrClientNotFound)
}
