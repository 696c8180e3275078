package routing

import (
	"errors"
	"fmt"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrAliasNotFound is returned when the requested model alias is not registered.
	ErrAliasNotFound = errors.New("model alias not found")

	// ErrClientNotFound is returned when an alias resolves to a provider whose
	// client has been destroyed concurrently.
	ErrClientNotFound = errors.New("provider client not found")

	// ErrEmptyCompletion marks an upstream response with zero completion tokens.
	ErrEmptyCompletion = errors.New("empty completion")

	// ErrMaxRetriesExceeded is returned when every completion attempt has failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// AliasNotFoundError is returned when a request names a model alias that is
// not present in the alias table.
type AliasNotFoundError struct {
	// Alias is the requested composite model identifier.
	Alias string
}

// Error implements the error interface.
func (e *AliasNotFoundError) Error() string {
	return fmt.Sprintf("model alias %q not found", e.Alias)
}

// Is implements error matching for errors.Is().
func (e *AliasNotFoundError) Is(target error) bool {
	return target == ErrAliasNotFound
}

// ClientNotFoundError is returned when the alias table names a provider but
// the client is gone. This is the race window between Resolve and GetClient
// when a concurrent destroy removes the provider; it is handled, not assumed
// impossible.
type ClientNotFoundError struct {
	// Provider is the provider name the alias resolved to.
	Provider string
}

// Error implements the error interface.
func (e *ClientNotFoundError) Error() string {
	return fmt.Sprintf("client for provider %q not found", e.Provider)
}

// Is implements error matching for errors.Is().
func (e *ClientNotFoundError) Is(target error) bool {
	return target == ErrClientNotFound
}

// EmptyCompletionError marks a syntactically valid upstream response whose
// usage reported zero completion tokens. The orchestrator treats it as a
// retryable failure.
type EmptyCompletionError struct {
	// Model is the composite alias that was requested.
	Model string
}

// Error implements the error interface.
func (e *EmptyCompletionError) Error() string {
	return fmt.Sprintf("upstream returned an empty completion for model %q", e.Model)
}

// Is implements error matching for errors.Is().
func (e *EmptyCompletionError) Is(target error) bool {
	return target == ErrEmptyCompletion
}

// MaxRetriesExceededError is returned when the orchestrator has exhausted
// its attempt budget. It wraps the error from the last attempt.
type MaxRetriesExceededError struct {
	// Attempts is the number of attempts that were made.
	Attempts int

	// LastErr is the error from the final attempt.
	LastErr error
}

// Error implements the error interface.
func (e *MaxRetriesExceededError) Error() string {
	return fmt.Sprintf("completion failed after %d attempt(s): %v", e.Attempts, e.LastErr)
}

// Is implements error matching for errors.Is().
func (e *MaxRetriesExceededError) Is(target error) bool {
	return target == ErrMaxRetriesExceeded
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *MaxRetriesExceededError) Unwrap() error {
	return e.LastErr
}
