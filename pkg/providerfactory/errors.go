package providerfactory

import (
	"errors"
	"fmt"
)

// Common directory errors that can be checked with errors.Is().
var (
	// ErrUnknownProviderType is returned when no factory is registered for a type.
	ErrUnknownProviderType = errors.New("unknown provider type")

	// ErrProviderNotFound is returned when a lifecycle operation names an
	// unregistered provider.
	ErrProviderNotFound = errors.New("provider not found")
)

// ProviderNotFoundError is returned when Refresh, Destroy, or GetClient is
// called for a provider that was never registered (or was already destroyed).
type ProviderNotFoundError struct {
	// Name is the requested provider name.
	Name string
}

// Error implements the error interface.
func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// Is implements error matching for errors.Is().
func (e *ProviderNotFoundError) Is(target error) bool {
	return target == ErrProviderNotFound
}

// InitializationError is returned when startup initialization fails.
// It names the provider whose validation failed; per the fail-fast policy
// the whole startup aborts on the first failing provider.
type InitializationError struct {
	// Provider is the provider whose Create call failed.
	Provider string

	// Cause is the underlying validation error.
	Cause error
}

// Error implements the error interface.
func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed at provider %q: %v", e.Provider, e.Cause)
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *InitializationError) Unwrap() error {
	return e.Cause
}
