package providers

import "fmt"

// UpstreamError represents a failed upstream call: a non-2xx response or a
// transport-level failure. It carries the HTTP status and the provider's own
// error code when the upstream supplied one.
type UpstreamError struct {
	// Provider is the name of the provider that returned the error.
	Provider string

	// StatusCode is the HTTP status code (0 for transport failures).
	StatusCode int

	// Code is the provider's error code, if present in the error body.
	Code string

	// Message is the error message.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q upstream error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q upstream error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// ParseError represents an upstream payload that violated the wire contract:
// syntactically or structurally malformed JSON where a valid response body
// was expected.
type ParseError struct {
	// Provider is the name of the provider that returned the malformed payload.
	Provider string

	// Cause is the underlying decode error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a request that failed validation at the gateway
// boundary, before any upstream contact.
type ValidationError struct {
	// Field is the name of the invalid field.
	Field string

	// Message describes what is invalid about the field.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// ConfigError represents an invalid provider configuration detected during
// client construction.
type ConfigError struct {
	// Provider is the name of the misconfigured provider.
	Provider string

	// Field is the offending configuration field.
	Field string

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q config error (%s): %s", e.Provider, e.Field, e.Message)
}
