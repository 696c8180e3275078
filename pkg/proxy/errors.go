package proxy

import (
	"errors"
	"fmt"

	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/proxy/types"
	"mercator-hq/ganymede/pkg/routing"
)

// HandleError converts the gateway's error taxonomy to OpenAI-compatible
// error responses. Resolution failures map to 404-class responses, boundary
// validation to 400, exhausted retries and upstream failures to gateway
// errors, and anything unknown to a generic 500 without leaking internals.
//
// Example usage:
//
//	if err != nil {
//	    errResp := HandleError(err)
//	    WriteErrorResponse(w, errResp)
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var aliasErr *routing.AliasNotFoundError
	if errors.As(err, &aliasErr) {
		return types.NewNotFoundError(
			fmt.Sprintf("The model %q does not exist or is not available.", aliasErr.Alias),
			"model",
			types.CodeModelNotFound,
		)
	}

	var clientErr *routing.ClientNotFoundError
	if errors.As(err, &clientErr) {
		return types.NewNotFoundError(
			fmt.Sprintf("The provider %q is no longer available.", clientErr.Provider),
			"model",
			types.CodeProviderUnavailable,
		)
	}

	var retriesErr *routing.MaxRetriesExceededError
	if errors.As(err, &retriesErr) {
		return types.NewBadGatewayError(
			fmt.Sprintf("Completion failed after %d attempt(s).", retriesErr.Attempts),
		)
	}

	var validationErr *providers.ValidationError
	if errors.As(err, &validationErr) {
		return types.NewInvalidRequestError(
			validationErr.Message,
			validationErr.Field,
			types.CodeInvalidValue,
		)
	}

	var upstreamErr *providers.UpstreamError
	if errors.As(err, &upstreamErr) {
		return handleUpstreamError(upstreamErr)
	}

	var parseErr *providers.ParseError
	if errors.As(err, &parseErr) {
		return types.NewBadGatewayError(
			fmt.Sprintf("Provider %q returned an unparseable response.", parseErr.Provider),
		)
	}

	return types.NewServerError(
		"An internal error occurred. Please try again later.",
	)
}

// handleUpstreamError maps upstream HTTP statuses to error responses.
func handleUpstreamError(err *providers.UpstreamError) *types.ErrorResponse {
	switch {
	case err.StatusCode >= 500 || err.StatusCode == 0:
		return types.NewBadGatewayError(
			fmt.Sprintf("Provider error (%s): %s", err.Provider, err.Message),
		)
	case err.StatusCode == 429:
		return types.NewErrorResponse(
			fmt.Sprintf("Provider rate limit exceeded (%s).", err.Provider),
			types.ErrorTypeRateLimitExceeded,
			"",
			"rate_limit_exceeded",
		)
	case err.StatusCode == 404:
		return types.NewNotFoundError(
			fmt.Sprintf("Model not found upstream (%s).", err.Provider),
			"model",
			types.CodeModelNotFound,
		)
	default:
		return types.NewInvalidRequestError(
			fmt.Sprintf("Invalid request to provider (%s): %s", err.Provider, err.Message),
			"",
			types.CodeInvalidValue,
		)
	}
}
