package proxy

import (
	"errors"
	"fmt"

	"provider-balancer/balancer/pkg/providers"
	"provider-balancer/balancer/pkg/proxy/types"
)

// HandleError converts an error surfaced by the Request Orchestrator (or
// raised while parsing the inbound request) into an Anthropic-shaped error
// envelope plus the HTTP status code to write it with.
//
// Per §7's propagation rules, messages for provider-originated failures are
// kept generic — no upstream body, header, or credential ever leaks into
// the response written to the client.
func HandleError(err error) (*types.ErrorResponse, int) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return types.NewInvalidRequestError(reqErr.Message), 400
	}

	var valErr *providers.ValidationError
	if errors.As(err, &valErr) {
		return types.NewInvalidRequestError(valErr.Error()), 400
	}

	var noHealthy *providers.NoHealthyProviderError
	if errors.As(err, &noHealthy) {
		return types.NewOverloadedError(noHealthy.Error()), 529
	}

	var authRequired *providers.AuthorizationRequiredError
	if errors.As(err, &authRequired) {
		return types.NewAuthenticationError("provider requires re-authorization"), 401
	}

	var authErr *providers.AuthError
	if errors.As(err, &authErr) {
		return types.NewAuthenticationError("upstream authentication failed"), 401
	}

	var rateLimitErr *providers.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return types.NewRateLimitError("upstream rate limit exceeded"), 429
	}

	var timeoutErr *providers.TimeoutError
	if errors.As(err, &timeoutErr) {
		return types.NewGatewayTimeoutError("upstream request timed out"), 504
	}

	var parseErr *providers.ParseError
	if errors.As(err, &parseErr) {
		return types.NewBadGatewayError("failed to parse upstream response"), 502
	}

	var streamErr *providers.StreamTerminatedError
	if errors.As(err, &streamErr) {
		return types.NewBadGatewayError("upstream stream terminated with an error"), 502
	}

	var classified *providers.ClassifiedError
	if errors.As(err, &classified) {
		return handleClassifiedError(classified)
	}

	var providerErr *providers.ProviderError
	if errors.As(err, &providerErr) {
		return handleProviderError(providerErr)
	}

	var configErr *providers.ConfigError
	if errors.As(err, &configErr) {
		return types.NewServerError("provider misconfigured"), 500
	}

	return types.NewServerError("an internal error occurred. Please try again later."), 500
}

// handleClassifiedError maps a ClassifiedError's ErrorKind to the HTTP
// status a client should see, independent of the upstream's raw status.
func handleClassifiedError(err *providers.ClassifiedError) (*types.ErrorResponse, int) {
	switch err.Kind {
	case providers.KindRateLimit:
		return types.NewRateLimitError("upstream rate limit exceeded"), 429
	case providers.KindAuthRequired, providers.KindAuthError:
		return types.NewAuthenticationError("upstream authentication failed"), 401
	case providers.KindValidation:
		return types.NewInvalidRequestError(err.Error()), 400
	case providers.KindConnectTimeout, providers.KindReadTimeout, providers.KindPoolTimeout, providers.KindGatewayTimeout:
		return types.NewGatewayTimeoutError("upstream request timed out"), 504
	case providers.KindClientError:
		return types.NewInvalidRequestError(fmt.Sprintf("provider %q rejected the request", err.Provider)), 400
	default:
		return types.NewBadGatewayError(fmt.Sprintf("provider %q error", err.Provider)), 502
	}
}

// handleProviderError maps a ProviderError's raw upstream status code to
// the client-facing error envelope.
func handleProviderError(err *providers.ProviderError) (*types.ErrorResponse, int) {
	switch {
	case err.StatusCode == 429:
		return types.NewRateLimitError("upstream rate limit exceeded"), 429
	case err.StatusCode == 401 || err.StatusCode == 403:
		return types.NewAuthenticationError("upstream authentication failed"), 401
	case err.StatusCode == 404:
		return types.NewNotFoundError("requested model not found"), 404
	case err.StatusCode >= 500:
		return types.NewBadGatewayError(fmt.Sprintf("provider %q error", err.Provider)), 502
	case err.StatusCode >= 400:
		return types.NewInvalidRequestError(fmt.Sprintf("provider %q rejected the request", err.Provider)), 400
	default:
		return types.NewServerError(fmt.Sprintf("provider %q error", err.Provider)), 500
	}
}
