package orchestrator

import (
	"errors"
	"net/http"

	"provider-balancer/balancer/pkg/providers"
)

// outcome is the classification of one attempt, per §7's taxonomy table.
type outcome struct {
	kind            providers.ErrorKind
	statusCode      int
	failoverEligible bool
	countsUnhealthy bool
	err             error
}

// classifyTransportErr classifies an error returned by Client.Do (no
// response was ever received).
func (o *Orchestrator) classifyTransportErr(err error) outcome {
	var kind providers.ErrorKind
	var timeoutErr *providers.TimeoutError
	switch {
	case errors.As(err, &timeoutErr):
		switch timeoutErr.Phase {
		case "read":
			kind = providers.KindReadTimeout
		case "pool":
			kind = providers.KindPoolTimeout
		default:
			kind = providers.KindConnectTimeout
		}
	default:
		kind = providers.KindConnectionError
	}
	return outcome{
		kind:             kind,
		failoverEligible: o.settings.FailoverErrorKinds[kind],
		countsUnhealthy:  true,
		err:              err,
	}
}

// classifyHTTP classifies a received HTTP response by status code, given
// whether the provider is OAuth-authenticated (changes 401/403 handling).
func (o *Orchestrator) classifyHTTP(status int, isOAuth bool, body []byte, providerName string) outcome {
	kind := providers.ClassifyHTTPStatus(status, isOAuth)
	if kind == "" {
		return outcome{statusCode: status}
	}

	switch kind {
	case providers.KindAuthRequired:
		return outcome{
			kind:             kind,
			statusCode:       status,
			failoverEligible: false,
			countsUnhealthy:  false,
			err:              &providers.AuthorizationRequiredError{Provider: providerName},
		}
	case providers.KindAuthError:
		return outcome{
			kind:             kind,
			statusCode:       status,
			failoverEligible: true,
			countsUnhealthy:  true,
			err:              &providers.AuthError{Provider: providerName, Message: string(body)},
		}
	case providers.KindClientError:
		return outcome{
			kind:             kind,
			statusCode:       status,
			failoverEligible: o.settings.FailoverHTTPCodes[status],
			countsUnhealthy:  o.settings.FailoverHTTPCodes[status],
			err:              &providers.ProviderError{Provider: providerName, StatusCode: status, Message: string(body)},
		}
	default: // rate limit, 5xx family
		eligible := o.settings.FailoverErrorKinds[kind] || o.settings.FailoverHTTPCodes[status]
		return outcome{
			kind:             kind,
			statusCode:       status,
			failoverEligible: eligible,
			countsUnhealthy:  true,
			err:              &providers.ProviderError{Provider: providerName, StatusCode: status, Message: string(body)},
		}
	}
}

// classifyAPIError handles a 2xx response whose body is, in fact, an
// Anthropic-shaped error envelope — always failover-eligible (§7).
func (o *Orchestrator) classifyAPIError(providerName, msg, errKind string) outcome {
	return outcome{
		kind:             providers.KindAPIError,
		statusCode:       http.StatusOK,
		failoverEligible: true,
		countsUnhealthy:  true,
		err:              &providers.ProviderError{Provider: providerName, StatusCode: http.StatusOK, Message: msg},
	}
}

// surfaceStatus maps an outcome to the HTTP status code the orchestrator
// should return to the client once failover is exhausted (§7).
func surfaceStatus(o outcome) int {
	if o.statusCode != 0 {
		return o.statusCode
	}
	switch o.kind {
	case providers.KindReadTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
