package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"tripwise/models"
)

var (
	ErrMissingKey    = errors.New("no API key")
	ErrEmptyResponse = errors.New("empty response")
)

// ErrorKind classifies why a provider produced nothing.
type ErrorKind string

const (
	KindMissingKey ErrorKind = "missing_key"
	KindNetwork    ErrorKind = "network"
	KindTimeout    ErrorKind = "timeout"
	KindRateLimit  ErrorKind = "rate_limit"
	KindAuth       ErrorKind = "auth"
	KindBadRequest ErrorKind = "bad_request"
	KindEmpty      ErrorKind = "empty"
	KindUnknown    ErrorKind = "unknown"
)

// ProviderError is returned by every adapter call that fails.
type ProviderError struct {
	Provider models.Provider
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindOf returns the kind of a ProviderError anywhere in err's chain.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

func providerErr(p models.Provider, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: p, Kind: kind, Err: err}
}

// kindForStatus maps an HTTP status to an error kind.
func kindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimit
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindTimeout
	case code >= 400 && code < 500:
		return KindBadRequest
	case code >= 500:
		return KindNetwork
	}
	return KindUnknown
}

// kindForTransport classifies errors that carry no HTTP status.
func kindForTransport(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	return KindUnknown
}
