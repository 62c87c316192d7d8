package routing

import (
	"errors"
	"fmt"

	"github.com/polyglot-hub/llm-router/providers"
)

// ErrorKind categorizes terminal routing errors so callers can decide
// whether to retry, reconfigure, or abort.
type ErrorKind string

const (
	// KindNoProvidersAvailable: scoring found zero reachable candidates
	KindNoProvidersAvailable ErrorKind = "no_providers_available"

	// KindProviderNotFound: named provider absent from the registry.
	// A configuration error; it will not self-resolve.
	KindProviderNotFound ErrorKind = "provider_not_found"

	// KindProviderUnavailable: an explicitly preferred provider failed its
	// connectivity probe. Fatal, since the preference path has no fallback.
	KindProviderUnavailable ErrorKind = "provider_unavailable"

	// KindNoVisionProvider: the vision path exhausted its candidate list
	KindNoVisionProvider ErrorKind = "no_vision_provider"

	// KindAllProvidersFailed: fallback traversal exhausted every candidate.
	// Marked retryable: a later attempt with fresh connectivity may succeed.
	KindAllProvidersFailed ErrorKind = "all_providers_failed"

	// KindMissingImage: the vision path was entered without an image
	// payload. A programming-contract violation, surfaced fast.
	KindMissingImage ErrorKind = "missing_image"
)

// RouteError is a terminal routing error carrying enough structure for the
// caller to act on it.
type RouteError struct {
	Kind      ErrorKind
	Message   string
	Retryable bool
	Err       error
}

// Error implements the error interface
func (e *RouteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *RouteError) Unwrap() error {
	return e.Err
}

// Is matches two RouteErrors by kind
func (e *RouteError) Is(target error) bool {
	t, ok := target.(*RouteError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewRouteError creates a new routing error
func NewRouteError(kind ErrorKind, message string, err error) *RouteError {
	return &RouteError{
		Kind:      kind,
		Message:   message,
		Retryable: kind == KindAllProvidersFailed,
		Err:       err,
	}
}

// KindOf extracts the error kind, or "" for non-routing errors
func KindOf(err error) ErrorKind {
	var routeErr *RouteError
	if errors.As(err, &routeErr) {
		return routeErr.Kind
	}
	return ""
}

// IsRetryable reports whether the caller may usefully retry later. Errors
// that escape without a routing kind, such as a provider failure surfaced
// with fallback disabled, carry their own retryability.
func IsRetryable(err error) bool {
	var routeErr *RouteError
	if errors.As(err, &routeErr) {
		return routeErr.Retryable
	}
	return providers.IsRetryable(err)
}
