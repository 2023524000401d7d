package llmpool

import (
	"errors"
	"fmt"
)

// SDKError is the base error type for all model-access errors.
type SDKError struct {
	Message string
	Cause   error
}

func (e *SDKError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SDKError) Unwrap() error {
	return e.Cause
}

// ProviderError represents an error returned by an LLM provider.
type ProviderError struct {
	SDKError
	Provider   string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s (status=%d)", e.Provider, e.Message, e.StatusCode)
}

// RateLimitError indicates a backend rejected a call because its request
// budget is exhausted. It is the only error the failover chain skips past.
type RateLimitError struct{ ProviderError }

// AuthenticationError indicates an invalid or missing API key.
type AuthenticationError struct{ ProviderError }

// ServerError indicates a provider-side 5xx failure.
type ServerError struct{ ProviderError }

// RequestTimeoutError indicates the provider call timed out.
type RequestTimeoutError struct{ SDKError }

// ConfigurationError indicates the client itself is misconfigured
// (for example an empty failover chain).
type ConfigurationError struct{ SDKError }

// NoObjectGeneratedError indicates a structured-output call produced text
// that does not parse as the requested JSON object.
type NoObjectGeneratedError struct{ SDKError }

// IsRateLimit reports whether err is (or wraps) a rate-limit rejection.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// NewRateLimitError builds a rate-limit rejection for the named backend.
func NewRateLimitError(backend string, message string) *RateLimitError {
	return &RateLimitError{ProviderError: ProviderError{
		SDKError:   SDKError{Message: message},
		Provider:   backend,
		StatusCode: 429,
	}}
}
