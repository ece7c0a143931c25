package dropbox

import (
	"fmt"
)

// ConfigError means the effective configuration is unusable. It is always
// raised before any network activity.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// AuthError means the API rejected the bearer token. Not retryable.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected (status %d): %s", e.StatusCode, e.Body)
}

// APIError covers every other non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// TransientNetworkError wraps a connectivity failure that persisted through
// the bounded retries of the HTTP client.
type TransientNetworkError struct {
	Err error
}

func (e *TransientNetworkError) Error() string {
	return "network error after retries: " + e.Err.Error()
}

func (e *TransientNetworkError) Unwrap() error {
	return e.Err
}
