package provider

import (
	"errors"
	"fmt"
)

// ErrNoCredential is returned by New when no API key is configured.
var ErrNoCredential = errors.New("provider: no API credential configured")

// APIError is a non-2xx reply from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider: status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider: status %d: %s", e.StatusCode, e.Message)
}

// IsAPIError reports whether err carries a provider HTTP error.
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
