package ais

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials means no provider API key is configured.
	ErrMissingCredentials = errors.New("ais provider credentials are not configured")
	// ErrNoData means the provider answered without a usable vessel record.
	ErrNoData = errors.New("ais provider returned no usable data")
	// ErrRateLimited means the local quota or the provider refused the call.
	ErrRateLimited = errors.New("ais provider rate limit reached")
)

// StatusError is a non-2xx provider response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ais provider returned status %d", e.StatusCode)
}
