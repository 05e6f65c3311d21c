package tracking

import "errors"

var (
	// ErrInvalidArgument is a malformed request, e.g. an empty tracking id.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConfiguration means the resolver cannot reach a tier it needs, such
	// as the remote provider without credentials.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound means every tier was tried and none had an answer.
	ErrNotFound = errors.New("not found")
)
