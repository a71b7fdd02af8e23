package metadata

import "errors"

var (
	// ErrInvalidMetadata is returned when a metadata document cannot be parsed or is incomplete.
	ErrInvalidMetadata = errors.New("invalid metadata")
	// ErrUnknownExecutionContext is returned when an execution context name is not recognized.
	ErrUnknownExecutionContext = errors.New("unknown execution context")
)
