package chat

import "errors"

var (
	// ErrInvalidRequest means the prompt was missing or blank.
	ErrInvalidRequest = errors.New("prompt is required")

	// ErrUnauthorized means no identity was attached to the request.
	ErrUnauthorized = errors.New("authentication required")
)
