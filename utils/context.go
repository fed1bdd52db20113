package utils

import (
	"context"
	"time"
)

const (
	// DefaultTimeout bounds most database operations
	DefaultTimeout = 10 * time.Second

	// LongTimeout is for outbound calls that may take longer (OAuth exchange, shutdown)
	LongTimeout = 30 * time.Second
)

// WithTimeout creates a context with the default timeout
func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultTimeout)
}

// WithLongTimeout creates a context for operations that may take longer
func WithLongTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, LongTimeout)
}
