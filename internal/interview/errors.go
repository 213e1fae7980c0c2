package interview

import (
	"errors"
	"fmt"
)

// ErrUnauthorized means no user identity could be resolved for the request.
var ErrUnauthorized = errors.New("unauthorized: missing user identity")

// ErrMessageRequired means the request carried no message content.
var ErrMessageRequired = errors.New("message required")

// StoreError wraps a durable-store failure with the store and operation
// that produced it. Full detail stays server-side.
type StoreError struct {
	Store string
	Op    string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store %s failed: %v", e.Store, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// GenerationError wraps a hard model-backend failure. Degraded but
// parseable responses are not errors; see the brain package.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("reply generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
