package orchestrator

import (
	"errors"
	"fmt"
)

// Configuration failures, surfaced before any network call is attempted.
var (
	ErrNotConfigured  = errors.New("no generation capability configured")
	ErrNotInitialized = errors.New("context not initialized")
	ErrNoBlocks       = errors.New("at least one context block is required")
)

// GenerationError wraps a failed upstream generation call. It is the only
// failure RouteAndRespond propagates once the context guard has passed.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation via %s failed: %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
