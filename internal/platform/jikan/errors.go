package jikan

import (
	"errors"
	"fmt"
)

// Sentinel errors for upstream calls. Every failure returned by the client
// wraps exactly one of them.
var (
	ErrUnavailable = errors.New("jikan: upstream unavailable")
	ErrNotFound    = errors.New("jikan: not found")
)

// Error wraps an upstream failure with call context.
type Error struct {
	Endpoint string
	Status   int // 0 when no response was received
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("jikan %s [%d]: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("jikan %s: %v", e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func unavailable(endpoint string, status int, cause error) error {
	if cause == nil {
		return &Error{Endpoint: endpoint, Status: status, Err: ErrUnavailable}
	}
	return &Error{Endpoint: endpoint, Status: status, Err: fmt.Errorf("%w: %w", ErrUnavailable, cause)}
}
