package config

import (
	"errors"
	"fmt"
)

var (
	ErrOutputNotCSV     = errors.New("output path must end in .csv")
	ErrInvalidPageStart = errors.New("page start must be at least 1")
	ErrInvalidPageStop  = errors.New("page stop must be after page start")
	ErrInvalidSleep     = errors.New("sleep must not be negative")
	ErrInvalidTimeout   = errors.New("timeout must be positive")
	ErrUnknownBackend   = errors.New("unknown automation backend")
	ErrUnknownSink      = errors.New("unknown sink")
)

// ValidationError reports an invocation parameter rejected before any
// navigation takes place.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
