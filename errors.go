// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrMonitorClosed is returned by registration attempts once Close has
	// been called, including requests that were in flight at the time.
	ErrMonitorClosed = errors.New("chanmon: monitor closed")

	// ErrChannelClosed is returned when registering, or changing the interest
	// of, a channel that its owner has already closed.
	ErrChannelClosed = errors.New("chanmon: channel closed")

	// ErrProtocolViolation is returned if a single write to the interrupt
	// pipe consumed more than the one byte it was given.
	ErrProtocolViolation = errors.New("chanmon: interrupt write consumed more than one byte")

	// ErrNotLoopGoroutine is returned by operations that may only be
	// performed from within a callback, when called from anywhere else.
	ErrNotLoopGoroutine = errors.New("chanmon: not called from the loop goroutine")

	// ErrLoopGoroutine is returned by blocking operations called from within
	// a callback, which would otherwise deadlock the loop goroutine.
	ErrLoopGoroutine = errors.New("chanmon: blocking call from the loop goroutine")

	// ErrKeyCancelled is returned when operating on a cancelled key.
	ErrKeyCancelled = errors.New("chanmon: key cancelled")

	// ErrInvalidArgument is wrapped by errors describing bad input.
	ErrInvalidArgument = errors.New("chanmon: invalid argument")
)

// WaitError wraps a failure of the selector's blocking wait. The loop logs
// these and keeps running.
type WaitError struct {
	Err error
}

// Error implements the error interface.
func (e *WaitError) Error() string {
	if e.Err == nil {
		return "chanmon: selector wait failed"
	}
	return "chanmon: selector wait failed: " + e.Err.Error()
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *WaitError) Unwrap() error {
	return e.Err
}

// closedChannelError wraps cause such that errors.Is matches both
// ErrChannelClosed and the cause.
func closedChannelError(cause error) error {
	if cause == nil || errors.Is(cause, ErrChannelClosed) {
		return ErrChannelClosed
	}
	return fmt.Errorf("%w: %w", ErrChannelClosed, cause)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
