// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"sync/atomic"
)

// State represents the lifecycle of a [Monitor].
//
// State Machine:
//
//	StateRunning (0) → StateStopping (1)   [Close()]
//	StateStopping (1) → StateStopped (2)   [teardown complete]
//	StateStopped (2) → (terminal)
//
// A monitor is running from the moment New returns.
type State uint32

const (
	// StateRunning indicates the monitor accepts registrations.
	StateRunning State = iota
	// StateStopping indicates Close has been called, but teardown has not
	// finished.
	StateStopping
	// StateStopped indicates every tracked channel, the interrupt pipe and
	// the selector have been closed.
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// monitorState is a lock-free state machine with cache-line padding.
type monitorState struct { // betteralign:ignore
	_ [sizeOfCacheLine]byte     // Cache line padding //nolint:unused
	v atomic.Uint32             // State value
	_ [sizeOfCacheLine - 4]byte // Pad to complete cache line //nolint:unused
}

func (s *monitorState) Load() State {
	return State(s.v.Load())
}

func (s *monitorState) Store(state State) {
	s.v.Store(uint32(state))
}

// TryTransition attempts to atomically transition from one state to another.
// Returns true if the transition was successful.
func (s *monitorState) TryTransition(from, to State) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// IsRunning is the "running" flag checked by every registration attempt and
// by the loop between iterations.
func (s *monitorState) IsRunning() bool {
	return s.Load() == StateRunning
}
