// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"strings"
)

// Ops is a bitmask of readiness operations, used both as the interest set of
// a [Key] and as the set of operations reported ready.
type Ops uint32

const (
	// OpRead indicates the channel is readable.
	OpRead Ops = 1 << iota
	// OpWrite indicates the channel is writable.
	OpWrite
	// OpConnect indicates a pending connect has completed (writable filter).
	OpConnect
	// OpAccept indicates a listener has a connection to accept (readable filter).
	OpAccept

	opsAll = OpRead | OpWrite | OpConnect | OpAccept
)

// String renders the set bits, e.g. "read|write". The empty set is "none".
func (o Ops) String() string {
	if o == 0 {
		return "none"
	}
	var parts []string
	if o&OpRead != 0 {
		parts = append(parts, "read")
	}
	if o&OpWrite != 0 {
		parts = append(parts, "write")
	}
	if o&OpConnect != 0 {
		parts = append(parts, "connect")
	}
	if o&OpAccept != 0 {
		parts = append(parts, "accept")
	}
	if o&^opsAll != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}

// valid reports whether o only contains known bits.
func (o Ops) valid() bool {
	return o&^opsAll == 0
}

// readable reports whether o requires the readable filter.
func (o Ops) readable() bool {
	return o&(OpRead|OpAccept) != 0
}

// writable reports whether o requires the writable filter.
func (o Ops) writable() bool {
	return o&(OpWrite|OpConnect) != 0
}

// readyOps translates the raw readiness reported by the selector into the
// subset of interest that is ready. Error or hangup conditions mark every
// interested op as ready, so the callback observes the failure on its next
// I/O call.
func readyOps(interest Ops, readable, writable, failed bool) Ops {
	if failed {
		return interest
	}
	var ready Ops
	if readable {
		ready |= interest & (OpRead | OpAccept)
	}
	if writable {
		ready |= interest & (OpWrite | OpConnect)
	}
	return ready
}
