// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"sync/atomic"
)

// Callback is invoked on the loop goroutine, with the key of the channel that
// became ready. Callbacks must not block: every other channel registered
// with the same monitor waits for them to return.
type Callback func(key *Key)

// Key associates a channel with a monitor, an interest set, and a callback.
// There is at most one key per channel per monitor; registering a channel
// again updates and returns its existing key.
type Key struct {
	monitor  *Monitor
	channel  Channel
	callback Callback // loop goroutine only
	fd       int

	interest  atomic.Uint32
	ready     atomic.Uint32
	cancelled atomic.Bool

	// pass is the dispatch pass that last selected this key, used to merge
	// multiple events for one descriptor.
	pass uint64

	// internal marks the interrupt pipe's key.
	internal bool
}

// Monitor returns the monitor that produced the key.
func (k *Key) Monitor() *Monitor { return k.monitor }

// Channel returns the registered channel.
func (k *Key) Channel() Channel { return k.channel }

// Fd returns the descriptor the channel had when it was registered.
func (k *Key) Fd() int { return k.fd }

// Interest returns the current interest set.
func (k *Key) Interest() Ops { return Ops(k.interest.Load()) }

// Ready returns the operations that were ready when the callback was last
// invoked.
func (k *Key) Ready() Ops { return Ops(k.ready.Load()) }

// IsValid reports whether the key is usable: it has not been cancelled, the
// monitor has not been stopped, and the channel is still open.
func (k *Key) IsValid() bool {
	return !k.cancelled.Load() &&
		k.monitor.state.Load() != StateStopped &&
		channelOpen(k.channel, k.fd)
}

// SetInterest replaces the interest set. An empty set disarms the key without
// cancelling it; registering the channel again re-arms it.
//
// It may only be called from a callback (the loop goroutine), and returns
// [ErrNotLoopGoroutine] otherwise.
func (k *Key) SetInterest(ops Ops) error {
	m := k.monitor
	if !m.IsLoopGoroutine() {
		return ErrNotLoopGoroutine
	}
	if !ops.valid() {
		return invalidArgument("unknown ops %#x", uint32(ops))
	}
	if k.cancelled.Load() {
		return ErrKeyCancelled
	}
	if !channelOpen(k.channel, k.fd) {
		m.deregister(k)
		return ErrChannelClosed
	}
	return m.applyInterest(k, ops)
}

// Cancel permanently deregisters the key. The channel is not closed. It is
// safe to call from any goroutine; off the loop goroutine, removal from the
// selector happens the next time the loop observes the key. Its callback
// will not be invoked after Cancel returns, unless the callback is running
// concurrently.
func (k *Key) Cancel() {
	if k.internal {
		return
	}
	if k.monitor.IsLoopGoroutine() {
		k.monitor.deregister(k)
		return
	}
	k.cancelled.Store(true)
}
