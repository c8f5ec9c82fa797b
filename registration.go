// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"sync/atomic"
)

// completion is a single-assignment result slot. It transitions from
// pending to resolved exactly once, with either a key or an error.
type completion struct {
	done     chan struct{}
	key      *Key
	err      error
	resolved atomic.Bool
}

func newCompletion() *completion {
	return &completion{done: make(chan struct{})}
}

// resolve stores the outcome, returning false if the slot was already
// resolved, in which case the arguments are discarded.
func (c *completion) resolve(key *Key, err error) bool {
	if !c.resolved.CompareAndSwap(false, true) {
		return false
	}
	c.key, c.err = key, err
	close(c.done)
	return true
}

// await blocks until resolved.
func (c *completion) await() (*Key, error) {
	<-c.done
	return c.key, c.err
}

// registration is a request handed from a caller to the loop goroutine.
type registration struct {
	channel  Channel
	callback Callback
	result   *completion
	ops      Ops
}

func newRegistration(ch Channel, ops Ops, fn Callback) *registration {
	return &registration{
		channel:  ch,
		callback: fn,
		result:   newCompletion(),
		ops:      ops,
	}
}

// serve performs the registration on the loop goroutine, and resolves its
// slot. Requests received once the monitor is stopping are rejected.
func (m *Monitor) serve(r *registration) {
	if !m.state.IsRunning() {
		m.stats.rejected.Add(1)
		r.result.resolve(nil, ErrMonitorClosed)
		return
	}
	key, err := m.registerKey(r.channel, r.ops, r.callback)
	if err != nil {
		m.stats.rejected.Add(1)
		m.logger.Debug().
			Err(err).
			Stringer(logKeyOps, r.ops).
			Log("registration failed")
		key = nil
	}
	r.result.resolve(key, err)
}
