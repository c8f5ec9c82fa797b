// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Selector and key table.
//
// The platform specific selector (selector_linux.go, selector_darwin.go)
// provides:
//
//	newSelector(maxEvents int) (*selector, error)
//	(*selector).update(fd int, old, ops Ops) error
//	(*selector).wait(timeoutMs int) (int, error)
//	(*selector).event(i int) (fd int, readable, writable, failed bool)
//	(*selector).close() error
//
// A descriptor is present in the kernel interest list only while its key has
// a non-empty interest set. The key table maps descriptors to keys, and is
// only ever touched by the loop goroutine (or by teardown, after the loop
// goroutine has exited).

package chanmon

import (
	"fmt"
)

// defaultMaxEvents is the size of the selector's event buffer.
const defaultMaxEvents = 256

// registerKey performs a real registration. Must be called on the loop
// goroutine.
func (m *Monitor) registerKey(ch Channel, ops Ops, fn Callback) (*Key, error) {
	fd, err := channelFd(ch)
	if err != nil {
		return nil, err
	}

	if k := m.keys[fd]; k != nil {
		if !k.internal && !k.cancelled.Load() && sameChannel(k.channel, ch) {
			if err := m.applyInterest(k, ops); err != nil {
				return nil, fmt.Errorf("chanmon: register fd %d: %w", fd, err)
			}
			k.callback = fn
			m.stats.registrations.Add(1)
			return k, nil
		}
		if k.internal {
			return nil, invalidArgument("fd %d is owned by the monitor", fd)
		}
		// stale (cancelled, or the descriptor was closed and reused)
		m.deregister(k)
	}

	k := &Key{
		monitor:  m,
		channel:  ch,
		callback: fn,
		fd:       fd,
	}
	if err := m.applyInterest(k, ops); err != nil {
		return nil, fmt.Errorf("chanmon: register fd %d: %w", fd, err)
	}
	m.keys[fd] = k
	m.stats.registrations.Add(1)
	m.logger.Debug().
		Int(logKeyFd, fd).
		Stringer(logKeyOps, ops).
		Log("registered channel")
	return k, nil
}

// applyInterest changes the kernel interest for k, then records it.
func (m *Monitor) applyInterest(k *Key, ops Ops) error {
	old := k.Interest()
	if err := m.sel.update(k.fd, old, ops); err != nil {
		return err
	}
	k.interest.Store(uint32(ops))
	return nil
}

// deregister removes k from the selector and the key table, and marks it
// cancelled. Errors from the selector are ignored, since the descriptor may
// already have been closed, which implicitly removes it.
func (m *Monitor) deregister(k *Key) {
	k.cancelled.Store(true)
	_ = m.sel.update(k.fd, k.Interest(), 0)
	k.interest.Store(0)
	if m.keys[k.fd] == k {
		delete(m.keys, k.fd)
	}
}

// sameChannel compares channel identity without panicking on channels of
// non-comparable dynamic type.
func sameChannel(a, b Channel) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
