// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"runtime"
	"time"
)

const (
	// waitErrorBackoffAfter is the number of consecutive wait failures
	// retried immediately, before the loop starts sleeping between retries.
	waitErrorBackoffAfter = 3
	waitErrorBackoffMax   = 100 * time.Millisecond
)

// run is the loop goroutine.
func (m *Monitor) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	m.loopGoroutineID.Store(getGoroutineID())
	defer m.loopGoroutineID.Store(0)

	defer close(m.loopDone)

	var failures int
	for m.state.IsRunning() {
		n, err := m.poll()
		if err != nil {
			failures++
			m.handleWaitError(err, failures)
			continue
		}
		failures = 0
		if n <= 0 {
			continue // spurious
		}
		m.dispatch(n)
	}
}

// poll blocks until at least one registered channel is ready.
func (m *Monitor) poll() (int, error) {
	if m.hooks != nil && m.hooks.pollError != nil {
		if err := m.hooks.pollError(); err != nil {
			return 0, err
		}
	}
	return m.sel.wait(-1)
}

func (m *Monitor) handleWaitError(err error, consecutive int) {
	werr := &WaitError{Err: err}
	m.stats.waitErrors.Add(1)
	m.logWaitError(werr, consecutive)
	if consecutive > waitErrorBackoffAfter {
		d := time.Millisecond << min(consecutive-waitErrorBackoffAfter-1, 7)
		if d > waitErrorBackoffMax {
			d = waitErrorBackoffMax
		}
		time.Sleep(d)
	}
}

// dispatch collects the keys selected by the last wait, merging multiple
// events per descriptor, then invokes their callbacks in order. Each key is
// removed from the selected set before its callback runs.
func (m *Monitor) dispatch(n int) {
	m.pass++
	m.selected = m.selected[:0]
	for i := 0; i < n; i++ {
		fd, readable, writable, failed := m.sel.event(i)
		k := m.keys[fd]
		if k == nil {
			continue
		}
		ready := readyOps(k.Interest(), readable, writable, failed)
		if ready == 0 {
			continue
		}
		if k.pass != m.pass {
			k.pass = m.pass
			k.ready.Store(0)
			m.selected = append(m.selected, k)
		}
		k.ready.Store(k.ready.Load() | uint32(ready))
	}

	for i := range m.selected {
		k := m.selected[i]
		m.selected[i] = nil
		if k.cancelled.Load() {
			// cancelled off the loop goroutine, or by an earlier callback
			m.deregister(k)
			continue
		}
		m.invoke(k)
	}
	m.selected = m.selected[:0]
}

// invoke runs the callback of k, recovering panics.
func (m *Monitor) invoke(k *Key) {
	defer func() {
		if r := recover(); r != nil {
			m.stats.panics.Add(1)
			m.logCallbackPanic(k, r)
		}
	}()
	if !k.internal {
		m.stats.callbacks.Add(1)
	}
	k.callback(k)
}
