// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"fmt"
	"runtime"
	"time"
)

const (
	// interruptSpinAttempts is how many times a full interrupt pipe is
	// retried with a plain yield, before backing off with sleeps.
	interruptSpinAttempts = 16
	interruptBackoffMin   = 50 * time.Microsecond
	interruptBackoffMax   = 5 * time.Millisecond
)

var interruptByte = [1]byte{1}

// interrupt writes the single byte that accompanies one registration
// request. It retries while the pipe is full, for as long as the monitor is
// running.
func (m *Monitor) interrupt() error {
	for attempt := 0; ; attempt++ {
		if !m.state.IsRunning() {
			return ErrMonitorClosed
		}

		n, err := m.writeInterrupt(interruptByte[:])
		switch {
		case err != nil && isRetryable(err):
			interruptBackoff(attempt)
		case err != nil:
			if !m.state.IsRunning() {
				return ErrMonitorClosed
			}
			return fmt.Errorf("chanmon: interrupt write: %w", err)
		case n == 1:
			return nil
		case n > 1:
			return ErrProtocolViolation
		default:
			interruptBackoff(attempt)
		}
	}
}

func (m *Monitor) writeInterrupt(b []byte) (int, error) {
	if m.hooks != nil && m.hooks.writeInterrupt != nil {
		return m.hooks.writeInterrupt(m.wakeWrite, b)
	}
	return writeFD(m.wakeWrite, b)
}

// wakeup forces a blocked selector wait to return. The byte has no
// registration attached; the drain callback stops consuming once the
// monitor is stopping. A full pipe already guarantees a wake up.
func (m *Monitor) wakeup() {
	_, _ = writeFD(m.wakeWrite, interruptByte[:])
}

// drainInterrupts is the callback of the interrupt pipe's read end. For each
// byte read, it receives exactly one request from the hand-off queue and
// serves it.
func (m *Monitor) drainInterrupts(*Key) {
	for {
		n, err := readFD(m.wakeRead, m.drainBuf[:])
		if n <= 0 {
			if err != nil && !isRetryable(err) {
				m.logger.Err().
					Err(err).
					Log("interrupt pipe read failed")
			}
			return
		}
		for i := 0; i < n; i++ {
			select {
			case r := <-m.pending:
				m.serve(r)
			case <-m.stopping:
				return
			}
		}
	}
}

func interruptBackoff(attempt int) {
	if attempt < interruptSpinAttempts {
		runtime.Gosched()
		return
	}
	d := interruptBackoffMin << min(attempt-interruptSpinAttempts, 8)
	if d > interruptBackoffMax {
		d = interruptBackoffMax
	}
	time.Sleep(d)
}
