// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
)

// Executor runs teardown work. It is satisfied by *errgroup.Group, from
// golang.org/x/sync, in which case Wait reports the teardown error.
type Executor interface {
	Go(f func() error)
}

// Close stops the monitor. It returns immediately: it flips the running
// state, wakes the loop goroutine, and schedules the teardown on exec. The
// teardown waits for the loop goroutine to exit, closes the channel of every
// key still registered, then closes the interrupt pipe and the selector.
//
// A nil exec runs the teardown on a new goroutine. Only the first call has
// any effect. Registrations in flight resolve with [ErrMonitorClosed].
func (m *Monitor) Close(exec Executor) {
	if !m.state.TryTransition(StateRunning, StateStopping) {
		return
	}
	close(m.stopping)
	m.wakeup()

	if exec == nil {
		go func() { _ = m.teardown() }()
		return
	}
	exec.Go(m.teardown)
}

// Shutdown calls Close, and blocks until the teardown completes or ctx is
// done. It returns the teardown error, which is the same for every caller.
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.Close(nil)
	select {
	case <-m.stopped:
		return m.teardownErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel that is closed once the monitor is fully stopped.
func (m *Monitor) Done() <-chan struct{} {
	return m.stopped
}

func (m *Monitor) teardown() error {
	<-m.loopDone

	var errs []error
	var closed int
	for fd, k := range m.keys {
		delete(m.keys, fd)
		if k.internal {
			continue
		}
		if k.cancelled.Swap(true) {
			continue
		}
		closed++
		if err := k.channel.Close(); err != nil && !isClosedError(err) {
			errs = append(errs, fmt.Errorf("chanmon: close fd %d: %w", fd, err))
		}
	}

	if err := m.sel.close(); err != nil {
		errs = append(errs, fmt.Errorf("chanmon: close selector: %w", err))
	}
	if err := closeFD(m.wakeRead); err != nil {
		errs = append(errs, fmt.Errorf("chanmon: close interrupt pipe: %w", err))
	}
	if err := closeFD(m.wakeWrite); err != nil {
		errs = append(errs, fmt.Errorf("chanmon: close interrupt pipe: %w", err))
	}

	m.teardownErr = errors.Join(errs...)
	m.state.Store(StateStopped)

	if m.teardownErr != nil {
		m.logger.Err().
			Uint64(logKeyMonitor, m.id).
			Int(logKeyClosed, closed).
			Err(m.teardownErr).
			Log("monitor stopped with errors")
	} else {
		m.logger.Debug().
			Uint64(logKeyMonitor, m.id).
			Int(logKeyClosed, closed).
			Log("monitor stopped")
	}

	close(m.stopped)
	return m.teardownErr
}

// isClosedError reports whether err indicates the channel was already
// closed by its owner.
func isClosedError(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed)
}
