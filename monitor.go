// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"context"
	"sync/atomic"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// Monitor is a single goroutine readiness multiplexer.
//
// The selector, and all key state, is owned by a dedicated loop goroutine,
// locked to its OS thread. Other goroutines register channels by writing one
// byte to an interrupt pipe, which wakes the loop, then handing the request
// over an unbuffered channel. Every callback runs on the loop goroutine.
type Monitor struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	logger           *logiface.Logger[logiface.Event]
	waitErrorLimiter *catrate.Limiter
	hooks            *monitorTestHooks

	state monitorState

	sel      *selector
	keys     map[int]*Key // loop goroutine only
	selected []*Key       // loop goroutine only
	pass     uint64       // loop goroutine only

	// Interrupt pipe
	wakeRead  int
	wakeWrite int
	wakeKey   *Key
	drainBuf  [64]byte

	// pending is the registration hand-off queue (unbuffered).
	pending chan *registration

	// stopping is closed by Close, loopDone when the loop goroutine exits,
	// stopped once teardown has completed.
	stopping    chan struct{}
	loopDone    chan struct{}
	stopped     chan struct{}
	teardownErr error

	loopGoroutineID atomic.Uint64

	stats monitorStats

	id uint64
}

var monitorIDCounter atomic.Uint64

// New creates a monitor and starts its loop goroutine. The monitor accepts
// registrations until Close is called.
func New(opts ...Option) (*Monitor, error) {
	cfg, err := resolveMonitorOptions(opts)
	if err != nil {
		return nil, err
	}

	limiter, err := newWaitErrorLimiter(cfg.waitErrorLogRates)
	if err != nil {
		return nil, err
	}

	wakeRead, wakeWrite, err := createWakePipe()
	if err != nil {
		return nil, err
	}

	sel, err := newSelector(cfg.maxEvents)
	if err != nil {
		_ = closeFD(wakeRead)
		_ = closeFD(wakeWrite)
		return nil, err
	}

	m := &Monitor{
		id:               monitorIDCounter.Add(1),
		logger:           cfg.logger,
		waitErrorLimiter: limiter,
		hooks:            cfg.hooks,
		sel:              sel,
		keys:             make(map[int]*Key),
		wakeRead:         wakeRead,
		wakeWrite:        wakeWrite,
		pending:          make(chan *registration),
		stopping:         make(chan struct{}),
		loopDone:         make(chan struct{}),
		stopped:          make(chan struct{}),
	}

	// Register the interrupt pipe directly, the loop isn't running yet.
	m.wakeKey = &Key{
		monitor:  m,
		channel:  &pipeEnd{fd: wakeRead},
		callback: m.drainInterrupts,
		fd:       wakeRead,
		internal: true,
	}
	if err := m.applyInterest(m.wakeKey, OpRead); err != nil {
		_ = sel.close()
		_ = closeFD(wakeRead)
		_ = closeFD(wakeWrite)
		return nil, err
	}
	m.keys[wakeRead] = m.wakeKey

	go m.run()

	return m, nil
}

// Register registers ch with the given interest, and returns its key once
// the loop goroutine has performed the registration. fn is invoked on the
// loop goroutine every time the channel is ready for an operation in the
// interest set, until the interest is changed or the key is cancelled.
//
// If ch is already registered, its interest and callback are replaced, and
// the existing key is returned.
//
// Returns [ErrMonitorClosed] if the monitor is stopping, or an error matching
// [ErrChannelClosed] if ch was closed. On error, no callback will be invoked.
// Register may be called from any goroutine, including from a callback.
func (m *Monitor) Register(ch Channel, ops Ops, fn Callback) (*Key, error) {
	if ch == nil {
		return nil, invalidArgument("nil channel")
	}
	if fn == nil {
		return nil, invalidArgument("nil callback")
	}
	if !ops.valid() {
		return nil, invalidArgument("unknown ops %#x", uint32(ops))
	}

	if !m.state.IsRunning() {
		return nil, ErrMonitorClosed
	}

	// The hand-off would deadlock: the loop goroutine is the receiver.
	if m.IsLoopGoroutine() {
		return m.registerKey(ch, ops, fn)
	}

	if err := m.interrupt(); err != nil {
		return nil, err
	}

	if !m.state.IsRunning() {
		return nil, ErrMonitorClosed
	}

	r := newRegistration(ch, ops, fn)
	select {
	case m.pending <- r:
	case <-m.stopping:
		return nil, ErrMonitorClosed
	}

	return r.result.await()
}

// Wait blocks until ch is ready for one of ops, then returns its key, with
// the interest disarmed. The callback fires at most once per call, no matter
// how long the channel remains ready; call Wait again to observe further
// readiness.
//
// Concurrent Wait or Register calls for the same channel replace each
// other's callback (there is one key per channel).
//
// Wait blocks, so it must not be called from a callback: it returns
// [ErrLoopGoroutine] on the loop goroutine. Use Register there instead.
func (m *Monitor) Wait(ch Channel, ops Ops) (*Key, error) {
	return m.WaitContext(context.Background(), ch, ops)
}

// WaitContext is Wait, that gives up once ctx is done. The registration
// itself is not cancellable; if ctx ends while the channel is not yet ready,
// the key is cancelled and ctx.Err() returned.
func (m *Monitor) WaitContext(ctx context.Context, ch Channel, ops Ops) (*Key, error) {
	// Only the loop goroutine can resolve the wait.
	if m.IsLoopGoroutine() {
		return nil, ErrLoopGoroutine
	}

	fired := newCompletion()
	key, err := m.Register(ch, ops, func(k *Key) {
		if k.IsValid() {
			_ = k.SetInterest(0) // stop listening
		}
		fired.resolve(k, nil)
	})
	if err != nil {
		return nil, err
	}

	select {
	case <-fired.done:
	case <-ctx.Done():
		if fired.resolve(nil, ctx.Err()) {
			key.Cancel()
		}
	case <-m.loopDone:
		// no callback can fire once the loop goroutine has exited
		fired.resolve(nil, ErrMonitorClosed)
	}

	return fired.await()
}

// IsLoopGoroutine reports whether the caller is the monitor's loop
// goroutine, i.e. is running inside a callback.
func (m *Monitor) IsLoopGoroutine() bool {
	id := m.loopGoroutineID.Load()
	return id != 0 && id == getGoroutineID()
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	return m.state.Load()
}
