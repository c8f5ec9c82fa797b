// Package chanmon provides a single goroutine I/O readiness monitor
// ("reactor"), which lets any number of goroutines register interest in the
// readiness of borrowed channels (sockets, pipes, listeners), and be
// notified on one dedicated goroutine.
//
// # Architecture
//
// A [Monitor] owns a readiness selector (epoll on Linux, kqueue on Darwin)
// that is only ever touched by its loop goroutine, which is locked to an OS
// thread. Registration is a hand-off:
//
//  1. the caller writes exactly one byte to the monitor's interrupt pipe,
//     which wakes the loop if it is blocked in the selector
//  2. the caller sends its request over an unbuffered channel
//  3. the loop, draining the pipe, receives exactly one request per byte,
//     performs the registration, and resolves the caller's result
//
// Readiness callbacks ([Callback]) are invoked synchronously on the loop
// goroutine, one at a time. Any registered channel is level triggered.
//
// # One-shot waits
//
// [Monitor.Wait] registers a callback that disarms the interest on its first
// invocation, and returns the key. It fires once per call.
//
// # Shutdown
//
// [Monitor.Close] flips the monitor to stopping, wakes the loop, and runs the
// teardown on a caller supplied [Executor] (e.g. *errgroup.Group). The
// teardown closes every channel still registered, the interrupt pipe, and the
// selector. [Monitor.Shutdown] is the blocking equivalent.
//
// # Usage
//
//	m, err := chanmon.New(chanmon.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Shutdown(context.Background())
//
//	// blocks until conn is readable
//	if _, err := m.Wait(conn, chanmon.OpRead); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Types
//
//   - [ErrMonitorClosed]: registration after (or racing) Close
//   - [ErrChannelClosed]: the channel was closed by its owner
//   - [ErrProtocolViolation]: the interrupt pipe accounting was broken
//   - [ErrLoopGoroutine]: Wait called from a callback
//   - [WaitError]: a failed selector wait, logged and retried by the loop
package chanmon
