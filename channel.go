// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"io"
	"syscall"
)

// Channel is a borrowed, descriptor backed I/O object that may be registered
// with a [Monitor]. It is satisfied by most of the standard library, e.g.
// *net.TCPConn, *net.TCPListener, *net.UnixConn, *net.UDPConn and *os.File.
//
// The caller retains ownership, and remains responsible for closing the
// channel, except that the monitor closes every channel it still tracks when
// it is shut down.
type Channel interface {
	syscall.Conn
	io.Closer
}

// channelFd resolves the descriptor of ch. Any failure to reach the
// descriptor means the channel has been closed.
func channelFd(ch Channel) (int, error) {
	rc, err := ch.SyscallConn()
	if err != nil {
		return -1, closedChannelError(err)
	}
	fd := -1
	if err := rc.Control(func(v uintptr) { fd = int(v) }); err != nil {
		return -1, closedChannelError(err)
	}
	if fd < 0 {
		return -1, ErrChannelClosed
	}
	return fd, nil
}

// channelOpen reports whether ch still refers to the descriptor fd.
func channelOpen(ch Channel, fd int) bool {
	v, err := channelFd(ch)
	return err == nil && v == fd
}

// pipeEnd adapts a raw descriptor owned by the monitor (the interrupt pipe)
// to the Channel interface.
type pipeEnd struct {
	fd int
}

func (p *pipeEnd) SyscallConn() (syscall.RawConn, error) { return p, nil }

func (p *pipeEnd) Control(f func(fd uintptr)) error {
	if p.fd < 0 {
		return ErrChannelClosed
	}
	f(uintptr(p.fd))
	return nil
}

func (p *pipeEnd) Read(func(fd uintptr) bool) error  { return syscall.EOPNOTSUPP }
func (p *pipeEnd) Write(func(fd uintptr) bool) error { return syscall.EOPNOTSUPP }

// Close is a no-op; the interrupt pipe is released by the monitor's
// teardown, after the loop goroutine has exited.
func (p *pipeEnd) Close() error { return nil }
