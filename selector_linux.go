// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux

package chanmon

import (
	"golang.org/x/sys/unix"
)

// selector is the epoll (Linux) readiness multiplexer. Level triggered.
type selector struct {
	epfd   int
	events []unix.EpollEvent
}

func newSelector(maxEvents int) (*selector, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &selector{
		epfd:   epfd,
		events: make([]unix.EpollEvent, maxEvents),
	}, nil
}

// update moves fd from the old interest set to ops. An empty set removes the
// descriptor entirely, since epoll always reports EPOLLHUP and EPOLLERR.
func (s *selector) update(fd int, old, ops Ops) error {
	switch {
	case ops == 0:
		if old == 0 {
			return nil
		}
		err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		if err == unix.ENOENT || err == unix.EBADF {
			return nil
		}
		return err

	case old == 0:
		ev := unix.EpollEvent{Events: opsToEpoll(ops), Fd: int32(fd)}
		err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
		if err == unix.EEXIST {
			err = unix.EpollCtl(s.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
		}
		return err

	default:
		ev := unix.EpollEvent{Events: opsToEpoll(ops), Fd: int32(fd)}
		err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
		if err == unix.ENOENT {
			err = unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
		}
		return err
	}
}

// wait blocks for up to timeoutMs (forever if negative). EINTR is reported
// as zero events.
func (s *selector) wait(timeoutMs int) (int, error) {
	n, err := unix.EpollWait(s.epfd, s.events, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (s *selector) event(i int) (fd int, readable, writable, failed bool) {
	ev := &s.events[i]
	fd = int(ev.Fd)
	readable = ev.Events&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0
	writable = ev.Events&unix.EPOLLOUT != 0
	failed = ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0
	return
}

func (s *selector) close() error {
	return unix.Close(s.epfd)
}

func opsToEpoll(ops Ops) uint32 {
	var events uint32
	if ops.readable() {
		events |= unix.EPOLLIN
	}
	if ops.writable() {
		events |= unix.EPOLLOUT
	}
	return events
}
