// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build darwin

package chanmon

import (
	"golang.org/x/sys/unix"
)

// selector is the kqueue (Darwin) readiness multiplexer. Read and write are
// separate filters, so a single descriptor may appear twice in one batch;
// the loop merges them per key.
type selector struct {
	kq     int
	events []unix.Kevent_t
}

func newSelector(maxEvents int) (*selector, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(kq)
	return &selector{
		kq:     kq,
		events: make([]unix.Kevent_t, maxEvents),
	}, nil
}

func (s *selector) update(fd int, old, ops Ops) error {
	var del, add []unix.Kevent_t
	filter := func(was, want bool, f int16) {
		switch {
		case was && !want:
			del = append(del, unix.Kevent_t{Ident: uint64(fd), Filter: f, Flags: unix.EV_DELETE})
		case !was && want:
			add = append(add, unix.Kevent_t{Ident: uint64(fd), Filter: f, Flags: unix.EV_ADD | unix.EV_ENABLE})
		}
	}
	filter(old.readable(), ops.readable(), unix.EVFILT_READ)
	filter(old.writable(), ops.writable(), unix.EVFILT_WRITE)

	if len(del) > 0 {
		_, _ = unix.Kevent(s.kq, del, nil, nil) // the descriptor may already be gone
	}
	if len(add) > 0 {
		if _, err := unix.Kevent(s.kq, add, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *selector) wait(timeoutMs int) (int, error) {
	var ts *unix.Timespec
	if timeoutMs >= 0 {
		ts = &unix.Timespec{
			Sec:  int64(timeoutMs / 1000),
			Nsec: int64((timeoutMs % 1000) * 1000000),
		}
	}
	n, err := unix.Kevent(s.kq, nil, s.events, ts)
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
	fd = int(ev.Ident)
	switch ev.Filter {
	case unix.EVFILT_READ:
		readable = true
	case unix.EVFILT_WRITE:
		writable = true
	}
	failed = ev.Flags&unix.EV_ERROR != 0
	return
}

func (s *selector) close() error {
	return unix.Close(s.kq)
}
