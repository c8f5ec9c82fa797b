// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-catrate"
)

// Structured log field names.
const (
	logKeyMonitor     = "monitor"
	logKeyFd          = "fd"
	logKeyOps         = "ops"
	logKeyReady       = "ready"
	logKeyConsecutive = "consecutive"
	logKeyPanic       = "panic"
	logKeyClosed      = "closed"
)

// newWaitErrorLimiter builds the limiter for wait error logs. The catrate
// package panics on invalid rates, which is converted to an error.
func newWaitErrorLimiter(rates map[time.Duration]int) (limiter *catrate.Limiter, err error) {
	if len(rates) == 0 {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			limiter = nil
			err = invalidArgument("wait error log rates: %v", r)
		}
	}()
	return catrate.NewLimiter(rates), nil
}

// logWaitError records a failed selector wait, subject to the rate limit.
func (m *Monitor) logWaitError(err *WaitError, consecutive int) {
	if _, ok := m.waitErrorLimiter.Allow(err.Error()); !ok {
		return
	}
	m.logger.Warning().
		Uint64(logKeyMonitor, m.id).
		Err(err).
		Int(logKeyConsecutive, consecutive).
		Log("selector wait failed, retrying")
}

// logCallbackPanic records a panic recovered from a readiness callback.
func (m *Monitor) logCallbackPanic(k *Key, r any) {
	m.logger.Err().
		Uint64(logKeyMonitor, m.id).
		Int(logKeyFd, k.fd).
		Stringer(logKeyReady, k.Ready()).
		Str(logKeyPanic, fmt.Sprint(r)).
		Log("readiness callback panicked")
}
