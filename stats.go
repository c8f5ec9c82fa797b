// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"sync/atomic"
)

// Stats is a snapshot of a monitor's counters.
//
// Example:
//
//	m, _ := New()
//	...
//	s := m.Stats()
//	fmt.Printf("callbacks=%d wait errors=%d\n", s.Callbacks, s.WaitErrors)
type Stats struct {
	// Registrations counts successful registrations, including updates of
	// an existing key.
	Registrations uint64
	// Rejected counts registrations resolved with an error by the loop
	// goroutine.
	Rejected uint64
	// Callbacks counts readiness callbacks invoked (excluding the interrupt
	// pipe's).
	Callbacks uint64
	// Panics counts callbacks that panicked.
	Panics uint64
	// WaitErrors counts failed selector waits.
	WaitErrors uint64
}

type monitorStats struct {
	registrations atomic.Uint64
	rejected      atomic.Uint64
	callbacks     atomic.Uint64
	panics        atomic.Uint64
	waitErrors    atomic.Uint64
}

// Stats returns a snapshot of the monitor's counters. Safe to call from any
// goroutine.
func (m *Monitor) Stats() Stats {
	return Stats{
		Registrations: m.stats.registrations.Load(),
		Rejected:      m.stats.rejected.Load(),
		Callbacks:     m.stats.callbacks.Load(),
		Panics:        m.stats.panics.Load(),
		WaitErrors:    m.stats.waitErrors.Load(),
	}
}
