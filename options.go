// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanmon

import (
	"time"

	"github.com/joeycumines/logiface"
)

// monitorOptions holds configuration options for Monitor creation.
type monitorOptions struct {
	logger            *logiface.Logger[logiface.Event]
	waitErrorLogRates map[time.Duration]int
	hooks             *monitorTestHooks
	maxEvents         int
}

// monitorTestHooks provides injection points for deterministic testing.
type monitorTestHooks struct {
	// pollError, if it returns non-nil, replaces the selector wait for one
	// iteration. Called on the loop goroutine.
	pollError func() error
	// writeInterrupt replaces the interrupt byte write.
	writeInterrupt func(fd int, b []byte) (int, error)
}

// --- Monitor Options ---

// Option configures a Monitor instance.
type Option interface {
	applyMonitor(*monitorOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyMonitorFunc func(*monitorOptions) error
}

func (o *optionImpl) applyMonitor(opts *monitorOptions) error {
	return o.applyMonitorFunc(opts)
}

// WithLogger sets the structured logger. A nil logger (the default)
// disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *monitorOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithWaitErrorLogRates configures the rate limits applied to logging of
// selector wait failures, which the loop retries indefinitely. Limits are
// applied per distinct error message. An empty map disables the limit.
//
// Defaults to 10 per second and 100 per minute.
func WithWaitErrorLogRates(rates map[time.Duration]int) Option {
	return &optionImpl{func(opts *monitorOptions) error {
		opts.waitErrorLogRates = rates
		return nil
	}}
}

// WithMaxEvents sets the number of readiness events retrieved per selector
// wait. Defaults to 256.
func WithMaxEvents(n int) Option {
	return &optionImpl{func(opts *monitorOptions) error {
		if n <= 0 {
			return invalidArgument("max events must be positive, got %d", n)
		}
		opts.maxEvents = n
		return nil
	}}
}

func withTestHooks(hooks *monitorTestHooks) Option {
	return &optionImpl{func(opts *monitorOptions) error {
		opts.hooks = hooks
		return nil
	}}
}

// resolveMonitorOptions applies Option instances to monitorOptions.
func resolveMonitorOptions(opts []Option) (*monitorOptions, error) {
	cfg := &monitorOptions{
		maxEvents: defaultMaxEvents,
		waitErrorLogRates: map[time.Duration]int{
			time.Second: 10,
			time.Minute: 100,
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyMonitor(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
