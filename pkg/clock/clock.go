// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0
// Adapted from bureau lib/clock.

// Package clock abstracts time so that expiry, sweeps and escalation
// timers can be driven deterministically in tests.
package clock

import "time"

// Clock is injected wherever production code would otherwise call
// time.Now, time.NewTicker or time.AfterFunc directly.
type Clock interface {
	Now() time.Time

	// NewTicker delivers ticks on the returned Ticker's C channel every d.
	// Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker

	// AfterFunc calls f once d has elapsed. The returned Timer can cancel
	// the pending call.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Ticker delivers periodic ticks. C has capacity 1; ticks are dropped
// when the consumer falls behind.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. C is not closed.
func (t *Ticker) Stop() { t.stopFunc() }

// Timer is a pending AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. It reports whether the call
// stopped the timer.
func (t *Timer) Stop() bool { return t.stopFunc() }
