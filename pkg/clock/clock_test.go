// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0
// Adapted from bureau lib/clock.

package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestFakeAdvanceMovesNow(t *testing.T) {
	c := Fake(epoch)
	c.Advance(90 * time.Second)
	assert.Equal(t, epoch.Add(90*time.Second), c.Now())
}

func TestFakeAfterFuncFiresOnceAtDeadline(t *testing.T) {
	c := Fake(epoch)
	var fired atomic.Int32
	var firedAt time.Time
	c.AfterFunc(5*time.Minute, func() {
		fired.Add(1)
		firedAt = c.Now()
	})

	c.Advance(4 * time.Minute)
	assert.Equal(t, int32(0), fired.Load())

	c.Advance(2 * time.Minute)
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, epoch.Add(5*time.Minute), firedAt)

	c.Advance(time.Hour)
	assert.Equal(t, int32(1), fired.Load())
}

func TestFakeTimerStop(t *testing.T) {
	c := Fake(epoch)
	var fired atomic.Bool
	timer := c.AfterFunc(time.Minute, func() { fired.Store(true) })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	c.Advance(time.Hour)
	assert.False(t, fired.Load())
}

func TestFakeCallbacksRunInDeadlineOrder(t *testing.T) {
	c := Fake(epoch)
	var order []int
	c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	c.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	c.Advance(time.Minute)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestFakeTickerDropsMissedTicks(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(time.Minute)
	defer ticker.Stop()

	c.Advance(10 * time.Minute)

	select {
	case tick := <-ticker.C:
		assert.Equal(t, epoch.Add(time.Minute), tick)
	default:
		t.Fatal("expected a tick")
	}
	select {
	case <-ticker.C:
		t.Fatal("ticks beyond channel capacity must be dropped")
	default:
	}
}

func TestFakeBlockUntil(t *testing.T) {
	c := Fake(epoch)
	registered := make(chan struct{})
	go func() {
		c.NewTicker(time.Second)
		close(registered)
	}()

	c.BlockUntil(1)
	<-registered
}

func TestRealClock(t *testing.T) {
	c := Real()
	before := time.Now()
	require.False(t, c.Now().Before(before))

	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real AfterFunc did not fire")
	}
}
