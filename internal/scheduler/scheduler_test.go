// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysRunning() *atomic.Bool {
	var b atomic.Bool
	b.Store(true)
	return &b
}

// S1: an event 50ms out (truncated to whole seconds, as the scheduler
// compares) is returned by WaitNext and its trigger is invokable.
func TestWaitNext_ReturnsDueEvent(t *testing.T) {
	s := New()
	running := alwaysRunning()

	fired := make(chan struct{}, 1)
	start := time.Now()
	s.Add(ScheduledEvent{
		When:    localSeconds(start.Add(50 * time.Millisecond)),
		Trigger: func() { fired <- struct{}{} },
	})

	ev, ok := s.WaitNext(running)
	require.True(t, ok)
	ev.Trigger()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("trigger was never invoked")
	}
}

// P1: events are delivered non-decreasing in When.
func TestWaitNext_OrdersByWhen(t *testing.T) {
	s := New()
	running := alwaysRunning()

	now := time.Now()
	s.Add(ScheduledEvent{When: localSeconds(now.Add(300 * time.Millisecond))})
	s.Add(ScheduledEvent{When: localSeconds(now.Add(100 * time.Millisecond))})
	s.Add(ScheduledEvent{When: localSeconds(now.Add(200 * time.Millisecond))})

	var prev time.Time
	for i := 0; i < 3; i++ {
		ev, ok := s.WaitNext(running)
		require.True(t, ok)
		assert.True(t, !ev.When.Before(prev))
		prev = ev.When
	}
}

// S2: a later-added but earlier-due event fires the wakeup exactly once and
// is delivered before the originally-scheduled one.
func TestAdd_WakesOnNewEarlierMinimum(t *testing.T) {
	s := New()
	running := alwaysRunning()

	now := time.Now()
	s.Add(ScheduledEvent{When: localSeconds(now.Add(10 * time.Second))})

	var wakeups atomic.Int32
	wakeCh := make(chan struct{}, 1)
	s.SetWakeup(func() {
		wakeups.Add(1)
		wakeCh <- struct{}{}
	})

	s.Add(ScheduledEvent{When: localSeconds(now.Add(100 * time.Millisecond))})

	select {
	case <-wakeCh:
	case <-time.After(time.Second):
		t.Fatal("wakeup never fired")
	}
	assert.Equal(t, int32(1), wakeups.Load())

	ev, ok := s.WaitNext(running)
	require.True(t, ok)
	assert.WithinDuration(t, localSeconds(now.Add(100*time.Millisecond)), ev.When, time.Second)
}

// P2: Clear empties the queue.
func TestClear_EmptiesQueue(t *testing.T) {
	s := New()
	s.Add(ScheduledEvent{When: time.Now().Add(time.Hour)})
	s.Clear()

	_, ok := s.PeekNextTime()
	assert.False(t, ok)
}

// Flipping running to false causes a blocked WaitNext to return promptly.
func TestWaitNext_ShutdownUnblocks(t *testing.T) {
	s := New()
	var running atomic.Bool
	running.Store(true)

	s.Add(ScheduledEvent{When: time.Now().Add(time.Hour)})

	done := make(chan bool, 1)
	go func() {
		_, ok := s.WaitNext(&running)
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	running.Store(false)

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitNext did not unblock on shutdown")
	}
}

func TestWaitNext_AlreadyStopped(t *testing.T) {
	s := New()
	var running atomic.Bool
	ev, ok := s.WaitNext(&running)
	assert.False(t, ok)
	assert.Nil(t, ev)
}

func TestPollNext_NonBlocking(t *testing.T) {
	s := New()
	running := alwaysRunning()

	_, ok := s.PollNext(running)
	assert.False(t, ok)

	s.Add(ScheduledEvent{When: time.Now().Add(-time.Second)})
	ev, ok := s.PollNext(running)
	require.True(t, ok)
	assert.NotNil(t, ev)

	_, ok = s.PollNext(running)
	assert.False(t, ok)
}

func TestPollNext_FutureEventNotDue(t *testing.T) {
	s := New()
	running := alwaysRunning()
	s.Add(ScheduledEvent{When: time.Now().Add(time.Hour)})

	_, ok := s.PollNext(running)
	assert.False(t, ok)
}

// NewWithClock lets the due-time comparison be driven deterministically.
func TestWaitNext_InjectedClock(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	var now atomic.Int64
	now.Store(base.Unix())

	s := NewWithClock(func() time.Time {
		return time.Unix(now.Load(), 0)
	})
	running := alwaysRunning()

	s.Add(ScheduledEvent{When: localSeconds(base.Add(5 * time.Second))})

	_, ok := s.PollNext(running)
	assert.False(t, ok, "event 5s in the future should not be due yet")

	now.Store(base.Add(5 * time.Second).Unix())
	ev, ok := s.PollNext(running)
	require.True(t, ok)
	assert.NotNil(t, ev)
}
