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

// Package scheduler implements the timed event scheduler of §4.1: a
// priority-ordered queue of future triggers that supports both
// blocking-wait and non-blocking polling consumers, wakes an external
// driver when the earliest event changes, and is safe under concurrent
// producer/consumer access.
package scheduler

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"

	"weathercore/pkg/logger"
)

// flagPollInterval bounds how long WaitNext can block on an empty queue (or
// on a still-future due time) before re-checking the running flag, so a
// shutdown is always noticed promptly even if nothing ever calls Add again.
const flagPollInterval = 200 * time.Millisecond

// Scheduler owns the time-ordered event queue. The zero value is not
// usable; construct with New.
type Scheduler struct {
	mu       sync.Mutex
	queue    eventHeap
	wakeup   func()
	notifyCh chan struct{}

	now func() time.Time
	log *logger.Logger
}

// New returns an empty Scheduler using the real wall clock.
func New() *Scheduler {
	return NewWithClock(time.Now)
}

// NewWithClock is New, but lets tests inject a deterministic clock (per the
// design notes' "an implementation should inject the clock to enable
// deterministic tests").
func NewWithClock(now func() time.Time) *Scheduler {
	return &Scheduler{
		notifyCh: make(chan struct{}),
		now:      now,
		log:      logger.New("Scheduler"),
	}
}

func localSeconds(t time.Time) time.Time {
	return t.Local().Truncate(time.Second)
}

// notifyLocked closes the current notify channel (waking anyone selecting
// on it) and replaces it, while s.mu is held.
func (s *Scheduler) notifyLocked() {
	close(s.notifyCh)
	s.notifyCh = make(chan struct{})
}

// Add inserts event. If the queue was empty, or event becomes the new
// earliest, the wakeup callback (if any) fires exactly once, asynchronously
// from this call's critical section. All waiters are notified regardless,
// so they can re-evaluate their predicate.
func (s *Scheduler) Add(event ScheduledEvent) {
	s.mu.Lock()
	wasEmpty := s.queue.Len() == 0
	var prevMin time.Time
	if !wasEmpty {
		prevMin = s.queue[0].When
	}

	heap.Push(&s.queue, &event)

	becameEarlier := wasEmpty || s.queue[0].When.Before(prevMin)
	wakeupFn := s.wakeup
	s.notifyLocked()
	s.mu.Unlock()

	if becameEarlier && wakeupFn != nil {
		go wakeupFn()
	}
}

// Clear drains the queue. If it was non-empty, the wakeup fires and waiters
// are notified using the same out-of-lock discipline as Add.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	wasEmpty := s.queue.Len() == 0
	s.queue = nil
	wakeupFn := s.wakeup
	s.notifyLocked()
	s.mu.Unlock()

	if !wasEmpty && wakeupFn != nil {
		go wakeupFn()
	}
}

// PeekNextTime returns a copy of the minimum's due time, or false if empty.
func (s *Scheduler) PeekNextTime() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return time.Time{}, false
	}
	return s.queue[0].When, true
}

// SetWakeup installs or replaces the wakeup callback. The call is
// serialized with Add/Clear/fires via the scheduler's mutex.
func (s *Scheduler) SetWakeup(fn func()) {
	s.mu.Lock()
	s.wakeup = fn
	s.mu.Unlock()
}

// WaitNext blocks until the earliest event is due, running is flipped
// false, or a new earlier event arrives. If running is already false, it
// returns immediately. It never fails; a nil return means shutdown was
// observed before any event came due.
func (s *Scheduler) WaitNext(running *atomic.Bool) (*ScheduledEvent, bool) {
	for {
		if !running.Load() {
			return nil, false
		}

		s.mu.Lock()
		if s.queue.Len() > 0 {
			due := s.queue[0].When
			now := localSeconds(s.now())
			if !due.After(now) {
				ev := heap.Pop(&s.queue).(*ScheduledEvent)
				s.mu.Unlock()
				return ev, true
			}

			wait := due.Sub(now)
			if wait > flagPollInterval {
				wait = flagPollInterval
			}
			ch := s.notifyCh
			s.mu.Unlock()
			s.sleep(wait, ch)
			continue
		}

		ch := s.notifyCh
		s.mu.Unlock()
		s.sleep(flagPollInterval, ch)
	}
}

func (s *Scheduler) sleep(d time.Duration, notified <-chan struct{}) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-notified:
	}
}

// PollNext is WaitNext's non-blocking counterpart: if the earliest event is
// due, pop and return it; otherwise return absent immediately.
func (s *Scheduler) PollNext(running *atomic.Bool) (*ScheduledEvent, bool) {
	if !running.Load() {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return nil, false
	}
	due := s.queue[0].When
	now := localSeconds(s.now())
	if due.After(now) {
		return nil, false
	}
	ev := heap.Pop(&s.queue).(*ScheduledEvent)
	return ev, true
}
