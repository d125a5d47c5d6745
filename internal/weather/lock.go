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

package weather

import (
	"sync"
	"time"
)

// lockPollInterval is the spin-retry granularity for the bounded
// try-acquire helpers below. sync.RWMutex has no native timed lock, so this
// polls TryLock/TryRLock (available since Go 1.18) against a deadline.
const lockPollInterval = time.Millisecond

// tryLockTimeout attempts to acquire mu for writing, giving up once budget
// elapses. Returns whether the lock was obtained.
func tryLockTimeout(mu *sync.RWMutex, budget time.Duration) bool {
	deadline := time.Now().Add(budget)
	for {
		if mu.TryLock() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(lockPollInterval)
	}
}

// tryRLockTimeout is tryLockTimeout's shared-lock counterpart.
func tryRLockTimeout(mu *sync.RWMutex, budget time.Duration) bool {
	deadline := time.Now().Add(budget)
	for {
		if mu.TryRLock() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(lockPollInterval)
	}
}
