// SPDX-License-Identifier: MIT

package ga

import "sync/atomic"

// Flag is a shared, resettable cancellation token.
//
// The stakeholder communicator sets it to ask the running search to stop at
// its next generation boundary and clears it when a new round begins. Unlike
// a context it can be cleared again.
//
// Cleared returns a channel that receives after every Clear, so a worker
// parked while the flag was set can wake up without polling.
type Flag struct {
	set  atomic.Bool
	wake chan struct{}
}

// NewFlag returns a cleared Flag.
func NewFlag() *Flag {
	return &Flag{wake: make(chan struct{}, 1)}
}

// Set raises the flag. Safe for concurrent use.
func (f *Flag) Set() { f.set.Store(true) }

// Clear lowers the flag and signals Cleared without blocking.
func (f *Flag) Clear() {
	f.set.Store(false)
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// IsSet reports whether the flag is raised. A nil Flag is never set.
func (f *Flag) IsSet() bool {
	if f == nil {
		return false
	}

	return f.set.Load()
}

// Cleared is signalled (at most one pending signal) after each Clear.
func (f *Flag) Cleared() <-chan struct{} { return f.wake }
