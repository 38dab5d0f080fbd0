package policy

import "sync/atomic"

// Estop is the process-wide robotics latch of §5: once set, it blocks
// every further robot command until explicitly reset.
type Estop struct {
	active atomic.Bool
}

// Trip sets the latch.
func (e *Estop) Trip() { e.active.Store(true) }

// Reset clears the latch.
func (e *Estop) Reset() { e.active.Store(false) }

// Active reports whether the latch is currently set.
func (e *Estop) Active() bool { return e.active.Load() }
