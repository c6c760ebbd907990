package timing

import (
	"sync"
	"time"
)

// VirtualClock is a Clock whose time only moves when a sleep is requested
// or when the test advances it explicitly. It lets protocol loops run to
// completion instantly and deterministically.
type VirtualClock struct {
	mu  *sync.Mutex
	now *time.Time

	skew time.Duration
}

// NewVirtualClock creates a VirtualClock starting at the given instant.
func NewVirtualClock(start time.Time) *VirtualClock {
	now := start
	return &VirtualClock{
		mu:  &sync.Mutex{},
		now: &now,
	}
}

// Now returns the virtual time, shifted by the skew of this view.
func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now.Add(c.skew)
}

// Sleep advances the virtual time by d without blocking.
func (c *VirtualClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	*c.now = c.now.Add(d)
}

// SleepUntil jumps the virtual time to the deadline. A deadline in the
// past leaves the clock untouched, matching the wall-clock behavior.
func (c *VirtualClock) SleepUntil(deadline time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	local := deadline.Add(-c.skew)
	if local.After(*c.now) {
		*c.now = local
	}
}

// Advance moves the virtual time forward by d. It is the test-side
// counterpart of Sleep.
func (c *VirtualClock) Advance(d time.Duration) {
	c.Sleep(d)
}

// WithSkew derives a view of the same underlying clock whose readings are
// offset by d. Sleeping on any view advances all views together, so a
// skewed view models a node whose wall clock disagrees with its peers.
func (c *VirtualClock) WithSkew(d time.Duration) *VirtualClock {
	return &VirtualClock{
		mu:   c.mu,
		now:  c.now,
		skew: c.skew + d,
	}
}
