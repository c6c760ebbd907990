package tdma

import (
	"fmt"
	"time"
)

// Params are the access-scheduling parameters shared by every node on the
// medium. All nodes must run with the same slot and guard lengths; the
// protocol has no way to detect a mismatch at runtime.
type Params struct {
	// SlotLength is the duration of one transmission slot.
	SlotLength time.Duration

	// GuardLength is the idle gap a transmitter inserts after its slot
	// boundary to absorb clock skew and the gateway's re-verification
	// traffic. Must be shorter than SlotLength.
	GuardLength time.Duration

	// TTL is how long a broadcast message stays observable on the medium.
	TTL time.Duration

	// PollInterval is the pause between consecutive reads while waiting
	// for traffic. A pending message is observed within one poll interval.
	PollInterval time.Duration
}

// DefaultParams returns the reference parameters: one-second slots, a
// 100 ms guard, a 100 ms TTL, and a 1 ms poll interval.
func DefaultParams() Params {
	return Params{
		SlotLength:   time.Second,
		GuardLength:  100 * time.Millisecond,
		TTL:          100 * time.Millisecond,
		PollInterval: time.Millisecond,
	}
}

// Validate rejects parameter combinations that cannot yield collision-free
// slots. Misconfiguration must fail at startup, not surface as silent slot
// collisions at runtime.
func (p Params) Validate() error {
	if p.SlotLength <= 0 {
		return fmt.Errorf("%w: slot length must be positive, got %v",
			ErrInvalidParams, p.SlotLength)
	}

	if p.GuardLength <= 0 {
		return fmt.Errorf("%w: guard length must be positive, got %v",
			ErrInvalidParams, p.GuardLength)
	}

	if p.GuardLength >= p.SlotLength {
		return fmt.Errorf("%w: guard length %v must be shorter than slot length %v",
			ErrInvalidParams, p.GuardLength, p.SlotLength)
	}

	if p.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be positive, got %v",
			ErrInvalidParams, p.TTL)
	}

	if p.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive, got %v",
			ErrInvalidParams, p.PollInterval)
	}

	return nil
}
