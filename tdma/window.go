package tdma

import "time"

// A Window is one full cycle of the protocol. It opens with the sync
// broadcast carrying Start and closes when the gateway observes a slot
// with no traffic. A window is immutable once broadcast; the next window
// supersedes it.
type Window struct {
	Start       time.Time
	SlotLength  time.Duration
	GuardLength time.Duration
}

// SlotStart returns the instant at which the slot owned by identity
// begins. Identity n owns the offset (n-1)*SlotLength from the window
// start; the start instant itself carries the gateway's own sync
// re-verification traffic, which is why transmitters additionally hold
// off for the guard length.
func (w Window) SlotStart(identity int) time.Time {
	return w.Start.Add(time.Duration(identity-1) * w.SlotLength)
}

// TransmitTime returns the instant at which identity may actually
// transmit: its slot start plus the guard interval.
func (w Window) TransmitTime(identity int) time.Time {
	return w.SlotStart(identity).Add(w.GuardLength)
}
