// Package timing abstracts the time source that the TDMA roles schedule
// against, so that tests can drive the protocol on a virtual clock.
package timing

import "time"

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() time.Time
}

// A Clock is the time capability a protocol loop runs on. All slot math in
// the TDMA protocol assumes the clocks of independent processes are
// synchronized within a bound much smaller than the guard length.
type Clock interface {
	TimeTeller

	// Sleep blocks the calling goroutine for the given duration.
	Sleep(d time.Duration)

	// SleepUntil blocks until the deadline, or returns immediately if the
	// deadline has already passed.
	SleepUntil(deadline time.Time)
}

// WallClock is the Clock backed by the operating system time.
type WallClock struct{}

// NewWallClock returns a Clock backed by the operating system time.
func NewWallClock() WallClock {
	return WallClock{}
}

// Now returns the current wall time.
func (WallClock) Now() time.Time {
	return time.Now()
}

// Sleep pauses the calling goroutine.
func (WallClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// SleepUntil pauses the calling goroutine until the deadline.
func (WallClock) SleepUntil(deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	time.Sleep(d)
}
