package tdma

import "errors"

// Medium-fidelity violations are fatal: they mean the link is not behaving
// as a valid shared medium, so the offending process must terminate rather
// than retry.
var (
	// ErrEchoTimeout reports that a sync broadcast was not observed back on
	// the medium before its TTL elapsed.
	ErrEchoTimeout = errors.New("tdma: sync broadcast not echoed within ttl")

	// ErrResidualMessage reports that the medium still carried a message
	// after the TTL plus guard had passed.
	ErrResidualMessage = errors.New("tdma: message persisted past ttl")

	// ErrInvalidParams reports access parameters that cannot yield
	// collision-free slots.
	ErrInvalidParams = errors.New("tdma: invalid access parameters")
)
