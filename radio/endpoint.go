// Package radio provides access to the shared half-duplex virtual link.
// An endpoint carries at most one pending inbound message at a time;
// access to the medium is serialized by the TDMA discipline built on top,
// not by the endpoint itself.
package radio

// An Endpoint is a duplex channel on the shared medium.
//
// Read never blocks: it returns the pending inbound message, or the empty
// string when nothing is pending. A message is delivered at most once.
// Write publishes a new outbound message, superseding any message still
// occupying the medium; Flush commits it.
type Endpoint interface {
	Read() (string, error)
	Write(msg string) error
	Flush() error
	Close() error
}
