package radio

import "sync"

// A Loopback is an in-memory Endpoint that reflects every write back to
// its own reader. It models an ideal link: no loss, no expiry, one
// buffered message that the next write supersedes.
type Loopback struct {
	mu      sync.Mutex
	pending string
	has     bool
}

// NewLoopback creates an empty loopback endpoint.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Read drains the pending message, or returns "" when nothing is pending.
func (l *Loopback) Read() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.has {
		return "", nil
	}

	msg := l.pending
	l.pending = ""
	l.has = false

	return msg, nil
}

// Write publishes msg, superseding any pending message.
func (l *Loopback) Write(msg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending = msg
	l.has = true

	return nil
}

// Flush is a no-op on an ideal in-memory link.
func (l *Loopback) Flush() error {
	return nil
}

// Close discards any pending message.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending = ""
	l.has = false

	return nil
}
