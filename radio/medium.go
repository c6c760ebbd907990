package radio

import (
	"sync"
	"time"

	"github.com/nexuslab/tdma/timing"
)

// A Medium is a simulated shared broadcast link. Every write is observed
// exactly once by every attached port, including the writer itself (the
// gateway's self-verification depends on hearing its own broadcast), and
// a message that nobody drains disappears after the medium's TTL.
//
// The medium carries one message at a time: a later write supersedes the
// previous message on every port that has not drained it yet.
type Medium struct {
	mu    sync.Mutex
	clock timing.TimeTeller
	ttl   time.Duration
	ports []*Port
}

// NewMedium creates a Medium that expires messages ttl after their write,
// judged against the given time source.
func NewMedium(clock timing.TimeTeller, ttl time.Duration) *Medium {
	return &Medium{
		clock: clock,
		ttl:   ttl,
	}
}

// Attach adds a node to the medium and returns its endpoint.
func (m *Medium) Attach() *Port {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := &Port{medium: m}
	m.ports = append(m.ports, p)

	return p
}

func (m *Medium) broadcast(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry := m.clock.Now().Add(m.ttl)
	for _, p := range m.ports {
		p.pending = msg
		p.has = true
		p.expiry = expiry
	}
}

// A Port is one node's endpoint on a Medium.
type Port struct {
	medium *Medium

	pending string
	has     bool
	expiry  time.Time
}

// Read drains this port's copy of the current message. An expired message
// reads as empty.
func (p *Port) Read() (string, error) {
	m := p.medium
	m.mu.Lock()
	defer m.mu.Unlock()

	if !p.has {
		return "", nil
	}

	if !m.clock.Now().Before(p.expiry) {
		p.pending = ""
		p.has = false
		return "", nil
	}

	msg := p.pending
	p.pending = ""
	p.has = false

	return msg, nil
}

// Write publishes msg to every attached port.
func (p *Port) Write(msg string) error {
	p.medium.broadcast(msg)
	return nil
}

// Flush is a no-op on the simulated medium.
func (p *Port) Flush() error {
	return nil
}

// Close detaches the port from the medium.
func (p *Port) Close() error {
	m := p.medium
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, q := range m.ports {
		if q == p {
			m.ports = append(m.ports[:i], m.ports[i+1:]...)
			break
		}
	}
	p.has = false

	return nil
}
