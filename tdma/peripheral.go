package tdma

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nexuslab/tdma/radio"
	"github.com/nexuslab/tdma/timing"
)

// A Peripheral is one contending node on the shared medium. It transmits
// exactly once per window, inside the slot its identity reserves, without
// any coordination beyond the gateway's sync broadcast.
//
// Identity uniqueness is a precondition: two peripherals configured with
// the same identity race on the same slot and the protocol cannot detect
// it.
type Peripheral struct {
	endpoint radio.Endpoint
	clock    timing.Clock
	params   Params
	logger   zerolog.Logger

	identity int
	sequence int
}

// PeripheralBuilder can build peripherals.
type PeripheralBuilder struct {
	endpoint radio.Endpoint
	clock    timing.Clock
	params   Params
	logger   zerolog.Logger
	identity int
}

// MakePeripheralBuilder creates a builder with the default parameters,
// the wall clock, and no logging.
func MakePeripheralBuilder() PeripheralBuilder {
	return PeripheralBuilder{
		clock:  timing.NewWallClock(),
		params: DefaultParams(),
		logger: zerolog.Nop(),
	}
}

// WithEndpoint sets the endpoint on the shared medium.
func (b PeripheralBuilder) WithEndpoint(e radio.Endpoint) PeripheralBuilder {
	b.endpoint = e
	return b
}

// WithClock sets the time source.
func (b PeripheralBuilder) WithClock(c timing.Clock) PeripheralBuilder {
	b.clock = c
	return b
}

// WithParams sets the access-scheduling parameters.
func (b PeripheralBuilder) WithParams(p Params) PeripheralBuilder {
	b.params = p
	return b
}

// WithLogger sets the logger.
func (b PeripheralBuilder) WithLogger(l zerolog.Logger) PeripheralBuilder {
	b.logger = l
	return b
}

// WithIdentity sets the node identity. Identities start at 1 and must be
// unique across every peripheral sharing the medium.
func (b PeripheralBuilder) WithIdentity(id int) PeripheralBuilder {
	b.identity = id
	return b
}

func (b PeripheralBuilder) parametersMustBeValid() {
	if b.endpoint == nil {
		panic("peripheral requires an endpoint")
	}

	if b.identity < 1 {
		panic("peripheral identity must be a positive integer")
	}

	if err := b.params.Validate(); err != nil {
		panic(err)
	}
}

// Build builds the peripheral.
func (b PeripheralBuilder) Build() *Peripheral {
	b.parametersMustBeValid()

	return &Peripheral{
		endpoint: b.endpoint,
		clock:    b.clock,
		params:   b.params,
		logger: b.logger.With().
			Str("role", "peripheral").
			Int("identity", b.identity).
			Logger(),
		identity: b.identity,
	}
}

// Identity returns the node identity.
func (p *Peripheral) Identity() int {
	return p.identity
}

// Sequence returns the number of messages transmitted so far.
func (p *Peripheral) Sequence() int {
	return p.sequence
}

// Run executes transmit cycles until ctx is canceled or the endpoint
// fails.
func (p *Peripheral) Run(ctx context.Context) error {
	for {
		if err := p.RunCycle(ctx); err != nil {
			return err
		}
	}
}

// RunCycle waits for the next sync broadcast, sleeps to this node's slot,
// and transmits one slot message.
func (p *Peripheral) RunCycle(ctx context.Context) error {
	w, err := p.awaitSync(ctx)
	if err != nil {
		return err
	}

	p.clock.SleepUntil(w.SlotStart(p.identity))

	// The window start carries the gateway's own re-verification traffic;
	// hold off for the guard before claiming the slot.
	p.clock.Sleep(p.params.GuardLength)

	return p.transmit(w)
}

// awaitSync polls the medium until a sync broadcast arrives. Anything
// that does not parse as a sync message is discarded: foreign or garbled
// traffic is expected on a shared medium, not an error.
func (p *Peripheral) awaitSync(ctx context.Context) (Window, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Window{}, err
		}

		msg, err := p.endpoint.Read()
		if err != nil {
			return Window{}, err
		}

		if start, ok := ParseSync(msg); ok {
			return Window{
				Start:       start,
				SlotLength:  p.params.SlotLength,
				GuardLength: p.params.GuardLength,
			}, nil
		}

		if msg != "" {
			p.logger.Debug().Str("msg", msg).Msg("discarded non-sync message")
		}

		p.clock.Sleep(p.params.PollInterval)
	}
}

func (p *Peripheral) transmit(w Window) error {
	msg := SlotMessage{Identity: p.identity, Sequence: p.sequence}

	if err := p.endpoint.Write(msg.String()); err != nil {
		return err
	}
	if err := p.endpoint.Flush(); err != nil {
		return err
	}

	p.sequence++

	p.logger.Debug().
		Int64("window_start", w.Start.Unix()).
		Int("sequence", msg.Sequence).
		Msg("transmitted")

	return nil
}
