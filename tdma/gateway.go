package tdma

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nexuslab/tdma/radio"
	"github.com/nexuslab/tdma/timing"
)

// Traffic is one message observed by the gateway during a listen phase.
type Traffic struct {
	Window Window
	Slot   int
	Raw    string

	// Msg is the decoded slot message when Decoded is true. Garbled or
	// foreign traffic still counts as slot activity, it just cannot be
	// attributed to a node.
	Msg     SlotMessage
	Decoded bool

	ReceivedAt time.Time
}

// A WindowReport summarizes one completed window.
type WindowReport struct {
	Window   Window
	Received int
}

// GatewayStatus is a point-in-time snapshot of a running gateway.
type GatewayStatus struct {
	WindowsCompleted int       `json:"windows_completed"`
	MessagesReceived int       `json:"messages_received"`
	LastWindowStart  time.Time `json:"last_window_start"`
	Params           Params    `json:"params"`
}

// A Gateway is the coordinator of the shared medium. Each cycle it
// broadcasts a window start time, verifies its own broadcast loops back
// within the TTL, waits out the TTL plus a guard and confirms the medium
// drained, then listens across the slot sequence until one slot passes
// with no traffic.
type Gateway struct {
	HookableBase

	endpoint radio.Endpoint
	clock    timing.Clock
	params   Params
	logger   zerolog.Logger

	statusLock sync.Mutex
	status     GatewayStatus
}

// GatewayBuilder can build gateways.
type GatewayBuilder struct {
	endpoint radio.Endpoint
	clock    timing.Clock
	params   Params
	logger   zerolog.Logger
}

// MakeGatewayBuilder creates a builder with the default parameters, the
// wall clock, and no logging.
func MakeGatewayBuilder() GatewayBuilder {
	return GatewayBuilder{
		clock:  timing.NewWallClock(),
		params: DefaultParams(),
		logger: zerolog.Nop(),
	}
}

// WithEndpoint sets the endpoint on the shared medium.
func (b GatewayBuilder) WithEndpoint(e radio.Endpoint) GatewayBuilder {
	b.endpoint = e
	return b
}

// WithClock sets the time source.
func (b GatewayBuilder) WithClock(c timing.Clock) GatewayBuilder {
	b.clock = c
	return b
}

// WithParams sets the access-scheduling parameters.
func (b GatewayBuilder) WithParams(p Params) GatewayBuilder {
	b.params = p
	return b
}

// WithLogger sets the logger.
func (b GatewayBuilder) WithLogger(l zerolog.Logger) GatewayBuilder {
	b.logger = l
	return b
}

func (b GatewayBuilder) parametersMustBeValid() {
	if b.endpoint == nil {
		panic("gateway requires an endpoint")
	}

	if err := b.params.Validate(); err != nil {
		panic(err)
	}
}

// Build builds the gateway.
func (b GatewayBuilder) Build() *Gateway {
	b.parametersMustBeValid()

	return &Gateway{
		endpoint: b.endpoint,
		clock:    b.clock,
		params:   b.params,
		logger:   b.logger.With().Str("role", "gateway").Logger(),
		status:   GatewayStatus{Params: b.params},
	}
}

// Run executes windows back to back until ctx is canceled or a medium
// violation occurs. Medium violations are not retried; they mean the
// transport contract is broken.
func (g *Gateway) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := g.RunWindow(); err != nil {
			return err
		}
	}
}

// RunWindow executes one full protocol cycle and reports how the window
// went. The returned error is nil unless the medium violated its
// contract.
func (g *Gateway) RunWindow() (WindowReport, error) {
	w := g.nextWindow()

	expiration, err := g.broadcastSync(w)
	if err != nil {
		return WindowReport{Window: w}, err
	}

	if err := g.verifyEcho(w, expiration); err != nil {
		return WindowReport{Window: w}, err
	}

	if err := g.confirmExpiry(expiration); err != nil {
		return WindowReport{Window: w}, err
	}

	received, err := g.listen(w)
	report := WindowReport{Window: w, Received: received}
	if err != nil {
		return report, err
	}

	g.closeWindow(report)

	return report, nil
}

// nextWindow anchors the window start on a slot-length boundary one slot
// in the future. Rounding absorbs clock and processing jitter between
// nodes that compute slot offsets from the same wire timestamp.
func (g *Gateway) nextWindow() Window {
	start := g.clock.Now().Round(g.params.SlotLength).Add(g.params.SlotLength)

	return Window{
		Start:       start,
		SlotLength:  g.params.SlotLength,
		GuardLength: g.params.GuardLength,
	}
}

func (g *Gateway) broadcastSync(w Window) (time.Time, error) {
	msg := FormatSync(w.Start)

	if err := g.endpoint.Write(msg); err != nil {
		return time.Time{}, err
	}
	if err := g.endpoint.Flush(); err != nil {
		return time.Time{}, err
	}

	expiration := g.clock.Now().Add(g.params.TTL)

	g.logger.Debug().
		Int64("window_start", w.Start.Unix()).
		Msg("sync broadcast")
	g.InvokeHook(HookCtx{Domain: g, Pos: HookPosSyncBroadcast, Item: w})

	return expiration, nil
}

// verifyEcho confirms the medium faithfully reflects writes by reading
// the just-broadcast sync message back before it expires.
func (g *Gateway) verifyEcho(w Window, expiration time.Time) error {
	want := FormatSync(w.Start)

	for g.clock.Now().Before(expiration) {
		msg, err := g.endpoint.Read()
		if err != nil {
			return err
		}

		if msg == want {
			g.InvokeHook(HookCtx{Domain: g, Pos: HookPosEchoVerified, Item: w})
			return nil
		}

		g.clock.Sleep(g.params.PollInterval)
	}

	return fmt.Errorf("%w: window %d", ErrEchoTimeout, w.Start.Unix())
}

// confirmExpiry waits until the sync broadcast must have expired, plus a
// guard, and confirms nothing is left on the medium.
func (g *Gateway) confirmExpiry(expiration time.Time) error {
	g.clock.SleepUntil(expiration.Add(g.params.GuardLength))

	msg, err := g.endpoint.Read()
	if err != nil {
		return err
	}

	if msg != "" {
		return fmt.Errorf("%w: read %q after expiry", ErrResidualMessage, msg)
	}

	return nil
}

// listen walks the slot sequence from the window start. Every slot that
// carries traffic extends the listening by one more slot; the first
// silent slot closes the window. The gateway must not listen forever on a
// silent channel.
func (g *Gateway) listen(w Window) (int, error) {
	received := 0
	slot := 0
	slotStart := w.Start

	for listenForNext := true; listenForNext; {
		// Pessimistically assume the slot stays silent.
		listenForNext = false
		slot++

		g.clock.SleepUntil(slotStart)
		slotStart = slotStart.Add(w.SlotLength)

		for g.clock.Now().Before(slotStart) {
			msg, err := g.endpoint.Read()
			if err != nil {
				return received, err
			}

			if msg != "" {
				g.recordTraffic(w, slot, msg)
				received++
				listenForNext = true
				break
			}

			g.clock.Sleep(g.params.PollInterval)
		}
	}

	return received, nil
}

func (g *Gateway) recordTraffic(w Window, slot int, raw string) {
	t := Traffic{
		Window:     w,
		Slot:       slot,
		Raw:        raw,
		ReceivedAt: g.clock.Now(),
	}
	t.Msg, t.Decoded = ParseSlot(raw)

	event := g.logger.Info().
		Int64("window_start", w.Start.Unix()).
		Int("slot", slot).
		Str("msg", raw)
	if t.Decoded {
		event = event.
			Int("identity", t.Msg.Identity).
			Int("sequence", t.Msg.Sequence)
	}
	event.Msg("received message")

	g.statusLock.Lock()
	g.status.MessagesReceived++
	g.statusLock.Unlock()

	g.InvokeHook(HookCtx{Domain: g, Pos: HookPosTrafficRecv, Item: t})
}

func (g *Gateway) closeWindow(report WindowReport) {
	g.statusLock.Lock()
	g.status.WindowsCompleted++
	g.status.LastWindowStart = report.Window.Start
	g.statusLock.Unlock()

	g.logger.Debug().
		Int64("window_start", report.Window.Start.Unix()).
		Int("received", report.Received).
		Msg("window closed")
	g.InvokeHook(HookCtx{Domain: g, Pos: HookPosWindowClosed, Item: report})
}

// Status returns a snapshot of the gateway's progress.
func (g *Gateway) Status() GatewayStatus {
	g.statusLock.Lock()
	defer g.statusLock.Unlock()

	return g.status
}
