package recording

import "github.com/nexuslab/tdma/tdma"

const trafficTable = "traffic"

// A TrafficRecord is one row of observed slot traffic.
type TrafficRecord struct {
	WindowStart int64
	Slot        int
	Identity    int
	Sequence    int
	Decoded     bool
	Raw         string
	ReceivedAt  int64
}

// A TrafficHook records every message a gateway observes. Attach it with
// Gateway.AcceptHook; buffered rows are flushed whenever a window closes.
type TrafficHook struct {
	recorder Recorder
}

// NewTrafficHook creates the traffic table and returns the hook.
func NewTrafficHook(recorder Recorder) *TrafficHook {
	recorder.CreateTable(trafficTable, TrafficRecord{})

	return &TrafficHook{recorder: recorder}
}

// Func records received traffic and flushes on window close.
func (h *TrafficHook) Func(ctx tdma.HookCtx) {
	switch ctx.Pos {
	case tdma.HookPosTrafficRecv:
		t := ctx.Item.(tdma.Traffic)
		h.recorder.InsertData(trafficTable, TrafficRecord{
			WindowStart: t.Window.Start.Unix(),
			Slot:        t.Slot,
			Identity:    t.Msg.Identity,
			Sequence:    t.Msg.Sequence,
			Decoded:     t.Decoded,
			Raw:         t.Raw,
			ReceivedAt:  t.ReceivedAt.UnixNano(),
		})
	case tdma.HookPosWindowClosed:
		h.recorder.Flush()
	}
}
