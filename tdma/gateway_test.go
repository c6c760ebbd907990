package tdma

import (
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nexuslab/tdma/timing"
)

// delivery is a message that becomes readable at a given instant.
type delivery struct {
	at  time.Time
	msg string
}

// fakeLink is an ideal medium driven by the virtual clock: writes echo
// back to the writer, and scripted deliveries appear at their scheduled
// instants.
type fakeLink struct {
	clock timing.TimeTeller
	echo  bool

	writes     []string
	echoQueue  []string
	deliveries []delivery
}

func (l *fakeLink) Read() (string, error) {
	if len(l.echoQueue) > 0 {
		msg := l.echoQueue[0]
		l.echoQueue = l.echoQueue[1:]
		return msg, nil
	}

	now := l.clock.Now()
	for i, d := range l.deliveries {
		if !now.Before(d.at) {
			l.deliveries = append(l.deliveries[:i], l.deliveries[i+1:]...)
			return d.msg, nil
		}
	}

	return "", nil
}

func (l *fakeLink) Write(msg string) error {
	l.writes = append(l.writes, msg)
	if l.echo {
		l.echoQueue = append(l.echoQueue, msg)
	}
	return nil
}

func (l *fakeLink) Flush() error { return nil }
func (l *fakeLink) Close() error { return nil }

type captureHook struct {
	ctxs []HookCtx
}

func (h *captureHook) Func(ctx HookCtx) {
	h.ctxs = append(h.ctxs, ctx)
}

var _ = Describe("Gateway", func() {
	var (
		clock *timing.VirtualClock
		link  *fakeLink
		gw    *Gateway
	)

	BeforeEach(func() {
		clock = timing.NewVirtualClock(time.Unix(1000, 0))
		link = &fakeLink{clock: clock, echo: true}
		gw = MakeGatewayBuilder().
			WithEndpoint(link).
			WithClock(clock).
			Build()
	})

	It("should broadcast the window start one slot ahead on a slot boundary", func() {
		report, err := gw.RunWindow()

		Expect(err).ToNot(HaveOccurred())
		Expect(link.writes).To(HaveLen(1))
		Expect(link.writes[0]).To(Equal("Window: 1001"))
		Expect(report.Window.Start).To(Equal(time.Unix(1001, 0)))
	})

	It("should round the window start to the nearest slot boundary", func() {
		clock.Advance(600 * time.Millisecond)

		report, err := gw.RunWindow()

		Expect(err).ToNot(HaveOccurred())
		Expect(report.Window.Start).To(Equal(time.Unix(1002, 0)))
	})

	It("should close a silent window after exactly one slot", func() {
		report, err := gw.RunWindow()

		Expect(err).ToNot(HaveOccurred())
		Expect(report.Received).To(Equal(0))
		// One slot listened from the window start, then the cycle ends.
		Expect(clock.Now()).To(Equal(time.Unix(1002, 0)))
	})

	It("should fail fatally when its broadcast never echoes", func() {
		link.echo = false

		_, err := gw.RunWindow()

		Expect(err).To(MatchError(ErrEchoTimeout))
	})

	It("should fail fatally when a message outlives its ttl", func() {
		// Something is still on the medium when the sync must have expired.
		link.deliveries = []delivery{
			{at: time.Unix(1000, 0).Add(150 * time.Millisecond), msg: "Window: 990"},
		}

		_, err := gw.RunWindow()

		Expect(err).To(MatchError(ErrResidualMessage))
	})

	It("should observe a transmission in its slot and keep listening", func() {
		link.deliveries = []delivery{
			{at: time.Unix(1001, 0).Add(100 * time.Millisecond), msg: "[Client 1][0]"},
		}

		report, err := gw.RunWindow()

		Expect(err).ToNot(HaveOccurred())
		Expect(report.Received).To(Equal(1))
		// Slot 1 carried traffic, slot 2 was silent.
		Expect(clock.Now()).To(Equal(time.Unix(1003, 0)))
	})

	It("should extend listening while consecutive slots carry traffic", func() {
		link.deliveries = []delivery{
			{at: time.Unix(1001, 0).Add(100 * time.Millisecond), msg: "[Client 1][4]"},
			{at: time.Unix(1002, 0).Add(100 * time.Millisecond), msg: "[Client 2][9]"},
		}

		report, err := gw.RunWindow()

		Expect(err).ToNot(HaveOccurred())
		Expect(report.Received).To(Equal(2))
		Expect(clock.Now()).To(Equal(time.Unix(1004, 0)))
	})

	It("should report received traffic to its hooks", func() {
		hook := &captureHook{}
		gw.AcceptHook(hook)
		link.deliveries = []delivery{
			{at: time.Unix(1001, 0).Add(100 * time.Millisecond), msg: "[Client 1][3]"},
			{at: time.Unix(1002, 0).Add(100 * time.Millisecond), msg: "[Client 2][7]"},
		}

		_, err := gw.RunWindow()
		Expect(err).ToNot(HaveOccurred())

		var traffic []Traffic
		for _, ctx := range hook.ctxs {
			if ctx.Pos == HookPosTrafficRecv {
				traffic = append(traffic, ctx.Item.(Traffic))
			}
		}
		Expect(traffic).To(HaveLen(2))
		Expect(traffic[0].Slot).To(Equal(1))
		Expect(traffic[0].Msg).To(Equal(SlotMessage{Identity: 1, Sequence: 3}))
		Expect(traffic[1].Slot).To(Equal(2))
		Expect(traffic[1].Decoded).To(BeTrue())
		Expect(traffic[1].Msg).To(Equal(SlotMessage{Identity: 2, Sequence: 7}))
	})

	It("should count garbled traffic as slot activity", func() {
		hook := &captureHook{}
		gw.AcceptHook(hook)
		link.deliveries = []delivery{
			{at: time.Unix(1001, 0).Add(200 * time.Millisecond), msg: "[Cli�nt 1][0]"},
		}

		report, err := gw.RunWindow()

		Expect(err).ToNot(HaveOccurred())
		Expect(report.Received).To(Equal(1))

		for _, ctx := range hook.ctxs {
			if ctx.Pos == HookPosTrafficRecv {
				Expect(ctx.Item.(Traffic).Decoded).To(BeFalse())
			}
		}
	})

	It("should track progress in its status", func() {
		link.deliveries = []delivery{
			{at: time.Unix(1001, 0).Add(100 * time.Millisecond), msg: "[Client 1][0]"},
		}

		_, err := gw.RunWindow()
		Expect(err).ToNot(HaveOccurred())

		status := gw.Status()
		Expect(status.WindowsCompleted).To(Equal(1))
		Expect(status.MessagesReceived).To(Equal(1))
		Expect(status.LastWindowStart).To(Equal(time.Unix(1001, 0)))
	})

	It("should propagate endpoint failures", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		endpoint := NewMockEndpoint(mockCtrl)
		endpoint.EXPECT().Write(gomock.Any()).Return(nil)
		endpoint.EXPECT().Flush().Return(nil)
		endpoint.EXPECT().Read().Return("", errors.New("wire fault"))

		gw := MakeGatewayBuilder().
			WithEndpoint(endpoint).
			WithClock(clock).
			Build()

		_, err := gw.RunWindow()

		Expect(err).To(MatchError("wire fault"))
	})

	It("should refuse to build without an endpoint", func() {
		Expect(func() {
			MakeGatewayBuilder().Build()
		}).To(Panic())
	})

	It("should refuse to build with an invalid guard", func() {
		p := DefaultParams()
		p.GuardLength = p.SlotLength

		Expect(func() {
			MakeGatewayBuilder().
				WithEndpoint(link).
				WithParams(p).
				Build()
		}).To(Panic())
	})
})
