package tdma

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Window", func() {
	w := Window{
		Start:       time.Unix(1000, 0),
		SlotLength:  time.Second,
		GuardLength: 100 * time.Millisecond,
	}

	It("should give identity 1 the window start itself", func() {
		Expect(w.SlotStart(1)).To(Equal(time.Unix(1000, 0)))
	})

	It("should offset each identity by one slot length", func() {
		Expect(w.SlotStart(2)).To(Equal(time.Unix(1001, 0)))
		Expect(w.SlotStart(7)).To(Equal(time.Unix(1006, 0)))
	})

	It("should hold transmissions back by the guard length", func() {
		Expect(w.TransmitTime(1)).
			To(Equal(time.Unix(1000, 0).Add(100 * time.Millisecond)))
	})

	It("should give distinct identities distinct slots", func() {
		seen := make(map[time.Time]int)
		for id := 1; id <= 32; id++ {
			slot := w.SlotStart(id)
			Expect(seen).ToNot(HaveKey(slot))
			seen[slot] = id
		}
	})

	It("should not let adjacent transmit windows overlap", func() {
		for id := 1; id <= 16; id++ {
			endOfSlot := w.SlotStart(id + 1)
			Expect(w.TransmitTime(id).Before(endOfSlot)).To(BeTrue())
			Expect(w.TransmitTime(id + 1).After(endOfSlot)).To(BeTrue())
		}
	})
})
