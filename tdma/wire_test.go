package tdma

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Wire Format", func() {
	It("should format a sync message", func() {
		Expect(FormatSync(time.Unix(1000, 0))).To(Equal("Window: 1000"))
	})

	It("should round-trip a sync message", func() {
		start := time.Unix(1755000000, 0)

		parsed, ok := ParseSync(FormatSync(start))

		Expect(ok).To(BeTrue())
		Expect(parsed.Unix()).To(Equal(start.Unix()))
	})

	It("should parse a sync message idempotently", func() {
		first, ok1 := ParseSync("Window: 1000")
		second, ok2 := ParseSync("Window: 1000")

		Expect(ok1).To(BeTrue())
		Expect(ok2).To(BeTrue())
		Expect(first).To(Equal(second))
	})

	It("should not recognize slot traffic as sync", func() {
		_, ok := ParseSync("[Client 1][0]")
		Expect(ok).To(BeFalse())
	})

	It("should not recognize an empty read as sync", func() {
		_, ok := ParseSync("")
		Expect(ok).To(BeFalse())
	})

	It("should not recognize a garbled timestamp as sync", func() {
		_, ok := ParseSync("Window: 10�0")
		Expect(ok).To(BeFalse())
	})

	It("should format a slot message", func() {
		msg := SlotMessage{Identity: 1, Sequence: 0}
		Expect(msg.String()).To(Equal("[Client 1][0]"))
	})

	It("should round-trip a slot message", func() {
		msg := SlotMessage{Identity: 12, Sequence: 348}

		parsed, ok := ParseSlot(msg.String())

		Expect(ok).To(BeTrue())
		Expect(parsed).To(Equal(msg))
	})

	It("should not recognize sync traffic as a slot message", func() {
		_, ok := ParseSlot("Window: 1000")
		Expect(ok).To(BeFalse())
	})
})
