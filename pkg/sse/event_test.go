package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Classify", func() {
	DescribeTable("line kinds",
		func(line string, kind Kind, data string) {
			ev := Classify(line)
			Expect(ev.Kind).To(Equal(kind))
			Expect(ev.Data).To(Equal(data))
			Expect(ev.Line).To(Equal(line))
		},
		Entry("empty line", "", KindIgnored, ""),
		Entry("whitespace-only line", "  \t ", KindIgnored, ""),
		Entry("comment", ": keep-alive", KindComment, ""),
		Entry("bare colon", ":", KindComment, ""),
		Entry("event field", "event: message", KindIgnored, ""),
		Entry("data without space", "data:{}", KindIgnored, ""),
		Entry("uppercase prefix", "DATA: {}", KindIgnored, ""),
		Entry("leading space before prefix", " data: {}", KindIgnored, ""),
		Entry("data payload", `data: {"a":1}`, KindData, `{"a":1}`),
		Entry("data payload is trimmed", "data:   {\"a\":1}  ", KindData, `{"a":1}`),
		Entry("empty payload", "data: ", KindData, ""),
		Entry("done sentinel", "data: [DONE]", KindDone, ""),
		Entry("done sentinel with padding", "data:  [DONE] ", KindDone, ""),
		Entry("lowercase done is data", "data: [done]", KindData, "[done]"),
	)

	It("names kinds", func() {
		Expect(KindData.String()).To(Equal("data"))
		Expect(KindDone.String()).To(Equal("done"))
		Expect(KindComment.String()).To(Equal("comment"))
		Expect(KindIgnored.String()).To(Equal("ignored"))
	})
})
