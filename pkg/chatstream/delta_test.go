package chatstream_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/novostroy/pkg/chatstream"
)

var _ = Describe("ParseDelta", func() {
	DescribeTable("well-formed payloads",
		func(payload, expected string) {
			content, err := chatstream.ParseDelta(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(content).To(Equal(expected))
		},
		Entry("content fragment", `{"choices":[{"delta":{"content":"Привет"}}]}`, "Привет"),
		Entry("empty content", `{"choices":[{"delta":{"content":""}}]}`, ""),
		Entry("role-only delta", `{"choices":[{"delta":{"role":"assistant"}}]}`, ""),
		Entry("no delta", `{"choices":[{"finish_reason":"stop"}]}`, ""),
		Entry("empty choices", `{"choices":[]}`, ""),
		Entry("no choices", `{"id":"chatcmpl-1","usage":{"prompt_tokens":3}}`, ""),
		Entry("null content", `{"choices":[{"delta":{"content":null}}]}`, ""),
		Entry("non-string content", `{"choices":[{"delta":{"content":42}}]}`, ""),
		Entry("choices of the wrong type", `{"choices":{"delta":{}}}`, ""),
		Entry("only the first choice is read",
			`{"choices":[{"delta":{"content":"a"}},{"delta":{"content":"b"}}]}`, "a"),
		Entry("escaped newline", `{"choices":[{"delta":{"content":"a\nb"}}]}`, "a\nb"),
		Entry("unicode escape", `{"choices":[{"delta":{"content":"\u0416\u041a"}}]}`, "ЖК"),
	)

	DescribeTable("malformed payloads",
		func(payload string) {
			_, err := chatstream.ParseDelta(payload)
			Expect(err).To(HaveOccurred())
		},
		Entry("truncated object", `{"choices":[{"delta":{"content":"Hel`),
		Entry("empty payload", ``),
		Entry("plain text", `hello`),
		Entry("trailing garbage", `{"choices":[]}}`),
	)

	It("repairs a raw newline inside a string value", func() {
		content, err := chatstream.ParseDelta("{\"choices\":[{\"delta\":{\"content\":\"first\nsecond\"}}]}")
		Expect(err).NotTo(HaveOccurred())
		Expect(content).To(Equal("first\nsecond"))
	})

	It("repairs raw carriage returns and tabs inside a string value", func() {
		content, err := chatstream.ParseDelta("{\"choices\":[{\"delta\":{\"content\":\"a\r\n\tb\"}}]}")
		Expect(err).NotTo(HaveOccurred())
		Expect(content).To(Equal("a\r\n\tb"))
	})

	It("leaves escaped quotes intact while repairing", func() {
		content, err := chatstream.ParseDelta("{\"choices\":[{\"delta\":{\"content\":\"ЖК \\\"Лес\\\"\nрядом\"}}]}")
		Expect(err).NotTo(HaveOccurred())
		Expect(content).To(Equal("ЖК \"Лес\"\nрядом"))
	})

	It("reports a payload that is still truncated after repair", func() {
		_, err := chatstream.ParseDelta("{\"choices\":[{\"delta\":{\"content\":\"x\ny")
		Expect(err).To(HaveOccurred())
	})
})
