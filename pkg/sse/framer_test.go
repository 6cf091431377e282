package sse

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func drain(f *Framer) []string {
	var lines []string
	for {
		line, ok := f.Next()
		if !ok {
			return lines
		}
		lines = append(lines, line)
	}
}

var _ = Describe("Framer", func() {
	var f *Framer

	BeforeEach(func() {
		f = NewFramer()
	})

	It("extracts complete lines and keeps the remainder", func() {
		f.Push([]byte("one\ntwo\nthr"))

		Expect(drain(f)).To(Equal([]string{"one", "two"}))
		Expect(f.Pending()).To(Equal(3))

		f.Push([]byte("ee\n"))
		Expect(drain(f)).To(Equal([]string{"three"}))
		Expect(f.Pending()).To(Equal(0))
	})

	It("trims exactly one trailing carriage return", func() {
		f.Push([]byte("a\r\nb\r\r\n"))
		Expect(drain(f)).To(Equal([]string{"a", "b\r"}))
	})

	It("keeps empty lines", func() {
		f.Push([]byte("\n\nx\n"))
		Expect(drain(f)).To(Equal([]string{"", "", "x"}))
	})

	It("reassembles multi-byte characters split across chunks", func() {
		word := []byte("Нашла\n")
		for i := range word {
			f.Push(word[i : i+1])
		}
		Expect(drain(f)).To(Equal([]string{"Нашла"}))
	})

	It("yields the same lines for every split point", func() {
		input := "data: один\r\n: ping\n\ndata: два\n"
		var want []string
		whole := NewFramer()
		whole.Push([]byte(input))
		want = drain(whole)

		for i := 0; i <= len(input); i++ {
			split := NewFramer()
			split.Push([]byte(input[:i]))
			got := drain(split)
			split.Push([]byte(input[i:]))
			got = append(got, drain(split)...)
			Expect(got).To(Equal(want), "split at %d", i)
		}
	})

	It("replaces invalid UTF-8", func() {
		f.Push([]byte{'a', 0xff, 'b', '\n'})
		Expect(drain(f)).To(Equal([]string{"a\uFFFDb"}))
	})

	Describe("Unread", func() {
		It("re-reads a pushed-back line joined with the next line", func() {
			f.Push([]byte("data: {\"x\":\"a\n"))
			line, ok := f.Next()
			Expect(ok).To(BeTrue())

			f.Unread(line)
			Expect(f.Holding()).To(BeTrue())

			_, ok = f.Next()
			Expect(ok).To(BeFalse())

			f.Push([]byte("b\"}\nnext\n"))
			Expect(drain(f)).To(Equal([]string{"data: {\"x\":\"a\nb\"}", "next"}))
			Expect(f.Holding()).To(BeFalse())
		})

		It("keeps merging across blank continuations", func() {
			f.Push([]byte("data: {\"x\":\"a\n"))
			line, _ := f.Next()
			f.Unread(line)

			f.Push([]byte("\n"))
			line, ok := f.Next()
			Expect(ok).To(BeTrue())
			Expect(line).To(Equal("data: {\"x\":\"a\n"))

			f.Unread(line)
			f.Push([]byte("b\"}\n"))
			line, ok = f.Next()
			Expect(ok).To(BeTrue())
			Expect(line).To(Equal("data: {\"x\":\"a\n\nb\"}"))
		})

		It("drops the pushed-back line when a comment follows", func() {
			f.Push([]byte("data: {bad\n: ping\n"))
			line, _ := f.Next()
			f.Unread(line)

			Expect(drain(f)).To(Equal([]string{": ping"}))
			Expect(f.Dropped()).To(Equal(1))
		})

		It("drops the pushed-back line once it exceeds the pending bound", func() {
			f.SetMaxPending(16)
			f.Push([]byte("data: {bad\n"))
			line, _ := f.Next()
			f.Unread(line)

			f.Push([]byte(strings.Repeat("z", 32)))
			_, ok := f.Next()
			Expect(ok).To(BeFalse())
			Expect(f.Dropped()).To(Equal(1))
			Expect(f.Holding()).To(BeFalse())
			Expect(f.Pending()).To(Equal(32))
		})
	})

	It("resets buffered state", func() {
		f.Push([]byte("partial"))
		f.Reset()
		Expect(f.Pending()).To(Equal(0))
	})
})
