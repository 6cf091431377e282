package sse

import (
	"bytes"
	"strings"
)

// DefaultMaxPending bounds how many bytes a pushed-back line may grow to
// while waiting for its continuation.
const DefaultMaxPending = 1024 * 1024

// Framer converts an arbitrarily chunked byte stream into complete lines.
//
// Bytes are buffered undecoded until a "\n" is found. A "\n" byte never occurs
// inside a multi-byte UTF-8 sequence, so characters split across chunk
// boundaries are reassembled exactly before a line is decoded.
//
//	chunk ─▶ Push ─▶ [ held | buffered bytes ... ] ─▶ Next ─▶ line
//	                   ▲
//	                   └── Unread(line) puts a line back in front,
//	                       to be re-read together with the next line
//
// A Framer is tied to one stream and is not safe for concurrent use.
type Framer struct {
	buf []byte

	// held is the length of the pushed-back prefix of buf, including its
	// re-inserted newline. While held > 0 the next line is returned as one
	// continuous span: the held prefix plus the following line.
	held int

	maxPending int
	dropped    int

	// merged records whether the last line returned by Next was joined
	// with a held prefix.
	merged bool
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer {
	return &Framer{maxPending: DefaultMaxPending}
}

// SetMaxPending overrides DefaultMaxPending. Values <= 0 restore the default.
func (f *Framer) SetMaxPending(n int) {
	if n <= 0 {
		n = DefaultMaxPending
	}
	f.maxPending = n
}

// Push appends a chunk to the buffer. The chunk is copied.
func (f *Framer) Push(chunk []byte) {
	f.buf = append(f.buf, chunk...)
}

// Next extracts the next complete line, with one trailing "\r" trimmed.
// It returns false when the buffer holds no further "\n"; the remainder stays
// buffered until more bytes are pushed.
func (f *Framer) Next() (string, bool) {
	for {
		i := bytes.IndexByte(f.buf[f.held:], '\n')
		if i < 0 {
			if f.held > 0 && len(f.buf) > f.maxPending {
				f.dropHeld()
				continue
			}
			return "", false
		}

		end := f.held + i
		if f.held > 0 && startsEvent(f.buf[f.held:end]) {
			// The line after the held span is a well-formed SSE line of its
			// own, so the held line was not split: it is invalid.
			f.dropHeld()
			continue
		}

		line := bytes.TrimSuffix(f.buf[:end], []byte{'\r'})
		s := strings.ToValidUTF8(string(line), "\uFFFD")

		f.buf = append(f.buf[:0], f.buf[end+1:]...)
		f.merged = f.held > 0
		f.held = 0
		return s, true
	}
}

// Unread pushes a line back in front of the buffer together with a
// re-inserted newline. The next call to Next returns it joined with the
// following line as one span.
func (f *Framer) Unread(line string) {
	held := make([]byte, 0, len(line)+1+len(f.buf))
	held = append(held, line...)
	held = append(held, '\n')
	f.buf = append(held, f.buf...)
	f.held = len(line) + 1
}

// Merged reports whether the last line returned by Next was a pushed-back
// line joined with its continuation.
func (f *Framer) Merged() bool {
	return f.merged
}

// Holding reports whether a pushed-back line is waiting for its continuation.
func (f *Framer) Holding() bool {
	return f.held > 0
}

// Pending returns the buffered bytes that do not yet form a complete line.
// Whatever is pending when the stream ends is discarded, never emitted.
func (f *Framer) Pending() int {
	return len(f.buf)
}

// Dropped returns how many pushed-back lines were abandoned.
func (f *Framer) Dropped() int {
	return f.dropped
}

// Reset discards all buffered state.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.held = 0
	f.merged = false
}

func (f *Framer) dropHeld() {
	f.buf = append(f.buf[:0], f.buf[f.held:]...)
	f.held = 0
	f.dropped++
}
