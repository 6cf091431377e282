// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// line framer and classifier for chat-completion streams.
//
// Only the subset of the format used by OpenAI-compatible gateways is
// understood: lines separated by "\n" (an optional trailing "\r" is stripped),
// comment lines starting with ":", and data lines starting with the literal
// "data: " prefix. The payload "[DONE]" ends a turn.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
package sse

import "strings"

const (
	// DataPrefix is the 6-byte literal that marks a payload-carrying line.
	DataPrefix = "data: "

	// DoneSentinel is the payload that signals the end of a turn.
	DoneSentinel = "[DONE]"
)

// Kind classifies a single framed line.
type Kind int

const (
	// KindIgnored is a blank line or a line without the "data: " prefix.
	KindIgnored Kind = iota

	// KindComment is a keep-alive or comment line starting with ":".
	KindComment

	// KindData is a "data: " line carrying a payload.
	KindData

	// KindDone is the terminal "data: [DONE]" sentinel.
	KindDone
)

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindData:
		return "data"
	case KindDone:
		return "done"
	default:
		return "ignored"
	}
}

// Event is a classified line. It is constructed per framed line and
// discarded once consumed.
type Event struct {
	Kind Kind

	// Data is the trimmed payload after the "data: " prefix. Only set for
	// KindData.
	Data string

	// Line is the framed line the event was classified from, kept so that a
	// consumer can push it back into the framer.
	Line string
}

// Classify decides whether a framed line carries data.
func Classify(line string) Event {
	ev := Event{Kind: KindIgnored, Line: line}

	switch {
	case strings.TrimSpace(line) == "":
		return ev
	case strings.HasPrefix(line, ":"):
		ev.Kind = KindComment
		return ev
	case !strings.HasPrefix(line, DataPrefix):
		return ev
	}

	payload := strings.TrimSpace(line[len(DataPrefix):])
	if payload == DoneSentinel {
		ev.Kind = KindDone
		return ev
	}

	ev.Kind = KindData
	ev.Data = payload
	return ev
}

// startsEvent reports whether a line is a self-contained SSE line that can
// never be the continuation of a payload split at a raw newline.
func startsEvent(line []byte) bool {
	s := string(line)
	return strings.HasPrefix(s, DataPrefix) || strings.HasPrefix(s, ":")
}
