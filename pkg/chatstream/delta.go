// Package chatstream reassembles a streamed chat-completion answer from SSE
// chunks and reconciles it into a conversation log.
package chatstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/papercomputeco/novostroy/pkg/llm"
)

// ParseDelta extracts the content fragment from one data payload.
//
// A payload that is valid JSON but lacks choices, a delta, or a string content
// field yields an empty fragment and no error. An error is returned only when
// the payload is not well-formed JSON, which usually means the upstream split
// it at a raw newline and the rest arrives on the next line.
func ParseDelta(payload string) (string, error) {
	chunk, err := decodeChunk(payload)
	if err != nil {
		repaired, changed := escapeControls(payload)
		if !changed {
			return "", fmt.Errorf("parsing delta: %w", err)
		}
		chunk, err = decodeChunk(repaired)
		if err != nil {
			return "", fmt.Errorf("parsing delta: %w", err)
		}
	}

	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == nil {
		return "", nil
	}
	return *chunk.Choices[0].Delta.Content, nil
}

// decodeChunk unmarshals a payload. Type mismatches ("choices": {}) leave the
// affected fields empty and are not errors; only syntax errors are.
func decodeChunk(payload string) (llm.ChatCompletionChunk, error) {
	var chunk llm.ChatCompletionChunk
	err := json.Unmarshal([]byte(payload), &chunk)

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return chunk, nil
	}
	return chunk, err
}

// escapeControls escapes raw newlines, carriage returns and tabs that occur
// inside JSON string literals. A payload re-joined after a split at a raw
// newline carries that newline inside a string, which JSON forbids.
func escapeControls(payload string) (string, bool) {
	var (
		b        strings.Builder
		inString bool
		escaped  bool
		changed  bool
	)
	b.Grow(len(payload) + 8)

	for i := 0; i < len(payload); i++ {
		c := payload[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString && c == '\n':
			b.WriteString(`\n`)
			changed = true
			continue
		case inString && c == '\r':
			b.WriteString(`\r`)
			changed = true
			continue
		case inString && c == '\t':
			b.WriteString(`\t`)
			changed = true
			continue
		}
		b.WriteByte(c)
	}

	return b.String(), changed
}
