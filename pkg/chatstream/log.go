package chatstream

import "github.com/papercomputeco/novostroy/pkg/marker"

// Role identifies the author of a log entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation log shown to the user.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Apply reconciles the cumulative assistant content of the current turn into
// the log. If the last entry is an assistant entry its content is replaced,
// otherwise a new assistant entry is appended. The stored content is the
// display text, with identifier markers removed.
//
// Apply never mutates log; it returns a new slice.
func Apply(log []Message, content string) []Message {
	display := marker.Clean(content)

	next := make([]Message, len(log), len(log)+1)
	copy(next, log)

	if n := len(next); n > 0 && next[n-1].Role == RoleAssistant {
		next[n-1].Content = display
		return next
	}
	return append(next, Message{Role: RoleAssistant, Content: display})
}

// AppendUser returns a copy of log with a user entry appended.
func AppendUser(log []Message, content string) []Message {
	next := make([]Message, len(log), len(log)+1)
	copy(next, log)
	return append(next, Message{Role: RoleUser, Content: content})
}
