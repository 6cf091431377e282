// Package eventstream defines the transport-neutral events emitted after an
// ai-search turn completes, and the publishers that deliver them.
package eventstream

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSearchCompleted is emitted after an ai-search stream ends.
	EventTypeSearchCompleted = "novostroy.search.completed"

	// previewRunes bounds DisplayPreview.
	previewRunes = 280
)

// SearchCompletedEvent is a transport-neutral event payload for a finished
// search turn.
type SearchCompletedEvent struct {
	SchemaVersion int               `json:"schema_version"`
	EventType     string            `json:"event_type"`
	EventID       string            `json:"event_id"`
	EmittedAt     time.Time         `json:"emitted_at"`
	Search        SearchMeta        `json:"search"`
	RequestMeta   SearchRequestMeta `json:"request_meta"`
}

// SearchMeta describes the query and what the assistant recommended.
type SearchMeta struct {
	Query          string   `json:"query"`
	CityID         string   `json:"city_id,omitempty"`
	ComplexIDs     []string `json:"complex_ids"`
	DisplayPreview string   `json:"display_preview"`
	Model          string   `json:"model,omitempty"`
}

// SearchRequestMeta captures request lifecycle metadata for the event.
type SearchRequestMeta struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	Streaming   bool      `json:"streaming"`
	SentinelHit bool      `json:"sentinel_hit"`
	Recovered   int       `json:"recovered"`
	Dropped     int       `json:"dropped"`
}

// NewSearchCompletedEvent stamps a new event with a fresh id and the current
// time. The display text is shortened to a preview.
func NewSearchCompletedEvent(search SearchMeta, meta SearchRequestMeta) *SearchCompletedEvent {
	if search.ComplexIDs == nil {
		search.ComplexIDs = []string{}
	}
	search.DisplayPreview = Preview(search.DisplayPreview)

	return &SearchCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeSearchCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Search:        search,
		RequestMeta:   meta,
	}
}

// Preview shortens text to at most 280 runes, marking a cut with "…".
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewRunes-1]) + "…"
}
