package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	conversationFile = "conversation.json"
)

// ConversationState is the persisted log of the last "novostroy ask"
// conversation.
type ConversationState struct {
	// CityID is the city the conversation was scoped to.
	CityID string `json:"city_id,omitempty"`

	// Messages is the display log in chronological order (oldest first).
	Messages []ConversationMessage `json:"messages"`

	// ComplexIDs are the complexes recommended by the last answer.
	ComplexIDs []string `json:"complex_ids,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationMessage represents a single message of the conversation.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LoadConversation loads the conversation state from a target
// .novostroy/conversation.json.
// Returns nil, nil if no conversation was saved.
// If overrideDir is non-empty, it is used instead of the default location.
func (m *Manager) LoadConversation(overrideDir string) (*ConversationState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, conversationFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading conversation state: %w", err)
	}

	state := &ConversationState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing conversation state: %w", err)
	}

	return state, nil
}

// SaveConversation persists the conversation state to a target
// .novostroy/conversation.json.
func (m *Manager) SaveConversation(state *ConversationState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil conversation state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling conversation state: %w", err)
	}

	path := filepath.Join(dir, conversationFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing conversation state: %w", err)
	}

	return nil
}

// ClearConversation removes the conversation state file so the next ask
// session starts with a greeting.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearConversation(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, conversationFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing conversation state: %w", err)
	}

	return nil
}
