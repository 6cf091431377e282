package askcmder

import (
	"github.com/papercomputeco/novostroy/pkg/chatstream"
	"github.com/papercomputeco/novostroy/pkg/dotdir"
)

func toConversation(cityID string, log []chatstream.Message, ids []string) *dotdir.ConversationState {
	state := &dotdir.ConversationState{
		CityID:     cityID,
		Messages:   make([]dotdir.ConversationMessage, 0, len(log)),
		ComplexIDs: ids,
	}
	for _, m := range log {
		state.Messages = append(state.Messages, dotdir.ConversationMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return state
}

// fromConversation returns the saved log. Entries with an unknown role are
// skipped.
func fromConversation(state *dotdir.ConversationState) []chatstream.Message {
	if state == nil {
		return nil
	}

	log := make([]chatstream.Message, 0, len(state.Messages))
	for _, m := range state.Messages {
		role := chatstream.Role(m.Role)
		if role != chatstream.RoleUser && role != chatstream.RoleAssistant {
			continue
		}
		log = append(log, chatstream.Message{Role: role, Content: m.Content})
	}
	return log
}
