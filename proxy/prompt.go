package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/papercomputeco/novostroy/pkg/catalog"
	"github.com/papercomputeco/novostroy/pkg/llm"
)

// DefaultQuery is sent as the user message when the query is empty.
const DefaultQuery = "Помоги подобрать квартиру"

// SearchRequest is the body of an ai-search request. Budget (in millions of
// rubles) and Rooms may be sent as numbers or strings.
type SearchRequest struct {
	Query       string `json:"query"`
	CityID      string `json:"cityId,omitempty"`
	Budget      any    `json:"budget,omitempty"`
	Rooms       any    `json:"rooms,omitempty"`
	Preferences any    `json:"preferences,omitempty"`
}

const systemPromptTemplate = `Ты — умный AI-помощник по подбору новостроек. Ты помогаешь пользователям найти идеальную квартиру.

Доступные жилые комплексы:
%s

Твоя задача:
1. Проанализировать запрос пользователя
2. Учесть его предпочтения: бюджет (%s), количество комнат (%s), особые пожелания
3. Порекомендовать 1-3 наиболее подходящих комплекса из списка
4. Объяснить, почему каждый комплекс подходит

Формат ответа:
- Краткий дружелюбный ответ на русском языке
- Для каждой рекомендации: название, почему подходит, ключевые преимущества
- Используй эмодзи для наглядности
- В конце добавь ID рекомендованных комплексов в формате: [IDS: id1, id2, id3]

Если запрос не связан с недвижимостью, вежливо направь пользователя к теме поиска жилья.`

// BuildSystemPrompt renders the assistant instructions with the available
// complexes embedded as indented JSON.
func BuildSystemPrompt(entries []catalog.PromptEntry, budget, rooms any) (string, error) {
	if entries == nil {
		entries = []catalog.PromptEntry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return "", fmt.Errorf("encoding complexes: %w", err)
	}

	budgetText := "не указан"
	if s, ok := present(budget); ok {
		budgetText = "до " + s + " млн ₽"
	}
	roomsText := "не указано"
	if s, ok := present(rooms); ok {
		roomsText = s
	}

	complexes := strings.TrimSuffix(buf.String(), "\n")
	return fmt.Sprintf(systemPromptTemplate, complexes, budgetText, roomsText), nil
}

// BuildChatRequest assembles the streamed gateway request for a search.
func BuildChatRequest(model string, complexes []catalog.Complex, req SearchRequest) (*llm.ChatRequest, error) {
	system, err := BuildSystemPrompt(catalog.PromptEntries(complexes), req.Budget, req.Rooms)
	if err != nil {
		return nil, err
	}

	query := req.Query
	if query == "" {
		query = DefaultQuery
	}

	return &llm.ChatRequest{
		Model: model,
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleSystem, system),
			llm.NewTextMessage(llm.RoleUser, query),
		},
		Stream: true,
	}, nil
}

// present formats an optional scalar, treating null, zero, false and the
// empty string as absent.
func present(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case bool:
		return "true", t
	case float64:
		if t == 0 {
			return "", false
		}
		return fmt.Sprint(t), true
	case json.Number:
		return t.String(), t.String() != "0"
	default:
		return fmt.Sprint(t), true
	}
}
