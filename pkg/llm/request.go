package llm

// ChatRequest is a chat-completions request as sent to the gateway.
type ChatRequest struct {
	// Model name (e.g., "google/gemini-3-flash-preview")
	Model string `json:"model"`

	// Conversation messages, system prompt first
	Messages []Message `json:"messages"`

	// Whether to stream the response as server-sent events
	Stream bool `json:"stream"`

	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}
