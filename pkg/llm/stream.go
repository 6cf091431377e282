package llm

// ChatCompletionChunk is a single streamed chat-completions delta, carried
// as the payload of one "data: " line.
type ChatCompletionChunk struct {
	ID      string        `json:"id,omitempty"`
	Object  string        `json:"object,omitempty"`
	Created int64         `json:"created,omitempty"`
	Model   string        `json:"model,omitempty"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// ChunkChoice is one completion alternative within a chunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason,omitempty"`
}

// ChunkDelta is the incremental part of a choice. Content is absent on
// role-only and finish chunks.
type ChunkDelta struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Usage contains token counts, typically only present on the final chunk.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// NewContentChunk builds a chunk carrying a single content fragment.
func NewContentChunk(content string) ChatCompletionChunk {
	return ChatCompletionChunk{
		Object:  "chat.completion.chunk",
		Choices: []ChunkChoice{{Delta: ChunkDelta{Content: &content}}},
	}
}
