package types

// ChatCompletionResponse is the body of a non-streaming completion. The
// object field always reads "chat.completion" and Created is in Unix
// seconds, matching what OpenAI SDK response classes expect to parse.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`

	// Usage is serialized with all counts at zero. The backend session
	// never reports token counts, and SDKs that sum usage tolerate zeros
	// better than a missing object.
	Usage Usage `json:"usage"`
}

// Choice carries one generated message. The gateway produces exactly one
// choice per completion and its finish_reason always reads "stop".
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage mirrors the OpenAI token accounting block.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionStreamChunk is one SSE data frame of a streaming
// completion, with object "chat.completion.chunk". Every frame of one
// stream shares the same ID, Created, and Model.
type ChatCompletionStreamChunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []StreamChoice `json:"choices"`
}

// StreamChoice carries the incremental payload of one frame.
type StreamChoice struct {
	Index int   `json:"index"`
	Delta Delta `json:"delta"`

	// FinishReason is null on every frame except the terminal one, which
	// carries "stop". The pointer keeps the null visible on the wire.
	FinishReason *string `json:"finish_reason"`
}

// Delta is the frame-to-frame difference of the message under
// construction. The first frame announces the assistant role with no
// content; later frames carry content only.
type Delta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}
