package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/w93163red/LivCap-Translate/pkg/gateway/types"
)

// FormatChatCompletionResponse wraps a bulk completion in OpenAI chat
// completion format. The backend reports no token counts, so usage is
// always zeroed. An empty text is wrapped as an empty content string, not
// omitted.
func FormatChatCompletionResponse(requestID, model, text string) *types.ChatCompletionResponse {
	return &types.ChatCompletionResponse{
		ID:      fmt.Sprintf("chatcmpl-%s", requestID),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []types.Choice{
			{
				Index: 0,
				Message: types.Message{
					Role:    "assistant",
					Content: text,
				},
				FinishReason: "stop",
			},
		},
		Usage: types.Usage{},
	}
}

// FormatStreamRoleChunk builds the opening chunk of a stream: it announces
// the assistant role and carries no content.
func FormatStreamRoleChunk(responseID, model string) *types.ChatCompletionStreamChunk {
	chunk := newStreamChunk(responseID, model)
	chunk.Choices[0].Delta.Role = "assistant"
	return chunk
}

// FormatStreamChunk builds a content-bearing chunk for one backend delta.
func FormatStreamChunk(responseID, model, delta string) *types.ChatCompletionStreamChunk {
	chunk := newStreamChunk(responseID, model)
	chunk.Choices[0].Delta.Content = delta
	return chunk
}

// FormatStreamFinishChunk builds the terminal chunk: an empty delta with
// finish_reason "stop".
func FormatStreamFinishChunk(responseID, model string) *types.ChatCompletionStreamChunk {
	chunk := newStreamChunk(responseID, model)
	finishReason := "stop"
	chunk.Choices[0].FinishReason = &finishReason
	return chunk
}

func newStreamChunk(responseID, model string) *types.ChatCompletionStreamChunk {
	return &types.ChatCompletionStreamChunk{
		ID:      responseID,
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []types.StreamChoice{
			{Index: 0},
		},
	}
}

// RespondJSON writes body as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, body interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		return fmt.Errorf("encode response body: %w", err)
	}
	return nil
}

// RespondError writes errResp with the HTTP status its error type maps to.
func RespondError(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return RespondJSON(w, errResp.Error.HTTPStatusCode(), errResp)
}

// EventStream frames one streaming completion as Server-Sent Events.
// Starting a stream commits the response: the status line goes out 200
// with the first frame, so later failures must travel in-band via Fail.
type EventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// StartEventStream sets the event-stream headers on w, pushes them to
// the client, and returns the frame writer. X-Accel-Buffering keeps
// intermediary proxies from batching events the gateway already flushed.
func StartEventStream(w http.ResponseWriter) *EventStream {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	// The client sees the stream open before the first backend delta
	// arrives, which can be seconds later.
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}
	return &EventStream{w: w, flusher: flusher}
}

// frame writes one data frame and pushes it to the client immediately.
func (s *EventStream) frame(payload []byte) error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write event frame: %w", err)
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Send writes one completion chunk.
func (s *EventStream) Send(chunk *types.ChatCompletionStreamChunk) error {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("encode stream chunk: %w", err)
	}
	return s.frame(payload)
}

// Fail reports a mid-stream failure as an in-band error frame.
func (s *EventStream) Fail(errResp *types.ErrorResponse) error {
	payload, err := json.Marshal(errResp)
	if err != nil {
		return fmt.Errorf("encode stream error: %w", err)
	}
	return s.frame(payload)
}

// Close terminates the stream with the [DONE] sentinel OpenAI SDKs wait
// for, after success and failure alike.
func (s *EventStream) Close() error {
	return s.frame([]byte("[DONE]"))
}
