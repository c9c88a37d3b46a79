package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/w93163red/LivCap-Translate/pkg/gateway/types"
)

func TestFormatChatCompletionResponse(t *testing.T) {
	resp := FormatChatCompletionResponse("req-123", "gemini-3.0-flash", "Hello")

	if resp.ID != "chatcmpl-req-123" {
		t.Errorf("ID = %q, want %q", resp.ID, "chatcmpl-req-123")
	}
	if resp.Object != "chat.completion" {
		t.Errorf("Object = %q, want %q", resp.Object, "chat.completion")
	}
	if resp.Created == 0 {
		t.Error("Created is zero")
	}
	if resp.Model != "gemini-3.0-flash" {
		t.Errorf("Model = %q, want %q", resp.Model, "gemini-3.0-flash")
	}
	if len(resp.Choices) != 1 {
		t.Fatalf("len(Choices) = %d, want 1", len(resp.Choices))
	}

	choice := resp.Choices[0]
	if choice.Index != 0 {
		t.Errorf("Index = %d, want 0", choice.Index)
	}
	if choice.Message.Role != "assistant" {
		t.Errorf("Role = %q, want %q", choice.Message.Role, "assistant")
	}
	if choice.Message.Content != "Hello" {
		t.Errorf("Content = %v, want %q", choice.Message.Content, "Hello")
	}
	if choice.FinishReason != "stop" {
		t.Errorf("FinishReason = %q, want %q", choice.FinishReason, "stop")
	}

	if resp.Usage.TotalTokens != 0 || resp.Usage.PromptTokens != 0 || resp.Usage.CompletionTokens != 0 {
		t.Errorf("Usage = %+v, want all zeros", resp.Usage)
	}
}

func TestFormatChatCompletionResponseEmptyText(t *testing.T) {
	resp := FormatChatCompletionResponse("req-1", "gemini-3.0-flash", "")

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	// Empty completions serialize as an explicit empty string, not an
	// omitted field.
	if !strings.Contains(string(data), `"content":""`) {
		t.Errorf("serialized response missing empty content field: %s", data)
	}
}

func TestFormatStreamChunks(t *testing.T) {
	t.Run("role chunk", func(t *testing.T) {
		chunk := FormatStreamRoleChunk("chatcmpl-1", "gemini-3.0-flash")
		if chunk.Object != "chat.completion.chunk" {
			t.Errorf("Object = %q, want %q", chunk.Object, "chat.completion.chunk")
		}
		if chunk.Choices[0].Delta.Role != "assistant" {
			t.Errorf("Delta.Role = %q, want %q", chunk.Choices[0].Delta.Role, "assistant")
		}
		if chunk.Choices[0].Delta.Content != "" {
			t.Errorf("Delta.Content = %q, want empty", chunk.Choices[0].Delta.Content)
		}
		if chunk.Choices[0].FinishReason != nil {
			t.Errorf("FinishReason = %v, want nil", *chunk.Choices[0].FinishReason)
		}
	})

	t.Run("content chunk", func(t *testing.T) {
		chunk := FormatStreamChunk("chatcmpl-1", "gemini-3.0-flash", "Hel")
		if chunk.Choices[0].Delta.Content != "Hel" {
			t.Errorf("Delta.Content = %q, want %q", chunk.Choices[0].Delta.Content, "Hel")
		}
		if chunk.Choices[0].Delta.Role != "" {
			t.Errorf("Delta.Role = %q, want empty", chunk.Choices[0].Delta.Role)
		}

		data, err := json.Marshal(chunk)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"finish_reason":null`) {
			t.Errorf("intermediate chunk must carry finish_reason null: %s", data)
		}
	})

	t.Run("finish chunk", func(t *testing.T) {
		chunk := FormatStreamFinishChunk("chatcmpl-1", "gemini-3.0-flash")
		if chunk.Choices[0].FinishReason == nil || *chunk.Choices[0].FinishReason != "stop" {
			t.Errorf("FinishReason = %v, want stop", chunk.Choices[0].FinishReason)
		}

		data, err := json.Marshal(chunk)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"delta":{}`) {
			t.Errorf("finish chunk must carry an empty delta: %s", data)
		}
	})
}

func TestEventStreamSend(t *testing.T) {
	rec := httptest.NewRecorder()
	stream := StartEventStream(rec)

	if err := stream.Send(FormatStreamChunk("chatcmpl-1", "gemini-3.0-flash", "hi")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "data: ") {
		t.Errorf("frame missing data prefix: %q", body)
	}
	if !strings.HasSuffix(body, "\n\n") {
		t.Errorf("frame missing blank line terminator: %q", body)
	}
	if !rec.Flushed {
		t.Error("frame was not flushed to the client")
	}

	// The payload between the framing must be self-contained JSON.
	payload := strings.TrimSuffix(strings.TrimPrefix(body, "data: "), "\n\n")
	var decoded types.ChatCompletionStreamChunk
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Errorf("frame payload is not standalone JSON: %v", err)
	}
}

func TestEventStreamClose(t *testing.T) {
	rec := httptest.NewRecorder()
	stream := StartEventStream(rec)

	if err := stream.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := rec.Body.String(); got != "data: [DONE]\n\n" {
		t.Errorf("body = %q, want %q", got, "data: [DONE]\n\n")
	}
}

func TestEventStreamFail(t *testing.T) {
	rec := httptest.NewRecorder()
	stream := StartEventStream(rec)

	if err := stream.Fail(types.NewAuthenticationError("bad key")); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "data: ") || !strings.HasSuffix(body, "\n\n") {
		t.Errorf("error frame not SSE framed: %q", body)
	}
	if !strings.Contains(body, `"authentication_error"`) {
		t.Errorf("error frame missing error type: %q", body)
	}
	if !strings.Contains(body, `"error"`) {
		t.Errorf("error frame missing error envelope: %q", body)
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := RespondError(rec, types.NewRateLimitError("slow down")); err != nil {
		t.Fatalf("RespondError() error = %v", err)
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp types.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.Type != types.ErrorTypeRateLimit {
		t.Errorf("Type = %q, want %q", resp.Error.Type, types.ErrorTypeRateLimit)
	}
}

func TestStartEventStream(t *testing.T) {
	rec := httptest.NewRecorder()
	StartEventStream(rec)

	want := map[string]string{
		"Content-Type":      "text/event-stream",
		"Cache-Control":     "no-cache",
		"Connection":        "keep-alive",
		"X-Accel-Buffering": "no",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
	// Headers go out immediately so the client sees the stream open
	// before the first delta exists.
	if !rec.Flushed {
		t.Error("headers were not flushed at stream start")
	}
}
