//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/w93163red/LivCap-Translate/pkg/backend"
	"github.com/w93163red/LivCap-Translate/pkg/backend/backendtest"
	"github.com/w93163red/LivCap-Translate/pkg/config"
	"github.com/w93163red/LivCap-Translate/pkg/gateway/types"
	"github.com/w93163red/LivCap-Translate/pkg/models"
	"github.com/w93163red/LivCap-Translate/pkg/server"
	"github.com/w93163red/LivCap-Translate/pkg/session"
)

// TestGatewayIntegration tests the end-to-end flow from HTTP request to
// backend response through the fully assembled handler chain.
func TestGatewayIntegration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Script the backend: one bulk turn, one streaming turn, and a turn
	// whose failure exercises the error mapping.
	mock := backendtest.NewSession(
		backendtest.Turn{Text: "This is a test response from the mock backend."},
		backendtest.Turn{Deltas: []string{"This ", "is ", "a test."}},
		backendtest.Turn{Err: &backend.AuthError{Message: "API key not valid"}},
	)

	manager := session.NewManager(mock, session.Config{}, logger)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("failed to start session manager: %v", err)
	}
	defer manager.Stop()

	registry := models.NewRegistry(logger)

	srv := server.NewServer(config.DefaultConfig(), server.Options{
		Sessions: manager,
		Models:   registry,
	})

	testServer := httptest.NewServer(srv.Handler())
	defer testServer.Close()

	t.Run("chat completion request", func(t *testing.T) {
		reqBody := types.ChatCompletionRequest{
			Model: "gpt-4o",
			Messages: []types.Message{
				{Role: "user", Content: "Hello, world!"},
			},
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}

		resp, err := http.Post(testServer.URL+"/v1/chat/completions", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to send request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Status code = %v, want %v", resp.StatusCode, http.StatusOK)
		}

		var chatResp types.ChatCompletionResponse
		if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if chatResp.Object != "chat.completion" {
			t.Errorf("Object = %v, want chat.completion", chatResp.Object)
		}

		// The response echoes the requested name; resolution to the Gemini
		// model happens on the backend side of the boundary.
		if chatResp.Model != "gpt-4o" {
			t.Errorf("Model = %v, want gpt-4o", chatResp.Model)
		}

		if got := mock.Requests()[0].Model; got != "gemini-3.0-flash" {
			t.Errorf("backend model = %v, want gemini-3.0-flash", got)
		}

		if len(chatResp.Choices) == 0 {
			t.Fatal("No choices in response")
		}

		if chatResp.Choices[0].Message.Role != "assistant" {
			t.Errorf("Message role = %v, want assistant", chatResp.Choices[0].Message.Role)
		}

		if chatResp.Choices[0].Message.Content == "" {
			t.Error("Message content should not be empty")
		}

		if chatResp.Choices[0].FinishReason != "stop" {
			t.Errorf("FinishReason = %v, want stop", chatResp.Choices[0].FinishReason)
		}
	})

	t.Run("streaming completion", func(t *testing.T) {
		reqBody := types.ChatCompletionRequest{
			Model: "gemini-3.0-flash",
			Messages: []types.Message{
				{Role: "user", Content: "Hello"},
			},
			Stream: true,
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}

		resp, err := http.Post(testServer.URL+"/v1/chat/completions", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to send request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Status code = %v, want %v", resp.StatusCode, http.StatusOK)
		}

		if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
			t.Errorf("Content-Type = %v, want text/event-stream", ct)
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("Failed to read stream: %v", err)
		}

		events := parseSSE(t, string(raw))
		if len(events) < 3 {
			t.Fatalf("expected at least 3 events (role, delta, finish), got %d", len(events))
		}

		// First chunk announces the assistant role.
		if events[0].Choices[0].Delta.Role != "assistant" {
			t.Errorf("first chunk role = %v, want assistant", events[0].Choices[0].Delta.Role)
		}

		// Concatenated deltas must reproduce the backend output.
		var text strings.Builder
		for _, ev := range events {
			text.WriteString(ev.Choices[0].Delta.Content)
		}
		if text.String() != "This is a test." {
			t.Errorf("streamed text = %q, want %q", text.String(), "This is a test.")
		}

		// The terminal chunk carries finish_reason stop.
		last := events[len(events)-1]
		if last.Choices[0].FinishReason == nil || *last.Choices[0].FinishReason != "stop" {
			t.Errorf("last chunk finish_reason = %v, want stop", last.Choices[0].FinishReason)
		}

		if !strings.Contains(string(raw), "data: [DONE]") {
			t.Error("stream missing [DONE] sentinel")
		}
	})

	t.Run("backend auth failure", func(t *testing.T) {
		reqBody := types.ChatCompletionRequest{
			Model: "gemini-3.0-flash",
			Messages: []types.Message{
				{Role: "user", Content: "Hello"},
			},
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}

		resp, err := http.Post(testServer.URL+"/v1/chat/completions", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to send request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Status code = %v, want %v", resp.StatusCode, http.StatusUnauthorized)
		}

		var errResp types.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if errResp.Error.Type != types.ErrorTypeAuthentication {
			t.Errorf("Error type = %v, want %v", errResp.Error.Type, types.ErrorTypeAuthentication)
		}
		if errResp.Error.Code != types.ErrorCodeAuth {
			t.Errorf("Error code = %v, want %v", errResp.Error.Code, types.ErrorCodeAuth)
		}
	})

	t.Run("invalid request", func(t *testing.T) {
		// Missing messages
		reqBody := types.ChatCompletionRequest{
			Model: "gemini-3.0-flash",
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}

		resp, err := http.Post(testServer.URL+"/v1/chat/completions", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to send request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Status code = %v, want %v", resp.StatusCode, http.StatusBadRequest)
		}

		var errResp types.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if errResp.Error.Type != types.ErrorTypeInvalidRequest {
			t.Errorf("Error type = %v, want %v", errResp.Error.Type, types.ErrorTypeInvalidRequest)
		}
	})

	t.Run("unknown model", func(t *testing.T) {
		reqBody := types.ChatCompletionRequest{
			Model: "claude-3-opus",
			Messages: []types.Message{
				{Role: "user", Content: "Hello"},
			},
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}

		resp, err := http.Post(testServer.URL+"/v1/chat/completions", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to send request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Status code = %v, want %v", resp.StatusCode, http.StatusBadRequest)
		}

		var errResp types.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if errResp.Error.Code != types.ErrorCodeInvalidModel {
			t.Errorf("Error code = %v, want %v", errResp.Error.Code, types.ErrorCodeInvalidModel)
		}
	})

	t.Run("model catalog", func(t *testing.T) {
		for _, path := range []string{"/v1/models", "/models"} {
			resp, err := http.Get(testServer.URL + path)
			if err != nil {
				t.Fatalf("Failed to list models at %s: %v", path, err)
			}

			if resp.StatusCode != http.StatusOK {
				t.Errorf("%s status code = %v, want %v", path, resp.StatusCode, http.StatusOK)
			}

			var list types.ModelList
			if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
				t.Fatalf("Failed to decode model list: %v", err)
			}
			resp.Body.Close()

			if list.Object != "list" {
				t.Errorf("Object = %v, want list", list.Object)
			}
			if len(list.Data) != 3 {
				t.Errorf("model count = %d, want 3", len(list.Data))
			}
			for _, m := range list.Data {
				if m.OwnedBy != "google" {
					t.Errorf("model %s owned_by = %v, want google", m.ID, m.OwnedBy)
				}
			}
		}
	})

	t.Run("health check", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/health")
		if err != nil {
			t.Fatalf("Failed to send health check: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Status code = %v, want %v", resp.StatusCode, http.StatusOK)
		}

		var health struct {
			Status      string `json:"status"`
			ClientReady bool   `json:"client_ready"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatalf("Failed to decode health response: %v", err)
		}

		if health.Status != "ok" {
			t.Errorf("status = %v, want ok", health.Status)
		}
		if !health.ClientReady {
			t.Error("client_ready = false, want true after manager start")
		}
	})
}

// parseSSE decodes every data frame of an event stream, excluding the
// [DONE] sentinel.
func parseSSE(t *testing.T, raw string) []types.ChatCompletionStreamChunk {
	t.Helper()

	var events []types.ChatCompletionStreamChunk
	for _, line := range strings.Split(raw, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			continue
		}

		var chunk types.ChatCompletionStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			t.Fatalf("failed to decode SSE payload %q: %v", payload, err)
		}
		if len(chunk.Choices) == 0 {
			t.Fatalf("SSE chunk with no choices: %q", payload)
		}
		events = append(events, chunk)
	}
	return events
}
