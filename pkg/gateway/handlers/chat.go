package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/w93163red/LivCap-Translate/pkg/backend"
	"github.com/w93163red/LivCap-Translate/pkg/gateway"
	"github.com/w93163red/LivCap-Translate/pkg/gateway/middleware"
	"github.com/w93163red/LivCap-Translate/pkg/gateway/types"
	"github.com/w93163red/LivCap-Translate/pkg/models"
	"github.com/w93163red/LivCap-Translate/pkg/usage"
)

// ChatHandler serves OpenAI-style chat completion requests over the
// shared backend session. It translates the request into a single
// prompt, resolves the model name before the session is touched, and
// renders the backend reply in OpenAI response shape, bulk or SSE.
type ChatHandler struct {
	sessions SessionInvoker
	models   ModelResolver
	limiter  UsageLimiter
	recorder UsageRecorder
	metrics  CompletionMetrics
}

// NewChatHandler creates a chat completion handler. limiter and
// recorder may be nil; a nil limiter admits everything and a nil
// recorder disables usage recording.
func NewChatHandler(sessions SessionInvoker, resolver ModelResolver, limiter UsageLimiter, recorder UsageRecorder) *ChatHandler {
	return &ChatHandler{
		sessions: sessions,
		models:   resolver,
		limiter:  limiter,
		recorder: recorder,
	}
}

// SetMetrics attaches a completion metrics sink. A nil sink (the
// default) disables completion metrics.
func (h *ChatHandler) SetMetrics(m CompletionMetrics) {
	h.metrics = m
}

// ServeHTTP runs the shared front half of the request path: method
// check, parse, model resolution, cap admission. Streaming requests
// then branch into serveStream; bulk requests finish inline.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFrom(ctx)
	began := time.Now()

	if r.Method != http.MethodPost {
		gateway.RespondError(w, types.NewInvalidRequestError(
			fmt.Sprintf("chat completions only accept POST, not %s", r.Method),
			"method",
			gateway.CodeMethodNotAllowed,
		))
		return
	}

	chatReq, err := gateway.DecodeChatRequest(r)
	if err != nil {
		slog.WarnContext(ctx, "invalid chat completion request",
			"request_id", requestID,
			"error", err)
		gateway.RespondError(w, gateway.MapError(err))
		return
	}

	if chatReq.Model == "" {
		chatReq.Model = models.DefaultModel
	}

	// Resolution happens before the session is touched, so an unknown
	// name never costs an invocation slot.
	model, err := h.models.Resolve(chatReq.Model)
	if err != nil {
		slog.WarnContext(ctx, "model resolution failed",
			"request_id", requestID,
			"model", chatReq.Model,
			"error", err)
		gateway.RespondError(w, gateway.MapError(err))
		return
	}

	if h.limiter != nil {
		if err := h.limiter.Allow(model); err != nil {
			slog.WarnContext(ctx, "daily cap rejected request",
				"request_id", requestID,
				"model", model,
				"error", err)
			gateway.RespondError(w, gateway.MapError(err))
			return
		}
	}

	genReq := &backend.GenerateRequest{
		Model:       model,
		Prompt:      gateway.BuildPrompt(chatReq.Messages),
		Temperature: chatReq.Temperature,
		MaxTokens:   chatReq.MaxTokens,
	}

	if chatReq.Stream {
		h.serveStream(w, r, chatReq, genReq, began)
		return
	}

	slog.InfoContext(ctx, "handling completion",
		"request_id", requestID,
		"model", chatReq.Model,
		"resolved_model", model,
		"messages", len(chatReq.Messages))

	backendStart := time.Now()
	text, err := h.sessions.Invoke(ctx, genReq)
	backendLatency := time.Since(backendStart)

	if err != nil {
		errResp := gateway.MapError(err)
		slog.ErrorContext(ctx, "chat completion failed",
			"request_id", requestID,
			"model", model,
			"backend_latency_ms", backendLatency.Milliseconds(),
			"error", err)
		h.record(chatReq, model, requestID, errResp.Error.Type, 0, time.Since(began))
		gateway.RespondError(w, errResp)
		return
	}

	resp := gateway.FormatChatCompletionResponse(requestID, chatReq.Model, text)

	slog.InfoContext(ctx, "chat completion succeeded",
		"request_id", requestID,
		"model", model,
		"backend_latency_ms", backendLatency.Milliseconds())

	h.record(chatReq, model, requestID, "", 0, time.Since(began))

	if err := gateway.RespondJSON(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "response write failed",
			"request_id", requestID,
			"error", err)
	}
}

// serveStream delivers the backend reply as server-sent events: one
// role event, one event per non-empty delta, a finish event, then the
// [DONE] sentinel. A backend failure mid-stream turns into a single
// in-band error event followed by [DONE]; the HTTP status stays 200
// because headers are long gone.
func (h *ChatHandler) serveStream(w http.ResponseWriter, r *http.Request, chatReq *types.ChatCompletionRequest, genReq *backend.GenerateRequest, began time.Time) {
	ctx := r.Context()
	requestID := middleware.RequestIDFrom(ctx)

	slog.InfoContext(ctx, "handling streaming completion",
		"request_id", requestID,
		"model", chatReq.Model,
		"resolved_model", genReq.Model,
		"messages", len(chatReq.Messages))

	stream := gateway.StartEventStream(w)

	chunks, err := h.sessions.InvokeStream(ctx, genReq)
	if err != nil {
		// Headers are already written, so the failure goes in-band.
		errResp := gateway.MapError(err)
		slog.ErrorContext(ctx, "failed to open stream",
			"request_id", requestID,
			"model", genReq.Model,
			"error", err)
		stream.Fail(errResp)
		stream.Close()
		h.record(chatReq, genReq.Model, requestID, errResp.Error.Type, 0, time.Since(began))
		return
	}

	responseID := fmt.Sprintf("chatcmpl-%s", requestID)

	if err := stream.Send(gateway.FormatStreamRoleChunk(responseID, chatReq.Model)); err != nil {
		slog.WarnContext(ctx, "client gone before stream start",
			"request_id", requestID,
			"error", err)
		return
	}

	deltas := 0
	errorType := ""

	for chunk := range chunks {
		if chunk.Error != nil {
			errResp := gateway.MapError(chunk.Error)
			errorType = errResp.Error.Type
			slog.ErrorContext(ctx, "stream failed mid-flight",
				"request_id", requestID,
				"model", genReq.Model,
				"deltas_sent", deltas,
				"error", chunk.Error)
			stream.Fail(errResp)
			break
		}

		// Empty deltas carry nothing worth framing
		if chunk.Delta == "" {
			continue
		}

		if err := stream.Send(gateway.FormatStreamChunk(responseID, chatReq.Model, chunk.Delta)); err != nil {
			slog.WarnContext(ctx, "failed to write stream chunk",
				"request_id", requestID,
				"error", err)
			return
		}
		deltas++
		if h.metrics != nil {
			h.metrics.RecordStreamDelta(genReq.Model)
		}

		select {
		case <-ctx.Done():
			// Client disconnected; cancellation stops the backend read
			// for this caller only
			slog.WarnContext(ctx, "client disconnected during stream",
				"request_id", requestID,
				"deltas_sent", deltas)
			return
		default:
		}
	}

	if errorType == "" {
		if err := stream.Send(gateway.FormatStreamFinishChunk(responseID, chatReq.Model)); err != nil {
			slog.WarnContext(ctx, "failed to write finish chunk",
				"request_id", requestID,
				"error", err)
			return
		}
	}

	stream.Close()

	slog.InfoContext(ctx, "streaming chat completion finished",
		"request_id", requestID,
		"model", genReq.Model,
		"deltas_sent", deltas,
		"latency_ms", time.Since(began).Milliseconds())

	h.record(chatReq, genReq.Model, requestID, errorType, deltas, time.Since(began))
}

// record reports one finished request to the metrics collector and the
// usage recorder, when they are configured.
func (h *ChatHandler) record(chatReq *types.ChatCompletionRequest, model, requestID, errorType string, deltas int, latency time.Duration) {
	if h.metrics != nil {
		mode := "bulk"
		if chatReq.Stream {
			mode = "stream"
		}
		h.metrics.RecordCompletion(model, mode, errorType, latency)
	}

	if h.recorder == nil {
		return
	}

	status := usage.StatusOK
	if errorType != "" {
		status = usage.StatusError
	}

	h.recorder.Record(&usage.Record{
		RequestID:      requestID,
		Model:          model,
		RequestedModel: chatReq.Model,
		Messages:       len(chatReq.Messages),
		Stream:         chatReq.Stream,
		Status:         status,
		ErrorType:      errorType,
		Chunks:         deltas,
		Latency:        latency,
		CreatedAt:      time.Now(),
	})
}
