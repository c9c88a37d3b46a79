// Package gemini implements the backend session on top of the Google genai
// SDK, talking to the Gemini API with an API key.
package gemini

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/w93163red/LivCap-Translate/pkg/backend"
)

// Config contains the settings for the Gemini session.
type Config struct {
	// APIKey authenticates against the Gemini API.
	APIKey string

	// Timeout bounds a single non-streaming generation call.
	// Zero means no deadline beyond the caller's context.
	Timeout time.Duration
}

// Client is the production backend.Session. It wraps one genai.Client and
// hands out completions from it. The zero value is not usable; construct
// with NewClient and call Init before generating.
type Client struct {
	config Config
	logger *slog.Logger

	mu     sync.RWMutex
	client *genai.Client
}

// NewClient creates an uninitialized Gemini session.
func NewClient(config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config: config,
		logger: logger.With("component", "backend.gemini"),
	}
}

// Init builds the underlying genai client. It is idempotent: a live client
// is kept as-is. Credential problems surface as *backend.AuthError.
func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return nil
	}

	if c.config.APIKey == "" {
		return &backend.AuthError{Message: "no API key configured (set GEMINI_API_KEY)"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return classifyError(err, "", c.config.Timeout)
	}

	c.client = client
	c.logger.DebugContext(ctx, "gemini client initialized")
	return nil
}

// Alive reports whether the session holds a usable client handle.
func (c *Client) Alive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client != nil
}

// Close drops the client handle. The genai client holds no connections that
// outlive requests, so dropping the handle is the whole teardown. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		c.client = nil
		c.logger.Debug("gemini client closed")
	}
	return nil
}

// Generate runs one blocking completion and returns the full text. A
// response with no candidates yields an empty string, not an error.
func (c *Client) Generate(ctx context.Context, req *backend.GenerateRequest) (string, error) {
	client, err := c.handle()
	if err != nil {
		return "", err
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), generateConfig(req))
	if err != nil {
		return "", classifyError(err, req.Model, c.config.Timeout)
	}
	return resp.Text(), nil
}

// GenerateStream runs one streaming completion. Chunks arrive on the
// returned channel in backend emission order; a mid-stream failure is
// delivered as a final chunk with Error set. The channel closes when the
// backend finishes, fails, or ctx is cancelled.
func (c *Client) GenerateStream(ctx context.Context, req *backend.GenerateRequest) (<-chan *backend.StreamChunk, error) {
	client, err := c.handle()
	if err != nil {
		return nil, err
	}

	ch := make(chan *backend.StreamChunk)
	go func() {
		defer close(ch)
		for resp, err := range client.Models.GenerateContentStream(ctx, req.Model, genai.Text(req.Prompt), generateConfig(req)) {
			if err != nil {
				select {
				case ch <- &backend.StreamChunk{Error: classifyError(err, req.Model, 0)}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case ch <- &backend.StreamChunk{Delta: resp.Text()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// handle returns the live genai client or an error when the session has not
// been initialized. Callers are expected to Init first; this guard exists so
// a missed Init degrades into a classified failure instead of a nil deref.
func (c *Client) handle() (*genai.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.client == nil {
		return nil, &backend.UpstreamError{Message: "gemini session not initialized"}
	}
	return c.client, nil
}

// generateConfig maps the request knobs onto the SDK config. Returns nil
// when no knob is set so the API applies its own defaults.
func generateConfig(req *backend.GenerateRequest) *genai.GenerateContentConfig {
	if req.Temperature == nil && req.MaxTokens == nil {
		return nil
	}
	cfg := &genai.GenerateContentConfig{}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*req.MaxTokens)
	}
	return cfg
}
