// Package backendtest provides a scripted backend.Session for tests.
//
// A Session is loaded with a sequence of Turns; each generation call
// consumes the next turn and replays its scripted outcome. The mock records
// every request, init, and close so tests can assert on ordering, pacing,
// and lifecycle behavior without a real Gemini client.
package backendtest

import (
	"context"
	"sync"
	"time"

	"github.com/w93163red/LivCap-Translate/pkg/backend"
)

// Turn scripts the outcome of one generation call.
type Turn struct {
	// Text is the bulk result returned by Generate.
	Text string

	// Deltas are the incremental chunks emitted by GenerateStream.
	Deltas []string

	// Err is returned by Generate, or emitted in-band by GenerateStream.
	Err error

	// ErrAfter is the number of deltas GenerateStream emits before Err.
	// Ignored when Err is nil.
	ErrAfter int

	// Delay is simulated backend latency applied before responding.
	Delay time.Duration
}

// Session is a scripted implementation of backend.Session.
type Session struct {
	mu         sync.Mutex
	turns      []Turn
	next       int
	alive      bool
	initErr    error
	initCalls  int
	closeCalls int
	requests   []*backend.GenerateRequest
	starts     []time.Time
}

var _ backend.Session = (*Session)(nil)

// NewSession creates a mock session that replays the given turns in order.
func NewSession(turns ...Turn) *Session {
	return &Session{turns: turns}
}

// Init marks the session alive, or returns the error set by FailInit.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initCalls++
	if s.initErr != nil {
		return s.initErr
	}
	s.alive = true
	return nil
}

// Alive reports the scripted liveness flag.
func (s *Session) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive
}

// Close marks the session dead and counts the call.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	s.alive = false
	return nil
}

// Generate consumes the next turn and returns its bulk outcome.
func (s *Session) Generate(ctx context.Context, req *backend.GenerateRequest) (string, error) {
	turn, err := s.take(req)
	if err != nil {
		return "", err
	}
	if err := sleep(ctx, turn.Delay); err != nil {
		return "", err
	}
	if turn.Err != nil {
		return "", turn.Err
	}
	return turn.Text, nil
}

// GenerateStream consumes the next turn and replays its deltas on a channel.
// When the turn carries an error, ErrAfter deltas are emitted first and the
// error arrives as the final chunk.
func (s *Session) GenerateStream(ctx context.Context, req *backend.GenerateRequest) (<-chan *backend.StreamChunk, error) {
	turn, err := s.take(req)
	if err != nil {
		return nil, err
	}

	ch := make(chan *backend.StreamChunk)
	go func() {
		defer close(ch)
		if err := sleep(ctx, turn.Delay); err != nil {
			return
		}

		deltas := turn.Deltas
		if turn.Err != nil && turn.ErrAfter < len(deltas) {
			deltas = deltas[:turn.ErrAfter]
		}
		for _, d := range deltas {
			select {
			case ch <- &backend.StreamChunk{Delta: d}:
			case <-ctx.Done():
				return
			}
		}
		if turn.Err != nil {
			select {
			case ch <- &backend.StreamChunk{Error: turn.Err}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}

// FailInit makes every subsequent Init call return err until cleared with a
// nil argument.
func (s *Session) FailInit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initErr = err
}

// SetAlive overrides the liveness flag, simulating a backend that died
// underneath the gateway.
func (s *Session) SetAlive(alive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alive = alive
}

// Requests returns a copy of every GenerateRequest seen so far.
func (s *Session) Requests() []*backend.GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*backend.GenerateRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Starts returns the wall-clock start time of every generation call, in
// call order. Useful for asserting invocation pacing.
func (s *Session) Starts() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.starts))
	copy(out, s.starts)
	return out
}

// InitCount returns how many times Init has been called.
func (s *Session) InitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initCalls
}

// CloseCount returns how many times Close has been called.
func (s *Session) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

// take records the request and pops the next scripted turn. Generation on a
// dead session is an ordering bug in the caller, so it fails loudly.
func (s *Session) take(req *backend.GenerateRequest) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.alive {
		return Turn{}, &backend.UpstreamError{Message: "backendtest: generate on dead session"}
	}

	s.requests = append(s.requests, req)
	s.starts = append(s.starts, time.Now())

	if s.next >= len(s.turns) {
		return Turn{}, &backend.UpstreamError{Message: "backendtest: no scripted turns remaining"}
	}
	turn := s.turns[s.next]
	s.next++
	return turn, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
