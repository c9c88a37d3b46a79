package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/w93163red/LivCap-Translate/pkg/backend"
)

// State describes where the managed session is in its lifecycle.
type State int32

const (
	// StateUninitialized means no session handle exists yet.
	StateUninitialized State = iota

	// StateInitializing means an initialization is in flight.
	StateInitializing

	// StateReady means the session handle exists and reported itself live
	// at the last check.
	StateReady

	// StateNotReady means the handle exists but the backend reported it
	// dead; the next invocation re-creates it.
	StateNotReady
)

// String returns the lowercase state name used in logs and health output.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateNotReady:
		return "not_ready"
	default:
		return "unknown"
	}
}

// Config contains the settings for the session manager.
type Config struct {
	// MinInterval is the minimum spacing between the starts of successive
	// backend invocations. Zero disables pacing.
	MinInterval time.Duration

	// Metrics receives lifecycle counters. nil disables reporting.
	Metrics Metrics
}

// Metrics receives counters from the session lifecycle. Implementations
// must be safe for concurrent use.
type Metrics interface {
	// SessionRecreated is called when a dead session is torn down and
	// transparently re-created inside an invocation.
	SessionRecreated()

	// PaceWaited reports how long an invocation sat at the pacing gate
	// before it was allowed to start.
	PaceWaited(d time.Duration)
}

// Manager owns the one backend session shared by every request.
//
// Lifecycle transitions (Start, Stop, and the transparent re-create inside
// an invocation) are serialized under a single mutex, so at most one
// initialization runs at any time and concurrent callers wait for it
// instead of starting their own. Generation calls themselves run outside
// that mutex; only the pacing gate orders them.
type Manager struct {
	session backend.Session
	pacer   *Pacer
	logger  *slog.Logger
	metrics Metrics

	mu    sync.Mutex // serializes lifecycle transitions
	state atomic.Int32
}

// NewManager creates a manager around the given session. The session is not
// initialized until Start or the first invocation.
func NewManager(session backend.Session, config Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		session: session,
		pacer:   NewPacer(config.MinInterval),
		logger:  logger.With("component", "session"),
		metrics: config.Metrics,
	}
}

// Start initializes the backend session. It is idempotent: a Ready session
// is left untouched. Callers arriving during an in-flight initialization
// block until it settles and share its outcome.
func (m *Manager) Start(ctx context.Context) error {
	return m.ensureReady(ctx)
}

// Stop tears the session down and returns the manager to Uninitialized.
// It is idempotent; stopping an uninitialized manager is a no-op. The next
// invocation after Stop initializes a fresh session.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if State(m.state.Load()) == StateUninitialized {
		return nil
	}

	err := m.session.Close()
	m.state.Store(int32(StateUninitialized))
	if err != nil {
		m.logger.Warn("backend session close failed", "error", err)
		return err
	}
	m.logger.Info("backend session stopped")
	return nil
}

// Invoke runs one blocking generation against the shared session. It
// re-creates a dead session transparently, waits at the pacing gate, and
// only then calls the backend. Errors come back already typed for the
// error mapper.
func (m *Manager) Invoke(ctx context.Context, req *backend.GenerateRequest) (string, error) {
	if err := m.ensureReady(ctx); err != nil {
		return "", err
	}
	if err := m.waitForTurn(ctx); err != nil {
		return "", err
	}
	return m.session.Generate(ctx, req)
}

// InvokeStream runs one streaming generation against the shared session,
// with the same readiness and pacing discipline as Invoke. The returned
// channel follows the backend.Session.GenerateStream contract.
func (m *Manager) InvokeStream(ctx context.Context, req *backend.GenerateRequest) (<-chan *backend.StreamChunk, error) {
	if err := m.ensureReady(ctx); err != nil {
		return nil, err
	}
	if err := m.waitForTurn(ctx); err != nil {
		return nil, err
	}
	return m.session.GenerateStream(ctx, req)
}

// waitForTurn queues the caller at the pacing gate and reports the time
// spent there.
func (m *Manager) waitForTurn(ctx context.Context) error {
	start := time.Now()
	if err := m.pacer.Wait(ctx); err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.PaceWaited(time.Since(start))
	}
	return nil
}

// Ready reports whether the session is initialized and the backend still
// considers it live. It never blocks on an in-flight initialization, so it
// is safe to call from health checks.
func (m *Manager) Ready() bool {
	return State(m.state.Load()) == StateReady && m.session.Alive()
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// LastInvocation returns the recorded start time of the most recent backend
// invocation, or the zero time if none has started.
func (m *Manager) LastInvocation() time.Time {
	return m.pacer.LastStart()
}

// ensureReady brings the session to Ready, initializing or re-creating it
// as needed. Holding the mutex across the whole transition is what makes
// initialization mutually exclusive: a second caller blocks here, then
// finds the session Ready and returns without a second init.
func (m *Manager) ensureReady(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := State(m.state.Load())
	if state == StateReady {
		if m.session.Alive() {
			return nil
		}
		// The backend declared the session dead underneath us. Tear the
		// stale handle down and fall through to a fresh init. Teardown
		// errors are logged and ignored; the handle is unusable either way.
		m.state.Store(int32(StateNotReady))
		m.logger.Warn("backend session no longer live, recreating")
		if m.metrics != nil {
			m.metrics.SessionRecreated()
		}
		if err := m.session.Close(); err != nil {
			m.logger.Debug("stale session close failed", "error", err)
		}
	}

	m.state.Store(int32(StateInitializing))
	m.logger.Info("initializing backend session")

	if err := m.session.Init(ctx); err != nil {
		m.state.Store(int32(StateUninitialized))
		m.logger.Error("backend session initialization failed", "error", err)
		return err
	}

	m.state.Store(int32(StateReady))
	m.logger.Info("backend session ready")
	return nil
}
