package client

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/craftnet/rconsole/config"
	"github.com/rs/zerolog"
)

// ConnectionState is the coarse connection status the Manager exposes.
// It is owned solely by the Manager; callers observe, never mutate.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateAuthFailed
	StateNetworkError
)

// String returns a string representation of the connection state.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateAuthFailed:
		return "auth_failed"
	case StateNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// Manager owns the Session lifecycle: connect, authenticate, classify
// failures, and expose an explicit reconnect. There is deliberately no
// automatic retry loop: a rejected password or a disabled remote console
// needs an operator to fix the server configuration first, and retrying
// would only regenerate the same diagnostic.
//
// All entry points share one mutex, so concurrent callers are serialized:
// a second Run blocks until the first completes rather than interleaving
// frames on the socket.
type Manager struct {
	cfg *config.Config

	mu      sync.Mutex // guards session and serializes all operations
	session *Session

	state  atomic.Int32
	logger zerolog.Logger
}

// NewManager creates a Manager for the configured endpoint. No connection
// is attempted until EnsureConnected or Run.
func NewManager(cfg *config.Config, logger zerolog.Logger) *Manager {
	m := &Manager{
		cfg:    cfg,
		logger: logger.With().Str("component", "connection_manager").Logger(),
	}
	m.state.Store(int32(StateDisconnected))
	return m
}

// State returns the current connection state.
func (m *Manager) State() ConnectionState {
	return ConnectionState(m.state.Load())
}

// EnsureConnected brings up an authenticated session if one is not
// already live. A lightweight TCP reachability probe runs before the full
// handshake so failures classify precisely: DNS failure vs refused
// connection vs timeout, and only a reachable server that rejects the
// password yields AuthFailed.
func (m *Manager) EnsureConnected(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureConnectedLocked(ctx)
}

func (m *Manager) ensureConnectedLocked(ctx context.Context) error {
	if m.session != nil && m.session.State() == SessionReady {
		m.state.Store(int32(StateConnected))
		return nil
	}

	m.teardownLocked()
	m.state.Store(int32(StateConnecting))
	addr := m.cfg.Server.Addr()

	if err := m.probe(ctx, addr); err != nil {
		m.state.Store(int32(StateNetworkError))
		return err
	}

	session, err := Connect(ctx, addr, m.cfg.Timeouts.Connect, m.cfg.Timeouts.Read, m.logger)
	if err != nil {
		m.state.Store(int32(StateNetworkError))
		return err
	}

	if err := session.Authenticate(m.cfg.Server.Password); err != nil {
		_ = session.Close()
		if KindOf(err) == KindAuthFailed {
			m.state.Store(int32(StateAuthFailed))
		} else {
			m.state.Store(int32(StateNetworkError))
		}
		return err
	}

	m.session = session
	m.state.Store(int32(StateConnected))
	m.logger.Info().Str("server_addr", addr).Msg("connected and authenticated")
	return nil
}

// probe performs a connect-and-close reachability check, distinct from
// the session handshake, purely to produce a precise diagnostic.
func (m *Manager) probe(ctx context.Context, addr string) error {
	dialer := net.Dialer{Timeout: m.cfg.Timeouts.Connect}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		kind := classifyDialError(err)
		m.logger.Warn().Err(err).Str("kind", kind.String()).Msg("server unreachable")
		return newError(kind, fmt.Errorf("probe %s: %w", addr, err))
	}
	_ = conn.Close()
	return nil
}

// Reconnect tears down any existing session and connects from scratch.
// Operator-triggered; reconnecting always builds a fresh Session and
// Transport pair rather than resetting state in place.
func (m *Manager) Reconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info().Msg("reconnecting")
	m.teardownLocked()
	return m.ensureConnectedLocked(ctx)
}

// Run executes one command, connecting first if needed. On any failure
// the state is downgraded and the broken session discarded, so the next
// Run starts with a fresh EnsureConnected instead of reusing a dead
// session. The error is surfaced to the caller, never escalated.
func (m *Manager) Run(ctx context.Context, command string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureConnectedLocked(ctx); err != nil {
		return "", err
	}

	out, err := m.session.Execute(command)
	if err != nil {
		m.teardownLocked()
		if KindOf(err) == KindAuthFailed {
			m.state.Store(int32(StateAuthFailed))
		} else {
			m.state.Store(int32(StateNetworkError))
		}
		return "", err
	}
	return out, nil
}

// Close releases the current session, leaving the Manager disconnected
// but reusable.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
	m.state.Store(int32(StateDisconnected))
	return nil
}

func (m *Manager) teardownLocked() {
	if m.session != nil {
		_ = m.session.Close()
		m.session = nil
	}
}
