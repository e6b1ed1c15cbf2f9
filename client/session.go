package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/craftnet/rconsole/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionState represents the state of a protocol session.
type SessionState int32

const (
	SessionUnauthenticated SessionState = iota
	SessionAuthenticating
	SessionReady
	SessionFailed
	SessionClosed
)

// String returns a string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case SessionUnauthenticated:
		return "unauthenticated"
	case SessionAuthenticating:
		return "authenticating"
	case SessionReady:
		return "ready"
	case SessionFailed:
		return "failed"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session drives one authenticated conversation over one Transport: the
// auth handshake, then serialized command/response exchanges with
// request-id correlation and multi-packet response reassembly.
//
// A Session is not reentrant. At most one request may be in flight at a
// time; a concurrent Execute fails fast with KindBusy rather than risk
// interleaving frames on the socket. Destroying the Session closes the
// Transport. After any timeout or transport error the Session is closed
// for good; callers reconnect with a fresh Session instead of retrying
// in place, so stale response fragments can never bleed into a new
// exchange.
type Session struct {
	transport *Transport

	nextRequestID atomic.Int32
	state         atomic.Int32
	inflight      atomic.Bool
	closeOnce     sync.Once

	logger zerolog.Logger
}

// Connect dials the endpoint and returns an unauthenticated Session.
func Connect(ctx context.Context, addr string, connectTimeout, readTimeout time.Duration, logger zerolog.Logger) (*Session, error) {
	transport, err := Dial(ctx, addr, connectTimeout, readTimeout)
	if err != nil {
		return nil, newError(classifyDialError(err), err)
	}
	return NewSession(transport, logger), nil
}

// NewSession wraps an established Transport. The Session takes ownership
// of the transport and closes it when the Session closes.
func NewSession(transport *Transport, logger zerolog.Logger) *Session {
	s := &Session{
		transport: transport,
		logger: logger.With().
			Str("component", "session").
			Str("session_id", uuid.New().String()).
			Str("server_addr", transport.Addr()).
			Logger(),
	}
	s.state.Store(int32(SessionUnauthenticated))
	return s
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Authenticate performs the password handshake. The server signals a
// rejected password by echoing request id -1; any other id means success.
// Request-id matching, never packet-type matching, decides the outcome,
// because the protocol reuses the exec-command type value for the auth
// response.
func (s *Session) Authenticate(password string) error {
	if st := s.State(); st != SessionUnauthenticated {
		return newError(KindClosed, fmt.Errorf("authenticate in state %s", st))
	}
	s.state.Store(int32(SessionAuthenticating))

	requestID := s.nextRequestID.Add(1)
	s.logger.Debug().Int32("request_id", requestID).Msg("sending auth request")

	if err := s.transport.WriteFrame(requestID, protocol.TypeAuth, []byte(password)); err != nil {
		return s.fail(err)
	}

	for {
		frame, err := s.transport.ReadFrame()
		if err != nil {
			return s.fail(err)
		}

		switch frame.RequestID {
		case protocol.AuthFailedID:
			s.state.Store(int32(SessionFailed))
			s.logger.Warn().Msg("authentication rejected")
			return newError(KindAuthFailed, errors.New("server rejected password"))
		case requestID:
			s.state.Store(int32(SessionReady))
			s.logger.Info().Msg("authenticated")
			return nil
		default:
			// Deliberately stricter than treating any non -1 id as
			// success: some server builds emit a blank response frame
			// ahead of the auth reply, so only the echoed id completes
			// the handshake and everything else is discarded.
			s.logger.Warn().
				Int32("request_id", frame.RequestID).
				Int32("expected", requestID).
				Msg("discarding unexpected frame during handshake")
		}
	}
}

// Execute sends one command and returns the full response text. A logical
// response may be split across several response frames with no more-data
// flag, so an empty probe frame with request id -1 chases the real
// command; fragments for the command's id are accumulated until the -1
// echo (or an empty terminating body) arrives, then concatenated in
// arrival order.
func (s *Session) Execute(command string) (string, error) {
	if st := s.State(); st != SessionReady {
		return "", newError(KindClosed, fmt.Errorf("execute in state %s", st))
	}
	if !s.inflight.CompareAndSwap(false, true) {
		return "", newError(KindBusy, errors.New("request already in flight"))
	}
	defer s.inflight.Store(false)

	requestID := s.nextRequestID.Add(1)
	s.logger.Debug().Int32("request_id", requestID).Str("command", command).Msg("executing command")

	if err := s.transport.WriteFrame(requestID, protocol.TypeExecCommand, []byte(command)); err != nil {
		return "", s.fail(err)
	}
	if err := s.transport.WriteFrame(protocol.AuthFailedID, protocol.TypeExecCommand, nil); err != nil {
		return "", s.fail(err)
	}

	var parts []string
	gotFirst := false
	for {
		frame, err := s.transport.ReadFrame()
		if err != nil {
			return "", s.fail(err)
		}

		switch {
		case frame.RequestID == requestID:
			if gotFirst && len(frame.Body) == 0 {
				// Terminating empty fragment.
				return strings.Join(parts, ""), nil
			}
			gotFirst = true
			parts = append(parts, string(frame.Body))
		case frame.RequestID == protocol.AuthFailedID:
			// Echo of the probe: everything before it belongs to us.
			return strings.Join(parts, ""), nil
		default:
			s.logger.Warn().
				Int32("request_id", frame.RequestID).
				Int32("expected", requestID).
				Msg("discarding stale response frame")
		}
	}
}

// fail closes the session and classifies the underlying error. Frame
// misalignment cannot be resynchronized on a stream protocol, and a
// timed-out exchange may leave unread fragments on the wire, so the only
// safe recovery in either case is a fresh Session.
func (s *Session) fail(err error) error {
	kind := KindUnknown
	switch {
	case errors.Is(err, protocol.ErrMalformed):
		kind = KindProtocolDesync
	case errors.Is(err, net.ErrClosed):
		kind = KindClosed
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = KindReadTimeout
		}
	}

	s.logger.Error().Err(err).Str("kind", kind.String()).Msg("session broken")
	_ = s.Close()
	return newError(kind, err)
}

// Close releases the Transport. Idempotent and safe to call from any
// state; a reader blocked in Execute observes the closure and errors out.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.state.Store(int32(SessionClosed))
		err = s.transport.Close()
		s.logger.Debug().Msg("session closed")
	})
	return err
}
