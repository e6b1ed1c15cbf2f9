package client

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Kind classifies a client failure so callers can decide what to surface
// to an operator. Every kind is recoverable via Manager.Reconnect; none
// should crash the process.
type Kind int

const (
	KindUnknown Kind = iota
	KindDNSFailure
	KindConnectionRefused
	KindConnectTimeout
	KindAuthFailed
	KindReadTimeout
	KindProtocolDesync
	KindBusy
	KindClosed
)

// String returns a string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindDNSFailure:
		return "dns_failure"
	case KindConnectionRefused:
		return "connection_refused"
	case KindConnectTimeout:
		return "connect_timeout"
	case KindAuthFailed:
		return "auth_failed"
	case KindReadTimeout:
		return "read_timeout"
	case KindProtocolDesync:
		return "protocol_desync"
	case KindBusy:
		return "busy"
	case KindClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Error pairs a Kind with the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the Kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// classifyDialError maps a dial failure onto a diagnostic kind so an
// operator can tell an unresolvable host from a host that is up but not
// listening from a host that is silently dropping packets.
func classifyDialError(err error) Kind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNSFailure
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindConnectionRefused
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindConnectTimeout
	}
	return KindUnknown
}
