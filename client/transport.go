package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/craftnet/rconsole/protocol"
)

// Transport owns one TCP connection to the remote console endpoint. It
// provides frame-granular reads and writes with per-operation deadlines;
// partial TCP segments are buffered internally until a full frame is
// available to decode.
type Transport struct {
	conn        net.Conn
	addr        string
	readTimeout time.Duration

	// Undecoded bytes carried between ReadFrame calls.
	buf []byte

	closed atomic.Bool
}

// Dial opens a TCP connection to addr with a bounded connect timeout.
func Dial(ctx context.Context, addr string, connectTimeout, readTimeout time.Duration) (*Transport, error) {
	dialer := net.Dialer{Timeout: connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return &Transport{
		conn:        conn,
		addr:        addr,
		readTimeout: readTimeout,
	}, nil
}

// Addr returns the remote address this transport is connected to.
func (t *Transport) Addr() string {
	return t.addr
}

// WriteFrame encodes and writes a single frame.
func (t *Transport) WriteFrame(requestID, packetType int32, body []byte) error {
	if t.closed.Load() {
		return net.ErrClosed
	}

	if err := t.conn.SetWriteDeadline(time.Now().Add(t.readTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	data := protocol.Encode(requestID, packetType, body)
	if _, err := t.conn.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads the next full frame, blocking at most the read timeout.
// Bytes beyond the decoded frame are kept for the next call.
func (t *Transport) ReadFrame() (protocol.Frame, error) {
	if t.closed.Load() {
		return protocol.Frame{}, net.ErrClosed
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(t.readTimeout)); err != nil {
		return protocol.Frame{}, fmt.Errorf("set read deadline: %w", err)
	}

	chunk := make([]byte, 4096)
	for {
		frame, consumed, err := protocol.Decode(t.buf)
		if err == nil {
			t.buf = t.buf[consumed:]
			return frame, nil
		}
		if !errors.Is(err, protocol.ErrIncomplete) {
			return protocol.Frame{}, err
		}

		n, err := t.conn.Read(chunk)
		if n > 0 {
			t.buf = append(t.buf, chunk[:n]...)
		}
		if err != nil {
			return protocol.Frame{}, fmt.Errorf("read frame: %w", err)
		}
	}
}

// Close shuts the connection down. Safe to call more than once; a blocked
// reader observes the closure and returns an error rather than hang.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	return t.conn.Close()
}
