package client

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/craftnet/rconsole/protocol"
)

// fakeServer is an in-process remote-console server with just enough
// behavior to exercise the client: password check with the -1 rejection
// id, scripted multi-fragment responses, probe echoes, stale frame
// injection and deliberate silence or disconnects.
type fakeServer struct {
	t        *testing.T
	listener net.Listener

	password string

	// fragments maps a command to the response bodies sent for it, each
	// in its own frame. Unscripted commands echo "ran:<command>".
	fragments map[string][]string

	// staleID, when nonzero, is sent as a bogus correlation id in an
	// extra frame before every real response.
	staleID int32

	// delay postpones command responses, keeping the client blocked.
	delay time.Duration

	// silent drops exec requests entirely so the client times out.
	silent bool

	// closeAfterExecs closes the connection after this many executed
	// commands (0 means never).
	closeAfterExecs int

	mu    sync.Mutex
	conns []net.Conn
	wg    sync.WaitGroup
}

func newFakeServer(t *testing.T, password string) *fakeServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := &fakeServer{
		t:        t,
		listener: listener,
		password: password,
	}

	s.wg.Add(1)
	go s.acceptLoop()
	return s
}

func (s *fakeServer) addr() string {
	return s.listener.Addr().String()
}

func (s *fakeServer) port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *fakeServer) close() {
	_ = s.listener.Close()
	s.mu.Lock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *fakeServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *fakeServer) serve(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	var buf []byte
	chunk := make([]byte, 4096)
	execs := 0
	pendingClose := false

	readFrame := func() (protocol.Frame, bool) {
		for {
			frame, consumed, err := protocol.Decode(buf)
			if err == nil {
				buf = buf[consumed:]
				return frame, true
			}
			n, err := conn.Read(chunk)
			if n > 0 {
				buf = append(buf, chunk[:n]...)
			}
			if err != nil {
				return protocol.Frame{}, false
			}
		}
	}

	send := func(id, packetType int32, body string) {
		_, _ = conn.Write(protocol.Encode(id, packetType, []byte(body)))
	}

	for {
		frame, ok := readFrame()
		if !ok {
			return
		}

		switch {
		case frame.Type == protocol.TypeAuth:
			if string(frame.Body) == s.password {
				send(frame.RequestID, protocol.TypeAuthResponse, "")
			} else {
				send(protocol.AuthFailedID, protocol.TypeAuthResponse, "")
			}

		case frame.RequestID == protocol.AuthFailedID:
			if s.silent {
				continue
			}
			// Reassembly probe: echo the -1 id back.
			send(protocol.AuthFailedID, protocol.TypeResponseValue, "")
			if pendingClose {
				return
			}

		default:
			if s.silent {
				continue
			}
			if s.delay > 0 {
				time.Sleep(s.delay)
			}
			if s.staleID != 0 {
				send(s.staleID, protocol.TypeResponseValue, "stale")
			}

			cmd := string(frame.Body)
			fragments, scripted := s.fragments[cmd]
			if !scripted {
				fragments = []string{"ran:" + cmd}
			}
			for _, fragment := range fragments {
				send(frame.RequestID, protocol.TypeResponseValue, fragment)
			}

			execs++
			if s.closeAfterExecs > 0 && execs >= s.closeAfterExecs {
				// Finish the exchange (the probe echo) before dropping
				// the connection, so the response itself completes.
				pendingClose = true
			}
		}
	}
}
