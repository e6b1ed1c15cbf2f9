package client

import (
	"context"
	"net"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/craftnet/rconsole/config"
	"github.com/rs/zerolog"
)

func testConfig(host string, port int, password string) *config.Config {
	cfg := &config.Config{
		Server: config.Server{Host: host, Port: port, Password: password},
		Timeouts: config.Timeouts{
			Connect: time.Second,
			Read:    time.Second,
		},
		PollInterval: time.Second,
	}
	return cfg
}

func TestClassifyDialError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "dns",
			err:  &net.DNSError{Err: "no such host", Name: "bogus.invalid"},
			want: KindDNSFailure,
		},
		{
			name: "refused",
			err:  &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
			want: KindConnectionRefused,
		},
		{
			name: "timeout",
			err:  &net.OpError{Op: "dial", Err: &timeoutError{}},
			want: KindConnectTimeout,
		},
		{
			name: "other",
			err:  os.ErrPermission,
			want: KindUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyDialError(tc.err); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

type timeoutError struct{}

func (*timeoutError) Error() string   { return "i/o timeout" }
func (*timeoutError) Timeout() bool   { return true }
func (*timeoutError) Temporary() bool { return true }

func TestManager_EnsureConnected(t *testing.T) {
	server := newFakeServer(t, "pw")
	defer server.close()

	manager := NewManager(testConfig("127.0.0.1", server.port(), "pw"), zerolog.Nop())
	defer manager.Close()

	if state := manager.State(); state != StateDisconnected {
		t.Fatalf("expected disconnected before connect, got %s", state)
	}

	if err := manager.EnsureConnected(context.Background()); err != nil {
		t.Fatalf("EnsureConnected failed: %v", err)
	}
	if state := manager.State(); state != StateConnected {
		t.Errorf("expected connected, got %s", state)
	}

	// Second call with a live session is a no-op.
	if err := manager.EnsureConnected(context.Background()); err != nil {
		t.Errorf("EnsureConnected on live session failed: %v", err)
	}
}

func TestManager_EnsureConnected_Refused(t *testing.T) {
	// Grab a port that nothing listens on.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()

	manager := NewManager(testConfig("127.0.0.1", port, "pw"), zerolog.Nop())
	defer manager.Close()

	err = manager.EnsureConnected(context.Background())
	if err == nil {
		t.Fatal("expected connection failure")
	}
	if kind := KindOf(err); kind != KindConnectionRefused {
		t.Errorf("expected KindConnectionRefused, got %s", kind)
	}
	if state := manager.State(); state != StateNetworkError {
		t.Errorf("expected network_error state, got %s", state)
	}
}

func TestManager_EnsureConnected_AuthFailed(t *testing.T) {
	server := newFakeServer(t, "correct")
	defer server.close()

	manager := NewManager(testConfig("127.0.0.1", server.port(), "wrong"), zerolog.Nop())
	defer manager.Close()

	err := manager.EnsureConnected(context.Background())
	if kind := KindOf(err); kind != KindAuthFailed {
		t.Fatalf("expected KindAuthFailed, got %v", err)
	}
	if state := manager.State(); state != StateAuthFailed {
		t.Errorf("expected auth_failed state, got %s", state)
	}
}

func TestManager_Run(t *testing.T) {
	server := newFakeServer(t, "pw")
	defer server.close()

	manager := NewManager(testConfig("127.0.0.1", server.port(), "pw"), zerolog.Nop())
	defer manager.Close()

	out, err := manager.Run(context.Background(), "list")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "ran:list" {
		t.Errorf("expected %q, got %q", "ran:list", out)
	}
}

// A dead session must not be reused: the Run after a socket-level close
// fails, and the one after that reconnects from scratch.
func TestManager_RunRecoversAfterServerClose(t *testing.T) {
	server := newFakeServer(t, "pw")
	server.closeAfterExecs = 1
	defer server.close()

	manager := NewManager(testConfig("127.0.0.1", server.port(), "pw"), zerolog.Nop())
	defer manager.Close()

	ctx := context.Background()

	if _, err := manager.Run(ctx, "first"); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	// The server hung up after the first command; this one fails and
	// downgrades the state.
	if _, err := manager.Run(ctx, "second"); err == nil {
		t.Fatal("expected failure on dead session")
	}
	if state := manager.State(); state == StateConnected {
		t.Fatal("state should be downgraded after session failure")
	}

	// The listener is still up, so the next Run reconnects with a fresh
	// session and succeeds.
	out, err := manager.Run(ctx, "third")
	if err != nil {
		t.Fatalf("Run after reconnect failed: %v", err)
	}
	if out != "ran:third" {
		t.Errorf("expected %q, got %q", "ran:third", out)
	}
	if state := manager.State(); state != StateConnected {
		t.Errorf("expected connected after recovery, got %s", state)
	}
}

func TestManager_Reconnect(t *testing.T) {
	server := newFakeServer(t, "pw")
	defer server.close()

	manager := NewManager(testConfig("127.0.0.1", server.port(), "pw"), zerolog.Nop())
	defer manager.Close()

	ctx := context.Background()
	if err := manager.EnsureConnected(ctx); err != nil {
		t.Fatalf("EnsureConnected failed: %v", err)
	}

	if err := manager.Reconnect(ctx); err != nil {
		t.Fatalf("Reconnect failed: %v", err)
	}
	if state := manager.State(); state != StateConnected {
		t.Errorf("expected connected after reconnect, got %s", state)
	}

	if _, err := manager.Run(ctx, "list"); err != nil {
		t.Errorf("Run after reconnect failed: %v", err)
	}
}

// Concurrent Run calls serialize on the manager lock: both complete, and
// neither response is corrupted by interleaved frames.
func TestManager_ConcurrentRunsSerialize(t *testing.T) {
	server := newFakeServer(t, "pw")
	server.delay = 50 * time.Millisecond
	defer server.close()

	manager := NewManager(testConfig("127.0.0.1", server.port(), "pw"), zerolog.Nop())
	defer manager.Close()

	commands := []string{"alpha", "bravo", "charlie", "delta"}
	var wg sync.WaitGroup
	for _, cmd := range commands {
		wg.Add(1)
		go func(cmd string) {
			defer wg.Done()
			out, err := manager.Run(context.Background(), cmd)
			if err != nil {
				t.Errorf("Run(%q) failed: %v", cmd, err)
				return
			}
			if out != "ran:"+cmd {
				t.Errorf("Run(%q): corrupted response %q", cmd, out)
			}
		}(cmd)
	}
	wg.Wait()
}
