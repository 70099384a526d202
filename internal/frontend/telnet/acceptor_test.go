package telnet

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dicetool/internal/config"
)

// echoHandler echoes lines back, recording the session ids it saw.
type echoHandler struct {
	sessionCount atomic.Int32
	mu           sync.Mutex
	ids          map[string]bool
}

func (h *echoHandler) HandleSession(_ context.Context, conn *Conn) error {
	h.sessionCount.Add(1)
	h.mu.Lock()
	if h.ids == nil {
		h.ids = make(map[string]bool)
	}
	h.ids[conn.SessionID()] = true
	h.mu.Unlock()
	for {
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "quit" {
			_ = conn.WriteLine("bye")
			return nil
		}
		_ = conn.WriteLine("echo: " + line)
	}
}

func startAcceptor(t *testing.T, handler SessionHandler) *Acceptor {
	t.Helper()
	cfg := config.TelnetConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	acc := NewAcceptor(cfg, handler, zaptest.NewLogger(t))
	errCh := make(chan error, 1)
	go func() { errCh <- acc.ListenAndServe() }()

	require.Eventually(t, func() bool {
		return acc.IsRunning() && acc.Addr() != ""
	}, 2*time.Second, 10*time.Millisecond, "acceptor did not start in time")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = acc.Stop(ctx)
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("acceptor did not stop in time")
		}
	})
	return acc
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Consume the option negotiation.
	buf := make([]byte, 3)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{IAC, WILL, OptSuppressGoAhead}, buf[:n])
	return conn
}

func readSome(t *testing.T, conn net.Conn) string {
	t.Helper()
	buf := make([]byte, 256)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestAcceptorEchoAndQuit(t *testing.T) {
	handler := &echoHandler{}
	acc := startAcceptor(t, handler)
	conn := dial(t, acc.Addr())

	_, err := conn.Write([]byte("hello\r\n"))
	require.NoError(t, err)
	assert.Contains(t, readSome(t, conn), "echo: hello")

	_, _ = conn.Write([]byte("quit\r\n"))
	assert.Contains(t, readSome(t, conn), "bye")

	require.Eventually(t, func() bool { return acc.Sessions() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), handler.sessionCount.Load())
}

func TestAcceptorAssignsDistinctSessionIDs(t *testing.T) {
	handler := &echoHandler{}
	acc := startAcceptor(t, handler)

	const numClients = 3
	for i := 0; i < numClients; i++ {
		conn := dial(t, acc.Addr())
		_, _ = conn.Write([]byte("quit\r\n"))
		readSome(t, conn)
	}

	require.Eventually(t, func() bool { return acc.Sessions() == 0 }, 2*time.Second, 10*time.Millisecond)
	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Len(t, handler.ids, numClients)
}

func TestAcceptorStopEndsIdleSessions(t *testing.T) {
	handler := &echoHandler{}
	acc := startAcceptor(t, handler)
	conn := dial(t, acc.Addr())

	require.Eventually(t, func() bool { return acc.Sessions() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, acc.Stop(ctx))
	assert.False(t, acc.IsRunning())
	assert.Equal(t, 0, acc.Sessions())

	assert.Contains(t, readSome(t, conn), "Server shutting down.")
}

func TestAcceptorListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	acc := NewAcceptor(config.TelnetConfig{Host: "127.0.0.1", Port: port}, &echoHandler{}, zaptest.NewLogger(t))
	assert.Error(t, acc.ListenAndServe())
}
