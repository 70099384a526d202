package telnet

import (
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// pipeConn returns a Conn over one end of an in-memory pipe and the client
// end. Bytes written to the client end arrive at the Conn.
func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewConn(server, "test-session", 2*time.Second, 2*time.Second), client
}

func feed(client net.Conn, data []byte) {
	go func() {
		_, _ = client.Write(data)
	}()
}

func TestReadLine_Terminators(t *testing.T) {
	for name, input := range map[string]string{
		"crlf": "roll +3\r\n",
		"lf":   "roll +3\n",
		"cr":   "roll +3\r",
	} {
		t.Run(name, func(t *testing.T) {
			conn, client := pipeConn(t)
			feed(client, []byte(input))
			line, err := conn.ReadLine()
			require.NoError(t, err)
			assert.Equal(t, "roll +3", line)
		})
	}
}

func TestReadLine_StripsTelnetCommands(t *testing.T) {
	conn, client := pipeConn(t)
	input := []byte{IAC, DO, OptSuppressGoAhead, 'r', IAC, WILL, 1, ' ', '2', 'd', '6'}
	input = append(input, IAC, SB, 24, 0, 'x', IAC, IAC, 'y', IAC, SE)
	input = append(input, '\r', '\n')
	feed(client, input)

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "r 2d6", line)
}

func TestReadLine_DropsControlCharacters(t *testing.T) {
	conn, client := pipeConn(t)
	feed(client, []byte("d\x07 \t20\x1b\n"))
	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "d \t20", line)
}

func TestReadLine_TruncatesLongInput(t *testing.T) {
	conn, client := pipeConn(t)
	feed(client, []byte(strings.Repeat("x", MaxLineLength+500)+"\n"))
	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Len(t, line, MaxLineLength)
}

func TestReadLine_EOFReturnsPartial(t *testing.T) {
	conn, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte("partial"))
		client.Close()
	}()
	line, err := conn.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "partial", line)
}

func TestWriteLines_SingleBlock(t *testing.T) {
	conn, client := pipeConn(t)
	done := make(chan error, 1)
	go func() { done <- conn.WriteLines("one", "two") }()

	buf := make([]byte, 64)
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "one\r\ntwo\r\n", string(buf[:n]))
	require.NoError(t, <-done)
}

func TestWriteAfterClose(t *testing.T) {
	conn, _ := pipeConn(t)
	require.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
	assert.ErrorIs(t, conn.WriteLine("late"), ErrClosed)
}

func TestSessionID(t *testing.T) {
	conn, _ := pipeConn(t)
	assert.Equal(t, "test-session", conn.SessionID())
}

// Input without IAC or control bytes comes back unchanged.
func TestPropertyReadLinePassesPrintableText(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[ -~]{0,200}`).Draw(rt, "text")
		conn, client := pipeConn(t)
		feed(client, []byte(text+"\r\n"))
		line, err := conn.ReadLine()
		if err != nil {
			rt.Fatalf("ReadLine: %v", err)
		}
		if line != text {
			rt.Fatalf("ReadLine = %q, want %q", line, text)
		}
	})
}
