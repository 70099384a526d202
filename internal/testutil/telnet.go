package testutil

import (
	"bufio"
	"fmt"
	"net"
	"regexp"
	"strings"
	"testing"
	"time"
)

// DefaultTimeout bounds each Expect when the caller does not pass one.
const DefaultTimeout = 5 * time.Second

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

const (
	iac  = 0xff
	will = 0xfb
	dont = 0xfe
)

// TelnetClient is a line-oriented console client for integration tests.
// Everything it returns has ANSI colors and Telnet commands removed.
type TelnetClient struct {
	conn   net.Conn
	reader *bufio.Reader
	t      testing.TB
	// pending is cleaned output read past the last match.
	pending string
	seen    strings.Builder
}

// NewTelnetClient dials addr.
//
// Precondition: addr must be a "host:port" with a listening server.
// Postcondition: Returns a connected client closed at test cleanup, or fails the test.
func NewTelnetClient(t testing.TB, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, DefaultTimeout)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &TelnetClient{conn: conn, reader: bufio.NewReader(conn), t: t}
}

// Clean removes ANSI color sequences and Telnet commands from s.
func Clean(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != iac || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		if s[i] >= will && s[i] <= dont {
			i++
		}
	}
	return ansiPattern.ReplaceAllString(b.String(), "")
}

// Expect reads until the cleaned output contains want and returns it up to
// and including the match. Text after the match is kept for the next call.
//
// Postcondition: Fails the test when want does not arrive within DefaultTimeout.
func (c *TelnetClient) Expect(want string) string {
	c.t.Helper()
	return c.ExpectWithin(want, DefaultTimeout)
}

// ExpectWithin is Expect with an explicit timeout.
func (c *TelnetClient) ExpectWithin(want string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	buf := make([]byte, 1024)
	for {
		out := Clean(c.pending)
		if i := strings.Index(out, want); i >= 0 {
			end := i + len(want)
			c.pending = out[end:]
			c.seen.WriteString(out[:end])
			return out[:end]
		}
		n, err := c.reader.Read(buf)
		c.pending += string(buf[:n])
		if err != nil {
			c.t.Fatalf("waiting for %q: got %q: %v", want, Clean(c.pending), err)
		}
	}
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(DefaultTimeout))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// SendAndExpect sends text and waits for want in the reply.
func (c *TelnetClient) SendAndExpect(text, want string) string {
	c.t.Helper()
	c.Send(text)
	return c.Expect(want)
}

// Transcript returns all cleaned output matched so far.
func (c *TelnetClient) Transcript() string {
	return c.seen.String()
}

// WaitClosed fails the test unless the server closes the connection
// within timeout.
func (c *TelnetClient) WaitClosed(timeout time.Duration) {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, 256)
	for {
		if _, err := c.reader.Read(buf); err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				c.t.Fatalf("connection still open after %s", timeout)
			}
			return
		}
	}
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}
