package telnet

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet protocol bytes per RFC 854.
const (
	IAC  byte = 255 // Interpret As Command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // Sub-negotiation Begin
	SE   byte = 240 // Sub-negotiation End

	OptSuppressGoAhead byte = 3
)

// MaxLineLength bounds one input line; longer input is truncated.
const MaxLineLength = 1024

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("telnet: connection closed")

// Conn is one console connection: line input with Telnet commands stripped,
// and serialized CRLF output.
type Conn struct {
	raw       net.Conn
	reader    *bufio.Reader
	sessionID string

	readTimeout  time.Duration
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewConn wraps raw for the session identified by sessionID.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, sessionID string, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		sessionID:    sessionID,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// SessionID returns the id assigned when the connection was accepted.
func (c *Conn) SessionID() string {
	return c.sessionID
}

// Negotiate asks the client to run without go-ahead signalling.
func (c *Conn) Negotiate() error {
	return c.write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next input line without its terminator. CR, LF, and
// CRLF all end a line; Telnet command sequences and control characters
// other than tab are dropped. Bytes past MaxLineLength are discarded.
//
// Postcondition: On error, the partial line read so far is returned with it.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line strings.Builder
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), err
			}
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			// Only swallow an LF that already arrived; a split CRLF yields
			// one extra empty line rather than a blocked read.
			if c.reader.Buffered() > 0 {
				if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
					_, _ = c.reader.ReadByte()
				}
			}
			return line.String(), nil
		case b < 32 && b != '\t':
		case line.Len() < MaxLineLength:
			line.WriteByte(b)
		}
	}
}

// skipCommand consumes the remainder of a Telnet command whose IAC byte has
// already been read.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
		return err
	case SB:
		prevIAC := false
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if prevIAC && b == SE {
				return nil
			}
			prevIAC = b == IAC && !prevIAC
		}
	}
	return nil
}

// WriteLine sends text followed by CRLF.
func (c *Conn) WriteLine(text string) error {
	return c.write([]byte(text + "\r\n"))
}

// WriteLines sends every line, each followed by CRLF, in a single write so
// output from concurrent writers never interleaves mid-block.
func (c *Conn) WriteLines(lines ...string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\r\n")
	}
	return c.write([]byte(b.String()))
}

// WritePrompt sends prompt without a line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	return c.write([]byte(prompt))
}

func (c *Conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// Close closes the connection. Closing twice is harmless.
//
// Postcondition: Later writes return ErrClosed; a blocked ReadLine returns an error.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
