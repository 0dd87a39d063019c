package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// TelnetClient is a Telnet test client. Output read past a ReadUntil match
// is kept for the next call.
type TelnetClient struct {
	conn   net.Conn
	t      *testing.T
	buffer string
}

// NewTelnetClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}
	t.Cleanup(func() { conn.Close() })

	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil reads until substr appears and returns the output up to and
// including the match.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns the consumed output, or fails the test on timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	if out, ok := c.take(substr); ok {
		return out
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	tmp := make([]byte, 4096)
	for {
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.buffer += string(tmp[:n])
			if out, ok := c.take(substr); ok {
				return out
			}
		}
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, c.buffer, err)
		}
	}
}

func (c *TelnetClient) take(substr string) (string, bool) {
	idx := strings.Index(c.buffer, substr)
	if idx < 0 {
		return "", false
	}
	end := idx + len(substr)
	out := c.buffer[:end]
	c.buffer = c.buffer[end:]
	return out, true
}

// Send writes a line of text to the server, appending \r\n.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
