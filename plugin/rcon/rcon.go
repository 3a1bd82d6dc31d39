// Package rcon implements a minimal Source RCON client, the Go
// translation of mc4p's Rcon class: authenticate once, then send
// commands over the same TCP connection, reconnecting transparently
// if the remote admin server drops it.
package rcon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const (
	packetTypeCommand        int32 = 2
	packetTypeAuth           int32 = 3
	packetTypeAuthResponseID       = -1
)

// Client is a Source RCON client bound to one backend address. It is
// safe for concurrent use: commands are serialized the way mc4p's
// BoundedSemaphore serialized _send calls, since RCON multiplexes
// request/response pairs over a single stream with no request id
// matching beyond "next reply belongs to the last request".
type Client struct {
	addr     string
	password string
	timeout  time.Duration

	mu   sync.Mutex
	conn net.Conn
}

// New returns a Client that dials addr lazily, on first Execute.
func New(addr, password string, timeout time.Duration) *Client {
	return &Client{addr: addr, password: password, timeout: timeout}
}

// Execute runs cmd on the remote server, reconnecting and
// re-authenticating first if no connection is currently open or the
// existing one has gone bad.
func (c *Client) Execute(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.reconnect(); err != nil {
			return "", err
		}
	}

	reply, err := c.send(packetTypeCommand, cmd)
	if err != nil {
		if err := c.reconnect(); err != nil {
			return "", fmt.Errorf("rcon: reconnect after failed command: %w", err)
		}
		return c.send(packetTypeCommand, cmd)
	}
	return reply, nil
}

// Close ends the underlying connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) reconnect() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return fmt.Errorf("rcon: dial %s: %w", c.addr, err)
	}
	c.conn = conn
	if _, err := c.send(packetTypeAuth, c.password); err != nil {
		conn.Close()
		c.conn = nil
		return fmt.Errorf("rcon: authenticate: %w", err)
	}
	return nil
}

// send writes one request packet and reads the matching response,
// following the Source RCON framing: int32 length, int32 request id,
// int32 type, null-terminated body, trailing pad byte.
func (c *Client) send(packetType int32, body string) (string, error) {
	out := new(bytes.Buffer)
	binary.Write(out, binary.LittleEndian, int32(0))
	binary.Write(out, binary.LittleEndian, packetType)
	out.WriteString(body)
	out.Write([]byte{0x00, 0x00})

	length := int32(out.Len())
	if err := binary.Write(c.conn, binary.LittleEndian, length); err != nil {
		return "", fmt.Errorf("rcon: write length: %w", err)
	}
	if _, err := c.conn.Write(out.Bytes()); err != nil {
		return "", fmt.Errorf("rcon: write payload: %w", err)
	}

	var replyLen int32
	if err := binary.Read(c.conn, binary.LittleEndian, &replyLen); err != nil {
		return "", fmt.Errorf("rcon: read reply length: %w", err)
	}
	payload := make([]byte, replyLen)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return "", fmt.Errorf("rcon: read reply payload: %w", err)
	}

	var requestID, replyType int32
	reader := bytes.NewReader(payload)
	binary.Read(reader, binary.LittleEndian, &requestID)
	binary.Read(reader, binary.LittleEndian, &replyType)
	if requestID == packetTypeAuthResponseID {
		return "", fmt.Errorf("rcon: authentication failed")
	}

	body2 := payload[8 : len(payload)-2]
	return string(body2), nil
}
