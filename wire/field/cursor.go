// Package field implements the recursive field-descriptor engine used
// to parse and re-emit packet bodies: primitive codecs, composite
// descriptors (sub-structures, arrays, switches, optionals) and the
// PacketValue tree they produce, with dirty-tracking for cheap
// re-serialization.
package field

import (
	"fmt"

	"github.com/seiftnesse/mcproxy/wire"
)

// ErrBufferUnderflow is returned when a descriptor needs more bytes
// than a Cursor has remaining. Unlike wire.ErrPartialFrame this is not
// a control-flow signal: by the time field parsing runs, the frame
// has already been fully buffered by the ring buffer, so running out
// of bytes mid-packet is a real protocol violation.
var ErrBufferUnderflow = wire.ErrBufferUnderflow

// Cursor is a read position over an already fully-buffered frame
// payload. Field descriptors parse against a Cursor rather than an
// io.Reader because a frame's length is always known up front once it
// has been taken off the ring buffer.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for parsing from its start.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read offset into the underlying buffer.
func (c *Cursor) Pos() int { return c.pos }

// Buf returns the entire underlying buffer (not just what remains).
func (c *Cursor) Buf() []byte { return c.buf }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Take returns the next n bytes and advances past them.
func (c *Cursor) Take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferUnderflow, n, c.Remaining())
	}
	out := c.buf[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// TakeByte reads a single byte.
func (c *Cursor) TakeByte() (byte, error) {
	b, err := c.Take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// RemainingBytes returns a view of every byte not yet consumed,
// without advancing the cursor. Used by descriptors that decode a
// varint prefix (VarInt, String, Array counts) before taking its bytes.
func (c *Cursor) RemainingBytes() []byte {
	return c.buf[c.pos:]
}

// Slice returns a copy of the bytes consumed between start and the
// cursor's current position. It is used to cache a freshly parsed
// node's original wire encoding verbatim.
func (c *Cursor) Slice(start int) []byte {
	out := make([]byte, c.pos-start)
	copy(out, c.buf[start:c.pos])
	return out
}
