package wire

import "errors"

// ErrPartialFrame is not a protocol violation: it signals that the
// ring buffer does not yet hold enough bytes to satisfy a read. The
// caller must leave read position untouched and try again once more
// bytes have arrived.
var ErrPartialFrame = errors.New("wire: partial frame")

// Protocol and framing violations. These close the endpoint that
// observed them; see endpoint.Endpoint.Close.
var (
	ErrMalformedVarInt = errors.New("wire: malformed varint")
	ErrBufferOverflow  = errors.New("wire: buffer overflow")
	ErrBufferUnderflow = errors.New("wire: buffer underflow")
)
