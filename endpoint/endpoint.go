// Package endpoint drives one side of a proxied Minecraft connection:
// framing, compression, encryption, and dispatching parsed packets to
// registered handlers. A proxyctl.Session pairs two Endpoints, one per
// leg of the connection, and relays between them.
package endpoint

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/seiftnesse/mcproxy/logger"
	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/wire"
	"github.com/seiftnesse/mcproxy/wire/field"
)

// Handler processes one parsed packet. Returning false tells the
// endpoint the packet was consumed and should not be forwarded
// further by whatever default behavior the caller (proxyctl) attaches
// on top; returning true leaves the packet for that default behavior.
type Handler func(ep *Endpoint, val *field.Value) (forward bool, err error)

// Endpoint wraps one net.Conn leg of a proxied connection with the
// ring-buffered, frame-aware read/write path and the packet table
// appropriate to its current protocol state.
type Endpoint struct {
	conn net.Conn
	src  io.Reader // defaults to conn; SetReadLimiter wraps it
	name string

	in     *wire.RingBuffer
	out    *wire.RingBuffer
	reader *wire.FrameReader
	stream *protocol.StreamContext

	compressionThreshold int // shared with reader; negative disables

	mu       sync.Mutex
	handlers map[string][]Handler

	sendMu sync.Mutex // serializes Send; both legs' goroutines may call it

	closeOnce        sync.Once
	closeErr         error
	disconnectReason string
}

// New wraps conn for dir ("client_bound" for the leg reading from the
// real server, "server_bound" for the leg reading from the real
// client), starting at the handshake state of version.
func New(conn net.Conn, name string, version *protocol.ProtocolVersion, dir protocol.Direction) *Endpoint {
	ring := wire.NewRingBuffer(wire.DefaultRingBufferSize)
	return &Endpoint{
		conn:                 conn,
		src:                  conn,
		name:                 name,
		in:                   ring,
		out:                  wire.NewRingBuffer(wire.DefaultRingBufferSize),
		reader:               wire.NewFrameReader(ring),
		stream:               protocol.NewStreamContext(version, dir),
		compressionThreshold: -1,
		handlers:             make(map[string][]Handler),
	}
}

// Pair links two endpoints' StreamContexts so a state change observed
// on one (e.g. the server's LoginSuccess) propagates to the other,
// matching a single TCP connection's two packet directions.
func Pair(a, b *Endpoint) {
	protocol.Pair(a.stream, b.stream)
}

// RemoteAddr exposes the underlying connection's peer address for
// logging.
func (ep *Endpoint) RemoteAddr() net.Addr {
	return ep.conn.RemoteAddr()
}

// Stream exposes the endpoint's StreamContext, for callers (tests,
// plugins resolving a packet type by name) that need to inspect or
// force a protocol state outside of the normal handshake flow.
func (ep *Endpoint) Stream() *protocol.StreamContext {
	return ep.stream
}

// SetReadLimiter throttles future reads from this endpoint's
// connection to bytesPerSecond sustained, with bursts up to burst
// bytes, protecting the proxy from a peer that floods frames faster
// than the far leg can drain them.
func (ep *Endpoint) SetReadLimiter(bytesPerSecond, burst int) {
	ep.src = NewRateLimitedConn(ep.conn, bytesPerSecond, burst)
}

// On registers a handler for packets named name, run in registration
// order before any default forwarding behavior the caller applies.
func (ep *Endpoint) On(name string, h Handler) {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	ep.handlers[name] = append(ep.handlers[name], h)
}

// SetCompressionThreshold applies the new threshold to this endpoint's
// frame reader immediately and to its own outgoing frames via the
// field this struct tracks. Applying it to only one leg is never
// correct on its own: proxyctl.NewSession calls this on both legs at
// construction when the configured threshold is non-negative, and its
// set_compression handler calls it on both legs once the real server
// turns compression on mid-session.
func (ep *Endpoint) SetCompressionThreshold(threshold int) {
	ep.compressionThreshold = threshold
	ep.reader.SetCompressionThreshold(threshold)
}

// CompressionThreshold reports the threshold most recently applied via
// SetCompressionThreshold, for callers (tests, diagnostics) that need
// to observe rather than change it.
func (ep *Endpoint) CompressionThreshold() int {
	return ep.compressionThreshold
}

// EnableEncryption installs matching AES-128 CFB8 streams on both
// ring buffers. sharedSecret is used as both key and IV, as the wire
// format requires.
func (ep *Endpoint) EnableEncryption(sharedSecret []byte) error {
	dec, err := wire.NewCFB8Decrypter(sharedSecret)
	if err != nil {
		return fmt.Errorf("endpoint %s: enable decryption: %w", ep.name, err)
	}
	enc, err := wire.NewCFB8Encrypter(sharedSecret)
	if err != nil {
		return fmt.Errorf("endpoint %s: enable encryption: %w", ep.name, err)
	}
	ep.in.SetCipher(dec)
	ep.out.SetEncryptCipher(enc)
	return nil
}

// Send encodes val and queues it in the output ring buffer, flushing
// immediately. Handlers and proxyctl's default forwarding both call
// this to deliver a packet to the far side of this leg, so val should
// always carry a PacketType declared for the opposite of this
// endpoint's own reading direction; sending one declared for the same
// direction this leg reads almost always means a handler built the
// wrong clientbound/serverbound variant of a same-named packet (e.g.
// chat_message exists in both directions with different ids).
func (ep *Endpoint) Send(val *field.Value) error {
	ep.sendMu.Lock()
	defer ep.sendMu.Unlock()

	if pt, ok := ep.stream.PacketTypeByName(val.TypeName); ok && pt.ID == val.TypeID {
		logger.Warn("endpoint %s: sending %s (id %d) declared %s, but this leg reads %s packets; expected the opposite direction",
			ep.name, val.TypeName, val.TypeID, pt.Direction, ep.stream.Direction())
	}

	payload, err := ep.stream.EmitPacket(val)
	if err != nil {
		return fmt.Errorf("endpoint %s: emit packet: %w", ep.name, err)
	}
	frame, err := wire.EncodeFrame(payload, ep.compressionThreshold)
	if err != nil {
		return fmt.Errorf("endpoint %s: encode frame: %w", ep.name, err)
	}
	if _, err := ep.out.Write(frame); err != nil {
		return fmt.Errorf("endpoint %s: buffer frame: %w", ep.name, err)
	}
	return ep.out.Flush(ep.conn)
}

// Run reads frames from the connection until it closes or a
// protocol-level error occurs, dispatching each parsed packet to its
// registered handlers (in registration order; the first handler that
// returns forward=false stops the chain) and then to fallback if none
// of them consumed it. Run blocks until the connection ends.
func (ep *Endpoint) Run(fallback Handler) error {
	for {
		// RecvFrom translates a graceful io.EOF from the socket into
		// (0, nil), which is the loop's only exit condition besides a
		// genuine error.
		n, err := ep.in.RecvFrom(ep.src)
		if err != nil {
			return ep.fail(err)
		}
		if n == 0 {
			return nil
		}
		if err := ep.drainFrames(fallback); err != nil {
			return ep.fail(err)
		}
	}
}

func (ep *Endpoint) drainFrames(fallback Handler) error {
	for {
		payload, err := ep.reader.ReadFrame()
		if err != nil {
			if errors.Is(err, wire.ErrPartialFrame) {
				return nil
			}
			return err
		}

		val, err := ep.stream.ReadPacket(payload, ep)
		if err != nil {
			return err
		}

		if err := ep.dispatch(val, fallback); err != nil {
			return err
		}
	}
}

func (ep *Endpoint) dispatch(val *field.Value, fallback Handler) error {
	ep.mu.Lock()
	handlers := append([]Handler(nil), ep.handlers[val.TypeName]...)
	ep.mu.Unlock()

	for _, h := range handlers {
		forward, err := h(ep, val)
		if err != nil {
			return fmt.Errorf("endpoint %s: handler for %s: %w", ep.name, val.TypeName, err)
		}
		if !forward {
			return nil
		}
	}

	if fallback != nil {
		if _, err := fallback(ep, val); err != nil {
			return fmt.Errorf("endpoint %s: fallback for %s: %w", ep.name, val.TypeName, err)
		}
	}
	return nil
}

// Close tears down the connection. It is idempotent: only the first
// call's reason and error are kept, since both legs of a Session race
// to close each other once either side disconnects, and the first
// writer's reason is the one that actually explains what happened.
func (ep *Endpoint) Close(reason string) error {
	ep.closeOnce.Do(func() {
		ep.disconnectReason = reason
		logger.Info("closing endpoint %s: %s", ep.name, reason)
		ep.closeErr = ep.conn.Close()
	})
	return ep.closeErr
}

// DisconnectReason returns the reason passed to the first Close call,
// or "" if the endpoint is still open.
func (ep *Endpoint) DisconnectReason() string {
	return ep.disconnectReason
}

func (ep *Endpoint) fail(err error) error {
	logger.Error("endpoint %s: %v", ep.name, err)
	ep.Close(err.Error())
	return err
}
