package protocol

import (
	"fmt"

	"github.com/seiftnesse/mcproxy/wire"
	"github.com/seiftnesse/mcproxy/wire/field"
)

// StreamContext tracks one direction's view of a single TCP
// connection: which protocol version and state it is in, and
// therefore which packet table to parse against. Each endpoint holds
// one StreamContext, and a session links its two endpoints' contexts
// together (Pair), because a state change observed on one leg — say,
// the server sending LoginSuccess — must switch both the server leg,
// which decodes client_bound packets, and the client leg, which
// decodes server_bound packets, to the Play state's tables.
type StreamContext struct {
	version   *ProtocolVersion
	direction Direction
	state     State
	table     PacketTable
	partner   *StreamContext
}

// NewStreamContext starts a context at the Handshake state for dir.
func NewStreamContext(version *ProtocolVersion, dir Direction) *StreamContext {
	return &StreamContext{
		version:   version,
		direction: dir,
		state:     Handshake,
		table:     version.Table(dir, Handshake),
	}
}

// Pair links two contexts as partners, each reachable from the other.
// It is the Go analogue of mc4p's PacketStream.pair: the client leg's
// and the server leg's contexts of one proxied connection share state
// transitions.
func Pair(a, b *StreamContext) {
	a.partner = b
	b.partner = a
}

// Direction reports which way packets parsed by this context travel.
func (sc *StreamContext) Direction() Direction { return sc.direction }

// State reports the context's current state.
func (sc *StreamContext) State() State { return sc.state }

// ChangeState switches this context (and its partner, if paired) to a
// new state, re-resolving each to the matching packet table (spec
// §4.4: "state changes propagate mirror-direction to the partner
// stream").
func (sc *StreamContext) ChangeState(newState State) {
	sc.state = newState
	sc.table = sc.version.Table(sc.direction, newState)
	if sc.partner != nil {
		sc.partner.state = newState
		sc.partner.table = sc.partner.version.Table(sc.partner.direction, newState)
	}
}

// ReadPacket parses one frame payload (packet id varint followed by
// body bytes) against this context's current table, applying the
// packet's Transition if it has one.
func (sc *StreamContext) ReadPacket(payload []byte, fx Effects) (*field.Value, error) {
	id, n, err := wire.DecodeVarInt(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: decode packet id: %w", err)
	}

	pt, ok := sc.table.ByID(id)
	if !ok {
		return nil, fmt.Errorf("protocol: unknown packet id %d in %s/%s", id, sc.state, sc.direction)
	}

	body, err := pt.Body.Parse(field.NewCursor(payload[n:]), nil)
	if err != nil {
		return nil, fmt.Errorf("protocol: parse %s: %w", pt.Name, err)
	}
	body.TypeName = pt.Name
	body.TypeID = pt.ID

	if pt.Transition != nil {
		if err := pt.Transition(sc, body, fx); err != nil {
			return nil, fmt.Errorf("protocol: transition for %s: %w", pt.Name, err)
		}
	}

	return body, nil
}

// EmitPacket re-serializes a previously parsed (and possibly mutated)
// packet value back to wire bytes: its id varint followed by its body.
func (sc *StreamContext) EmitPacket(val *field.Value) ([]byte, error) {
	body, err := val.Emit()
	if err != nil {
		return nil, fmt.Errorf("protocol: emit %s: %w", val.TypeName, err)
	}
	out := wire.AppendVarInt(nil, val.TypeID)
	return append(out, body...), nil
}

// PacketTypeByName looks up a packet type in this context's current
// table, for plugins constructing a new outgoing packet from scratch.
func (sc *StreamContext) PacketTypeByName(name string) (*PacketType, bool) {
	return sc.table.ByName(name)
}
