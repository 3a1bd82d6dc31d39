// Package common holds packet types shared by every state: the
// handshake that kicks off a connection and picks its next state.
package common

import (
	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/wire/field"
)

// Handshake is the very first packet any connection sends, carrying
// the protocol version the client speaks and which state to switch to
// next (1 = status, 2 = login).
var Handshake = &protocol.PacketType{
	ID:        0x00,
	Name:      "handshake",
	Direction: protocol.ServerBound,
	State:     protocol.Handshake,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "protocol_version", Desc: field.VarInt{}},
		{Name: "server_address", Desc: field.String{MaxLen: 255}},
		{Name: "server_port", Desc: field.FixedInt{Width: field.Uint16}},
		{Name: "next_state", Desc: field.VarInt{}},
	}},
	Transition: protocol.ToStateFromField("next_state", map[int32]protocol.State{
		1: protocol.Status,
		2: protocol.Login,
	}),
}
