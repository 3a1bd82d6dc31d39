// Package status holds the server list ping packet types.
package status

import (
	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/wire/field"
)

var Request = &protocol.PacketType{
	ID:        0x00,
	Name:      "status_request",
	Direction: protocol.ServerBound,
	State:     protocol.Status,
	Body:      field.SubFields{},
}

var Response = &protocol.PacketType{
	ID:        0x00,
	Name:      "status_response",
	Direction: protocol.ClientBound,
	State:     protocol.Status,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "json_response", Desc: field.JSON{}},
	}},
}

var Ping = &protocol.PacketType{
	ID:        0x01,
	Name:      "status_ping",
	Direction: protocol.ServerBound,
	State:     protocol.Status,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "payload", Desc: field.FixedInt{Width: field.Int64}},
	}},
}

var Pong = &protocol.PacketType{
	ID:        0x01,
	Name:      "status_pong",
	Direction: protocol.ClientBound,
	State:     protocol.Status,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "payload", Desc: field.FixedInt{Width: field.Int64}},
	}},
}
