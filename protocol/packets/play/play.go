// Package play holds the packet types exchanged once a connection has
// joined the game world: movement, chat, keep-alives, and the player
// list updates that exercise every composite field kind at once.
package play

import (
	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/wire/field"
)

var JoinGame = &protocol.PacketType{
	ID:        0x23,
	Name:      "join_game",
	Direction: protocol.ClientBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "entity_id", Desc: field.FixedInt{Width: field.Int32}},
		{Name: "gamemode", Desc: field.FixedInt{Width: field.Uint8}},
		{Name: "dimension", Desc: field.FixedInt{Width: field.Int32}},
		{Name: "difficulty", Desc: field.FixedInt{Width: field.Uint8}},
		{Name: "max_players", Desc: field.FixedInt{Width: field.Uint8}},
		{Name: "level_type", Desc: field.String{MaxLen: 16}},
		{Name: "reduced_debug_info", Desc: field.Bool{}},
	}},
}

var ChatMessageServerBound = &protocol.PacketType{
	ID:        0x01,
	Name:      "chat_message",
	Direction: protocol.ServerBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "message", Desc: field.String{MaxLen: 256}},
	}},
}

var ChatMessageClientBound = &protocol.PacketType{
	ID:        0x02,
	Name:      "chat_message",
	Direction: protocol.ClientBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "json_data", Desc: field.JSON{}},
		{Name: "position", Desc: field.FixedInt{Width: field.Uint8}},
	}},
}

var KeepAliveServerBound = &protocol.PacketType{
	ID:        0x00,
	Name:      "keep_alive",
	Direction: protocol.ServerBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "keep_alive_id", Desc: field.VarInt{}},
	}},
}

var KeepAliveClientBound = &protocol.PacketType{
	ID:        0x1f,
	Name:      "keep_alive",
	Direction: protocol.ClientBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "keep_alive_id", Desc: field.VarInt{}},
	}},
}

var PlayerPosition = &protocol.PacketType{
	ID:        0x0c,
	Name:      "player_position",
	Direction: protocol.ServerBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "x", Desc: field.Float64{}},
		{Name: "y", Desc: field.Float64{}},
		{Name: "z", Desc: field.Float64{}},
		{Name: "on_ground", Desc: field.Bool{}},
	}},
}

var PlayerPositionAndLook = &protocol.PacketType{
	ID:        0x08,
	Name:      "player_position_and_look",
	Direction: protocol.ClientBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "x", Desc: field.Float64{}},
		{Name: "y", Desc: field.Float64{}},
		{Name: "z", Desc: field.Float64{}},
		{Name: "yaw", Desc: field.Float32{}},
		{Name: "pitch", Desc: field.Float32{}},
		{Name: "flags", Desc: field.FixedInt{Width: field.Uint8}},
	}},
}

var PluginMessageServerBound = &protocol.PacketType{
	ID:        0x17,
	Name:      "plugin_message",
	Direction: protocol.ServerBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "channel", Desc: field.String{MaxLen: 20}},
		{Name: "data", Desc: field.RawBytes{}},
	}},
}

var PluginMessageClientBound = &protocol.PacketType{
	ID:        0x3f,
	Name:      "plugin_message",
	Direction: protocol.ClientBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "channel", Desc: field.String{MaxLen: 20}},
		{Name: "data", Desc: field.RawBytes{}},
	}},
}

var Disconnect = &protocol.PacketType{
	ID:        0x40,
	Name:      "play_disconnect",
	Direction: protocol.ClientBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "reason", Desc: field.JSON{}},
	}},
}

// PlayerDigging exercises PositionField: the block position is packed
// into a single int64, not three separate coordinate fields.
var PlayerDigging = &protocol.PacketType{
	ID:        0x07,
	Name:      "player_digging",
	Direction: protocol.ServerBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "status", Desc: field.VarInt{}},
		{Name: "location", Desc: field.PositionField{}},
		{Name: "face", Desc: field.FixedInt{Width: field.Int8}},
	}},
}

// playerListAction values select which shape each PlayerListItem
// entry takes on the wire; they are read from the packet's own
// "action" field, not redeclared per entry.
const (
	actionAddPlayer      = 0
	actionUpdateGamemode = 1
	actionUpdateLatency  = 2
	actionUpdateDisplay  = 3
	actionRemovePlayer   = 4
)

func playerListEntry() field.Descriptor {
	return field.SubFields{Fields: []field.NamedField{
		{Name: "uuid", Desc: field.UUID{}},
		{Name: "entry", Desc: field.Switch{
			Selector: func(parent *field.Value) (interface{}, error) {
				// parent is this array element's own SubFields
				// (uuid, entry); its Parent() is the enclosing
				// player_list_item body, which is where "action"
				// actually lives.
				return parent.Parent().MustField("action").Raw().(int32), nil
			},
			Cases: map[interface{}]field.Descriptor{
				int32(actionAddPlayer): field.SubFields{Fields: []field.NamedField{
					{Name: "name", Desc: field.String{MaxLen: 16}},
					{Name: "properties", Desc: field.Array{
						Count: field.CountVarInt,
						Item: field.SubFields{Fields: []field.NamedField{
							{Name: "name", Desc: field.String{MaxLen: 32767}},
							{Name: "value", Desc: field.String{MaxLen: 32767}},
							{Name: "has_signature", Desc: field.Bool{}},
							{Name: "signature", Desc: field.Optional{
								Predicate: func(parent *field.Value) (bool, error) {
									return parent.MustField("has_signature").Raw().(bool), nil
								},
								Desc: field.String{MaxLen: 32767},
							}},
						}},
					}},
					{Name: "gamemode", Desc: field.VarInt{}},
					{Name: "ping", Desc: field.VarInt{}},
					{Name: "has_display_name", Desc: field.Bool{}},
					{Name: "display_name", Desc: field.Optional{
						Predicate: func(parent *field.Value) (bool, error) {
							return parent.MustField("has_display_name").Raw().(bool), nil
						},
						Desc: field.JSON{},
					}},
				}},
				int32(actionUpdateGamemode): field.SubFields{Fields: []field.NamedField{
					{Name: "gamemode", Desc: field.VarInt{}},
				}},
				int32(actionUpdateLatency): field.SubFields{Fields: []field.NamedField{
					{Name: "ping", Desc: field.VarInt{}},
				}},
				int32(actionUpdateDisplay): field.SubFields{Fields: []field.NamedField{
					{Name: "has_display_name", Desc: field.Bool{}},
					{Name: "display_name", Desc: field.Optional{
						Predicate: func(parent *field.Value) (bool, error) {
							return parent.MustField("has_display_name").Raw().(bool), nil
						},
						Desc: field.JSON{},
					}},
				}},
				int32(actionRemovePlayer): field.SubFields{},
			},
		}},
	}}
}

// PlayerListItem is the canonical composite-field exercise: an
// action-discriminated Switch nested inside an Array, itself nested
// inside the packet's root SubFields.
var PlayerListItem = &protocol.PacketType{
	ID:        0x2e,
	Name:      "player_list_item",
	Direction: protocol.ClientBound,
	State:     protocol.Play,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "action", Desc: field.VarInt{}},
		{Name: "players", Desc: field.Array{
			Count: field.CountVarInt,
			Item:  playerListEntry(),
		}},
	}},
}
