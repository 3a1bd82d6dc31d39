// Package registry wires the concrete packet types declared under
// protocol/packets into a protocol.ProtocolVersion. It is a separate
// leaf package, rather than living inside package protocol itself,
// because the packet packages import protocol for PacketType and its
// supporting types — protocol importing them back would cycle.
package registry

import (
	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/protocol/packets/common"
	"github.com/seiftnesse/mcproxy/protocol/packets/login"
	"github.com/seiftnesse/mcproxy/protocol/packets/play"
	"github.com/seiftnesse/mcproxy/protocol/packets/status"
)

// ProtocolNumber is the Minecraft protocol version these tables speak
// (1.8.x, the last release before the snapshot/post-netty protocol
// churn that would require tracking several ProtocolVersions at once).
const ProtocolNumber = 47

// Default builds the single ProtocolVersion this proxy understands.
// A future multi-version proxy would keep one of these per supported
// ProtocolNumber and select among them at handshake time.
func Default() *protocol.ProtocolVersion {
	return &protocol.ProtocolVersion{
		Version: ProtocolNumber,
		ServerBound: protocol.StateTables{
			Handshake: protocol.NewPacketTable(
				common.Handshake,
			),
			Status: protocol.NewPacketTable(
				status.Request,
				status.Ping,
			),
			Login: protocol.NewPacketTable(
				login.LoginStart,
				login.EncryptionResponse,
			),
			Play: protocol.NewPacketTable(
				play.ChatMessageServerBound,
				play.KeepAliveServerBound,
				play.PlayerPosition,
				play.PluginMessageServerBound,
				play.PlayerDigging,
			),
		},
		ClientBound: protocol.StateTables{
			// Handshake has no client_bound packets; a freshly
			// connected endpoint never needs this table.
			Handshake: protocol.NewPacketTable(),
			Status: protocol.NewPacketTable(
				status.Response,
				status.Pong,
			),
			Login: protocol.NewPacketTable(
				login.Disconnect,
				login.EncryptionRequest,
				login.LoginSuccess,
				login.SetCompression,
			),
			Play: protocol.NewPacketTable(
				play.JoinGame,
				play.ChatMessageClientBound,
				play.KeepAliveClientBound,
				play.PlayerPositionAndLook,
				play.PluginMessageClientBound,
				play.Disconnect,
				play.PlayerListItem,
			),
		},
	}
}
