// Package login holds the packet types exchanged while a connection
// authenticates, including the encryption and compression handshakes.
package login

import (
	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/wire/field"
)

var LoginStart = &protocol.PacketType{
	ID:        0x00,
	Name:      "login_start",
	Direction: protocol.ServerBound,
	State:     protocol.Login,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "username", Desc: field.String{MaxLen: 16}},
	}},
}

// EncryptionRequest carries the server's RSA public key and a random
// verify token the client must echo back encrypted, proving it holds
// the corresponding private key's public half.
var EncryptionRequest = &protocol.PacketType{
	ID:        0x01,
	Name:      "encryption_request",
	Direction: protocol.ClientBound,
	State:     protocol.Login,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "server_id", Desc: field.String{MaxLen: 20}},
		{Name: "public_key_length", Desc: field.VarInt{}},
		{Name: "public_key", Desc: field.RawBytes{LengthField: "public_key_length"}},
		{Name: "verify_token_length", Desc: field.VarInt{}},
		{Name: "verify_token", Desc: field.RawBytes{LengthField: "verify_token_length"}},
	}},
}

// EncryptionResponse's shared_secret is RSA-encrypted under the public
// key from EncryptionRequest. Decrypting it needs the proxy's private
// RSA key, which the field layer never sees, so this packet carries no
// Transition: proxyctl registers a handler for it directly and drives
// endpoint.Endpoint.EnableEncryption once it has the cleartext secret.
var EncryptionResponse = &protocol.PacketType{
	ID:        0x01,
	Name:      "encryption_response",
	Direction: protocol.ServerBound,
	State:     protocol.Login,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "shared_secret_length", Desc: field.VarInt{}},
		{Name: "shared_secret", Desc: field.RawBytes{LengthField: "shared_secret_length"}},
		{Name: "verify_token_length", Desc: field.VarInt{}},
		{Name: "verify_token", Desc: field.RawBytes{LengthField: "verify_token_length"}},
	}},
}

// SetCompression's effect is not a Transition: a Transition's Effects
// parameter only ever reaches the single Endpoint that parsed the
// packet, but spec.md §4.4 requires the new threshold apply to both
// paired streams. proxyctl registers a handler for this packet on the
// server leg directly and calls Endpoint.SetCompressionThreshold on
// both sides once it has the cleartext value.
var SetCompression = &protocol.PacketType{
	ID:        0x03,
	Name:      "set_compression",
	Direction: protocol.ClientBound,
	State:     protocol.Login,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "threshold", Desc: field.VarInt{}},
	}},
}

var LoginSuccess = &protocol.PacketType{
	ID:        0x02,
	Name:      "login_success",
	Direction: protocol.ClientBound,
	State:     protocol.Login,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "uuid", Desc: field.UUID{}},
		{Name: "username", Desc: field.String{MaxLen: 16}},
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
	}},
	Transition: protocol.ToState(protocol.Play),
}

var Disconnect = &protocol.PacketType{
	ID:        0x00,
	Name:      "login_disconnect",
	Direction: protocol.ClientBound,
	State:     protocol.Login,
	Body: field.SubFields{Fields: []field.NamedField{
		{Name: "reason", Desc: field.JSON{}},
	}},
}
