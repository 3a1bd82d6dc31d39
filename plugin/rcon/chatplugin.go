package rcon

import (
	"fmt"
	"strings"

	"github.com/seiftnesse/mcproxy/endpoint"
	"github.com/seiftnesse/mcproxy/plugin"
	"github.com/seiftnesse/mcproxy/protocol/packets/play"
	"github.com/seiftnesse/mcproxy/wire"
	"github.com/seiftnesse/mcproxy/wire/field"
)

// commandPrefix is the chat prefix a client types to run a remote
// admin command through this proxy instead of sending it on to the
// real server, the same shorthand mc4p's own chat-triggered plugins
// used for operator commands.
const commandPrefix = "!rcon "

// ChatPlugin returns a plugin.Plugin that intercepts server_bound chat
// messages starting with "!rcon " on the client leg, executes the
// remainder through client, and replies to the real client with the
// result instead of forwarding the command on to the real server.
func ChatPlugin(client *Client) *plugin.Plugin {
	return &plugin.Plugin{
		PluginName:  "rcon",
		RemoteAdmin: client,
		Handlers: func(p *plugin.Plugin) []plugin.Binding {
			return []plugin.Binding{
				{
					Leg:     plugin.ClientLeg,
					Packet:  "chat_message",
					Handler: handleChat(p),
				},
			}
		},
		OnEvent: func(p *plugin.Plugin, events *plugin.EventBus) {
			events.Subscribe("disconnect", func(interface{}) {
				if c, ok := p.RemoteAdmin.(*Client); ok && c != nil {
					c.Close()
				}
			})
		},
	}
}

func handleChat(p *plugin.Plugin) endpoint.Handler {
	return func(ep *endpoint.Endpoint, val *field.Value) (bool, error) {
		message, _ := val.MustField("message").Raw().(string)
		if !strings.HasPrefix(message, commandPrefix) {
			return true, nil
		}

		cmd := strings.TrimPrefix(message, commandPrefix)
		reply, err := p.RemoteAdmin.Execute(cmd)
		if err != nil {
			reply = fmt.Sprintf("rcon error: %v", err)
		}
		return false, sendChatReply(ep, reply)
	}
}

// sendChatReply builds and sends the client_bound shape of chat_message
// (distinct from the server_bound shape handleChat just received)
// carrying a plain-text chat component, since this is the proxy itself
// talking back to the client rather than relaying something the real
// server said.
func sendChatReply(ep *endpoint.Endpoint, text string) error {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(text)
	jsonText := []byte(`{"text":"` + escaped + `"}`)

	body := wire.AppendVarInt(nil, int32(len(jsonText)))
	body = append(body, jsonText...)
	body = append(body, 0x01) // chat position: 1 = system message

	val, err := play.ChatMessageClientBound.Body.Parse(field.NewCursor(body), nil)
	if err != nil {
		return fmt.Errorf("rcon: build chat reply: %w", err)
	}
	val.TypeName = play.ChatMessageClientBound.Name
	val.TypeID = play.ChatMessageClientBound.ID
	return ep.Send(val)
}
