package plugin

import (
	"github.com/seiftnesse/mcproxy/endpoint"
	"github.com/seiftnesse/mcproxy/wire/field"
)

// Router returns a Plugin that validates the hostname a client's
// handshake packet names against resolver, closing the connection for
// anything not on the allowlist. The resolved address is not used:
// the upstream connection has already been dialed before the handshake
// is read, and server_address is not rewritten.
func Router(resolver NameResolver) *Plugin {
	return &Plugin{
		PluginName: "router",
		Resolver:   resolver,
		Handlers: func(p *Plugin) []Binding {
			return []Binding{
				{
					Leg:     ClientLeg,
					Packet:  "handshake",
					Handler: handleHandshake(p),
				},
			}
		},
	}
}

func handleHandshake(p *Plugin) endpoint.Handler {
	return func(ep *endpoint.Endpoint, val *field.Value) (bool, error) {
		host, _ := val.MustField("server_address").Raw().(string)
		if _, err := p.Resolver.Resolve(host); err != nil {
			return false, ep.Close("unknown server_address: " + host)
		}
		return true, nil
	}
}
