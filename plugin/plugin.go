// Package plugin defines the composition-based extension point: a
// Plugin is a record of optional collaborators (a key-value store, a
// remote-admin client, a name resolver) plus a list of packet
// handlers, registered against a proxyctl.Session instead of being
// declared through inheritance.
package plugin

import (
	"github.com/seiftnesse/mcproxy/endpoint"
	"github.com/seiftnesse/mcproxy/proxyctl"
)

// Leg selects which side of a Session a Binding's handler attaches to.
type Leg int

const (
	// ClientLeg handlers see server_bound packets from the real client.
	ClientLeg Leg = iota
	// ServerLeg handlers see client_bound packets from the real server.
	ServerLeg
)

// Binding pairs a packet name with the handler that processes it.
type Binding struct {
	Leg     Leg
	Packet  string
	Handler endpoint.Handler
}

// Plugin is the composed unit of extension: any number of optional
// collaborators, plus the handlers it wants registered. Collaborators
// left nil are simply unavailable to Handlers' closures; a plugin that
// needs one and finds it nil should fail fast from its constructor
// rather than from inside a handler.
type Plugin struct {
	PluginName string

	KVStore     KeyValueStore
	RemoteAdmin RemoteAdmin
	Resolver    NameResolver

	// Handlers returns this plugin's bindings once, at attach time.
	// It is a field rather than a method so a Plugin value can be
	// built entirely with struct literals, the way mc4p's handler
	// registration favored declarative lists over imperative setup.
	Handlers func(p *Plugin) []Binding

	// OnEvent, if set, subscribes to the session's lifecycle bus at
	// attach time instead of (or in addition to) registering packet
	// handlers, the equivalent of mc4p's on_connect/on_disconnect
	// overrides.
	OnEvent func(p *Plugin, events *EventBus)
}

// Name implements proxyctl.Plugin.
func (p *Plugin) Name() string { return p.PluginName }

// Attach implements proxyctl.Plugin: it registers every binding
// Handlers returns against the matching leg of s.
func (p *Plugin) Attach(s *proxyctl.Session) {
	if p.Handlers != nil {
		for _, b := range p.Handlers(p) {
			switch b.Leg {
			case ClientLeg:
				s.Client().On(b.Packet, b.Handler)
			case ServerLeg:
				s.Server().On(b.Packet, b.Handler)
			}
		}
	}
	if p.OnEvent != nil {
		p.OnEvent(p, s.Events)
	}
}

var _ proxyctl.Plugin = (*Plugin)(nil)
