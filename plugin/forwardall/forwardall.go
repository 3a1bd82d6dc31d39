// Package forwardall is a demonstration plugin that registers no
// packet handlers at all, relying entirely on proxyctl.Session's
// default forwarding. It exists as the default plugin cmd/mcproxy
// attaches when none is requested, and as a baseline in tests that
// only care about exercising the plugin attachment path itself.
package forwardall

import "github.com/seiftnesse/mcproxy/plugin"

// New returns a pass-through plugin.
func New() *plugin.Plugin {
	return &plugin.Plugin{
		PluginName: "forwardall",
		Handlers: func(p *plugin.Plugin) []plugin.Binding {
			return nil
		},
	}
}
