package proxyctl

import (
	"github.com/seiftnesse/mcproxy/endpoint"
	"github.com/seiftnesse/mcproxy/wire/field"
)

// attachCompressionSync registers a handler for the real server's
// set_compression packet (client_bound, observed on the server leg)
// that applies the new threshold to both legs. protocol.Effects
// cannot do this itself: a Transition's Effects argument is always the
// single Endpoint that parsed the packet, so a Transition-based
// SetCompressionThreshold call can only ever reach the leg that saw
// set_compression, never its partner — spec.md §4.4's "set compression
// threshold on both paired streams" needs a collaborator that can see
// both, which is the Session, not either Endpoint.
func attachCompressionSync(s *Session) {
	s.server.On("set_compression", func(ep *endpoint.Endpoint, val *field.Value) (bool, error) {
		threshold := int(val.MustField("threshold").Raw().(int32))
		s.client.SetCompressionThreshold(threshold)
		s.server.SetCompressionThreshold(threshold)
		return true, nil
	})
}
