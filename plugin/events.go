package plugin

import "github.com/seiftnesse/mcproxy/proxyctl"

// EventBus is the type a Plugin uses to subscribe to a Session's
// "connect"/"disconnect" lifecycle events. It lives in proxyctl since
// Session is what publishes it; this alias lets plugin authors write
// plugin.EventBus without an extra import.
type EventBus = proxyctl.EventBus

// NewEventBus returns an empty bus, for tests and plugins that want
// one outside of a Session (Session builds its own in NewSession).
func NewEventBus() *EventBus {
	return proxyctl.NewEventBus()
}
