package plugin

import (
	"strconv"

	"github.com/seiftnesse/mcproxy/endpoint"
	"github.com/seiftnesse/mcproxy/wire/field"
)

// SeenPlugin returns a Plugin that records, in store, how many times
// each username has logged in through this proxy — the Go stand-in
// for mc4p's RedisPlugin tracking per-player state across sessions
// rather than per-connection.
func SeenPlugin(store KeyValueStore) *Plugin {
	return &Plugin{
		PluginName: "seen",
		KVStore:    store,
		Handlers: func(p *Plugin) []Binding {
			return []Binding{
				{
					Leg:     ClientLeg,
					Packet:  "login_start",
					Handler: handleLoginStart(p),
				},
			}
		},
	}
}

func handleLoginStart(p *Plugin) endpoint.Handler {
	return func(ep *endpoint.Endpoint, val *field.Value) (bool, error) {
		username, _ := val.MustField("username").Raw().(string)
		count := 0
		if raw, ok, err := p.KVStore.Get("seen:" + username); err == nil && ok {
			count, _ = strconv.Atoi(raw)
		}
		if err := p.KVStore.Set("seen:"+username, strconv.Itoa(count+1)); err != nil {
			return true, err
		}
		return true, nil
	}
}
