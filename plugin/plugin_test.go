package plugin

import (
	"net"
	"testing"
	"time"

	"github.com/seiftnesse/mcproxy/config"
	"github.com/seiftnesse/mcproxy/endpoint"
	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/protocol/registry"
	"github.com/seiftnesse/mcproxy/proxyctl"
	"github.com/seiftnesse/mcproxy/wire"
	"github.com/seiftnesse/mcproxy/wire/field"
)

func TestPluginAttachRegistersHandlerOnCorrectLeg(t *testing.T) {
	proxyClientSide, realClient := net.Pipe()
	realServer, proxyServerSide := net.Pipe()
	defer realClient.Close()
	defer realServer.Close()

	session := proxyctl.NewSession(proxyClientSide, proxyServerSide, registry.Default(), &config.Config{CompressionThreshold: -1})
	session.Server().Stream().ChangeState(protocol.Play)

	called := make(chan struct{}, 1)
	p := &Plugin{
		PluginName: "test",
		Handlers: func(p *Plugin) []Binding {
			return []Binding{
				{
					Leg:    ServerLeg,
					Packet: "chat_message",
					Handler: func(ep *endpoint.Endpoint, val *field.Value) (bool, error) {
						called <- struct{}{}
						return false, nil
					},
				},
			}
		},
	}
	p.Attach(session)

	done := make(chan error, 1)
	go func() { done <- session.Run() }()

	pt, ok := session.Server().Stream().PacketTypeByName("chat_message")
	if !ok {
		t.Fatalf("chat_message not registered clientbound/play")
	}
	jsonText := []byte(`{"text":"hi"}`)
	body := wire.AppendVarInt(nil, int32(len(jsonText)))
	body = append(body, jsonText...)
	body = append(body, 0x01) // chat position
	val, err := pt.Body.Parse(field.NewCursor(body), nil)
	if err != nil {
		t.Fatalf("parse chat_message: %v", err)
	}
	payload, err := val.Emit()
	if err != nil {
		t.Fatalf("emit chat_message: %v", err)
	}
	payload = append(wire.AppendVarInt(nil, pt.ID), payload...)
	frame, err := wire.EncodeFrame(payload, -1)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}

	go realServer.Write(frame)

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("plugin handler was not invoked")
	}

	realClient.Close()
	realServer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session.Run did not return")
	}
}

func TestMemoryStoreGetSetDelete(t *testing.T) {
	store := NewMemoryStore()

	if _, ok, err := store.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = (_, %v, %v), want (_, false, nil)", ok, err)
	}

	if err := store.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := store.Get("k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("Get(k) = (%q, %v, %v), want (v, true, nil)", v, ok, err)
	}

	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get("k"); ok {
		t.Error("key still present after Delete")
	}
}

func TestSeenPluginCountsLoginsPerUsername(t *testing.T) {
	proxyClientSide, realClient := net.Pipe()
	realServer, proxyServerSide := net.Pipe()
	defer realClient.Close()
	defer realServer.Close()

	session := proxyctl.NewSession(proxyClientSide, proxyServerSide, registry.Default(), &config.Config{CompressionThreshold: -1})
	session.Client().Stream().ChangeState(protocol.Login)

	store := NewMemoryStore()
	SeenPlugin(store).Attach(session)

	done := make(chan error, 1)
	go func() { done <- session.Run() }()

	pt, ok := session.Client().Stream().PacketTypeByName("login_start")
	if !ok {
		t.Fatalf("login_start not registered serverbound/login")
	}
	username := "Notch"
	body := wire.AppendVarInt(nil, int32(len(username)))
	body = append(body, username...)
	payload := append(wire.AppendVarInt(nil, pt.ID), body...)
	frame, err := wire.EncodeFrame(payload, -1)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}

	go realClient.Write(frame)
	realServer.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := realServer.Read(make([]byte, 256)); err != nil {
		t.Fatalf("login_start was not forwarded: %v", err)
	}

	v, found, err := store.Get("seen:" + username)
	if err != nil || !found || v != "1" {
		t.Fatalf("seen:%s = (%q, %v, %v), want (1, true, nil)", username, v, found, err)
	}

	realClient.Close()
	realServer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session.Run did not return")
	}
}

func TestRouterClosesConnectionForUnknownHost(t *testing.T) {
	proxyClientSide, realClient := net.Pipe()
	realServer, proxyServerSide := net.Pipe()
	defer realClient.Close()
	defer realServer.Close()

	session := proxyctl.NewSession(proxyClientSide, proxyServerSide, registry.Default(), &config.Config{CompressionThreshold: -1})
	Router(StaticResolver{"play.example.com": "10.0.0.1:25565"}).Attach(session)

	done := make(chan error, 1)
	go func() { done <- session.Run() }()

	pt, ok := session.Client().Stream().PacketTypeByName("handshake")
	if !ok {
		t.Fatalf("handshake not registered serverbound/handshake")
	}
	host := "unknown.example.com"
	body := wire.AppendVarInt(nil, 47)
	body = append(body, wire.AppendVarInt(nil, int32(len(host)))...)
	body = append(body, host...)
	body = append(body, 0x63, 0xDD) // server_port 25565, big-endian uint16
	body = append(body, wire.AppendVarInt(nil, 2)...)
	payload := append(wire.AppendVarInt(nil, pt.ID), body...)
	frame, err := wire.EncodeFrame(payload, -1)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}

	go realClient.Write(frame)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session.Run did not return after router closed the connection")
	}
}

func TestEventBusPublishRunsSubscribersInOrder(t *testing.T) {
	bus := NewEventBus()
	var order []int
	bus.Subscribe("connect", func(payload interface{}) { order = append(order, 1) })
	bus.Subscribe("connect", func(payload interface{}) { order = append(order, 2) })

	bus.Publish("connect", nil)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("subscriber order = %v, want [1 2]", order)
	}
}
