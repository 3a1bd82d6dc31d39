package proxyctl

import (
	"net"
	"testing"
	"time"

	"github.com/seiftnesse/mcproxy/config"
	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/protocol/registry"
	"github.com/seiftnesse/mcproxy/wire"
)

// TestSessionPropagatesSetCompressionToBothLegs drives a real
// set_compression packet from the server leg through a Session and
// checks that both the client and server Endpoints end up using the
// new threshold, not just the leg that parsed the packet.
func TestSessionPropagatesSetCompressionToBothLegs(t *testing.T) {
	realClient, proxyClientSide := net.Pipe()
	proxyServerSide, realServer := net.Pipe()
	defer realClient.Close()
	defer realServer.Close()

	version := registry.Default()
	cfg := &config.Config{CompressionThreshold: -1}
	session := NewSession(proxyClientSide, proxyServerSide, version, cfg)
	session.Server().Stream().ChangeState(protocol.Login)

	done := make(chan error, 1)
	go func() { done <- session.Run() }()

	pt, ok := session.Server().Stream().PacketTypeByName("set_compression")
	if !ok {
		t.Fatalf("set_compression not registered clientbound/login")
	}
	payload := append(wire.AppendVarInt(nil, pt.ID), wire.AppendVarInt(nil, 256)...)
	frame, err := wire.EncodeFrame(payload, -1)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}

	writeDone := make(chan error, 1)
	go func() {
		_, err := realServer.Write(frame)
		writeDone <- err
	}()

	// set_compression is forwarded on (forward=true), so the real
	// client should receive it unchanged. By the time it is sent, the
	// handler has already applied the new threshold to the client leg
	// too, so the forwarded frame itself now carries the compression
	// sub-header (an uncompressed-length varint ahead of the payload)
	// even though this particular packet is far too small to compress.
	inner := readFrame(t, realClient)
	if err := <-writeDone; err != nil {
		t.Fatalf("write to real server pipe: %v", err)
	}
	uncompressedLen, k, err := wire.DecodeVarInt(inner)
	if err != nil || uncompressedLen != 0 {
		t.Fatalf("decode forwarded frame's compression sub-header: %d, %v", uncompressedLen, err)
	}
	id, k2, err := wire.DecodeVarInt(inner[k:])
	if err != nil || id != pt.ID {
		t.Fatalf("decode forwarded set_compression id: %d, %v", id, err)
	}
	threshold, _, err := wire.DecodeVarInt(inner[k+k2:])
	if err != nil || threshold != 256 {
		t.Fatalf("forwarded threshold = %d, want 256 (err %v)", threshold, err)
	}

	time.Sleep(50 * time.Millisecond)
	if got := session.Client().CompressionThreshold(); got != 256 {
		t.Errorf("client endpoint threshold = %d, want 256", got)
	}
	if got := session.Server().CompressionThreshold(); got != 256 {
		t.Errorf("server endpoint threshold = %d, want 256", got)
	}

	realClient.Close()
	realServer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session.Run did not return after both legs closed")
	}
}
