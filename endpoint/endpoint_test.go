package endpoint

import (
	"net"
	"testing"
	"time"

	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/protocol/registry"
	"github.com/seiftnesse/mcproxy/wire"
	"github.com/seiftnesse/mcproxy/wire/field"
)

// writeRawFrame encodes payload as an uncompressed frame directly onto
// conn, bypassing Endpoint.Send, so tests can inject bytes as if a
// real peer had sent them.
func writeRawFrame(t *testing.T, conn net.Conn, payload []byte) {
	t.Helper()
	frame, err := wire.EncodeFrame(payload, -1)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	if _, err := conn.Write(frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func TestEndpointRunDispatchesRegisteredHandler(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	version := registry.Default()
	ep := New(server, "test", version, protocol.ServerBound)
	ep.SetCompressionThreshold(-1)

	received := make(chan int32, 1)
	ep.On("keep_alive", func(ep *Endpoint, val *field.Value) (bool, error) {
		received <- val.MustField("keep_alive_id").Raw().(int32)
		return false, nil
	})

	ep.stream.ChangeState(protocol.Play)

	done := make(chan error, 1)
	go func() { done <- ep.Run(nil) }()

	pt, ok := ep.stream.PacketTypeByName("keep_alive")
	if !ok {
		t.Fatalf("keep_alive not registered in play serverbound table")
	}
	payload := append(wire.AppendVarInt(nil, pt.ID), wire.AppendVarInt(nil, 42)...)
	writeRawFrame(t, client, payload)

	select {
	case id := <-received:
		if id != 42 {
			t.Errorf("keep_alive_id = %d, want 42", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handler dispatch")
	}

	client.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after connection closed")
	}
}

func TestEndpointSendEncodesFrame(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	version := registry.Default()
	ep := New(server, "test", version, protocol.ClientBound)
	ep.stream.ChangeState(protocol.Play)

	pt, ok := ep.stream.PacketTypeByName("keep_alive")
	if !ok {
		t.Fatalf("keep_alive not registered in play clientbound table")
	}
	val, err := pt.Body.Parse(field.NewCursor(wire.AppendVarInt(nil, 7)), nil)
	if err != nil {
		t.Fatalf("parse keep_alive body: %v", err)
	}
	val.TypeID = pt.ID
	val.TypeName = pt.Name

	errChan := make(chan error, 1)
	go func() { errChan <- ep.Send(val) }()

	buf := make([]byte, 64)
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("read sent frame: %v", err)
	}
	if err := <-errChan; err != nil {
		t.Fatalf("Send: %v", err)
	}

	length, k, err := wire.DecodeVarInt(buf[:n])
	if err != nil {
		t.Fatalf("decode frame length: %v", err)
	}
	if int(length) != n-k {
		t.Errorf("frame length = %d, want %d", length, n-k)
	}
}

func TestEndpointCloseIsIdempotent(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	ep := New(server, "test", registry.Default(), protocol.ServerBound)

	if err := ep.Close("first"); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := ep.Close("second"); err != nil {
		t.Fatalf("second close should not re-run net.Conn.Close: %v", err)
	}
}
