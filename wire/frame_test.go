package wire

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("minecraft protocol payload ", 200))

	compressed, err := CompressPayload(payload)
	if err != nil {
		t.Fatalf("CompressPayload failed: %v", err)
	}
	if len(compressed) >= len(payload) {
		t.Errorf("compressed length %d not smaller than original %d", len(compressed), len(payload))
	}

	decompressed, err := DecompressPayload(compressed, len(payload))
	if err != nil {
		t.Fatalf("DecompressPayload failed: %v", err)
	}
	if !bytes.Equal(decompressed, payload) {
		t.Error("decompressed payload does not match original")
	}
}

func TestEncodeReadFrameNoCompression(t *testing.T) {
	payload := []byte("handshake packet body")

	encoded, err := EncodeFrame(payload, -1)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	ring := NewRingBuffer(DefaultRingBufferSize)
	if _, err := ring.RecvFrom(bytes.NewReader(encoded)); err != nil {
		t.Fatalf("RecvFrom failed: %v", err)
	}

	fr := NewFrameReader(ring)
	got, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("ReadFrame = %q, want %q", got, payload)
	}
}

func TestEncodeReadFrameBelowCompressionThreshold(t *testing.T) {
	payload := []byte("short")

	encoded, err := EncodeFrame(payload, 256)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	ring := NewRingBuffer(DefaultRingBufferSize)
	if _, err := ring.RecvFrom(bytes.NewReader(encoded)); err != nil {
		t.Fatalf("RecvFrom failed: %v", err)
	}

	fr := NewFrameReader(ring)
	fr.SetCompressionThreshold(256)
	got, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("ReadFrame = %q, want %q", got, payload)
	}
}

func TestEncodeReadFrameAboveCompressionThreshold(t *testing.T) {
	payload := []byte(strings.Repeat("x", 1000))

	encoded, err := EncodeFrame(payload, 64)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	if len(encoded) >= len(payload) {
		t.Errorf("encoded frame of %d bytes not smaller than payload of %d bytes", len(encoded), len(payload))
	}

	ring := NewRingBuffer(DefaultRingBufferSize)
	if _, err := ring.RecvFrom(bytes.NewReader(encoded)); err != nil {
		t.Fatalf("RecvFrom failed: %v", err)
	}

	fr := NewFrameReader(ring)
	fr.SetCompressionThreshold(64)
	got, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("ReadFrame did not recover the original payload")
	}
}

func TestReadFramePartialRestoresPosition(t *testing.T) {
	payload := []byte("a full packet body that will be split across two recvs")
	encoded, err := EncodeFrame(payload, -1)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	ring := NewRingBuffer(DefaultRingBufferSize)
	half := len(encoded) / 2
	if _, err := ring.RecvFrom(bytes.NewReader(encoded[:half])); err != nil {
		t.Fatalf("RecvFrom failed: %v", err)
	}

	fr := NewFrameReader(ring)
	before := ring.ReadPos()
	if _, err := fr.ReadFrame(); err != ErrPartialFrame {
		t.Fatalf("ReadFrame on a truncated buffer = %v, want ErrPartialFrame", err)
	}
	if ring.ReadPos() != before {
		t.Error("ReadFrame must restore the read position on ErrPartialFrame")
	}

	if _, err := ring.RecvFrom(bytes.NewReader(encoded[half:])); err != nil {
		t.Fatalf("RecvFrom failed: %v", err)
	}
	got, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame after the rest arrived failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("ReadFrame = %q, want %q", got, payload)
	}
}
