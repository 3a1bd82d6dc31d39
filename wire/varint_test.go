package wire

import (
	"bytes"
	"fmt"
	"testing"
)

func TestAppendVarInt(t *testing.T) {
	tests := []struct {
		name     string
		value    int32
		expected []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x01}},
		{"127", 127, []byte{0x7F}},
		{"128", 128, []byte{0x80, 0x01}},
		{"300", 300, []byte{0xAC, 0x02}},
		{"2097151", 2097151, []byte{0xFF, 0xFF, 0x7F}},
		{"negative_one", -1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendVarInt(nil, tt.value)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("AppendVarInt(%d) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestDecodeVarInt(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		value int32
		n     int
	}{
		{"zero", []byte{0x00}, 0, 1},
		{"one", []byte{0x01}, 1, 1},
		{"128", []byte{0x80, 0x01}, 128, 2},
		{"300", []byte{0xAC, 0x02}, 300, 2},
		{"trailing_bytes_ignored", []byte{0x01, 0xFF, 0xFF}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, n, err := DecodeVarInt(tt.input)
			if err != nil {
				t.Fatalf("DecodeVarInt failed: %v", err)
			}
			if value != tt.value || n != tt.n {
				t.Errorf("DecodeVarInt(%v) = (%d, %d), want (%d, %d)", tt.input, value, n, tt.value, tt.n)
			}
		})
	}
}

func TestDecodeVarIntPartial(t *testing.T) {
	_, _, err := DecodeVarInt([]byte{0x80})
	if err != ErrPartialFrame {
		t.Errorf("expected ErrPartialFrame for truncated varint, got %v", err)
	}
}

func TestDecodeVarIntMalformed(t *testing.T) {
	_, _, err := DecodeVarInt([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80})
	if err == nil {
		t.Fatal("expected error for a varint exceeding the maximum length")
	}
}

func TestVarIntRoundTrip(t *testing.T) {
	values := []int32{0, 1, 127, 128, 255, 256, 1000, 32767, 65535, 2097151, -1, -2147483648, 2147483647}

	for _, val := range values {
		t.Run(fmt.Sprintf("value_%d", val), func(t *testing.T) {
			encoded := AppendVarInt(nil, val)
			decoded, n, err := DecodeVarInt(encoded)
			if err != nil {
				t.Fatalf("DecodeVarInt failed: %v", err)
			}
			if n != len(encoded) {
				t.Errorf("consumed %d bytes, want %d", n, len(encoded))
			}
			if decoded != val {
				t.Errorf("round trip failed: got %d, want %d", decoded, val)
			}
			if len(encoded) != VarIntSize(val) {
				t.Errorf("VarIntSize(%d) = %d, encoded length = %d", val, VarIntSize(val), len(encoded))
			}
		})
	}
}
