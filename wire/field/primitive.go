package field

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/seiftnesse/mcproxy/wire"
)

// IntWidth names a fixed-width integer's size and signedness.
type IntWidth int

const (
	Int8 IntWidth = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
)

func (w IntWidth) byteLen() int {
	switch w {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32:
		return 4
	default:
		return 8
	}
}

// FixedInt is a big-endian fixed-width integer primitive descriptor
// (spec §4.3: "Fixed-width primitive | big-endian of declared width").
// Parsed values are always represented as int64 internally so callers
// can use a single accessor regardless of declared width; the
// descriptor itself remembers the width for re-emission.
type FixedInt struct {
	Width IntWidth
}

func (d FixedInt) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()
	b, err := cur.Take(d.Width.byteLen())
	if err != nil {
		return nil, err
	}
	return cacheParsed(newLeaf(d, parent, decodeFixedInt(d.Width, b)), cur.Slice(start)), nil
}

func (d FixedInt) Emit(v *Value) ([]byte, error) {
	buf := make([]byte, d.Width.byteLen())
	encodeFixedInt(d.Width, v.raw.(int64), buf)
	return buf, nil
}

func (d FixedInt) Format(v *Value) string {
	return fmt.Sprintf("%d", v.raw)
}

func decodeFixedInt(w IntWidth, b []byte) int64 {
	switch w {
	case Int8:
		return int64(int8(b[0]))
	case Uint8:
		return int64(b[0])
	case Int16:
		return int64(int16(binary.BigEndian.Uint16(b)))
	case Uint16:
		return int64(binary.BigEndian.Uint16(b))
	case Int32:
		return int64(int32(binary.BigEndian.Uint32(b)))
	case Uint32:
		return int64(binary.BigEndian.Uint32(b))
	case Int64:
		return int64(binary.BigEndian.Uint64(b))
	default: // Uint64
		return int64(binary.BigEndian.Uint64(b))
	}
}

func encodeFixedInt(w IntWidth, value int64, buf []byte) {
	switch w {
	case Int8, Uint8:
		buf[0] = byte(value)
	case Int16, Uint16:
		binary.BigEndian.PutUint16(buf, uint16(value))
	case Int32, Uint32:
		binary.BigEndian.PutUint32(buf, uint32(value))
	case Int64, Uint64:
		binary.BigEndian.PutUint64(buf, uint64(value))
	}
}

// Bool is a one-byte boolean primitive (spec §4.3: one byte, nonzero = true).
type Bool struct{}

func (d Bool) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()
	b, err := cur.TakeByte()
	if err != nil {
		return nil, err
	}
	return cacheParsed(newLeaf(d, parent, b != 0), cur.Slice(start)), nil
}

func (d Bool) Emit(v *Value) ([]byte, error) {
	if v.raw.(bool) {
		return []byte{0x01}, nil
	}
	return []byte{0x00}, nil
}

func (d Bool) Format(v *Value) string {
	return fmt.Sprintf("%v", v.raw)
}

// Float32 is a big-endian IEEE-754 single-precision float.
type Float32 struct{}

func (d Float32) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()
	b, err := cur.Take(4)
	if err != nil {
		return nil, err
	}
	return cacheParsed(newLeaf(d, parent, math.Float32frombits(binary.BigEndian.Uint32(b))), cur.Slice(start)), nil
}

func (d Float32) Emit(v *Value) ([]byte, error) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, math.Float32bits(v.raw.(float32)))
	return buf, nil
}

func (d Float32) Format(v *Value) string {
	return fmt.Sprintf("%f", v.raw)
}

// Float64 is a big-endian IEEE-754 double-precision float.
type Float64 struct{}

func (d Float64) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()
	b, err := cur.Take(8)
	if err != nil {
		return nil, err
	}
	return cacheParsed(newLeaf(d, parent, math.Float64frombits(binary.BigEndian.Uint64(b))), cur.Slice(start)), nil
}

func (d Float64) Emit(v *Value) ([]byte, error) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(v.raw.(float64)))
	return buf, nil
}

func (d Float64) Format(v *Value) string {
	return fmt.Sprintf("%f", v.raw)
}

// VarInt is the 1-5 byte, 7-bit-group, little-endian variable length
// integer primitive used throughout the wire format (spec §4.3 and
// GLOSSARY). Parsed values are int32.
type VarInt struct{}

func (d VarInt) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()
	value, n, err := wire.DecodeVarInt(cur.RemainingBytes())
	if err != nil {
		if err == wire.ErrPartialFrame {
			// The frame body is already fully buffered by the time field
			// descriptors run, so running out of bytes here means the
			// packet body is truncated, not that more data is coming.
			return nil, fmt.Errorf("%w: truncated varint", ErrBufferUnderflow)
		}
		return nil, err
	}
	if _, err := cur.Take(n); err != nil {
		return nil, err
	}
	return cacheParsed(newLeaf(d, parent, value), cur.Slice(start)), nil
}

func (d VarInt) Emit(v *Value) ([]byte, error) {
	return wire.AppendVarInt(nil, v.raw.(int32)), nil
}

func (d VarInt) Format(v *Value) string {
	return fmt.Sprintf("%d", v.raw)
}
