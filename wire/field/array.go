package field

import (
	"encoding/binary"
	"fmt"

	"github.com/seiftnesse/mcproxy/wire"
)

// CountKind selects how an Array's element count is encoded on the
// wire ahead of its items. VarInt count is by far the most common
// shape in the protocol (property lists, plugin channel lists); the
// fixed-width variants exist for the handful of legacy array fields
// that prefix with a plain byte or short.
type CountKind int

const (
	CountVarInt CountKind = iota
	CountUint8
	CountUint16
	CountInt32
)

// Array is a length-prefixed sequence descriptor (spec §3:
// "Array(length_field, item_descriptor)"). Count selects how the
// length prefix itself is encoded; Item describes each element.
type Array struct {
	Count CountKind
	Item  Descriptor
}

func (d Array) parseCount(cur *Cursor) (int, error) {
	switch d.Count {
	case CountUint8:
		b, err := cur.TakeByte()
		if err != nil {
			return 0, fmt.Errorf("%w: array count", ErrBufferUnderflow)
		}
		return int(b), nil
	case CountUint16:
		b, err := cur.Take(2)
		if err != nil {
			return 0, fmt.Errorf("%w: array count", ErrBufferUnderflow)
		}
		return int(binary.BigEndian.Uint16(b)), nil
	case CountInt32:
		b, err := cur.Take(4)
		if err != nil {
			return 0, fmt.Errorf("%w: array count", ErrBufferUnderflow)
		}
		return int(int32(binary.BigEndian.Uint32(b))), nil
	default: // CountVarInt
		value, n, err := wire.DecodeVarInt(cur.RemainingBytes())
		if err != nil {
			return 0, fmt.Errorf("%w: array count", ErrBufferUnderflow)
		}
		if _, err := cur.Take(n); err != nil {
			return 0, err
		}
		return int(value), nil
	}
}

func (d Array) emitCount(n int) []byte {
	switch d.Count {
	case CountUint8:
		return []byte{byte(n)}
	case CountUint16:
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(n))
		return buf
	case CountInt32:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(n))
		return buf
	default:
		return wire.AppendVarInt(nil, int32(n))
	}
}

func (d Array) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()

	n, err := d.parseCount(cur)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("field: negative array length %d", n)
	}

	arr := newArray(d, parent, make([]*Value, 0, n))
	for i := 0; i < n; i++ {
		item, err := d.Item.Parse(cur, parent)
		if err != nil {
			return nil, fmt.Errorf("field: array element %d: %w", i, err)
		}
		item.parent = arr
		arr.elements = append(arr.elements, item)
	}

	return cacheParsed(arr, cur.Slice(start)), nil
}

func (d Array) Emit(v *Value) ([]byte, error) {
	out := d.emitCount(len(v.elements))
	for i, el := range v.elements {
		b, err := el.Emit()
		if err != nil {
			return nil, fmt.Errorf("field: array element %d: %w", i, err)
		}
		out = append(out, b...)
	}
	return out, nil
}

func (d Array) Format(v *Value) string {
	return fmt.Sprintf("[%d elements]", len(v.elements))
}
