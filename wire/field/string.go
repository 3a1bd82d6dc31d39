package field

import (
	"encoding/json"
	"fmt"

	"github.com/seiftnesse/mcproxy/wire"
)

// String is a varint-length-prefixed UTF-8 string (spec §4.3). MaxLen
// is a character count the way Minecraft's own string fields are
// bounded (e.g. 16 for a username, 32767 for chat); the byte length is
// checked against MaxLen*4, the most bytes that many UTF-8 characters
// can take. Zero means unbounded.
type String struct {
	MaxLen int
}

func (d String) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()
	length, n, err := wire.DecodeVarInt(cur.RemainingBytes())
	if err != nil {
		return nil, fmt.Errorf("%w: string length", ErrBufferUnderflow)
	}
	if length < 0 || (d.MaxLen > 0 && int(length) > d.MaxLen*4) {
		return nil, fmt.Errorf("field: string length %d out of range", length)
	}
	if _, err := cur.Take(n); err != nil {
		return nil, err
	}
	b, err := cur.Take(int(length))
	if err != nil {
		return nil, fmt.Errorf("%w: string body", ErrBufferUnderflow)
	}
	return cacheParsed(newLeaf(d, parent, string(b)), cur.Slice(start)), nil
}

func (d String) Emit(v *Value) ([]byte, error) {
	s := v.raw.(string)
	if d.MaxLen > 0 && len(s) > d.MaxLen*4 {
		return nil, fmt.Errorf("field: string too long: %d > %d", len(s), d.MaxLen*4)
	}
	out := wire.AppendVarInt(make([]byte, 0, len(s)+wire.MaxVarIntLength), int32(len(s)))
	return append(out, s...), nil
}

func (d String) Format(v *Value) string {
	return fmt.Sprintf("%q", v.raw)
}

// JSON parses/emits a JSON value carried inside a String field (spec
// §4.3: "JSON | parse/emit a JSON value inside a String | as String").
// The decoded Raw value is the generic any produced by encoding/json,
// matching how chat components and status responses are typically
// handled by a proxy that doesn't know every client/server's schema.
type JSON struct {
	MaxLen int
}

func (d JSON) Parse(cur *Cursor, parent *Value) (*Value, error) {
	inner := String{MaxLen: d.MaxLen}
	strVal, err := inner.Parse(cur, parent)
	if err != nil {
		return nil, err
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(strVal.raw.(string)), &decoded); err != nil {
		return nil, fmt.Errorf("field: decode JSON field: %w", err)
	}
	v := newLeaf(d, parent, decoded)
	v.cachedEncoding = strVal.cachedEncoding
	return v, nil
}

func (d JSON) Emit(v *Value) ([]byte, error) {
	encoded, err := json.Marshal(v.raw)
	if err != nil {
		return nil, fmt.Errorf("field: encode JSON field: %w", err)
	}
	inner := String{MaxLen: d.MaxLen}
	strVal := newLeaf(inner, v.parent, string(encoded))
	return inner.Emit(strVal)
}

func (d JSON) Format(v *Value) string {
	b, _ := json.Marshal(v.raw)
	return string(b)
}
