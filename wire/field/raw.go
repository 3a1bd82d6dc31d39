package field

import "fmt"

// RawBytes consumes either exactly the length named by a previously
// parsed sibling field (LengthField), or — if LengthField is empty —
// every remaining byte of the enclosing payload (spec §4.3: "Raw bytes
// | if length is declared, consume exactly that many; else consume
// all remaining payload").
type RawBytes struct {
	LengthField string
}

func (d RawBytes) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()

	var n int
	if d.LengthField != "" {
		lenField, ok := parent.Field(d.LengthField)
		if !ok {
			return nil, fmt.Errorf("field: raw bytes length field %q not found", d.LengthField)
		}
		length, err := asInt64(lenField.Raw())
		if err != nil {
			return nil, err
		}
		n = int(length)
	} else {
		n = cur.Remaining()
	}

	b, err := cur.Take(n)
	if err != nil {
		return nil, fmt.Errorf("%w: raw bytes", ErrBufferUnderflow)
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cacheParsed(newLeaf(d, parent, cp), cur.Slice(start)), nil
}

func (d RawBytes) Emit(v *Value) ([]byte, error) {
	return v.raw.([]byte), nil
}

func (d RawBytes) Format(v *Value) string {
	return fmt.Sprintf("%d raw bytes", len(v.raw.([]byte)))
}

// asInt64 normalizes the handful of integer Go types our primitive
// descriptors produce (int32 from VarInt/FixedInt) to int64, so
// length-dependent descriptors don't care which primitive a protocol
// author used for a length field.
func asInt64(raw interface{}) (int64, error) {
	switch n := raw.(type) {
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("field: expected integer length field, got %T", raw)
	}
}
