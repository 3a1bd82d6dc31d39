package field

import (
	"encoding/binary"
	"fmt"
)

// Position is the packed block-coordinate triple (spec §3/§4.3): one
// 64-bit big-endian word holding x in the high 26 bits, y in the
// middle 12 bits, and z in the low 26 bits, each sign-extended from
// its declared width.
type Position struct {
	X, Y, Z int64
}

// PositionField is the FieldDescriptor for the packed position triple.
type PositionField struct{}

// signExtend interprets the low `bits` bits of v as a two's-complement
// signed integer of that width.
func signExtend(v uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

func (d PositionField) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()
	b, err := cur.Take(8)
	if err != nil {
		return nil, fmt.Errorf("%w: position", ErrBufferUnderflow)
	}
	word := binary.BigEndian.Uint64(b)

	x := signExtend((word>>38)&0x3FFFFFF, 26)
	y := signExtend((word>>26)&0xFFF, 12)
	// z is extracted with the same symmetric 26-bit mask as x. An
	// earlier implementation this was ported from masked z with
	// 0x4fff and sign-tested against 0x2000000, which doesn't agree
	// with x's extraction width; that was a bug in the source, not a
	// deliberate asymmetry, so it is not reproduced here.
	z := signExtend(word&0x3FFFFFF, 26)

	return cacheParsed(newLeaf(d, parent, Position{X: x, Y: y, Z: z}), cur.Slice(start)), nil
}

func (d PositionField) Emit(v *Value) ([]byte, error) {
	p := v.raw.(Position)
	word := (uint64(p.X)&0x3FFFFFF)<<38 | (uint64(p.Y)&0xFFF)<<26 | (uint64(p.Z) & 0x3FFFFFF)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, word)
	return buf, nil
}

func (d PositionField) Format(v *Value) string {
	p := v.raw.(Position)
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}
