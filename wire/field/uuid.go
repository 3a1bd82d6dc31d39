package field

import (
	"fmt"

	"github.com/google/uuid"
)

// UUID is the 16-raw-byte 128-bit identifier primitive (spec §3/§4.3),
// used for player identity packets such as LoginSuccess. Parsed values
// are google/uuid.UUID, the same type koria-core's login packets use.
type UUID struct{}

func (d UUID) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()
	b, err := cur.Take(16)
	if err != nil {
		return nil, fmt.Errorf("%w: uuid", ErrBufferUnderflow)
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("field: decode uuid: %w", err)
	}
	return cacheParsed(newLeaf(d, parent, id), cur.Slice(start)), nil
}

func (d UUID) Emit(v *Value) ([]byte, error) {
	id := v.raw.(uuid.UUID)
	b, err := id.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("field: encode uuid: %w", err)
	}
	return b, nil
}

func (d UUID) Format(v *Value) string {
	return v.raw.(uuid.UUID).String()
}
