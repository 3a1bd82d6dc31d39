package field

import (
	"errors"
	"fmt"
)

// ErrUnknownVariant is returned by Switch.Parse when the selector's
// value has no matching case and no Default was configured.
var ErrUnknownVariant = errors.New("field: unknown switch variant")

// Switch picks one of several descriptors based on a value read from
// an already-parsed sibling (spec §4.3: "Switch | pick descriptor by
// selector(parent), parse that one | emit chosen descriptor"). The
// selector typically reads a previously parsed field via
// parent.Field("kind") and returns its Raw value as the lookup key.
type Switch struct {
	Selector func(parent *Value) (interface{}, error)
	Cases    map[interface{}]Descriptor
	Default  Descriptor // optional; nil means unmatched keys are an error
}

func (d Switch) resolve(parent *Value) (interface{}, Descriptor, error) {
	key, err := d.Selector(parent)
	if err != nil {
		return nil, nil, fmt.Errorf("field: switch selector: %w", err)
	}
	desc, ok := d.Cases[key]
	if !ok {
		if d.Default != nil {
			return key, d.Default, nil
		}
		return key, nil, fmt.Errorf("%w: %v", ErrUnknownVariant, key)
	}
	return key, desc, nil
}

func (d Switch) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()

	_, desc, err := d.resolve(parent)
	if err != nil {
		return nil, err
	}

	inner, err := desc.Parse(cur, parent)
	if err != nil {
		return nil, fmt.Errorf("field: switch: %w", err)
	}

	wrapper := newWrapper(d, parent, inner)
	inner.parent = wrapper
	return cacheParsed(wrapper, cur.Slice(start)), nil
}

// Emit re-serializes whichever descriptor was chosen at parse time.
// It deliberately does not re-run the selector: the chosen inner value
// already carries its own descriptor, and re-selecting based on a
// sibling that a handler may since have mutated would risk picking a
// different shape than the bytes this node actually holds.
func (d Switch) Emit(v *Value) ([]byte, error) {
	if v.inner == nil {
		return nil, fmt.Errorf("field: switch: no value parsed")
	}
	return v.inner.Emit()
}

func (d Switch) Format(v *Value) string {
	if v.inner == nil {
		return "<unset>"
	}
	return v.inner.Format()
}
