package field

import "fmt"

// Optional parses a descriptor only when predicate(parent) reports
// true (spec §4.3: "Optional | if predicate(parent), parse desc, else
// absent | emit desc if present, else nothing"). An absent field
// consumes and emits zero bytes; it is not a null marker on the wire,
// so the predicate itself must be derivable from already-parsed
// siblings (a preceding boolean flag, a bitmask field, and so on).
type Optional struct {
	Predicate func(parent *Value) (bool, error)
	Desc      Descriptor
}

func (d Optional) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()

	present, err := d.Predicate(parent)
	if err != nil {
		return nil, fmt.Errorf("field: optional predicate: %w", err)
	}
	if !present {
		return cacheParsed(newWrapper(d, parent, nil), cur.Slice(start)), nil
	}

	inner, err := d.Desc.Parse(cur, parent)
	if err != nil {
		return nil, fmt.Errorf("field: optional: %w", err)
	}
	wrapper := newWrapper(d, parent, inner)
	inner.parent = wrapper
	return cacheParsed(wrapper, cur.Slice(start)), nil
}

func (d Optional) Emit(v *Value) ([]byte, error) {
	if v.inner == nil {
		return nil, nil
	}
	return v.inner.Emit()
}

func (d Optional) Format(v *Value) string {
	if v.inner == nil {
		return "<absent>"
	}
	return v.inner.Format()
}

// Present reports whether an Optional-kind node currently holds a
// value, unwrapping at most one level.
func (v *Value) Present() bool {
	return v.kind == KindWrapper && v.inner != nil
}
