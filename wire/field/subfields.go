package field

import "fmt"

// NamedField is one entry of a SubFields descriptor: a field name paired
// with the descriptor that parses/emits it. Order matters — fields are
// parsed and emitted in declaration order, and that order is preserved
// for Format/debugging.
type NamedField struct {
	Name string
	Desc Descriptor
}

// SubFields is an ordered set of named child fields (spec §4.3:
// "SubFields | parse each named child in order | emit children in
// order"). It is the descriptor every PacketType uses at its root, and
// also the shape of any nested structure (e.g. a single player
// property inside an array of properties).
type SubFields struct {
	Fields []NamedField
}

func (d SubFields) Parse(cur *Cursor, parent *Value) (*Value, error) {
	start := cur.Pos()

	order := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		order[i] = f.Name
	}
	node := newSubFields(d, parent, order)

	for _, f := range d.Fields {
		child, err := f.Desc.Parse(cur, node)
		if err != nil {
			return nil, fmt.Errorf("field: %s: %w", f.Name, err)
		}
		child.parent = node
		node.children[f.Name] = child
	}

	return cacheParsed(node, cur.Slice(start)), nil
}

func (d SubFields) Emit(v *Value) ([]byte, error) {
	var out []byte
	for _, name := range v.order {
		child := v.children[name]
		b, err := child.Emit()
		if err != nil {
			return nil, fmt.Errorf("field: %s: %w", name, err)
		}
		out = append(out, b...)
	}
	return out, nil
}

func (d SubFields) Format(v *Value) string {
	s := "{"
	for i, name := range v.order {
		if i > 0 {
			s += ", "
		}
		s += name + ": " + v.children[name].Format()
	}
	return s + "}"
}
