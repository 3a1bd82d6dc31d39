package field

// Kind classifies the shape of data a Value node holds.
type Kind int

const (
	// KindLeaf holds a single decoded Go value (primitive, string,
	// UUID, position, raw bytes).
	KindLeaf Kind = iota
	// KindSubFields holds an ordered set of named children.
	KindSubFields
	// KindArray holds an ordered sequence of elements.
	KindArray
	// KindWrapper holds exactly one inner Value chosen by a Switch or
	// Optional descriptor.
	KindWrapper
)

// Value is the runtime tree produced by parsing a packet body, and the
// tree mutated and re-emitted by handler logic. It corresponds to
// spec's PacketValue for the root node, and to the value of every
// field beneath it.
//
// The parent pointer is a relation, not ownership (spec §9): it exists
// only so Switch/Optional predicates and dirty-propagation can walk
// upward, and a Value never outlives the parse/handle call that
// produced it in a way that would require the parent to keep it alive.
type Value struct {
	desc   Descriptor
	parent *Value

	kind Kind

	raw      interface{}        // KindLeaf
	children map[string]*Value  // KindSubFields
	order    []string           // KindSubFields, field declaration order
	elements []*Value           // KindArray
	inner    *Value             // KindWrapper

	dirty          bool
	cachedEncoding []byte

	// TypeName/TypeID are set only on a root Value by the protocol
	// package once it knows which PacketType produced this tree; the
	// field package itself has no notion of packet identity.
	TypeName string
	TypeID   int32
}

func newLeaf(desc Descriptor, parent *Value, raw interface{}) *Value {
	return &Value{desc: desc, parent: parent, kind: KindLeaf, raw: raw}
}

func newSubFields(desc Descriptor, parent *Value, order []string) *Value {
	return &Value{
		desc:     desc,
		parent:   parent,
		kind:     KindSubFields,
		children: make(map[string]*Value, len(order)),
		order:    order,
	}
}

func newArray(desc Descriptor, parent *Value, elements []*Value) *Value {
	return &Value{desc: desc, parent: parent, kind: KindArray, elements: elements}
}

func newWrapper(desc Descriptor, parent *Value, inner *Value) *Value {
	return &Value{desc: desc, parent: parent, kind: KindWrapper, inner: inner}
}

// Kind reports the node's shape.
func (v *Value) Kind() Kind { return v.kind }

// Parent returns the enclosing node, or nil at the root.
func (v *Value) Parent() *Value { return v.parent }

// Raw returns the decoded Go value of a leaf node (int32, string,
// bool, uuid.UUID, etc. depending on the primitive). For a KindWrapper
// node it transparently unwraps to the inner value's Raw so callers
// rarely need to know a field was declared Optional/Switch.
func (v *Value) Raw() interface{} {
	if v.kind == KindWrapper {
		if v.inner == nil {
			return nil
		}
		return v.inner.Raw()
	}
	return v.raw
}

// Field looks up a named child of a SubFields node (unwrapping a
// wrapper transparently), returning ok=false if absent.
func (v *Value) Field(name string) (*Value, bool) {
	node := v
	if node.kind == KindWrapper {
		if node.inner == nil {
			return nil, false
		}
		node = node.inner
	}
	if node.kind != KindSubFields {
		return nil, false
	}
	child, ok := node.children[name]
	return child, ok
}

// MustField panics if name is not present; intended for handler code
// that already knows a packet's own shape.
func (v *Value) MustField(name string) *Value {
	child, ok := v.Field(name)
	if !ok {
		panic("field: no such field " + name)
	}
	return child
}

// Elements returns an array node's items in order.
func (v *Value) Elements() []*Value {
	node := v
	if node.kind == KindWrapper && node.inner != nil {
		node = node.inner
	}
	return node.elements
}

// Dirty reports whether this node (or any descendant) has been
// mutated since it was parsed or last emitted.
func (v *Value) Dirty() bool { return v.dirty }

// markDirty flags this node and walks every ancestor up to the root,
// flagging each in turn (spec §3/§4.3: "mutating any named field... marks
// it and all ancestors dirty").
func (v *Value) markDirty() {
	for n := v; n != nil; n = n.parent {
		n.dirty = true
	}
}

// SetRaw replaces a leaf node's decoded value and marks the node (and
// every ancestor) dirty.
func (v *Value) SetRaw(raw interface{}) {
	if v.kind == KindWrapper && v.inner != nil {
		v.inner.SetRaw(raw)
		return
	}
	v.raw = raw
	v.markDirty()
}

// Set replaces the value of a named child field and marks it (and
// every ancestor up to the packet root) dirty. It is the "sealed
// setter" spec §9 calls for.
func (v *Value) Set(name string, raw interface{}) {
	child := v.MustField(name)
	child.SetRaw(raw)
}

// Append adds el to the end of an array node, marking it dirty.
func (v *Value) Append(el *Value) {
	node := v
	if node.kind == KindWrapper && node.inner != nil {
		node = node.inner
	}
	el.parent = node
	node.elements = append(node.elements, el)
	node.markDirty()
}

// ReplaceAt overwrites the element at index i of an array node,
// marking it dirty.
func (v *Value) ReplaceAt(i int, el *Value) {
	node := v
	if node.kind == KindWrapper && node.inner != nil {
		node = node.inner
	}
	el.parent = node
	node.elements[i] = el
	node.markDirty()
}

// Emit re-serializes this node. A clean node with a cached encoding
// (set at parse time, or after the previous Emit) returns it verbatim
// without recomputing; a dirty node is re-encoded and the result
// becomes its new cache.
func (v *Value) Emit() ([]byte, error) {
	if !v.dirty && v.cachedEncoding != nil {
		return v.cachedEncoding, nil
	}
	out, err := v.desc.Emit(v)
	if err != nil {
		return nil, err
	}
	v.cachedEncoding = out
	v.dirty = false
	return out, nil
}

// Format renders a debug string for this node via its descriptor.
func (v *Value) Format() string {
	return v.desc.Format(v)
}

// cacheParsed stores buf as this node's verbatim wire encoding right
// after a successful parse, leaving the node clean. Every descriptor's
// Parse implementation calls this before returning.
func cacheParsed(v *Value, buf []byte) *Value {
	v.cachedEncoding = buf
	v.dirty = false
	return v
}
