package field

// Descriptor is the recursive sum type used to describe bytes (spec
// §3). Every concrete descriptor kind — primitive, raw bytes, array,
// sub-fields, switch, optional — implements Parse/Emit/Format.
// Descriptors are immutable and safe to share across every connection
// of a protocol version once built.
type Descriptor interface {
	// Parse consumes bytes from cur and returns the resulting Value,
	// with parent set to the enclosing SubFields node currently being
	// built (nil at the packet root). parent lets Switch/Optional
	// predicates inspect sibling fields already parsed.
	Parse(cur *Cursor, parent *Value) (*Value, error)

	// Emit re-serializes v, which must have been produced by this
	// same descriptor (directly, or via Value.SetRaw/Set replacing its
	// payload). Value.Emit is the entry point callers should use; it
	// adds the dirty-tracking cache around this method.
	Emit(v *Value) ([]byte, error)

	// Format renders v for debugging/logging.
	Format(v *Value) string
}
