package protocol

import "fmt"

// PacketTable indexes a set of PacketTypes belonging to one
// direction+state pair, by both numeric id (for parsing) and name
// (for plugins constructing or looking up packets by their own name).
type PacketTable struct {
	byID   map[int32]*PacketType
	byName map[string]*PacketType
}

// NewPacketTable builds a table from a list of packet types. It panics
// on a duplicate id or name within the same table, since that would
// make the table ambiguous to parse against.
func NewPacketTable(types ...*PacketType) PacketTable {
	t := PacketTable{
		byID:   make(map[int32]*PacketType, len(types)),
		byName: make(map[string]*PacketType, len(types)),
	}
	for _, pt := range types {
		if _, exists := t.byID[pt.ID]; exists {
			panic(fmt.Sprintf("protocol: duplicate packet id %d in table", pt.ID))
		}
		if _, exists := t.byName[pt.Name]; exists {
			panic(fmt.Sprintf("protocol: duplicate packet name %q in table", pt.Name))
		}
		t.byID[pt.ID] = pt
		t.byName[pt.Name] = pt
	}
	return t
}

// ByID looks up a packet type by its wire id.
func (t PacketTable) ByID(id int32) (*PacketType, bool) {
	pt, ok := t.byID[id]
	return pt, ok
}

// ByName looks up a packet type by its registered name.
func (t PacketTable) ByName(name string) (*PacketType, bool) {
	pt, ok := t.byName[name]
	return pt, ok
}
