package protocol

// StateTables holds the packet table for every state a connection can
// be in, for one direction.
type StateTables struct {
	Handshake PacketTable
	Status    PacketTable
	Login     PacketTable
	Play      PacketTable
}

func (st StateTables) byState(s State) PacketTable {
	switch s {
	case Handshake:
		return st.Handshake
	case Status:
		return st.Status
	case Login:
		return st.Login
	default:
		return st.Play
	}
}

// ProtocolVersion is the full set of packet tables for one protocol
// version, indexed by direction then state. proxyctl uses one
// ProtocolVersion (registry.Default()) for every connection, chosen
// before any packet is read; the handshake does not select it.
type ProtocolVersion struct {
	Version     int32
	ClientBound StateTables
	ServerBound StateTables
}

// Table returns the packet table in effect for dir/state.
func (pv *ProtocolVersion) Table(dir Direction, state State) PacketTable {
	if dir == ClientBound {
		return pv.ClientBound.byState(state)
	}
	return pv.ServerBound.byState(state)
}
