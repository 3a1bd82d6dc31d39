package protocol

import (
	"fmt"

	"github.com/seiftnesse/mcproxy/wire/field"
)

// Effects is the set of wire-level side effects a packet's Transition
// can trigger. A StreamContext never touches the ring buffer or frame
// codec directly; it asks the endpoint holding the actual socket to
// apply the effect to both the read and write directions of that
// connection. This keeps protocol state transitions testable without a
// live socket.
type Effects interface {
	EnableEncryption(sharedSecret []byte) error
}

// TransitionFunc runs after a packet of a given type is parsed. It may
// mutate ctx's state (via ctx.ChangeState) and/or invoke fx for
// side effects that reach beyond packet framing. Effects covers
// encryption only; compression changes are not reachable through it.
type TransitionFunc func(ctx *StreamContext, val *field.Value, fx Effects) error

// PacketType names one packet shape: its numeric id within a
// direction+state, the descriptor that parses/emits its body, and an
// optional state-machine transition it triggers.
type PacketType struct {
	ID         int32
	Name       string
	Direction  Direction
	State      State
	Body       field.Descriptor
	Transition TransitionFunc
}

func (pt *PacketType) String() string {
	return fmt.Sprintf("%s/%s#%d(%s)", pt.State, pt.Direction, pt.ID, pt.Name)
}
