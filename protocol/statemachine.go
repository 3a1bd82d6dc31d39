package protocol

import "github.com/seiftnesse/mcproxy/wire/field"

// ToState returns a TransitionFunc that unconditionally switches the
// context to newState once the packet has been parsed. LoginSuccess
// triggers this way; Handshake uses ToStateFromField instead.
func ToState(newState State) TransitionFunc {
	return func(ctx *StreamContext, val *field.Value, fx Effects) error {
		ctx.ChangeState(newState)
		return nil
	}
}

// ToStateFromField returns a TransitionFunc that reads an integer
// field (Handshake's "next_state", 1 for status or 2 for login) and
// switches to the matching State.
func ToStateFromField(fieldName string, mapping map[int32]State) TransitionFunc {
	return func(ctx *StreamContext, val *field.Value, fx Effects) error {
		raw := val.MustField(fieldName).Raw().(int32)
		if newState, ok := mapping[raw]; ok {
			ctx.ChangeState(newState)
		}
		return nil
	}
}
