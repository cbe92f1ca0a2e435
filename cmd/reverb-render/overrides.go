package main

import (
	"fmt"

	"github.com/cwbudde/algo-reverb/reverb"
)

// unset marks a parameter flag the user did not pass.
const unset = -1.0

// applyOverrides writes every set flag value onto p. Values must be in [0,1];
// freeze follows the control threshold.
func applyOverrides(p *reverb.Parameters, overrides map[reverb.ParamID]float64) error {
	for _, id := range reverb.AllParams {
		v, ok := overrides[id]
		if !ok || v == unset {
			continue
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("-%s must be in [0,1], got %g", flagName(id), v)
		}
		f := float32(v)
		switch id {
		case reverb.ParamRoomSize:
			p.RoomSize = f
		case reverb.ParamDamping:
			p.Damping = f
		case reverb.ParamWet:
			p.WetLevel = f
		case reverb.ParamDry:
			p.DryLevel = f
		case reverb.ParamWidth:
			p.Width = f
		case reverb.ParamFreeze:
			p.FreezeMode = reverb.FreezeFromControl(f)
		}
	}
	return nil
}

func flagName(id reverb.ParamID) string {
	switch id {
	case reverb.ParamRoomSize:
		return "room"
	case reverb.ParamDamping:
		return "damping"
	case reverb.ParamWet:
		return "wet"
	case reverb.ParamDry:
		return "dry"
	case reverb.ParamWidth:
		return "width"
	case reverb.ParamFreeze:
		return "freeze"
	}
	return id.String()
}
