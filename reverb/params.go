package reverb

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// FreezeThreshold is the control value above which freeze mode is on.
const FreezeThreshold = 0.5

// Parameters is one snapshot of the user-facing reverb controls.
// All continuous fields are normalized to [0,1].
type Parameters struct {
	RoomSize   float32
	Damping    float32
	WetLevel   float32
	DryLevel   float32
	Width      float32
	FreezeMode bool
}

// DefaultParameters returns the factory settings.
func DefaultParameters() Parameters {
	return Parameters{
		RoomSize:   0.5,
		Damping:    0.5,
		WetLevel:   0.33,
		DryLevel:   0.4,
		Width:      1.0,
		FreezeMode: false,
	}
}

// Clamped returns p with every continuous field limited to [0,1].
func (p Parameters) Clamped() Parameters {
	p.RoomSize = clampUnit(p.RoomSize)
	p.Damping = clampUnit(p.Damping)
	p.WetLevel = clampUnit(p.WetLevel)
	p.DryLevel = clampUnit(p.DryLevel)
	p.Width = clampUnit(p.Width)
	return p
}

// FreezeFromControl maps the continuous freeze control to the mode flag.
func FreezeFromControl(v float32) bool {
	return v > FreezeThreshold
}

// freezeControlValue is the inverse used when seeding controls from a snapshot.
func freezeControlValue(on bool) float32 {
	if on {
		return 1
	}
	return 0
}

// clampUnit limits v to [0,1]; NaN becomes 0.
func clampUnit(v float32) float32 {
	if v != v {
		return 0
	}
	return float32(dspcore.Clamp(float64(v), 0, 1))
}
