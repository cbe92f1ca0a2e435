package reverb

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
)

// Tolerance is the smallest raw control movement that triggers a recompute.
const Tolerance = 0.001

// ParamID identifies one host-automatable control.
type ParamID int

const (
	ParamRoomSize ParamID = iota
	ParamDamping
	ParamWet
	ParamDry
	ParamWidth
	ParamFreeze
	numParams
)

var paramNames = [numParams]string{"ROOMSIZE", "DAMPING", "WET", "DRY", "WIDTH", "FREEZE"}

// AllParams lists every control in update order.
var AllParams = [numParams]ParamID{ParamRoomSize, ParamDamping, ParamWet, ParamDry, ParamWidth, ParamFreeze}

func (id ParamID) String() string {
	if id < 0 || id >= numParams {
		return fmt.Sprintf("ParamID(%d)", int(id))
	}
	return paramNames[id]
}

// ParseParamID accepts a host identifier such as "ROOMSIZE" (case-insensitive).
func ParseParamID(s string) (ParamID, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range paramNames {
		if n == name {
			return ParamID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown parameter %q", s)
}

// Control is a float32 written by control goroutines and read lock-free by
// the audio goroutine. Last write wins.
type Control struct {
	bits atomic.Uint32
}

// Store publishes v. Values are clamped by the reader, not here.
func (c *Control) Store(v float32) {
	c.bits.Store(math.Float32bits(v))
}

// Load returns the latest stored value.
func (c *Control) Load() float32 {
	return math.Float32frombits(c.bits.Load())
}

// Controls holds the six raw controls shared between goroutines.
type Controls struct {
	values [numParams]Control
}

// NewControls returns controls seeded with DefaultParameters.
func NewControls() *Controls {
	c := &Controls{}
	c.StoreParameters(DefaultParameters())
	return c
}

// Control returns the cell for id, or nil for an unknown id.
func (c *Controls) Control(id ParamID) *Control {
	if id < 0 || id >= numParams {
		return nil
	}
	return &c.values[id]
}

// Set stores a raw value for id. Unknown ids are ignored.
func (c *Controls) Set(id ParamID, v float32) {
	if ctl := c.Control(id); ctl != nil {
		ctl.Store(v)
	}
}

// Get loads the raw value for id, 0 for an unknown id.
func (c *Controls) Get(id ParamID) float32 {
	if ctl := c.Control(id); ctl != nil {
		return ctl.Load()
	}
	return 0
}

// StoreParameters writes every field of p. Freeze is stored as 0 or 1.
func (c *Controls) StoreParameters(p Parameters) {
	c.values[ParamRoomSize].Store(p.RoomSize)
	c.values[ParamDamping].Store(p.Damping)
	c.values[ParamWet].Store(p.WetLevel)
	c.values[ParamDry].Store(p.DryLevel)
	c.values[ParamWidth].Store(p.Width)
	c.values[ParamFreeze].Store(freezeControlValue(p.FreezeMode))
}

// ParameterSink receives a new snapshot when the controls moved.
type ParameterSink interface {
	SetParameters(Parameters)
}

// Controller turns raw controls into Parameters snapshots once per block,
// skipping the push when nothing moved by more than Tolerance.
// Update must only be called from the audio goroutine.
type Controller struct {
	controls   *Controls
	sink       ParameterSink
	cached     [numParams]float32
	params     Parameters
	recomputes uint64
}

// NewController creates a controller whose cache matches DefaultParameters,
// which is also what a freshly constructed Engine holds.
func NewController(controls *Controls, sink ParameterSink) *Controller {
	d := DefaultParameters()
	return &Controller{
		controls: controls,
		sink:     sink,
		params:   d,
		cached: [numParams]float32{
			ParamRoomSize: d.RoomSize,
			ParamDamping:  d.Damping,
			ParamWet:      d.WetLevel,
			ParamDry:      d.DryLevel,
			ParamWidth:    d.Width,
			ParamFreeze:   freezeControlValue(d.FreezeMode),
		},
	}
}

// Update samples the controls and pushes one snapshot to the sink if any of
// them changed by more than Tolerance. It reports whether a push happened.
func (c *Controller) Update() bool {
	changed := false
	for _, id := range AllParams {
		v := clampUnit(c.controls.values[id].Load())
		if math.Abs(float64(v-c.cached[id])) <= Tolerance {
			continue
		}
		c.cached[id] = v
		changed = true
		switch id {
		case ParamRoomSize:
			c.params.RoomSize = v
		case ParamDamping:
			c.params.Damping = v
		case ParamWet:
			c.params.WetLevel = v
		case ParamDry:
			c.params.DryLevel = v
		case ParamWidth:
			c.params.Width = v
		case ParamFreeze:
			c.params.FreezeMode = FreezeFromControl(v)
		}
	}
	if !changed {
		return false
	}
	c.recomputes++
	if c.sink != nil {
		c.sink.SetParameters(c.params)
	}
	return true
}

// Sync pushes the current controls unconditionally, e.g. after the sink had
// its parameters set behind the controller's back.
func (c *Controller) Sync() {
	for _, id := range AllParams {
		c.cached[id] = clampUnit(c.controls.values[id].Load())
	}
	c.params = Parameters{
		RoomSize:   c.cached[ParamRoomSize],
		Damping:    c.cached[ParamDamping],
		WetLevel:   c.cached[ParamWet],
		DryLevel:   c.cached[ParamDry],
		Width:      c.cached[ParamWidth],
		FreezeMode: FreezeFromControl(c.cached[ParamFreeze]),
	}
	c.recomputes++
	if c.sink != nil {
		c.sink.SetParameters(c.params)
	}
}

// Parameters returns the last snapshot built by Update.
func (c *Controller) Parameters() Parameters { return c.params }

// Recomputes counts how many snapshots were pushed to the sink.
func (c *Controller) Recomputes() uint64 { return c.recomputes }
