package reverb

import (
	"fmt"
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-reverb/dsp"
)

const (
	// Mapping from normalized controls to loop coefficients.
	scaleRoom    = 0.7
	offsetRoom   = 0.28
	scaleDamping = 0.4

	// Coefficient ramp time applied on every parameter change.
	smoothingSeconds = 0.05

	tailSeconds = 10.0
)

// State is the engine lifecycle state.
type State int

const (
	StateUnprepared State = iota
	StatePrepared
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateUnprepared:
		return "unprepared"
	case StatePrepared:
		return "prepared"
	case StateProcessing:
		return "processing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config describes the stream the engine is prepared for.
// BlockSize is the maximum number of frames per Process call.
// A zero Tuning selects DefaultTuning.
type Config struct {
	dspcore.ProcessorConfig
	NumChannels int
	Tuning      Tuning
}

// Coefficients are the loop and mix gains derived from a Parameters snapshot.
type Coefficients struct {
	Feedback  float32
	Damp      float32
	InputGain float32
	Dry       float32
	Wet1      float32 // same-side wet gain
	Wet2      float32 // cross-side wet gain
}

// DeriveCoefficients maps a snapshot to loop coefficients for the given tuning.
// Feedback stays below 1 except in freeze mode, where it is exactly 1 and
// the input is muted so the loop holds its energy without growing.
func DeriveCoefficients(p Parameters, t Tuning) Coefficients {
	p = p.Clamped()
	c := Coefficients{
		Feedback:  offsetRoom + p.RoomSize*scaleRoom,
		Damp:      p.Damping * scaleDamping,
		InputGain: t.InputGain,
		Dry:       p.DryLevel,
		Wet1:      p.WetLevel * (1 + p.Width) / 2,
		Wet2:      p.WetLevel * (1 - p.Width) / 2,
	}
	if p.FreezeMode {
		c.Feedback = 1
		c.Damp = 0
		c.InputGain = 0
	}
	return c
}

type channelState struct {
	combs     []combFilter
	allpasses []allpassFilter
}

func (c *channelState) process(x, feedback, damp, g float32) float32 {
	var acc float32
	for i := range c.combs {
		acc += c.combs[i].process(x, feedback, damp)
	}
	for i := range c.allpasses {
		acc = c.allpasses[i].process(acc, g)
	}
	return acc
}

func (c *channelState) reset() {
	for i := range c.combs {
		c.combs[i].reset()
	}
	for i := range c.allpasses {
		c.allpasses[i].reset()
	}
}

// Engine is a stereo comb/allpass reverb. It is not safe for concurrent use:
// the host serializes Prepare, Reset and Release against Process.
type Engine struct {
	state        State
	sampleRate   float64
	maxBlockSize int
	tuning       Tuning
	channels     []channelState
	wet          []float32
	frame        []float32

	params Parameters
	coeffs Coefficients

	feedback  *dsp.Smoother
	damp      *dsp.Smoother
	inputGain *dsp.Smoother
	dry       *dsp.Smoother
	wet1      *dsp.Smoother
	wet2      *dsp.Smoother
}

// NewEngine creates an unprepared engine holding the default parameters.
func NewEngine() *Engine {
	e := &Engine{
		tuning:    DefaultTuning(),
		params:    DefaultParameters(),
		feedback:  dsp.NewSmoother(0, 0),
		damp:      dsp.NewSmoother(0, 0),
		inputGain: dsp.NewSmoother(0, 0),
		dry:       dsp.NewSmoother(0, 0),
		wet1:      dsp.NewSmoother(0, 0),
		wet2:      dsp.NewSmoother(0, 0),
	}
	e.coeffs = DeriveCoefficients(e.params, e.tuning)
	e.snapSmoothers()
	return e
}

// Prepare sizes the delay network for cfg and clears all state.
// It allocates and must not run concurrently with Process.
func (e *Engine) Prepare(cfg Config) error {
	sr := cfg.SampleRate
	if !(sr > 0) || math.IsInf(sr, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRate, sr)
	}
	if cfg.NumChannels <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, cfg.NumChannels)
	}
	if cfg.BlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, cfg.BlockSize)
	}
	tuning := cfg.Tuning
	if tuning.IsZero() {
		tuning = DefaultTuning()
	}
	if err := tuning.Validate(); err != nil {
		return err
	}
	tuning = tuning.clone()

	channels := make([]channelState, cfg.NumChannels)
	for ch := range channels {
		offset := ch * tuning.StereoSpread
		combs := make([]combFilter, len(tuning.CombLengths))
		for i, ref := range tuning.CombLengths {
			combs[i] = newCombFilter(tuning.ScaledLength(ref+offset, sr), cfg.BlockSize)
		}
		allpasses := make([]allpassFilter, len(tuning.AllpassLengths))
		for i, ref := range tuning.AllpassLengths {
			allpasses[i] = newAllpassFilter(tuning.ScaledLength(ref+offset, sr), cfg.BlockSize)
		}
		channels[ch] = channelState{combs: combs, allpasses: allpasses}
	}

	e.sampleRate = sr
	e.maxBlockSize = cfg.BlockSize
	e.tuning = tuning
	e.channels = channels
	e.wet = make([]float32, cfg.NumChannels)
	e.frame = make([]float32, cfg.NumChannels)

	ramp := int(math.Round(smoothingSeconds * sr))
	for _, s := range e.smoothers() {
		s.SetRampLength(ramp)
	}
	e.coeffs = DeriveCoefficients(e.params, e.tuning)
	e.snapSmoothers()
	e.state = StatePrepared
	return nil
}

// Reset silences the delay network without reallocating and settles any
// coefficient ramp on its target.
func (e *Engine) Reset() {
	if e.state == StateUnprepared {
		return
	}
	for i := range e.channels {
		e.channels[i].reset()
	}
	clear(e.wet)
	e.snapSmoothers()
	e.state = StatePrepared
}

// Release drops the delay storage. Prepare must be called again before Process.
func (e *Engine) Release() {
	e.channels = nil
	e.wet = nil
	e.frame = nil
	e.sampleRate = 0
	e.maxBlockSize = 0
	e.state = StateUnprepared
}

// SetParameters derives new coefficient targets from p. It never allocates
// and is safe to call from the audio goroutine between blocks.
func (e *Engine) SetParameters(p Parameters) {
	e.params = p.Clamped()
	e.coeffs = DeriveCoefficients(e.params, e.tuning)
	e.feedback.SetTarget(e.coeffs.Feedback)
	e.damp.SetTarget(e.coeffs.Damp)
	e.inputGain.SetTarget(e.coeffs.InputGain)
	e.dry.SetTarget(e.coeffs.Dry)
	e.wet1.SetTarget(e.coeffs.Wet1)
	e.wet2.SetTarget(e.coeffs.Wet2)
}

// Process reverberates a planar block in place. Every channel slice must have
// the same length. Process panics if the engine is unprepared or the block
// carries more channels than it was prepared for.
func (e *Engine) Process(block [][]float32) {
	e.begin(len(block))
	if len(block) == 0 {
		e.state = StatePrepared
		return
	}
	frames := len(block[0])
	for _, ch := range block[1:] {
		if len(ch) < frames {
			frames = len(ch)
		}
	}
	frame := e.frame[:len(block)]
	for i := 0; i < frames; i++ {
		for ch := range block {
			frame[ch] = block[ch][i]
		}
		e.processFrame(frame)
		for ch := range block {
			block[ch][i] = frame[ch]
		}
	}
	e.state = StatePrepared
}

// ProcessInterleaved reverberates interleaved frames in place. It panics
// under the same conditions as Process and for a negative channel count.
func (e *Engine) ProcessInterleaved(buf []float32, numChannels int) {
	e.begin(numChannels)
	if numChannels == 0 {
		e.state = StatePrepared
		return
	}
	for start := 0; start+numChannels <= len(buf); start += numChannels {
		e.processFrame(buf[start : start+numChannels])
	}
	e.state = StatePrepared
}

func (e *Engine) begin(numChannels int) {
	if e.state == StateUnprepared {
		panic(ErrNotPrepared)
	}
	if numChannels < 0 || numChannels > len(e.channels) {
		panic(fmt.Errorf("%w: got %d, prepared %d", ErrChannelMismatch, numChannels, len(e.channels)))
	}
	e.state = StateProcessing
}

func (e *Engine) processFrame(frame []float32) {
	feedback := e.feedback.Next()
	damp := e.damp.Next()
	gain := e.inputGain.Next()
	dry := e.dry.Next()
	wet1 := e.wet1.Next()
	wet2 := e.wet2.Next()
	g := e.tuning.AllpassFeedback

	for ch, x := range frame {
		e.wet[ch] = e.channels[ch].process(x*gain, feedback, damp, g)
	}

	start := 0
	if len(frame) >= 2 {
		l, r := e.wet[0], e.wet[1]
		frame[0] = frame[0]*dry + wet1*l + wet2*r
		frame[1] = frame[1]*dry + wet1*r + wet2*l
		start = 2
	}
	for ch := start; ch < len(frame); ch++ {
		frame[ch] = frame[ch]*dry + (wet1+wet2)*e.wet[ch]
	}
}

// Parameters returns the effective (clamped) parameters for display.
func (e *Engine) Parameters() Parameters { return e.params }

// Coefficients returns the coefficient targets derived from Parameters.
func (e *Engine) Coefficients() Coefficients { return e.coeffs }

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// SampleRate returns the prepared sample rate, 0 when unprepared.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// NumChannels returns the prepared channel count.
func (e *Engine) NumChannels() int { return len(e.channels) }

// MaxBlockSize returns the prepared maximum block size.
func (e *Engine) MaxBlockSize() int { return e.maxBlockSize }

// Tuning returns a copy of the active tuning table.
func (e *Engine) Tuning() Tuning { return e.tuning.clone() }

// CombLengths returns the scaled comb delay lengths of channel ch.
func (e *Engine) CombLengths(ch int) []int {
	if ch < 0 || ch >= len(e.channels) {
		return nil
	}
	out := make([]int, len(e.channels[ch].combs))
	for i, c := range e.channels[ch].combs {
		out[i] = c.length
	}
	return out
}

// AllpassLengths returns the scaled allpass delay lengths of channel ch.
func (e *Engine) AllpassLengths(ch int) []int {
	if ch < 0 || ch >= len(e.channels) {
		return nil
	}
	out := make([]int, len(e.channels[ch].allpasses))
	for i, a := range e.channels[ch].allpasses {
		out[i] = a.length
	}
	return out
}

// TailSeconds reports how long the output rings after the input stops.
// Freeze mode never decays.
func (e *Engine) TailSeconds() float64 {
	if e.params.FreezeMode {
		return math.Inf(1)
	}
	return tailSeconds
}

func (e *Engine) smoothers() []*dsp.Smoother {
	return []*dsp.Smoother{e.feedback, e.damp, e.inputGain, e.dry, e.wet1, e.wet2}
}

func (e *Engine) snapSmoothers() {
	e.feedback.Snap(e.coeffs.Feedback)
	e.damp.Snap(e.coeffs.Damp)
	e.inputGain.Snap(e.coeffs.InputGain)
	e.dry.Snap(e.coeffs.Dry)
	e.wet1.Snap(e.coeffs.Wet1)
	e.wet2.Snap(e.coeffs.Wet2)
}
