package fitcommon

import (
	"fmt"
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-reverb/reverb"
)

// RenderConfig controls an offline render through the reverb engine.
type RenderConfig struct {
	SampleRate int
	BlockSize  int
	Tuning     reverb.Tuning

	// TailSeconds of silence are appended after the input. With auto-stop
	// enabled this is the upper bound.
	TailSeconds float64

	// DecayDBFS stops the tail once block RMS stays below it for
	// DecayHoldBlocks consecutive blocks, but never before MinSeconds of
	// tail have been rendered. +Inf disables auto-stop.
	DecayDBFS       float64
	DecayHoldBlocks int
	MinSeconds      float64
}

// DefaultRenderConfig returns a fixed-length 48 kHz render with a 4 s tail.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		SampleRate:      48000,
		BlockSize:       128,
		TailSeconds:     4,
		DecayDBFS:       math.Inf(1),
		DecayHoldBlocks: 6,
		MinSeconds:      0.5,
	}
}

// Impulse returns a single-frame unit impulse on every channel.
func Impulse(channels int) [][]float32 {
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = []float32{1}
	}
	return out
}

// Render prepares a fresh engine with p and pushes input plus tail through
// it block by block. The result has one slice per input channel. An invalid
// sample rate or block size fails with the engine's configuration error.
func Render(p reverb.Parameters, input [][]float32, cfg RenderConfig) ([][]float32, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("no input channels")
	}
	if cfg.DecayHoldBlocks < 1 {
		cfg.DecayHoldBlocks = 1
	}
	numCh := len(input)
	inFrames := len(input[0])
	for ch := range input {
		if len(input[ch]) != inFrames {
			return nil, fmt.Errorf("input channel %d length mismatch", ch)
		}
	}

	e := reverb.NewEngine()
	e.SetParameters(p)
	err := e.Prepare(reverb.Config{
		ProcessorConfig: dspcore.ProcessorConfig{SampleRate: float64(cfg.SampleRate), BlockSize: cfg.BlockSize},
		NumChannels:     numCh,
		Tuning:          cfg.Tuning,
	})
	if err != nil {
		return nil, err
	}

	sr := e.SampleRate()
	maxFrames := inFrames + int(math.Max(0, cfg.TailSeconds)*sr)
	minFrames := inFrames + int(math.Max(0, cfg.MinSeconds)*sr)
	out := make([][]float32, numCh)
	for ch := range out {
		out[ch] = make([]float32, maxFrames)
		copy(out[ch], input[ch])
	}

	autoStop := !math.IsInf(cfg.DecayDBFS, 1) && !math.IsNaN(cfg.DecayDBFS)
	threshold := math.Pow(10, cfg.DecayDBFS/20)
	block := make([][]float32, numCh)
	rendered := 0
	below := 0
	for rendered < maxFrames {
		end := min(rendered+cfg.BlockSize, maxFrames)
		for ch := range out {
			block[ch] = out[ch][rendered:end]
		}
		e.Process(block)
		rendered = end

		if !autoStop || rendered < minFrames {
			continue
		}
		if BlockRMS(block) < threshold {
			below++
			if below >= cfg.DecayHoldBlocks {
				break
			}
		} else {
			below = 0
		}
	}

	for ch := range out {
		out[ch] = out[ch][:rendered]
	}
	return out, nil
}

// RenderImpulse renders the stereo impulse response of p.
func RenderImpulse(p reverb.Parameters, cfg RenderConfig) ([][]float32, error) {
	return Render(p, Impulse(2), cfg)
}

// BlockRMS is the RMS over all channels of a planar block.
func BlockRMS(planar [][]float32) float64 {
	var sum float64
	var n int
	for _, samples := range planar {
		for _, s := range samples {
			v := float64(s)
			sum += v * v
		}
		n += len(samples)
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}
