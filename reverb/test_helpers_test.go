package reverb

import (
	"math"
	"math/rand"
	"testing"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

const testSampleRate = 44100

func testConfig(sampleRate float64, blockSize int, channels int) Config {
	return Config{
		ProcessorConfig: dspcore.ProcessorConfig{SampleRate: sampleRate, BlockSize: blockSize},
		NumChannels:     channels,
	}
}

func preparedEngine(t testing.TB, p Parameters, channels int) *Engine {
	t.Helper()
	e := NewEngine()
	e.SetParameters(p)
	if err := e.Prepare(testConfig(testSampleRate, 512, channels)); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return e
}

func newPlanar(channels, frames int) [][]float32 {
	block := make([][]float32, channels)
	for ch := range block {
		block[ch] = make([]float32, frames)
	}
	return block
}

// render pushes in through e block by block and returns the planar output.
func render(e *Engine, in [][]float32, blockSize int) [][]float32 {
	frames := len(in[0])
	out := newPlanar(len(in), frames)
	for ch := range in {
		copy(out[ch], in[ch])
	}
	block := make([][]float32, len(in))
	for start := 0; start < frames; start += blockSize {
		end := start + blockSize
		if end > frames {
			end = frames
		}
		for ch := range out {
			block[ch] = out[ch][start:end]
		}
		e.Process(block)
	}
	return out
}

func impulse(channels, frames int, chans ...int) [][]float32 {
	in := newPlanar(channels, frames)
	for _, ch := range chans {
		in[ch][0] = 1
	}
	return in
}

func noise(channels, frames int, amp float32, seed int64) [][]float32 {
	rng := rand.New(rand.NewSource(seed))
	in := newPlanar(channels, frames)
	for ch := range in {
		for i := range in[ch] {
			in[ch][i] = amp * (2*rng.Float32() - 1)
		}
	}
	return in
}

func windowRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func maxAbs(samples []float32) float64 {
	var m float64
	for _, s := range samples {
		if a := math.Abs(float64(s)); a > m {
			m = a
		}
	}
	return m
}

func maxStep(samples []float32) float64 {
	var m float64
	for i := 1; i < len(samples); i++ {
		if d := math.Abs(float64(samples[i] - samples[i-1])); d > m {
			m = d
		}
	}
	return m
}

// highFrequencyRatio is RMS of the first difference over RMS of the signal:
// about sqrt(2) for white noise, smaller for lowpassed material.
func highFrequencyRatio(samples []float32) float64 {
	if len(samples) < 2 {
		return 0
	}
	diff := make([]float32, len(samples)-1)
	for i := range diff {
		diff[i] = samples[i+1] - samples[i]
	}
	r := windowRMS(samples)
	if r == 0 {
		return 0
	}
	return windowRMS(diff) / r
}

func allFinite(samples []float32) bool {
	for _, s := range samples {
		v := float64(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func correlation(a, b []float32) float64 {
	var ab, aa, bb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		ab += x * y
		aa += x * x
		bb += y * y
	}
	if aa == 0 || bb == 0 {
		return 0
	}
	return ab / math.Sqrt(aa*bb)
}
