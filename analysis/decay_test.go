package analysis

import (
	"errors"
	"math"
	"testing"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-reverb/reverb"
)

func TestDecayMeasuresKnownRT60(t *testing.T) {
	const sr = 48000
	for _, rt := range []float64{0.4, 1.0, 2.0} {
		x := makeDecayNoise(sr, rt, 3*rt, 17)
		m, err := Decay(x, sr)
		if err != nil {
			t.Fatalf("rt %g: Decay: %v", rt, err)
		}
		if math.Abs(m.RT60-rt) > 0.15*rt {
			t.Fatalf("RT60 = %.3f, want %.3f", m.RT60, rt)
		}
		if m.PeakDB > 0 || m.PeakIndex < 0 {
			t.Fatalf("unexpected levels: %+v", m)
		}
	}
}

func TestDecayErrors(t *testing.T) {
	if _, err := Decay(nil, 48000); err == nil {
		t.Fatalf("expected error for empty response")
	}
	if _, err := Decay([]float64{1, 0.5}, 0); err == nil {
		t.Fatalf("expected error for invalid sample rate")
	}
	m, err := Decay([]float64{1}, 48000)
	if !errors.Is(err, ErrNoDecay) {
		t.Fatalf("single sample should not decay, got %v", err)
	}
	if m.PeakIndex != 0 {
		t.Fatalf("partial metrics should still be returned: %+v", m)
	}
}

func TestDBToLinear(t *testing.T) {
	for _, c := range []struct{ db, want float64 }{
		{0, 1},
		{-20, 0.1},
		{-60, 0.001},
		{6.0206, 2},
	} {
		if got := DBToLinear(c.db); math.Abs(got-c.want) > 0.02*c.want {
			t.Fatalf("DBToLinear(%g) = %g, want %g", c.db, got, c.want)
		}
	}
}

func TestTrimTail(t *testing.T) {
	x := makeDecayNoise(48000, 1.0, 3.0, 4)
	trimmed := TrimTail(x, 60)
	if len(trimmed) >= len(x) || len(trimmed) < 48000/2 {
		t.Fatalf("trimmed length %d of %d", len(trimmed), len(x))
	}
	if got := TrimTail(make([]float64, 10), 60); len(got) != 0 {
		t.Fatalf("silence should trim to nothing, got %d", len(got))
	}
}

func TestSpectralCentroidTracksTone(t *testing.T) {
	const sr = 48000
	tone := func(freq float64) []float64 {
		x := make([]float64, 8192)
		for i := range x {
			x[i] = math.Sin(2 * math.Pi * freq * float64(i) / sr)
		}
		return x
	}
	lo := SpectralCentroid(tone(500), sr)
	hi := SpectralCentroid(tone(5000), sr)
	if math.Abs(lo-500) > 100 || math.Abs(hi-5000) > 300 {
		t.Fatalf("centroids lo=%g hi=%g", lo, hi)
	}
	if SpectralCentroid(nil, sr) != 0 || SpectralCentroid(tone(500), 0) != 0 {
		t.Fatalf("degenerate input should return 0")
	}
}

func TestStereoCorrelation(t *testing.T) {
	a := []float32{1, -1, 0.5, 0.25}
	neg := []float32{-1, 1, -0.5, -0.25}
	if c := StereoCorrelation(a, a); math.Abs(c-1) > 1e-12 {
		t.Fatalf("self correlation %g", c)
	}
	if c := StereoCorrelation(a, neg); math.Abs(c+1) > 1e-12 {
		t.Fatalf("inverted correlation %g", c)
	}
	if StereoCorrelation(a, make([]float32, 4)) != 0 {
		t.Fatalf("silent channel should give 0")
	}
}

func renderImpulse(t *testing.T, p reverb.Parameters, sr int, seconds float64) (l, r []float32) {
	t.Helper()
	e := reverb.NewEngine()
	e.SetParameters(p)
	cfg := reverb.Config{
		ProcessorConfig: dspcore.ProcessorConfig{SampleRate: float64(sr), BlockSize: 512},
		NumChannels:     2,
	}
	if err := e.Prepare(cfg); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	n := int(seconds * float64(sr))
	l = make([]float32, n)
	r = make([]float32, n)
	l[0], r[0] = 1, 1
	for start := 0; start < n; start += 512 {
		end := min(start+512, n)
		e.Process([][]float32{l[start:end], r[start:end]})
	}
	return l, r
}

func toFloat64(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

func TestEngineRoomSizeLengthensRT60(t *testing.T) {
	const sr = 44100
	rt := func(room float32) float64 {
		p := reverb.DefaultParameters()
		p.RoomSize = room
		p.DryLevel = 0
		l, _ := renderImpulse(t, p, sr, 4)
		m, err := Decay(toFloat64(l), sr)
		if err != nil {
			t.Fatalf("room %g: Decay: %v", room, err)
		}
		return m.RT60
	}
	small, large := rt(0.3), rt(0.9)
	if !(large > 2*small) {
		t.Fatalf("RT60 small=%.3f large=%.3f", small, large)
	}
}

func TestEngineWidthControlsCorrelation(t *testing.T) {
	const sr = 44100
	corr := func(width float32) float64 {
		p := reverb.DefaultParameters()
		p.DryLevel = 0
		p.Width = width
		l, r := renderImpulse(t, p, sr, 1)
		return StereoCorrelation(l, r)
	}
	if c := corr(0); c < 0.999 {
		t.Fatalf("width 0 correlation %g", c)
	}
	if c := corr(1); c > 0.9 {
		t.Fatalf("width 1 correlation %g", c)
	}
}
