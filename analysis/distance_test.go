package analysis

import (
	"math"
	"math/rand"
	"testing"
)

func TestCompareIdenticalTailsHasLowDistance(t *testing.T) {
	sr := 48000
	x := makeDecayNoise(sr, 1.2, 2.0, 3)
	m := Compare(x, x, sr)
	if m.Score > 0.05 {
		t.Fatalf("expected very low score for identical tails, got %f", m.Score)
	}
	if m.Similarity < 0.85 {
		t.Fatalf("expected high similarity for identical tails, got %f", m.Similarity)
	}
	if m.LagSamples != 0 {
		t.Fatalf("identical tails should align at lag 0, got %d", m.LagSamples)
	}
}

func TestCompareDifferentDecayHasHigherDistance(t *testing.T) {
	sr := 48000
	a := makeDecayNoise(sr, 2.5, 2.0, 5)
	b := makeDecayNoise(sr, 0.4, 2.0, 5)
	m := Compare(a, b, sr)
	if m.Score < 0.25 {
		t.Fatalf("expected higher score for different decay times, got %f", m.Score)
	}
	if m.DecayDiffDBPerS < 50 {
		t.Fatalf("decay slope difference too small: %f", m.DecayDiffDBPerS)
	}
}

func TestCompareRanksCloserDecayLower(t *testing.T) {
	sr := 48000
	ref := makeDecayNoise(sr, 1.5, 2.0, 9)
	near := makeDecayNoise(sr, 1.4, 2.0, 10)
	far := makeDecayNoise(sr, 0.5, 2.0, 11)
	if Compare(ref, near, sr).Score >= Compare(ref, far, sr).Score {
		t.Fatalf("closer RT60 should score lower")
	}
}

func TestCompareDegenerateInputs(t *testing.T) {
	x := makeDecayNoise(48000, 1, 0.5, 1)
	for _, m := range []Metrics{
		Compare(nil, x, 48000),
		Compare(x, nil, 48000),
		Compare(x, x, 0),
		Compare(make([]float64, 1000), x, 48000),
		Compare(x[:100], x[:100], 48000),
	} {
		if m.Score != 1 || m.Similarity != 0 {
			t.Fatalf("degenerate input should score 1: %+v", m)
		}
	}
}

func TestEstimateLagFindsPositiveShift(t *testing.T) {
	const (
		n      = 8192
		shift  = 237
		maxLag = 600
	)
	ref := randomSignal(n, 7)
	cand := make([]float64, n)
	copy(cand, ref[shift:])

	if got := estimateLag(ref, cand, maxLag); got != shift {
		t.Fatalf("estimateLag() = %d, want %d", got, shift)
	}
}

func TestEstimateLagFindsNegativeShift(t *testing.T) {
	const (
		n      = 8192
		shift  = -191
		maxLag = 600
	)
	ref := randomSignal(n, 11)
	cand := make([]float64, n)
	copy(cand[-shift:], ref)

	if got := estimateLag(ref, cand, maxLag); got != shift {
		t.Fatalf("estimateLag() = %d, want %d", got, shift)
	}
}

func TestEstimateLagFFTMatchesExhaustive(t *testing.T) {
	const (
		n      = 16000
		shift  = 443
		maxLag = 1000
	)
	ref := randomSignal(n, 23)
	cand := make([]float64, n)
	copy(cand, ref[shift:])

	got := estimateLag(ref, cand, maxLag)
	want := estimateLagExhaustive(ref, cand, maxLag)
	if got != want {
		t.Fatalf("estimateLag() = %d, exhaustive = %d", got, want)
	}
}

func TestSpectralRMSEDBZeroForIdentical(t *testing.T) {
	x := randomSignal(4096, 3)
	if d := spectralRMSEDB(x, x); d > 1e-9 {
		t.Fatalf("identical spectra distance %g", d)
	}
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 0.1 * x[i]
	}
	if d := spectralRMSEDB(x, y); math.Abs(d-20) > 1e-6 {
		t.Fatalf("-20 dB copy should be 20 dB away, got %g", d)
	}
}

// makeDecayNoise is white noise under an exponential envelope reaching
// -60 dB at rt60 seconds.
func makeDecayNoise(sr int, rt60 float64, durationSec float64, seed int64) []float64 {
	n := int(float64(sr) * durationSec)
	rng := rand.New(rand.NewSource(seed))
	rate := 6.9078 / rt60
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sr)
		out[i] = math.Exp(-rate*t) * (rng.Float64()*2 - 1)
	}
	return out
}

func randomSignal(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}
