package fitcommon

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWritePlanarWAVRoundTrip(t *testing.T) {
	left := []float32{0.8, 0.4, -0.2, 0.1, 0}
	right := []float32{-0.5, 0.25, 0.125, 0, 0}
	path := filepath.Join(t.TempDir(), "sub", "st.wav")
	if err := WritePlanarWAV(path, [][]float32{left, right}, 44100); err != nil {
		t.Fatalf("WritePlanarWAV: %v", err)
	}

	got, sr, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if sr != 44100 || len(got) != 2 || len(got[0]) != len(left) {
		t.Fatalf("unexpected shape: sr=%d ch=%d frames=%d", sr, len(got), len(got[0]))
	}
	// Compare shape only; absolute scale depends on the decoder.
	if r := got[0][1] / got[0][0]; math.Abs(float64(r)-0.5) > 1e-3 {
		t.Fatalf("left ratio %g want 0.5", r)
	}
	if got[1][0] >= 0 || got[1][1] <= 0 {
		t.Fatalf("right signs lost: %v", got[1])
	}
}

func TestReadWAVStereoDuplicatesMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	if err := WritePlanarWAV(path, [][]float32{{1, 0.5, 0.25}}, 48000); err != nil {
		t.Fatalf("WritePlanarWAV: %v", err)
	}
	st, _, err := ReadWAVStereo(path)
	if err != nil {
		t.Fatalf("ReadWAVStereo: %v", err)
	}
	if len(st) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(st))
	}
	for i := range st[0] {
		if st[0][i] != st[1][i] {
			t.Fatalf("frame %d differs: %g vs %g", i, st[0][i], st[1][i])
		}
	}
	st[1][0] = 0
	if st[0][0] == 0 {
		t.Fatalf("duplicated channel must not alias")
	}
}

func TestReadWAVErrors(t *testing.T) {
	if _, _, err := ReadWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if err := WritePlanarWAV(filepath.Join(t.TempDir(), "x.wav"), nil, 48000); err == nil {
		t.Fatalf("expected error for no channels")
	}
	if err := WritePlanarWAV(filepath.Join(t.TempDir(), "x.wav"), [][]float32{{1, 2}, {1}}, 48000); err == nil {
		t.Fatalf("expected error for ragged channels")
	}
}

func TestInterleaveRoundTrip(t *testing.T) {
	planar := [][]float32{{1, 2, 3}, {4, 5, 6}}
	inter := Interleave(planar)
	want := []float32{1, 4, 2, 5, 3, 6}
	for i := range want {
		if inter[i] != want[i] {
			t.Fatalf("interleaved %v want %v", inter, want)
		}
	}
	back := Deinterleave(inter, 2)
	for ch := range planar {
		for i := range planar[ch] {
			if back[ch][i] != planar[ch][i] {
				t.Fatalf("deinterleave mismatch at ch=%d i=%d", ch, i)
			}
		}
	}
}

func TestMixToMono64(t *testing.T) {
	got := MixToMono64([][]float32{{1, -1}, {0, 1}})
	if got[0] != 0.5 || got[1] != 0 {
		t.Fatalf("mono mix %v", got)
	}
	if MixToMono64(nil) != nil {
		t.Fatalf("nil input should give nil")
	}
}

func TestResamplePlanarChangesLength(t *testing.T) {
	in := [][]float32{make([]float32, 9600), make([]float32, 9600)}
	in[0][0] = 1
	out, err := ResamplePlanar(in, 96000, 48000)
	if err != nil {
		t.Fatalf("ResamplePlanar: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("channel count %d", len(out))
	}
	if n := len(out[0]); n < 4000 || n > 5600 {
		t.Fatalf("resampled length %d, want about 4800", n)
	}
	same, err := ResamplePlanar(in, 48000, 48000)
	if err != nil || len(same[0]) != 9600 {
		t.Fatalf("same-rate resample should pass through")
	}
}

func TestNormalizePeak(t *testing.T) {
	planar := [][]float32{{0.25, -0.5}, {0.1, 0}}
	g := NormalizePeak(planar, 0.9)
	if math.Abs(g-1.8) > 1e-6 || math.Abs(Peak(planar)-0.9) > 1e-6 {
		t.Fatalf("gain %g peak %g", g, Peak(planar))
	}
	silent := [][]float32{{0, 0}}
	if NormalizePeak(silent, 1) != 1 {
		t.Fatalf("silent input should keep unity gain")
	}
}
