package reverb

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters()
	want := Parameters{RoomSize: 0.5, Damping: 0.5, WetLevel: 0.33, DryLevel: 0.4, Width: 1, FreezeMode: false}
	if p != want {
		t.Fatalf("defaults %+v want %+v", p, want)
	}
	if p.Clamped() != p {
		t.Fatalf("defaults must already be in range")
	}
}

func TestClampedLimitsEveryField(t *testing.T) {
	nan := float32(math.NaN())
	p := Parameters{RoomSize: 1.5, Damping: -0.5, WetLevel: nan, DryLevel: 2, Width: -1, FreezeMode: true}.Clamped()
	want := Parameters{RoomSize: 1, Damping: 0, WetLevel: 0, DryLevel: 1, Width: 0, FreezeMode: true}
	if p != want {
		t.Fatalf("clamped %+v want %+v", p, want)
	}
}

func TestTuningValidate(t *testing.T) {
	if err := DefaultTuning().Validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
	mutate := []func(*Tuning){
		func(tu *Tuning) { tu.ReferenceRate = 0 },
		func(tu *Tuning) { tu.CombLengths = nil },
		func(tu *Tuning) { tu.AllpassLengths = nil },
		func(tu *Tuning) { tu.CombLengths = []int{100, 0} },
		func(tu *Tuning) { tu.AllpassLengths = []int{-5} },
		func(tu *Tuning) { tu.StereoSpread = -1 },
		func(tu *Tuning) { tu.AllpassFeedback = -1 },
		func(tu *Tuning) { tu.InputGain = -0.1 },
	}
	for i, m := range mutate {
		tu := DefaultTuning()
		m(&tu)
		if err := tu.Validate(); !errors.Is(err, ErrInvalidTuning) {
			t.Fatalf("case %d: expected ErrInvalidTuning, got %v", i, err)
		}
	}
}

func TestScaledLength(t *testing.T) {
	tu := DefaultTuning()
	cases := []struct {
		ref  int
		rate float64
		want int
	}{
		{1116, 44100, 1116},
		{1116, 48000, 1215},
		{1116, 96000, 2429},
		{225, 22050, 113},
		{1, 8000, 1},
	}
	for _, c := range cases {
		if got := tu.ScaledLength(c.ref, c.rate); got != c.want {
			t.Fatalf("ScaledLength(%d, %g)=%d want %d", c.ref, c.rate, got, c.want)
		}
	}
}

func TestZeroTuningSelectsDefaults(t *testing.T) {
	if !(Tuning{}).IsZero() || DefaultTuning().IsZero() {
		t.Fatalf("IsZero mismatch")
	}
	e := NewEngine()
	if err := e.Prepare(testConfig(testSampleRate, 64, 2)); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if got := e.Tuning(); len(got.CombLengths) != 8 || got.StereoSpread != 23 {
		t.Fatalf("zero tuning did not select defaults: %+v", got)
	}
}
