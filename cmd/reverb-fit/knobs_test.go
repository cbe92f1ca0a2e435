package main

import (
	"testing"

	"github.com/cwbudde/algo-reverb/reverb"
)

func TestParseKnobs(t *testing.T) {
	defs, err := parseKnobs(" room_size, DAMPING ,room_size")
	if err != nil {
		t.Fatalf("parseKnobs: %v", err)
	}
	if len(defs) != 2 || defs[0].Name != "room_size" || defs[1].Name != "damping" {
		t.Fatalf("unexpected defs: %+v", defs)
	}
	for _, bad := range []string{"", ",", "dry_level", "room_size,gain"} {
		if _, err := parseKnobs(bad); err == nil {
			t.Fatalf("parseKnobs(%q) expected error", bad)
		}
	}
}

func TestApplyCandidateWritesOnlyFittedKnobs(t *testing.T) {
	defs, _ := parseKnobs("room_size,width")
	base := reverb.DefaultParameters()
	p := applyCandidate(base, defs, candidate{Vals: []float64{0.8, 0.25}})
	if p.RoomSize != 0.8 || p.Width != 0.25 {
		t.Fatalf("knobs not applied: %+v", p)
	}
	if p.Damping != base.Damping || p.DryLevel != base.DryLevel {
		t.Fatalf("other fields changed: %+v", p)
	}
}

func TestInitCandidateClampsToKnobRange(t *testing.T) {
	defs, _ := parseKnobs("wet_level")
	base := reverb.DefaultParameters()
	base.WetLevel = 0
	c := initCandidate(base, defs)
	if c.Vals[0] != 0.05 {
		t.Fatalf("wet_level should clamp to knob minimum, got %g", c.Vals[0])
	}
}

func TestFromNormalizedMapsRange(t *testing.T) {
	defs, _ := parseKnobs("room_size,wet_level")
	c := fromNormalized([]float64{0.5, 0}, defs)
	if c.Vals[0] != 0.5 || c.Vals[1] != 0.05 {
		t.Fatalf("unexpected mapping: %v", c.Vals)
	}
	c = fromNormalized([]float64{1.5, -1}, defs)
	if c.Vals[0] != 1 || c.Vals[1] != 0.05 {
		t.Fatalf("out-of-range positions must clamp: %v", c.Vals)
	}
}

func TestCandidateKeyAndKnobMap(t *testing.T) {
	defs, _ := parseKnobs("room_size,damping")
	c := candidate{Vals: []float64{0.5, 0.25}}
	if got := candidateKey(c); got != "0.50000,0.25000" {
		t.Fatalf("candidateKey = %q", got)
	}
	m := knobMap(defs, c)
	if m["room_size"] != 0.5 || m["damping"] != 0.25 {
		t.Fatalf("knobMap = %v", m)
	}
}
