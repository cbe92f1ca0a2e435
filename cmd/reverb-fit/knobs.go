package main

import (
	"fmt"
	"strconv"
	"strings"

	fitcommon "github.com/cwbudde/algo-reverb/internal/fitcommon"
	"github.com/cwbudde/algo-reverb/reverb"
)

type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

type candidate struct {
	Vals []float64
}

// fitKnobs are the parameters an impulse response can constrain. Dry level is
// left to the preset since Compare normalizes loudness.
var fitKnobs = []knobDef{
	{Name: "room_size", Min: 0, Max: 1},
	{Name: "damping", Min: 0, Max: 1},
	{Name: "wet_level", Min: 0.05, Max: 1},
	{Name: "width", Min: 0, Max: 1},
}

// parseKnobs parses a comma-separated knob list, e.g. "room_size,damping".
func parseKnobs(raw string) ([]knobDef, error) {
	defs := make([]knobDef, 0, len(fitKnobs))
	seen := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		found := false
		for _, d := range fitKnobs {
			if d.Name == s {
				defs = append(defs, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown knob %q (valid: room_size, damping, wet_level, width)", s)
		}
		seen[s] = true
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no knobs specified")
	}
	return defs, nil
}

func knobField(p *reverb.Parameters, name string) *float32 {
	switch name {
	case "room_size":
		return &p.RoomSize
	case "damping":
		return &p.Damping
	case "wet_level":
		return &p.WetLevel
	case "width":
		return &p.Width
	}
	return nil
}

func initCandidate(base reverb.Parameters, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, d := range defs {
		vals[i] = fitcommon.Clamp(float64(*knobField(&base, d.Name)), d.Min, d.Max)
	}
	return candidate{Vals: vals}
}

func applyCandidate(base reverb.Parameters, defs []knobDef, cand candidate) reverb.Parameters {
	p := base
	for i, d := range defs {
		if f := knobField(&p, d.Name); f != nil && i < len(cand.Vals) {
			*f = float32(fitcommon.Clamp(cand.Vals[i], d.Min, d.Max))
		}
	}
	return p
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, d := range defs {
		vals[i] = fitcommon.Lerp(d.Min, d.Max, pos[i])
	}
	return candidate{Vals: vals}
}

func cloneCandidate(c candidate) candidate {
	return candidate{Vals: append([]float64(nil), c.Vals...)}
}

func candidateKey(c candidate) string {
	parts := make([]string, len(c.Vals))
	for i, v := range c.Vals {
		parts[i] = strconv.FormatFloat(v, 'f', 5, 64)
	}
	return strings.Join(parts, ",")
}

func knobMap(defs []knobDef, c candidate) map[string]float64 {
	m := make(map[string]float64, len(defs))
	for i, d := range defs {
		m[d.Name] = c.Vals[i]
	}
	return m
}
