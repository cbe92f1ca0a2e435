package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-reverb/reverb"
)

// File is the JSON schema for reverb presets.
type File struct {
	Name     string         `json:"name,omitempty"`
	RoomSize *float32       `json:"room_size,omitempty"`
	Damping  *float32       `json:"damping,omitempty"`
	WetLevel *float32       `json:"wet_level,omitempty"`
	DryLevel *float32       `json:"dry_level,omitempty"`
	Width    *float32       `json:"width,omitempty"`
	Freeze   *float32       `json:"freeze,omitempty"`
	Tuning   *TuningSetting `json:"tuning,omitempty"`
}

// TuningSetting is a partial override of the delay-network table.
type TuningSetting struct {
	ReferenceRate   *float64 `json:"reference_rate,omitempty"`
	CombLengths     []int    `json:"comb_lengths,omitempty"`
	AllpassLengths  []int    `json:"allpass_lengths,omitempty"`
	StereoSpread    *int     `json:"stereo_spread,omitempty"`
	AllpassFeedback *float32 `json:"allpass_feedback,omitempty"`
	InputGain       *float32 `json:"input_gain,omitempty"`
}

// Preset is a resolved preset: parameters plus the tuning table.
type Preset struct {
	Name   string
	Params reverb.Parameters
	Tuning reverb.Tuning
}

// Default returns the factory preset.
func Default() *Preset {
	return &Preset{
		Name:   "default",
		Params: reverb.DefaultParameters(),
		Tuning: reverb.DefaultTuning(),
	}
}

// LoadJSON loads a preset JSON file and applies it on top of the defaults.
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p := Default()
	if f.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing preset.
func ApplyFile(dst *Preset, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination preset")
	}
	if f == nil {
		return nil
	}

	if name := strings.TrimSpace(f.Name); name != "" {
		dst.Name = name
	}

	unit := []struct {
		key string
		src *float32
		dst *float32
	}{
		{"room_size", f.RoomSize, &dst.Params.RoomSize},
		{"damping", f.Damping, &dst.Params.Damping},
		{"wet_level", f.WetLevel, &dst.Params.WetLevel},
		{"dry_level", f.DryLevel, &dst.Params.DryLevel},
		{"width", f.Width, &dst.Params.Width},
	}
	for _, u := range unit {
		if u.src == nil {
			continue
		}
		if *u.src < 0 || *u.src > 1 {
			return fmt.Errorf("%s must be in [0,1]", u.key)
		}
		*u.dst = *u.src
	}
	if f.Freeze != nil {
		if *f.Freeze < 0 || *f.Freeze > 1 {
			return fmt.Errorf("freeze must be in [0,1]")
		}
		dst.Params.FreezeMode = reverb.FreezeFromControl(*f.Freeze)
	}

	if f.Tuning == nil {
		return nil
	}
	ts := f.Tuning
	t := dst.Tuning
	if ts.ReferenceRate != nil {
		t.ReferenceRate = *ts.ReferenceRate
	}
	if len(ts.CombLengths) > 0 {
		t.CombLengths = append([]int(nil), ts.CombLengths...)
	}
	if len(ts.AllpassLengths) > 0 {
		t.AllpassLengths = append([]int(nil), ts.AllpassLengths...)
	}
	if ts.StereoSpread != nil {
		t.StereoSpread = *ts.StereoSpread
	}
	if ts.AllpassFeedback != nil {
		t.AllpassFeedback = *ts.AllpassFeedback
	}
	if ts.InputGain != nil {
		t.InputGain = *ts.InputGain
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	dst.Tuning = t
	return nil
}

// ToFile converts a preset to its full JSON form.
func ToFile(p *Preset) File {
	params := p.Params.Clamped()
	freeze := float32(0)
	if params.FreezeMode {
		freeze = 1
	}
	t := p.Tuning
	return File{
		Name:     p.Name,
		RoomSize: &params.RoomSize,
		Damping:  &params.Damping,
		WetLevel: &params.WetLevel,
		DryLevel: &params.DryLevel,
		Width:    &params.Width,
		Freeze:   &freeze,
		Tuning: &TuningSetting{
			ReferenceRate:   &t.ReferenceRate,
			CombLengths:     t.CombLengths,
			AllpassLengths:  t.AllpassLengths,
			StereoSpread:    &t.StereoSpread,
			AllpassFeedback: &t.AllpassFeedback,
			InputGain:       &t.InputGain,
		},
	}
}

// SaveJSON writes p as an indented preset file, creating parent directories.
func SaveJSON(path string, p *Preset) error {
	if p == nil {
		return fmt.Errorf("nil preset")
	}
	b, err := json.MarshalIndent(ToFile(p), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
