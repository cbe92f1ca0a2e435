package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-reverb/analysis"
	fitcommon "github.com/cwbudde/algo-reverb/internal/fitcommon"
	"github.com/cwbudde/algo-reverb/preset"
	"github.com/cwbudde/algo-reverb/reverb"
)

type runReport struct {
	ReferencePath  string             `json:"reference_path"`
	PresetPath     string             `json:"preset_path,omitempty"`
	OutputPreset   string             `json:"output_preset"`
	OutputIR       string             `json:"output_ir,omitempty"`
	SampleRate     int                `json:"sample_rate"`
	DurationSec    float64            `json:"elapsed_seconds"`
	Evaluations    int                `json:"evaluations"`
	MayflyVariant  string             `json:"mayfly_variant"`
	BestScore      float64            `json:"best_score"`
	BestSimilarity float64            `json:"best_similarity"`
	BestMetrics    analysis.Metrics   `json:"best_metrics"`
	BestKnobs      map[string]float64 `json:"best_knobs"`
	BestParameters reverb.Parameters  `json:"best_parameters"`
	TopCandidates  []topCandidate     `json:"top_candidates,omitempty"`
}

func defaultReportPath(outputPreset string) string {
	return strings.TrimSuffix(outputPreset, filepath.Ext(outputPreset)) + ".report.json"
}

// writeOutputs saves the fitted preset, the JSON report and optionally the
// fitted impulse response.
func writeOutputs(cfg *optimizationConfig, base *preset.Preset, res *optimizationResult, rep runReport) error {
	fitted := *base
	fitted.Params = res.bestParams
	fitted.Name = strings.TrimSuffix(filepath.Base(rep.OutputPreset), filepath.Ext(rep.OutputPreset))
	if err := preset.SaveJSON(rep.OutputPreset, &fitted); err != nil {
		return err
	}

	if rep.OutputIR != "" {
		ir, err := fitcommon.RenderImpulse(res.bestParams, cfg.render)
		if err != nil {
			return err
		}
		if err := fitcommon.WritePlanarWAV(rep.OutputIR, ir, cfg.render.SampleRate); err != nil {
			return err
		}
	}

	rep.Evaluations = res.evals
	rep.DurationSec = res.elapsed
	rep.BestScore = res.bestMetrics.Score
	rep.BestSimilarity = res.bestMetrics.Similarity
	rep.BestMetrics = res.bestMetrics
	rep.BestKnobs = knobMap(cfg.defs, res.best)
	rep.BestParameters = res.bestParams
	rep.TopCandidates = res.top

	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	path := defaultReportPath(rep.OutputPreset)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
