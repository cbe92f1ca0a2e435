package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-reverb/analysis"
	fitcommon "github.com/cwbudde/algo-reverb/internal/fitcommon"
	"github.com/cwbudde/algo-reverb/preset"
	"github.com/cwbudde/algo-reverb/reverb"
)

type renderReport struct {
	Preset            string                `json:"preset"`
	Input             string                `json:"input,omitempty"`
	Output            string                `json:"output"`
	SampleRate        int                   `json:"sample_rate"`
	Frames            int                   `json:"frames"`
	Parameters        reverb.Parameters     `json:"parameters"`
	Decay             analysis.DecayMetrics `json:"decay"`
	StereoCorrelation float64               `json:"stereo_correlation"`
	CentroidHz        float64               `json:"centroid_hz"`
	NormalizeGain     float64               `json:"normalize_gain"`
}

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (defaults when empty)")
	inputPath := flag.String("input", "", "Input WAV to process (unit impulse when empty)")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz (input is resampled)")
	blockSize := flag.Int("block", 128, "Processing block size")
	tail := flag.Float64("tail", 4.0, "Seconds of tail rendered after the input")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Auto-stop when block RMS falls below this dBFS (e.g. -90). Disabled by default")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	minTail := flag.Float64("min-tail", 0.5, "Minimum tail seconds before auto-stop")
	normalize := flag.Float64("normalize", 0, "Peak-normalize output to this linear level (0 disables)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	reportPath := flag.String("report", "", "Optional JSON report path")

	overrides := map[reverb.ParamID]*float64{}
	for _, id := range reverb.AllParams {
		overrides[id] = flag.Float64(flagName(id), unset, fmt.Sprintf("Override %s in [0,1]", id))
	}
	flag.Parse()

	p := preset.Default()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("Error loading preset %q: %v", *presetPath, err)
		}
		p = loaded
	}
	values := make(map[reverb.ParamID]float64, len(overrides))
	for id, v := range overrides {
		values[id] = *v
	}
	if err := applyOverrides(&p.Params, values); err != nil {
		die("%v", err)
	}
	if *sampleRate <= 0 {
		die("sample-rate must be > 0")
	}

	input := fitcommon.Impulse(2)
	if *inputPath != "" {
		in, sr, err := fitcommon.ReadWAVStereo(*inputPath)
		if err != nil {
			die("Error reading input %q: %v", *inputPath, err)
		}
		in, err = fitcommon.ResamplePlanar(in, sr, *sampleRate)
		if err != nil {
			die("Error resampling input: %v", err)
		}
		input = in
	}

	fmt.Printf("Rendering %s at %d Hz (room=%.2f damping=%.2f wet=%.2f dry=%.2f width=%.2f freeze=%v)...\n",
		p.Name, *sampleRate, p.Params.RoomSize, p.Params.Damping, p.Params.WetLevel,
		p.Params.DryLevel, p.Params.Width, p.Params.FreezeMode)

	cfg := fitcommon.RenderConfig{
		SampleRate:      *sampleRate,
		BlockSize:       *blockSize,
		Tuning:          p.Tuning,
		TailSeconds:     *tail,
		DecayDBFS:       *decayDBFS,
		DecayHoldBlocks: *decayHoldBlocks,
		MinSeconds:      *minTail,
	}
	out, err := fitcommon.Render(p.Params, input, cfg)
	if err != nil {
		die("Error rendering: %v", err)
	}
	frames := len(out[0])
	if !math.IsInf(*decayDBFS, 1) {
		fmt.Printf("Auto-stop at %d frames (%.3fs), threshold %.1f dBFS\n", frames, float64(frames)/float64(*sampleRate), *decayDBFS)
	}

	rep := renderReport{
		Preset:            p.Name,
		Input:             *inputPath,
		Output:            *output,
		SampleRate:        *sampleRate,
		Frames:            frames,
		Parameters:        p.Params,
		StereoCorrelation: analysis.StereoCorrelation(out[0], out[1]),
		NormalizeGain:     1,
	}
	mono := fitcommon.MixToMono64(out)
	rep.CentroidHz = analysis.SpectralCentroid(mono, *sampleRate)
	decay, err := analysis.Decay(mono, *sampleRate)
	switch {
	case err == nil:
		fmt.Printf("RT60=%.3fs EDT=%.3fs C80=%.1fdB centroid=%.0fHz corr=%.3f\n",
			decay.RT60, decay.EDT, decay.C80, rep.CentroidHz, rep.StereoCorrelation)
	case errors.Is(err, analysis.ErrNoDecay):
		fmt.Printf("No measurable decay (frozen or too short); centroid=%.0fHz corr=%.3f\n", rep.CentroidHz, rep.StereoCorrelation)
	default:
		fmt.Fprintf(os.Stderr, "decay analysis failed: %v\n", err)
	}
	rep.Decay = decay

	if *normalize > 0 {
		rep.NormalizeGain = fitcommon.NormalizePeak(out, *normalize)
	} else if peak := fitcommon.Peak(out); peak > 1 {
		fmt.Fprintf(os.Stderr, "warning: output peak %.2f exceeds full scale and will clip\n", peak)
	}

	if err := fitcommon.WritePlanarWAV(*output, out, *sampleRate); err != nil {
		die("Error writing WAV file: %v", err)
	}
	if *reportPath != "" {
		if err := writeReport(*reportPath, rep); err != nil {
			die("Error writing report: %v", err)
		}
	}
	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, frames)
}

func writeReport(path string, rep renderReport) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
