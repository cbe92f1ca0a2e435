package main

import (
	"flag"
	"fmt"
	"os"

	fitcommon "github.com/cwbudde/algo-reverb/internal/fitcommon"
	"github.com/cwbudde/algo-reverb/preset"
)

func main() {
	referencePath := flag.String("reference", "reference/hall.wav", "Reference impulse response WAV path")
	presetPath := flag.String("preset", "", "Base preset JSON path (defaults when empty)")
	outputPreset := flag.String("output-preset", "out/fitted.json", "Path to write best fitted preset JSON")
	outputIR := flag.String("output-ir", "", "Optional path to write the fitted impulse response WAV")
	optimize := flag.String("optimize", "room_size,damping", "Comma-separated knobs to fit: room_size, damping, wet_level, width")
	sampleRate := flag.Int("sample-rate", 48000, "Render/analysis sample rate")
	tail := flag.Float64("tail", 4.0, "Maximum rendered tail seconds per evaluation")
	decayDBFS := flag.Float64("decay-dbfs", -90.0, "Auto-stop threshold in dBFS")
	blockSize := flag.Int("render-block-size", 256, "Audio render block size for candidate evaluation")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 400, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	topK := flag.Int("top-k", 5, "How many top candidates to keep in report")
	workers := flag.String("workers", "1", "Parallel optimization workers running independent Mayfly rounds (number or 'auto')")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 120, "Target eval budget per Mayfly round")
	flag.Parse()

	defs, err := parseKnobs(*optimize)
	if err != nil {
		die("invalid --optimize: %v", err)
	}
	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *sampleRate <= 0 {
		die("sample-rate must be > 0")
	}
	if *reportEvery < 1 {
		*reportEvery = 1
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}
	if *topK < 1 {
		*topK = 1
	}
	parsedWorkers, err := fitcommon.ParseWorkers(*workers)
	if err != nil {
		die("invalid workers value: %v", err)
	}

	base := preset.Default()
	if *presetPath != "" {
		base, err = preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
	}
	// The reference is a reverb IR; freeze would never decay.
	base.Params.FreezeMode = false

	refRaw, refSR, err := fitcommon.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err := fitcommon.ResampleIfNeeded(refRaw, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	render := fitcommon.DefaultRenderConfig()
	render.SampleRate = *sampleRate
	render.BlockSize = *blockSize
	render.Tuning = base.Tuning
	render.TailSeconds = *tail
	render.DecayDBFS = *decayDBFS

	cfg := &optimizationConfig{
		reference:        ref,
		base:             base.Params,
		defs:             defs,
		initCandidate:    initCandidate(base.Params, defs),
		render:           render,
		seed:             *seed,
		timeBudget:       *timeBudget,
		maxEvals:         *maxEvals,
		reportEvery:      *reportEvery,
		mayflyVariant:    *mayflyVariant,
		mayflyPop:        *mayflyPop,
		mayflyRoundEvals: *mayflyRoundEvals,
		workers:          parsedWorkers,
		topK:             *topK,
	}

	fmt.Printf("Fitting %d knob(s) to %s (%d frames at %d Hz)\n", len(defs), *referencePath, len(ref), *sampleRate)
	res, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	rep := runReport{
		ReferencePath: *referencePath,
		PresetPath:    *presetPath,
		OutputPreset:  *outputPreset,
		OutputIR:      *outputIR,
		SampleRate:    *sampleRate,
		MayflyVariant: *mayflyVariant,
	}
	if err := writeOutputs(cfg, base, res, rep); err != nil {
		die("failed to write outputs: %v", err)
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best=%.4f similarity=%.2f%%\n", res.evals, res.elapsed, res.bestMetrics.Score, res.bestMetrics.Similarity*100.0)
	for i, d := range defs {
		fmt.Printf("  %-10s %.4f\n", d.Name, res.best.Vals[i])
	}
	fmt.Printf("Wrote %s and %s\n", *outputPreset, defaultReportPath(*outputPreset))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
