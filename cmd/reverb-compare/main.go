package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-reverb/analysis"
	fitcommon "github.com/cwbudde/algo-reverb/internal/fitcommon"
	"github.com/cwbudde/algo-reverb/preset"
	"github.com/cwbudde/algo-reverb/reverb"
)

type sweepRow struct {
	RoomSize float64          `json:"room_size"`
	Metrics  analysis.Metrics `json:"metrics"`
}

func main() {
	referencePath := flag.String("reference", "", "Reference impulse response WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render the preset's impulse response")
	presetPath := flag.String("preset", "", "Preset JSON path for rendered candidates (defaults when empty)")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate in Hz")
	tail := flag.Float64("tail", 4.0, "Rendered tail length in seconds")
	decayDBFS := flag.Float64("decay-dbfs", -90.0, "Auto-stop threshold in dBFS for rendered candidates")
	roomSweep := flag.String("room-sweep", "", "Comma-separated room sizes to rank against the reference, e.g. 0.3,0.6,0.9")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write the rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	if *referencePath == "" {
		die("-reference is required")
	}
	if *sampleRate <= 0 {
		die("-sample-rate must be positive, got %d", *sampleRate)
	}
	ref, refSR, err := fitcommon.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err = fitcommon.ResampleIfNeeded(ref, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	rcfg := fitcommon.DefaultRenderConfig()
	rcfg.SampleRate = *sampleRate
	rcfg.TailSeconds = *tail
	rcfg.DecayDBFS = *decayDBFS

	p := preset.Default()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		p = loaded
	}
	rcfg.Tuning = p.Tuning

	if *roomSweep != "" {
		rooms, err := fitcommon.ParseUnitList(*roomSweep)
		if err != nil {
			die("invalid -room-sweep: %v", err)
		}
		rows, err := sweepRoom(ref, p.Params, rooms, rcfg)
		if err != nil {
			die("room sweep failed: %v", err)
		}
		if *jsonOut {
			printJSON(rows)
			return
		}
		fmt.Printf("Room     Score    Similarity  Decay diff\n")
		for _, row := range rows {
			fmt.Printf("%-8.3f %-8.4f %6.2f%%     %.1f dB/s\n",
				row.RoomSize, row.Metrics.Score, row.Metrics.Similarity*100, row.Metrics.DecayDiffDBPerS)
		}
		return
	}

	var cand []float64
	if *candidatePath != "" {
		candRaw, candSR, err := fitcommon.ReadWAVMono(*candidatePath)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
		cand, err = fitcommon.ResampleIfNeeded(candRaw, candSR, *sampleRate)
		if err != nil {
			die("failed to resample candidate: %v", err)
		}
	} else {
		stereo, err := fitcommon.RenderImpulse(p.Params, rcfg)
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		cand = fitcommon.MixToMono64(stereo)
		if *writeCandidate != "" {
			if err := fitcommon.WritePlanarWAV(*writeCandidate, stereo, *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate)
	if *jsonOut {
		printJSON(metrics)
		return
	}

	fmt.Printf("Reference frames: %d\n", metrics.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", metrics.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", metrics.AlignedFrames)
	fmt.Printf("Lag:              %d samples (%.3f ms)\n", metrics.LagSamples, 1000.0*float64(metrics.LagSamples)/float64(metrics.SampleRate))
	fmt.Println()
	fmt.Printf("Time RMSE:        %.6f\n", metrics.TimeRMSE)
	fmt.Printf("Envelope RMSE:    %.1f dB\n", metrics.EnvelopeRMSEDB)
	fmt.Printf("Spectral RMSE:    %.1f dB\n", metrics.SpectralRMSEDB)
	fmt.Printf("Decay diff:       %.1f dB/s (ref=%.1f cand=%.1f)\n", metrics.DecayDiffDBPerS, metrics.RefDecayDBPerS, metrics.CandDecayDBPerS)
	fmt.Printf("Centroid:         ref=%.0f Hz cand=%.0f Hz\n", metrics.RefCentroidHz, metrics.CandCentroidHz)
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", metrics.Score)
	fmt.Printf("Similarity:       %.2f%%\n", metrics.Similarity*100.0)
}

// sweepRoom renders base at each room size and scores it against ref.
// Rows come back in the order of rooms.
func sweepRoom(ref []float64, base reverb.Parameters, rooms []float64, cfg fitcommon.RenderConfig) ([]sweepRow, error) {
	rows := make([]sweepRow, 0, len(rooms))
	for _, room := range rooms {
		p := base
		p.RoomSize = float32(room)
		p.FreezeMode = false
		stereo, err := fitcommon.RenderImpulse(p, cfg)
		if err != nil {
			return nil, err
		}
		m := analysis.Compare(ref, fitcommon.MixToMono64(stereo), cfg.SampleRate)
		rows = append(rows, sweepRow{RoomSize: room, Metrics: m})
	}
	return rows, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		die("json encode failed: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
