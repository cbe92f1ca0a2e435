package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/hajimehoshi/oto/v2"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	fitcommon "github.com/cwbudde/algo-reverb/internal/fitcommon"
	"github.com/cwbudde/algo-reverb/preset"
	"github.com/cwbudde/algo-reverb/reverb"
)

const channelCount = 2

func main() {
	inputPath := flag.String("input", "", "WAV file to loop through the reverb (click train when empty)")
	presetPath := flag.String("preset", "", "Preset JSON path (defaults when empty)")
	sampleRate := flag.Int("sample-rate", 44100, "Playback sample rate in Hz")
	blockSize := flag.Int("block", 512, "Processing block size")
	duration := flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	sweepParam := flag.String("sweep", "", "Parameter to sweep: ROOMSIZE, DAMPING, WET, DRY, WIDTH, FREEZE")
	sweepMin := flag.Float64("sweep-min", 0, "Sweep lower bound")
	sweepMax := flag.Float64("sweep-max", 1, "Sweep upper bound")
	sweepPeriod := flag.Duration("sweep-period", 8*time.Second, "Sweep period")
	flag.Parse()

	p := preset.Default()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		p = loaded
	}

	source := clickTrain(*sampleRate, 1.5)
	if *inputPath != "" {
		in, sr, err := fitcommon.ReadWAVStereo(*inputPath)
		if err != nil {
			die("failed to read input: %v", err)
		}
		if in, err = fitcommon.ResamplePlanar(in, sr, *sampleRate); err != nil {
			die("failed to resample input: %v", err)
		}
		source = in
	}
	if err := checkSource(source); err != nil {
		die("unusable input %q: %v", *inputPath, err)
	}

	engine := reverb.NewEngine()
	controls := reverb.NewControls()
	controls.StoreParameters(p.Params)
	ctrl := reverb.NewController(controls, engine)
	ctrl.Sync()
	err := engine.Prepare(reverb.Config{
		ProcessorConfig: dspcore.ProcessorConfig{SampleRate: float64(*sampleRate), BlockSize: *blockSize},
		NumChannels:     channelCount,
		Tuning:          p.Tuning,
	})
	if err != nil {
		die("failed to prepare engine: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	if *sweepParam != "" {
		id, err := reverb.ParseParamID(*sweepParam)
		if err != nil {
			die("invalid -sweep: %v", err)
		}
		go runSweep(ctx, controls, sweepConfig{
			Param:  id,
			Min:    *sweepMin,
			Max:    *sweepMax,
			Period: *sweepPeriod,
		})
		fmt.Printf("Sweeping %s between %.2f and %.2f every %s\n", id, *sweepMin, *sweepMax, *sweepPeriod)
	}

	otoCtx, ready, err := oto.NewContext(*sampleRate, channelCount, oto.FormatFloat32LE)
	if err != nil {
		die("failed to open audio device: %v", err)
	}
	<-ready

	player := otoCtx.NewPlayer(newReverbStream(engine, ctrl, source))
	player.Play()
	fmt.Printf("Playing %s at %d Hz (block %d). Ctrl-C to stop.\n", p.Name, *sampleRate, *blockSize)

	<-ctx.Done()
	if err := player.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "player close: %v\n", err)
	}
	fmt.Printf("Stopped after %d parameter updates\n", ctrl.Recomputes())
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
