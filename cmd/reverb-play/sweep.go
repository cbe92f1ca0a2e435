package main

import (
	"context"
	"math"
	"time"

	"github.com/cwbudde/algo-reverb/reverb"
)

// sweepConfig moves one control back and forth between Min and Max.
type sweepConfig struct {
	Param  reverb.ParamID
	Min    float64
	Max    float64
	Period time.Duration
	Tick   time.Duration
}

// triangle maps elapsed time onto a 0..1..0 ramp with the given period.
func triangle(elapsed, period time.Duration) float64 {
	if period <= 0 {
		return 0
	}
	phase := math.Mod(elapsed.Seconds()/period.Seconds(), 1)
	if phase < 0.5 {
		return 2 * phase
	}
	return 2 - 2*phase
}

// runSweep writes the swept value into controls until ctx is done. It runs on
// its own goroutine; the audio side picks values up through the controller.
func runSweep(ctx context.Context, controls *reverb.Controls, cfg sweepConfig) {
	tick := cfg.Tick
	if tick <= 0 {
		tick = 20 * time.Millisecond
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			u := triangle(now.Sub(start), cfg.Period)
			controls.Set(cfg.Param, float32(cfg.Min+(cfg.Max-cfg.Min)*u))
		}
	}
}
