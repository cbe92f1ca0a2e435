package main

import (
	"testing"

	fitcommon "github.com/cwbudde/algo-reverb/internal/fitcommon"
	"github.com/cwbudde/algo-reverb/reverb"
)

func TestSweepRoomRanksMatchingRoomBest(t *testing.T) {
	cfg := fitcommon.DefaultRenderConfig()
	cfg.SampleRate = 22050
	cfg.TailSeconds = 1.5

	target := reverb.DefaultParameters()
	target.RoomSize = 0.75
	stereo, err := fitcommon.RenderImpulse(target, cfg)
	if err != nil {
		t.Fatalf("render reference: %v", err)
	}
	ref := fitcommon.MixToMono64(stereo)

	rows, err := sweepRoom(ref, reverb.DefaultParameters(), []float64{0.1, 0.75}, cfg)
	if err != nil {
		t.Fatalf("sweepRoom: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d, want 2", len(rows))
	}
	if rows[0].RoomSize != 0.1 || rows[1].RoomSize != 0.75 {
		t.Fatalf("rows out of order: %+v", rows)
	}
	if rows[1].Metrics.Score >= rows[0].Metrics.Score {
		t.Fatalf("matching room score %.4f not below mismatched %.4f", rows[1].Metrics.Score, rows[0].Metrics.Score)
	}
	if rows[1].Metrics.Score > 0.01 {
		t.Fatalf("matching room score %.4f, want ~0", rows[1].Metrics.Score)
	}
}

func TestSweepRoomClearsFreeze(t *testing.T) {
	cfg := fitcommon.DefaultRenderConfig()
	cfg.SampleRate = 22050
	cfg.TailSeconds = 1

	base := reverb.DefaultParameters()
	base.FreezeMode = true
	stereo, err := fitcommon.RenderImpulse(reverb.DefaultParameters(), cfg)
	if err != nil {
		t.Fatalf("render reference: %v", err)
	}
	rows, err := sweepRoom(fitcommon.MixToMono64(stereo), base, []float64{0.5}, cfg)
	if err != nil {
		t.Fatalf("sweepRoom: %v", err)
	}
	if rows[0].Metrics.Score > 0.01 {
		t.Fatalf("score %.4f, freeze should be ignored while sweeping", rows[0].Metrics.Score)
	}
}
