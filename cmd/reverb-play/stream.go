package main

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/reverb"
)

const bytesPerFrame = 8 // stereo float32 LE

// reverbStream is the io.Reader oto pulls from. It loops the source through
// the engine one block at a time, applying pending control changes first.
type reverbStream struct {
	engine *reverb.Engine
	ctrl   *reverb.Controller
	source [][]float32
	pos    int

	block   [][]float32
	out     []byte
	pending []byte
}

// checkSource reports whether src can be looped by a reverbStream: two
// channels of equal, non-zero length.
func checkSource(src [][]float32) error {
	if len(src) != 2 {
		return fmt.Errorf("source has %d channels, want 2", len(src))
	}
	if len(src[0]) == 0 {
		return fmt.Errorf("source has no samples")
	}
	if len(src[1]) != len(src[0]) {
		return fmt.Errorf("source channel lengths differ: %d and %d", len(src[0]), len(src[1]))
	}
	return nil
}

func newReverbStream(engine *reverb.Engine, ctrl *reverb.Controller, source [][]float32) *reverbStream {
	n := engine.MaxBlockSize()
	return &reverbStream{
		engine: engine,
		ctrl:   ctrl,
		source: source,
		block:  [][]float32{make([]float32, n), make([]float32, n)},
		out:    make([]byte, n*bytesPerFrame),
	}
}

func (s *reverbStream) Read(p []byte) (int, error) {
	written := 0
	for written+bytesPerFrame <= len(p) {
		if len(s.pending) == 0 {
			s.renderBlock()
		}
		n := copy(p[written:], s.pending)
		n -= n % bytesPerFrame
		s.pending = s.pending[n:]
		written += n
	}
	return written, nil
}

func (s *reverbStream) renderBlock() {
	frames := len(s.block[0])
	srcLen := len(s.source[0])
	for i := 0; i < frames; i++ {
		s.block[0][i] = s.source[0][s.pos]
		s.block[1][i] = s.source[1][s.pos]
		s.pos++
		if s.pos >= srcLen {
			s.pos = 0
		}
	}

	s.ctrl.Update()
	s.engine.Process(s.block)

	for i := 0; i < frames; i++ {
		putStereoF32LR(s.out, i, s.block[0][i], s.block[1][i])
	}
	s.pending = s.out
}

// putStereoF32LR writes independent left/right samples as float32 LE at frame i.
func putStereoF32LR(buf []byte, i int, left, right float32) {
	lv := math.Float32bits(clip(left))
	rv := math.Float32bits(clip(right))
	buf[i*8] = byte(lv)
	buf[i*8+1] = byte(lv >> 8)
	buf[i*8+2] = byte(lv >> 16)
	buf[i*8+3] = byte(lv >> 24)
	buf[i*8+4] = byte(rv)
	buf[i*8+5] = byte(rv >> 8)
	buf[i*8+6] = byte(rv >> 16)
	buf[i*8+7] = byte(rv >> 24)
}

func clip(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// clickTrain is a stereo unit click every period frames.
func clickTrain(sampleRate int, period float64) [][]float32 {
	n := max(1, int(period*float64(sampleRate)))
	l := make([]float32, n)
	r := make([]float32, n)
	l[0], r[0] = 0.8, 0.8
	return [][]float32{l, r}
}
