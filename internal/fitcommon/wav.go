package fitcommon

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadWAV decodes a WAV file into planar float32 channels.
func ReadWAV(path string) ([][]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("invalid wav sample-rate: %d", buf.Format.SampleRate)
	}
	numCh := buf.Format.NumChannels
	frames := len(buf.Data) / numCh
	if frames == 0 {
		return nil, 0, fmt.Errorf("empty wav data: %s", path)
	}
	return Deinterleave(buf.Data[:frames*numCh], numCh), buf.Format.SampleRate, nil
}

// ReadWAVMono decodes a WAV file and averages its channels.
func ReadWAVMono(path string) ([]float64, int, error) {
	planar, sr, err := ReadWAV(path)
	if err != nil {
		return nil, 0, err
	}
	return MixToMono64(planar), sr, nil
}

// ReadWAVStereo decodes a WAV file into exactly two channels; mono input is
// duplicated and extra channels are dropped.
func ReadWAVStereo(path string) ([][]float32, int, error) {
	planar, sr, err := ReadWAV(path)
	if err != nil {
		return nil, 0, err
	}
	switch len(planar) {
	case 1:
		right := append([]float32(nil), planar[0]...)
		return [][]float32{planar[0], right}, sr, nil
	case 2:
		return planar, sr, nil
	default:
		return planar[:2], sr, nil
	}
}

func ResampleIfNeeded(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// ResamplePlanar resamples every channel with its own resampler state.
func ResamplePlanar(in [][]float32, fromRate int, toRate int) ([][]float32, error) {
	if fromRate == toRate {
		return in, nil
	}
	out := make([][]float32, len(in))
	for ch, samples := range in {
		y, err := ResampleIfNeeded(Float64s(samples), fromRate, toRate)
		if err != nil {
			return nil, err
		}
		out[ch] = make([]float32, len(y))
		for i, v := range y {
			out[ch][i] = float32(v)
		}
	}
	return out, nil
}

// WritePlanarWAV writes planar channels as a 16-bit WAV file.
func WritePlanarWAV(path string, planar [][]float32, sampleRate int) error {
	if len(planar) == 0 {
		return fmt.Errorf("no channels to write")
	}
	for ch := range planar {
		if len(planar[ch]) != len(planar[0]) {
			return fmt.Errorf("channel %d length mismatch", ch)
		}
	}
	return WriteInterleavedWAV(path, Interleave(planar), len(planar), sampleRate)
}

func WriteInterleavedWAV(path string, samples []float32, numChannels int, sampleRate int) error {
	if numChannels < 1 {
		return fmt.Errorf("invalid channel count %d", numChannels)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, numChannels, 1)
	defer enc.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: numChannels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}

// Interleave packs planar channels frame by frame.
func Interleave(planar [][]float32) []float32 {
	if len(planar) == 0 {
		return nil
	}
	numCh := len(planar)
	frames := len(planar[0])
	out := make([]float32, frames*numCh)
	for ch, samples := range planar {
		for i := 0; i < frames && i < len(samples); i++ {
			out[i*numCh+ch] = samples[i]
		}
	}
	return out
}

// Deinterleave splits frame-ordered samples into planar channels.
func Deinterleave(interleaved []float32, numChannels int) [][]float32 {
	if numChannels < 1 {
		return nil
	}
	frames := len(interleaved) / numChannels
	out := make([][]float32, numChannels)
	for ch := range out {
		out[ch] = make([]float32, frames)
		for i := 0; i < frames; i++ {
			out[ch][i] = interleaved[i*numChannels+ch]
		}
	}
	return out
}

func MixToMono64(planar [][]float32) []float64 {
	if len(planar) == 0 {
		return nil
	}
	frames := len(planar[0])
	out := make([]float64, frames)
	for _, samples := range planar {
		for i := 0; i < frames && i < len(samples); i++ {
			out[i] += float64(samples[i])
		}
	}
	inv := 1 / float64(len(planar))
	for i := range out {
		out[i] *= inv
	}
	return out
}

func Float64s(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

// Peak returns the largest absolute sample over all channels.
func Peak(planar [][]float32) float64 {
	var peak float64
	for _, samples := range planar {
		for _, s := range samples {
			peak = math.Max(peak, math.Abs(float64(s)))
		}
	}
	return peak
}

// NormalizePeak scales planar in place so its peak is target; silent input is left alone.
func NormalizePeak(planar [][]float32, target float64) float64 {
	peak := Peak(planar)
	if peak <= 1e-12 {
		return 1
	}
	g := float32(target / peak)
	for _, samples := range planar {
		for i := range samples {
			samples[i] *= g
		}
	}
	return float64(g)
}
