package analysis

import (
	"errors"
	"math"

	approx "github.com/cwbudde/algo-approx"
	"github.com/cwbudde/algo-dsp/measure/ir"
)

// ErrNoDecay is returned when an impulse response never decays far enough
// for a reverberation time estimate, e.g. a frozen tail.
var ErrNoDecay = errors.New("analysis: impulse response does not decay")

// DecayMetrics summarizes the energy decay of a reverb impulse response.
type DecayMetrics struct {
	RT60       float64 `json:"rt60_s"`
	EDT        float64 `json:"edt_s"`
	T20        float64 `json:"t20_s"`
	T30        float64 `json:"t30_s"`
	C50        float64 `json:"c50_db"`
	C80        float64 `json:"c80_db"`
	D50        float64 `json:"d50"`
	CenterTime float64 `json:"center_time_s"`
	PeakIndex  int     `json:"peak_index"`
	PeakDB     float64 `json:"peak_db"`
	EnergyDB   float64 `json:"energy_db"`
}

// Decay analyzes response with the Schroeder backward integral. Metrics that could
// be computed are returned alongside ErrNoDecay when no RT estimate exists.
func Decay(response []float64, sampleRate int) (DecayMetrics, error) {
	a := ir.NewAnalyzer(float64(sampleRate))
	m, err := a.Analyze(response)
	if err != nil {
		return DecayMetrics{}, err
	}

	var energy float64
	for _, v := range response {
		energy += v * v
	}
	out := DecayMetrics{
		RT60:       m.RT60,
		EDT:        m.EDT,
		T20:        m.T20,
		T30:        m.T30,
		C50:        finiteOrZero(m.C50),
		C80:        finiteOrZero(m.C80),
		D50:        m.D50,
		CenterTime: m.CenterTime,
		PeakIndex:  m.PeakIndex,
		PeakDB:     linToDB(math.Abs(response[m.PeakIndex])),
		EnergyDB:   10 * math.Log10(math.Max(energy, 1e-24)),
	}
	if !(out.RT60 > 0) {
		return out, ErrNoDecay
	}
	return out, nil
}

func finiteOrZero(v float64) float64 {
	if isFinite(v) {
		return v
	}
	return 0
}

// DBToLinear converts decibels to linear amplitude with a fast exponential.
func DBToLinear(db float64) float64 {
	return float64(approx.FastExp(float32(db * math.Ln10 / 20)))
}

// TrimTail returns x cut after the last sample within dropDB of the peak.
// A signal that is entirely silent comes back empty.
func TrimTail(x []float64, dropDB float64) []float64 {
	var peak float64
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		return x[:0]
	}
	threshold := peak * DBToLinear(-math.Abs(dropDB))
	for i := len(x) - 1; i >= 0; i-- {
		if math.Abs(x[i]) >= threshold {
			return x[:i+1]
		}
	}
	return x[:0]
}

// SpectralCentroid returns the magnitude-weighted mean frequency of x in Hz,
// averaged over consecutive Hann frames.
func SpectralCentroid(x []float64, sampleRate int) float64 {
	if sampleRate <= 0 || len(x) < 64 {
		return 0
	}
	size := min(nextPowerOf2(len(x)), spectrumFrames)
	if size > len(x) {
		size /= 2
	}
	binHz := float64(sampleRate) / float64(size)

	var weighted, total float64
	for start := 0; start+size <= len(x); start += size {
		mag, err := magnitudeSpectrum(x[start : start+size])
		if err != nil {
			return 0
		}
		for k := 1; k < len(mag); k++ {
			weighted += float64(k) * binHz * mag[k]
			total += mag[k]
		}
	}
	if total <= 1e-12 {
		return 0
	}
	return weighted / total
}

// StereoCorrelation returns the normalized zero-lag correlation of l and r
// in [-1,1]; 0 when either channel is silent.
func StereoCorrelation(l, r []float32) float64 {
	n := min(len(l), len(r))
	var lr, ll, rr float64
	for i := 0; i < n; i++ {
		a, b := float64(l[i]), float64(r[i])
		lr += a * b
		ll += a * a
		rr += b * b
	}
	if ll == 0 || rr == 0 {
		return 0
	}
	return lr / math.Sqrt(ll*rr)
}
