package reverb

import (
	"fmt"
	"math"
)

// ReferenceSampleRate is the rate the default delay lengths were tuned at.
const ReferenceSampleRate = 44100.0

// Tuning is the static delay-network layout handed to Engine.Prepare.
// Lengths are in samples at ReferenceRate.
type Tuning struct {
	ReferenceRate   float64
	CombLengths     []int
	AllpassLengths  []int
	StereoSpread    int     // extra samples added per channel index
	AllpassFeedback float32 // fixed allpass coefficient
	InputGain       float32 // gain into the comb bank outside freeze
}

// DefaultTuning returns the classic Schroeder/Moorer layout used by Freeverb:
// eight parallel combs and four series allpasses.
func DefaultTuning() Tuning {
	return Tuning{
		ReferenceRate:   ReferenceSampleRate,
		CombLengths:     []int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617},
		AllpassLengths:  []int{556, 441, 341, 225},
		StereoSpread:    23,
		AllpassFeedback: 0.5,
		InputGain:       0.015,
	}
}

// IsZero reports whether t is the zero value (meaning "use defaults").
func (t Tuning) IsZero() bool {
	return t.ReferenceRate == 0 && len(t.CombLengths) == 0 && len(t.AllpassLengths) == 0 &&
		t.StereoSpread == 0 && t.AllpassFeedback == 0 && t.InputGain == 0
}

// Validate checks that the table describes a stable network.
func (t Tuning) Validate() error {
	if !(t.ReferenceRate > 0) || math.IsInf(t.ReferenceRate, 0) {
		return fmt.Errorf("%w: reference rate %g", ErrInvalidTuning, t.ReferenceRate)
	}
	if len(t.CombLengths) == 0 {
		return fmt.Errorf("%w: no comb filters", ErrInvalidTuning)
	}
	if len(t.AllpassLengths) == 0 {
		return fmt.Errorf("%w: no allpass filters", ErrInvalidTuning)
	}
	for i, n := range t.CombLengths {
		if n <= 0 {
			return fmt.Errorf("%w: comb[%d] length %d", ErrInvalidTuning, i, n)
		}
	}
	for i, n := range t.AllpassLengths {
		if n <= 0 {
			return fmt.Errorf("%w: allpass[%d] length %d", ErrInvalidTuning, i, n)
		}
	}
	if t.StereoSpread < 0 {
		return fmt.Errorf("%w: stereo spread %d", ErrInvalidTuning, t.StereoSpread)
	}
	if !(t.AllpassFeedback > -1 && t.AllpassFeedback < 1) {
		return fmt.Errorf("%w: allpass feedback %g must be in (-1,1)", ErrInvalidTuning, t.AllpassFeedback)
	}
	if t.InputGain < 0 {
		return fmt.Errorf("%w: input gain %g", ErrInvalidTuning, t.InputGain)
	}
	return nil
}

// ScaledLength rescales a reference length to sampleRate, never below 1.
func (t Tuning) ScaledLength(ref int, sampleRate float64) int {
	n := int(math.Round(float64(ref) * sampleRate / t.ReferenceRate))
	if n < 1 {
		n = 1
	}
	return n
}

// clone deep-copies the length tables so callers cannot mutate a prepared engine.
func (t Tuning) clone() Tuning {
	t.CombLengths = append([]int(nil), t.CombLengths...)
	t.AllpassLengths = append([]int(nil), t.AllpassLengths...)
	return t
}
