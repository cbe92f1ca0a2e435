package reverb

import (
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-reverb/dsp"
)

// allpassFilter is a Schroeder allpass section used for diffusion.
type allpassFilter struct {
	delay  *dsp.DelayLine
	length int
}

func newAllpassFilter(length int, maxBlockSize int) allpassFilter {
	return allpassFilter{
		delay:  dsp.NewDelayLine(length + maxBlockSize),
		length: length,
	}
}

// process implements y = -g*x + d[n-L]; d[n] = x + g*y.
func (a *allpassFilter) process(x, g float32) float32 {
	delayed := a.delay.Read(a.length)
	y := -g*x + delayed
	a.delay.Write(float32(dspcore.FlushDenormals(float64(x + g*y))))
	return y
}

func (a *allpassFilter) reset() {
	a.delay.Reset()
}
