package reverb

import (
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-reverb/dsp"
)

// combFilter is a feedback delay with a one-pole lowpass in the loop.
type combFilter struct {
	delay     *dsp.DelayLine
	length    int
	dampState float32
}

func newCombFilter(length int, maxBlockSize int) combFilter {
	return combFilter{
		delay:  dsp.NewDelayLine(length + maxBlockSize),
		length: length,
	}
}

// process pushes one input sample and returns the delayed output.
// dampCoeff is the fraction of the previous lowpass state retained.
func (c *combFilter) process(input, feedback, dampCoeff float32) float32 {
	out := c.delay.Read(c.length)
	c.dampState = c.dampState*dampCoeff + out*(1-dampCoeff)
	c.dampState = float32(dspcore.FlushDenormals(float64(c.dampState)))
	c.delay.Write(input + c.dampState*feedback)
	return out
}

func (c *combFilter) reset() {
	c.delay.Reset()
	c.dampState = 0
}
