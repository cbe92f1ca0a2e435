package dsp

// DelayLine implements a circular buffer for delay.
// Capacity is always a power of two so wrapping is a mask, not a modulo.
type DelayLine struct {
	buffer   []float32
	writePos int
	mask     int
}

// NewDelayLine creates a delay line able to hold at least minSize samples.
func NewDelayLine(minSize int) *DelayLine {
	size := NextPowerOfTwo(minSize)
	return &DelayLine{
		buffer: make([]float32, size),
		mask:   size - 1,
	}
}

// Cap returns the allocated capacity in samples.
func (d *DelayLine) Cap() int {
	return len(d.buffer)
}

// Write writes a sample to the delay line
func (d *DelayLine) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) & d.mask
}

// Read reads the sample written delay samples ago (1 = most recent write).
// delay must be in [1, Cap()].
func (d *DelayLine) Read(delay int) float32 {
	return d.buffer[(d.writePos-delay)&d.mask]
}

// Reset clears the delay line
func (d *DelayLine) Reset() {
	clear(d.buffer)
	d.writePos = 0
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// Smoother ramps a value linearly towards a target over a fixed number of
// samples. Next never allocates.
type Smoother struct {
	current   float32
	target    float32
	step      float32
	remaining int
	length    int
}

// NewSmoother creates a smoother with the given ramp length in samples.
func NewSmoother(rampSamples int, initial float32) *Smoother {
	s := &Smoother{}
	s.SetRampLength(rampSamples)
	s.Snap(initial)
	return s
}

// SetRampLength changes the ramp length; an active ramp jumps to its target.
func (s *Smoother) SetRampLength(rampSamples int) {
	if rampSamples < 0 {
		rampSamples = 0
	}
	s.length = rampSamples
	s.Snap(s.target)
}

// SetTarget starts a ramp from the current value towards target.
// Setting the current target again does nothing.
func (s *Smoother) SetTarget(target float32) {
	if target == s.target {
		return
	}
	s.target = target
	if s.length == 0 {
		s.current = target
		s.remaining = 0
		return
	}
	s.remaining = s.length
	s.step = (target - s.current) / float32(s.length)
}

// Snap sets current and target to v without ramping.
func (s *Smoother) Snap(v float32) {
	s.current = v
	s.target = v
	s.step = 0
	s.remaining = 0
}

// Next advances one sample and returns the new value.
func (s *Smoother) Next() float32 {
	if s.remaining == 0 {
		return s.current
	}
	s.remaining--
	if s.remaining == 0 {
		s.current = s.target
	} else {
		s.current += s.step
	}
	return s.current
}

// Current returns the value without advancing.
func (s *Smoother) Current() float32 { return s.current }

// Target returns the ramp destination.
func (s *Smoother) Target() float32 { return s.target }

// IsSmoothing reports whether a ramp is in progress.
func (s *Smoother) IsSmoothing() bool { return s.remaining > 0 }
