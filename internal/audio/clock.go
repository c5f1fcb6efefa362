package audio

import "sync/atomic"

// FrameClock counts the frames a stream has rendered and reports them as
// seconds. Sources advance it from the audio goroutine; anyone may read it.
type FrameClock struct {
	sampleRate int
	frames     atomic.Int64
}

func NewFrameClock(sampleRate int) *FrameClock {
	return &FrameClock{sampleRate: sampleRate}
}

func (c *FrameClock) SampleRate() int { return c.sampleRate }

// Frames returns the number of frames rendered so far.
func (c *FrameClock) Frames() int64 { return c.frames.Load() }

// Now returns the start time of the next frame to be rendered.
func (c *FrameClock) Now() float64 {
	return float64(c.frames.Load()) / float64(c.sampleRate)
}

// Advance moves the clock past n rendered frames.
func (c *FrameClock) Advance(n int) {
	if n > 0 {
		c.frames.Add(int64(n))
	}
}
