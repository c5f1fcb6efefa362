package voice

import (
	"math"

	"github.com/jurgenbelien/websynth-go/internal/automation"
	"github.com/jurgenbelien/websynth-go/internal/param"
)

// Target names one automatable quantity of the voice.
type Target int

const (
	Osc1Frequency Target = iota
	Osc2Frequency
	Osc1Level
	Osc2Level
	NoiseLevel
	FilterCutoff
	FilterResonance
	FilterModAmount
	OutputLevel
	targetCount
)

var targetNames = [targetCount]string{
	Osc1Frequency:   "osc1.frequency",
	Osc2Frequency:   "osc2.frequency",
	Osc1Level:       "osc1.level",
	Osc2Level:       "osc2.level",
	NoiseLevel:      "noise.level",
	FilterCutoff:    "filter.cutoff",
	FilterResonance: "filter.resonance",
	FilterModAmount: "filter.mod_amount",
	OutputLevel:     "output.level",
}

func (t Target) String() string {
	if t < 0 || t >= targetCount {
		return "unknown"
	}
	return targetNames[t]
}

// Defaults holds the resting value of each target before any automation.
type Defaults [targetCount]float64

// Voice is the set of controllable targets of the monophonic voice.
type Voice struct {
	params [targetCount]*automation.Param
}

func New(defaults Defaults) *Voice {
	v := &Voice{}
	for i := range v.params {
		v.params[i] = automation.NewParam(defaults[i])
	}
	return v
}

// Param returns the automation target for t.
func (v *Voice) Param(t Target) *automation.Param {
	return v.params[t]
}

// Targets lists every target in declaration order.
func Targets() []Target {
	out := make([]Target, targetCount)
	for i := range out {
		out[i] = Target(i)
	}
	return out
}

// Prune forgets automation that ended before t on every target.
func (v *Voice) Prune(t float64) {
	for _, p := range v.params {
		p.Prune(t)
	}
}

// Channel selects a target to render and how to scale it into [0, 1].
type Channel struct {
	Target   Target
	Min, Max float64
	Taper    param.Taper
}

// Monitor renders two targets as an interleaved stereo control signal.
type Monitor struct {
	voice       *Voice
	left, right Channel
	scratch     []float32
}

// NewMonitor renders the output level on the left channel and the filter
// cutoff, log-scaled over the audible range, on the right.
func NewMonitor(v *Voice) *Monitor {
	return NewMonitorWithChannels(v,
		Channel{Target: OutputLevel, Min: 0, Max: 1, Taper: param.Linear},
		Channel{Target: FilterCutoff, Min: 20, Max: 20000, Taper: param.Logarithmic},
	)
}

func NewMonitorWithChannels(v *Voice, left, right Channel) *Monitor {
	return &Monitor{voice: v, left: left, right: right}
}

// Render fills interleaved stereo frames in dst starting at start seconds.
func (m *Monitor) Render(dst []float32, start float64, sampleRate int) {
	frames := len(dst) / 2
	if cap(m.scratch) < frames {
		m.scratch = make([]float32, frames)
	}
	buf := m.scratch[:frames]
	for ch, c := range [2]Channel{m.left, m.right} {
		m.voice.Param(c.Target).Render(buf, start, sampleRate)
		for i, v := range buf {
			dst[i*2+ch] = scale(float64(v), c)
		}
	}
}

func scale(v float64, c Channel) float32 {
	r := param.Normalize(v, c.Min, c.Max, c.Taper)
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return float32(r)
}
