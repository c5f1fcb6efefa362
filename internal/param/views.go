package param

import (
	"math"
	"time"
)

// DefaultLogMin is the lower bound used by NewLog callers that have no
// natural floor.
const DefaultLogMin = 0.001

// NewLinear returns a Parameter with a linear taper.
func NewLinear(initial, max, min float64) (*Parameter, error) {
	return New(initial, max, min, Linear)
}

// NewLog returns a Parameter with a logarithmic taper.
func NewLog(initial, max, min float64) (*Parameter, error) {
	return New(initial, max, min, Logarithmic)
}

// Duration views a linear Parameter whose raw unit is milliseconds.
type Duration struct {
	*Parameter
}

func NewDuration(milliseconds, max, min float64) (Duration, error) {
	p, err := NewLinear(milliseconds, max, min)
	if err != nil {
		return Duration{}, err
	}
	return Duration{p}, nil
}

func (d Duration) Milliseconds() float64 { return d.Value() }
func (d Duration) SetMilliseconds(ms float64) { d.SetValue(ms) }
func (d Duration) Seconds() float64 { return d.Value() / 1000 }
func (d Duration) SetSeconds(s float64) { d.SetValue(s * 1000) }

// Time returns the duration rounded to the nearest nanosecond.
func (d Duration) Time() time.Duration {
	return time.Duration(math.Round(d.Value() * float64(time.Millisecond)))
}

// Pitch views a linear Parameter whose raw unit is an octave offset.
type Pitch struct {
	*Parameter
}

func NewPitch(octaves, max, min float64) (Pitch, error) {
	p, err := NewLinear(octaves, max, min)
	if err != nil {
		return Pitch{}, err
	}
	return Pitch{p}, nil
}

// Frequency transposes base by the pitch's octave offset.
func (p Pitch) Frequency(base float64) float64 {
	return PitchToFrequency(p.Value(), base)
}

// PitchToFrequency returns base * 2^pitch.
func PitchToFrequency(pitch, base float64) float64 {
	return base * math.Pow(2, pitch)
}

// FrequencyToPitch returns the octave offset of freq relative to base.
func FrequencyToPitch(freq, base float64) float64 {
	return math.Log2(freq / base)
}

// StepsPerBeat is the number of sequencer steps per quarter note.
const StepsPerBeat = 4

// Tempo views a linear Parameter whose raw unit is beats per minute.
type Tempo struct {
	*Parameter
}

func NewTempo(bpm, max, min float64) (Tempo, error) {
	p, err := NewLinear(bpm, max, min)
	if err != nil {
		return Tempo{}, err
	}
	return Tempo{p}, nil
}

// Interval is the length of one beat in milliseconds.
func (t Tempo) Interval() float64 { return 60 * 1000 / t.Value() }

// Frequency is the beat rate in hertz.
func (t Tempo) Frequency() float64 { return t.Value() / 60 }

// StepInterval is the length of one sixteenth-note step in milliseconds.
func (t Tempo) StepInterval() float64 { return t.Interval() / StepsPerBeat }

// Playable reports whether the tempo is positive and inside its bounds.
// Runtime writes are not clamped, so the value may have left them.
func (t Tempo) Playable() bool {
	v := t.Value()
	return v > 0 && v >= t.Min() && v <= t.Max()
}

// StepDuration is the step length as a timer duration, or zero when the
// tempo is not Playable.
func (t Tempo) StepDuration() time.Duration {
	if !t.Playable() {
		return 0
	}
	return time.Duration(math.Round(t.StepInterval() * float64(time.Millisecond)))
}
