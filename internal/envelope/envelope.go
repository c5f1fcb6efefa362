package envelope

import (
	"errors"
	"fmt"
	"math"

	"github.com/jurgenbelien/websynth-go/internal/param"
)

// ExponentialFloor replaces a zero target on exponential ramps, which
// cannot reach zero.
const ExponentialFloor = 0.01

// ErrInvalidStage is returned before any scheduling for stages with a
// negative or non-finite field.
var ErrInvalidStage = errors.New("envelope: invalid stage")

// Target is a value that can be scheduled on the transport timeline.
// Times are in seconds.
type Target interface {
	CancelScheduledValues(from float64) error
	SetValueAtTime(value, at float64) error
	LinearRampToValueAtTime(value, at float64) error
	ExponentialRampToValueAtTime(value, at float64) error
}

// Stage is one ramp segment. Duration is in milliseconds. Taper only
// shapes this segment; Linear is the zero value.
type Stage struct {
	From     float64
	To       float64
	Duration float64
	Taper    param.Taper
}

func (s Stage) validate() error {
	for _, v := range []float64{s.From, s.To, s.Duration} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite field in %+v", ErrInvalidStage, s)
		}
	}
	if s.Duration < 0 {
		return fmt.Errorf("%w: negative duration %v", ErrInvalidStage, s.Duration)
	}
	return nil
}

func toSeconds(milliseconds float64) float64 {
	return milliseconds / 1000
}

// ApplyStage replaces everything scheduled on target from currentTime on
// with a single ramp and returns the time the ramp ends.
func ApplyStage(target Target, stage Stage, currentTime float64) (float64, error) {
	if err := stage.validate(); err != nil {
		return currentTime, err
	}
	endTime := currentTime + toSeconds(stage.Duration)
	if err := target.CancelScheduledValues(currentTime); err != nil {
		return currentTime, err
	}
	if err := target.SetValueAtTime(stage.From, currentTime); err != nil {
		return currentTime, err
	}
	var err error
	if stage.Taper == param.Logarithmic {
		to := stage.To
		if to == 0 {
			to = ExponentialFloor
		}
		err = target.ExponentialRampToValueAtTime(to, endTime)
	} else {
		err = target.LinearRampToValueAtTime(stage.To, endTime)
	}
	if err != nil {
		return currentTime, err
	}
	// Pin the exact target; the exponential curve may stop short of it.
	if err := target.SetValueAtTime(stage.To, endTime); err != nil {
		return currentTime, err
	}
	return endTime, nil
}

// ApplyEnvelope applies stages back to back starting at currentTime and
// returns the end time of the last one. Every stage cancels on entry, so a
// stage discards whatever earlier stages scheduled at or after its start.
// Stages are validated up front; an invalid stage leaves target untouched.
func ApplyEnvelope(target Target, stages []Stage, currentTime float64) (float64, error) {
	for i, s := range stages {
		if err := s.validate(); err != nil {
			return currentTime, fmt.Errorf("stage %d: %w", i, err)
		}
	}
	startTime := currentTime
	for i, s := range stages {
		end, err := ApplyStage(target, s, startTime)
		if err != nil {
			return startTime, fmt.Errorf("stage %d: %w", i, err)
		}
		startTime = end
	}
	return startTime, nil
}

// Pluck is the single-stage percussive shape: excited to peak, decaying
// back to rest over decay milliseconds.
func Pluck(peak, rest, decay float64) []Stage {
	return []Stage{{From: peak, To: rest, Duration: decay}}
}
