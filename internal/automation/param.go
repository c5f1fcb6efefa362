package automation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// ErrDegenerateRamp is returned for an exponential ramp towards zero or a
// non-finite value.
var ErrDegenerateRamp = errors.New("automation: degenerate exponential ramp")

// ErrInvalidTime is returned for negative or non-finite event times.
var ErrInvalidTime = errors.New("automation: invalid event time")

type eventKind int

const (
	eventSet eventKind = iota
	eventLinearRamp
	eventExponentialRamp
)

type event struct {
	kind  eventKind
	value float64
	time  float64 // seconds
}

// Param is a value scheduled along a transport timeline in seconds.
// Ramp events end at their own time and start at the preceding event.
// Param is safe for concurrent use; the audio goroutine renders it while
// the sequencer schedules into it.
type Param struct {
	mu           sync.Mutex
	defaultValue float64
	events       []event
}

func NewParam(defaultValue float64) *Param {
	return &Param{defaultValue: defaultValue}
}

// DefaultValue is the value before the first scheduled event.
func (p *Param) DefaultValue() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.defaultValue
}

// CancelScheduledValues drops every event at or after from.
func (p *Param) CancelScheduledValues(from float64) error {
	if err := checkTime(from); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= from })
	p.events = p.events[:n]
	return nil
}

func (p *Param) SetValueAtTime(value, at float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("automation: non-finite value %v", value)
	}
	return p.insert(event{kind: eventSet, value: value, time: at})
}

func (p *Param) LinearRampToValueAtTime(value, at float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("automation: non-finite value %v", value)
	}
	return p.insert(event{kind: eventLinearRamp, value: value, time: at})
}

func (p *Param) ExponentialRampToValueAtTime(value, at float64) error {
	if value == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: target %v", ErrDegenerateRamp, value)
	}
	return p.insert(event{kind: eventExponentialRamp, value: value, time: at})
}

// insert keeps events ordered by time; equal times keep insertion order.
func (p *Param) insert(e event) error {
	if err := checkTime(e.time); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > e.time })
	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
	return nil
}

func checkTime(t float64) error {
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTime, t)
	}
	return nil
}

// Len returns the number of scheduled events.
func (p *Param) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// ValueAt evaluates the automation curve at t seconds.
func (p *Param) ValueAt(t float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.valueAt(t)
}

func (p *Param) valueAt(t float64) float64 {
	prevTime, prevValue := 0.0, p.defaultValue
	for _, e := range p.events {
		if e.time <= t {
			prevTime, prevValue = e.time, e.value
			continue
		}
		switch e.kind {
		case eventLinearRamp:
			return linear(prevValue, e.value, prevTime, e.time, t)
		case eventExponentialRamp:
			return exponential(prevValue, e.value, prevTime, e.time, t)
		}
		return prevValue
	}
	return prevValue
}

func linear(v0, v1, t0, t1, t float64) float64 {
	if t1 <= t0 {
		return v1
	}
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

// exponential holds v0 when the curve would cross or start at zero.
func exponential(v0, v1, t0, t1, t float64) float64 {
	if t1 <= t0 {
		return v1
	}
	if v0 == 0 || (v0 < 0) != (v1 < 0) {
		return v0
	}
	return v0 * math.Pow(v1/v0, (t-t0)/(t1-t0))
}

// Render writes one value per frame into dst, starting at start seconds.
func (p *Param) Render(dst []float32, start float64, sampleRate int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	step := 1 / float64(sampleRate)
	for i := range dst {
		dst[i] = float32(p.valueAt(start + float64(i)*step))
	}
}

// Prune drops events that can no longer affect values at or after t,
// keeping the last one as the new starting point. Long-running playback
// calls this so the event list does not grow without bound.
func (p *Param) Prune(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t })
	if n <= 1 {
		return
	}
	last := p.events[n-1]
	kept := make([]event, 0, len(p.events)-n+1)
	kept = append(kept, event{kind: eventSet, value: last.value, time: last.time})
	p.events = append(kept, p.events[n:]...)
}
