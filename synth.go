package websynth

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jurgenbelien/websynth-go/internal/envelope"
	"github.com/jurgenbelien/websynth-go/internal/param"
	"github.com/jurgenbelien/websynth-go/internal/sequencer"
	"github.com/jurgenbelien/websynth-go/internal/transport"
	"github.com/jurgenbelien/websynth-go/internal/voice"
)

// DefaultSteps is the length of the pitch and velocity lanes.
const DefaultSteps = 8

// pruneLag is how far behind the transport automation is kept for
// renderers that lag the clock.
const pruneLag = 1.0

var (
	ErrUnknownControl = errors.New("websynth: unknown control")
	// ErrMissingStep is returned by Trigger for a nil pitch or velocity.
	ErrMissingStep = errors.New("websynth: missing pitch or velocity")
)

// StepEvent reports one played sequencer step.
type StepEvent struct {
	Index    int
	Velocity float64
	Pitch    float64 // octaves
	Time     float64 // transport seconds
}

type Option func(*synthConfig)

type synthConfig struct {
	steps     int
	clock     transport.Clock
	scheduler transport.Scheduler
}

func defaultSynthConfig() synthConfig {
	return synthConfig{steps: DefaultSteps, scheduler: transport.Realtime{}}
}

// WithSteps sets the length of both sequencer lanes.
func WithSteps(steps int) Option {
	return func(cfg *synthConfig) {
		cfg.steps = steps
	}
}

// WithClock sets the transport clock envelopes are scheduled against.
// The default is a wall clock started by New.
func WithClock(clock transport.Clock) Option {
	return func(cfg *synthConfig) {
		cfg.clock = clock
	}
}

// WithScheduler sets the timer used by the playback loop.
func WithScheduler(s transport.Scheduler) Option {
	return func(cfg *synthConfig) {
		cfg.scheduler = s
	}
}

// Synth drives a monophonic voice from two sequencer lanes. All methods are
// safe for concurrent use.
type Synth struct {
	mu         sync.Mutex
	clock      transport.Clock
	scheduler  transport.Scheduler
	controls   *Controls
	voice      *voice.Voice
	pitches    *sequencer.Sequencer[param.Pitch]
	velocities *sequencer.Sequencer[*param.Parameter]
	playing    bool
	run        int
	eventCh    chan StepEvent
	eventChMu  sync.Mutex
}

func New(opts ...Option) (*Synth, error) {
	cfg := defaultSynthConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = transport.NewWall()
	}
	if cfg.scheduler == nil {
		return nil, errors.New("websynth: nil scheduler")
	}
	pitches, err := sequencer.New(cfg.steps, func() param.Pitch {
		return param.Must(param.NewPitch(-5, 5, -5))
	})
	if err != nil {
		return nil, err
	}
	velocities, err := sequencer.New(cfg.steps, func() *param.Parameter {
		return param.Must(param.NewLinear(0, 1, 0))
	})
	if err != nil {
		return nil, err
	}
	controls := defaultControls()
	s := &Synth{
		clock:      cfg.clock,
		scheduler:  cfg.scheduler,
		controls:   controls,
		voice:      voice.New(voiceDefaults(controls)),
		pitches:    pitches,
		velocities: velocities,
	}
	s.bind(controls.Osc1Level, voice.Osc1Level)
	s.bind(controls.Osc2Level, voice.Osc2Level)
	s.bind(controls.NoiseLevel, voice.NoiseLevel)
	s.bind(controls.FilterModAmount, voice.FilterModAmount)
	s.bind(controls.FilterResonance, voice.FilterResonance)
	s.loadDefaultPattern()
	return s, nil
}

func voiceDefaults(c *Controls) voice.Defaults {
	var d voice.Defaults
	d[voice.Osc1Frequency] = c.Osc1Frequency.Value()
	d[voice.Osc2Frequency] = c.Osc2Frequency.Value()
	d[voice.Osc1Level] = c.Osc1Level.Value()
	d[voice.Osc2Level] = c.Osc2Level.Value()
	d[voice.NoiseLevel] = c.NoiseLevel.Value()
	d[voice.FilterCutoff] = c.FilterCutoff.Value()
	d[voice.FilterResonance] = c.FilterResonance.Value()
	d[voice.FilterModAmount] = c.FilterModAmount.Value()
	d[voice.OutputLevel] = 0
	return d
}

// loadDefaultPattern sets up a kick on the first step and a snare, pitched
// to the top of the range, halfway through the lanes.
// Lanes are never empty and half < Len, so both indices are in range.
func (s *Synth) loadDefaultPattern() {
	velocities, pitches := s.velocities.Values(), s.pitches.Values()
	velocities[0].SetValue(1)
	if half := len(velocities) / 2; half > 0 {
		velocities[half].SetValue(1)
		pitches[half].SetValue(5)
	}
}

// bind pushes every write of p into target at the current transport time.
func (s *Synth) bind(p *param.Parameter, target voice.Target) {
	dst := s.voice.Param(target)
	p.OnChange(func(v float64) {
		if err := dst.SetValueAtTime(v, s.clock.Now()); err != nil {
			log.Printf("websynth: %s: %v", target, err)
		}
	})
}

// Voice returns the automation targets driven by the synth.
func (s *Synth) Voice() *voice.Voice { return s.voice }

// Clock returns the transport clock.
func (s *Synth) Clock() transport.Clock { return s.clock }

// Update runs fn with exclusive access to the controls.
func (s *Synth) Update(fn func(*Controls)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.controls)
}

// Control returns the current raw value of the named control.
func (s *Synth) Control(name string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.controls.lookup(name)
	if err != nil {
		return 0, err
	}
	return p.Value(), nil
}

// SetControl writes a raw value into the named control.
func (s *Synth) SetControl(name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.controls.lookup(name)
	if err != nil {
		return err
	}
	p.SetValue(value)
	return nil
}

// SetControlRelative positions the named control like a slider in [0, 1].
func (s *Synth) SetControlRelative(name string, r float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.controls.lookup(name)
	if err != nil {
		return err
	}
	p.SetRelative(r)
	return nil
}

// Steps returns the length of the sequencer lanes.
func (s *Synth) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitches.Len()
}

// SetPitch sets the octave offset of step index.
func (s *Synth) SetPitch(index int, octaves float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitches.Set(octaves, index)
}

// SetVelocity sets the velocity of step index.
func (s *Synth) SetVelocity(index int, velocity float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.velocities.Set(velocity, index)
}

// Pattern returns the raw pitch and velocity of every step.
func (s *Synth) Pattern() (pitches, velocities []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pitches.Values() {
		pitches = append(pitches, p.Value())
	}
	for _, v := range s.velocities.Values() {
		velocities = append(velocities, v.Value())
	}
	return pitches, velocities
}

// Position returns the index of the step that plays next.
func (s *Synth) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitches.Index()
}

// Next advances both lanes by one step without playing.
func (s *Synth) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pitches.Next()
	s.velocities.Next()
}

// Trigger plays pitch and velocity now.
func (s *Synth) Trigger(pitch param.Pitch, velocity *param.Parameter) error {
	if pitch.Parameter == nil || velocity == nil {
		return ErrMissingStep
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trigger(pitch, velocity, s.clock.Now())
}

// TriggerCurrent plays the current step without advancing the lanes.
func (s *Synth) TriggerCurrent() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trigger(s.pitches.Current(), s.velocities.Current(), s.clock.Now())
}

// trigger excites output level, filter cutoff and both oscillator
// frequencies away from rest and lets each decay back independently.
func (s *Synth) trigger(pitch param.Pitch, velocity *param.Parameter, now float64) error {
	c := s.controls
	cutoff := c.FilterCutoff.Value()
	f1 := c.Osc1Frequency.Value()
	f2 := pitch.Frequency(c.Osc2Frequency.Value())
	envelopes := []struct {
		target voice.Target
		stages []envelope.Stage
	}{
		{voice.OutputLevel, envelope.Pluck(c.OutputLevel.Value()*velocity.Value(), 0, c.OutputDecay.Milliseconds())},
		{voice.FilterCutoff, envelope.Pluck(cutoff+c.FilterCutoff.Max()*c.FilterEnvAmount.Value(), cutoff, c.FilterDecay.Milliseconds())},
		{voice.Osc1Frequency, envelope.Pluck(f1+c.Osc1Frequency.Max()*c.Osc1EnvAmount.Value(), f1, c.OscDecay.Milliseconds())},
		{voice.Osc2Frequency, envelope.Pluck(f2+c.Osc2Frequency.Max()*c.Osc2EnvAmount.Value(), f2, c.OscDecay.Milliseconds())},
	}
	for _, e := range envelopes {
		if _, err := envelope.ApplyEnvelope(s.voice.Param(e.target), e.stages, now); err != nil {
			return fmt.Errorf("trigger %s: %w", e.target, err)
		}
	}
	return nil
}

// Playing reports whether the playback loop is running.
func (s *Synth) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// StartStop toggles playback and reports whether it is now playing.
// Stopping lets envelopes already scheduled run out. Starting with a tempo
// that is not playable stops again at once.
func (s *Synth) StartStop() bool {
	s.mu.Lock()
	s.playing = !s.playing
	playing := s.playing
	if playing {
		s.run++
	}
	run := s.run
	s.mu.Unlock()
	if !playing {
		return false
	}
	s.step(run)
	return s.Playing()
}

// Stop ends playback if it is running.
func (s *Synth) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
}

// step plays one step and schedules the next one a sixteenth note later.
// A step left over from an earlier run exits without rescheduling.
func (s *Synth) step(run int) {
	s.mu.Lock()
	if !s.playing || run != s.run {
		s.mu.Unlock()
		return
	}
	interval := s.controls.Tempo.StepDuration()
	if interval <= 0 {
		s.playing = false
		bpm := s.controls.Tempo.Value()
		s.mu.Unlock()
		log.Printf("websynth: tempo %v is outside [%v, %v], stopping playback", bpm, s.controls.Tempo.Min(), s.controls.Tempo.Max())
		return
	}
	now := s.clock.Now()
	index := s.pitches.Index()
	pitch := s.pitches.Step()
	velocity := s.velocities.Step()
	err := s.trigger(pitch, velocity, now)
	ev := StepEvent{Index: index, Pitch: pitch.Value(), Velocity: velocity.Value(), Time: now}
	s.voice.Prune(now - pruneLag)
	s.mu.Unlock()

	if err != nil {
		log.Printf("websynth: step %d: %v", index, err)
	}
	s.sendEvent(ev)
	s.scheduler.AfterFunc(interval, func() { s.step(run) })
}

// Watch returns a channel that receives an event for every played step.
// The channel is buffered (cap 8) and events are dropped when it is full.
// Only the most recent Watch channel receives events.
func (s *Synth) Watch() <-chan StepEvent {
	ch := make(chan StepEvent, 8)
	s.eventChMu.Lock()
	s.eventCh = ch
	s.eventChMu.Unlock()
	return ch
}

func (s *Synth) sendEvent(ev StepEvent) {
	s.eventChMu.Lock()
	ch := s.eventCh
	s.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
		}
	}
}
