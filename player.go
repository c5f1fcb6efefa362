package websynth

import (
	"errors"
	"sync"

	intaudio "github.com/jurgenbelien/websynth-go/internal/audio"
	"github.com/jurgenbelien/websynth-go/internal/voice"
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	synthOpts []Option
	channels  []voice.Channel
	sampleTap func([]float32)
}

// WithSynthOptions passes options to the Synth the player creates. A clock
// given here is replaced by the player's stream clock.
func WithSynthOptions(opts ...Option) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.synthOpts = append(cfg.synthOpts, opts...)
	}
}

// WithMonitorChannels picks the targets rendered on the left and right
// channels of the stream.
func WithMonitorChannels(left, right voice.Channel) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.channels = []voice.Channel{left, right}
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player streams a Synth's automation to the audio device. The stream's
// rendered frame count is the synth's transport clock.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	clock      *intaudio.FrameClock
	synth      *Synth
	reader     *intaudio.StreamReader
	audio      *intaudio.Player
}

// monitorSource renders the voice monitor at stream time. The stream reader
// advances the clock after each buffer.
type monitorSource struct {
	clock     *intaudio.FrameClock
	monitor   *voice.Monitor
	sampleTap func([]float32)
}

func (m *monitorSource) Process(dst []float32) {
	m.monitor.Render(dst, m.clock.Now(), m.clock.SampleRate())
	if m.sampleTap != nil {
		m.sampleTap(dst)
	}
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	var cfg playerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	clock := intaudio.NewFrameClock(sampleRate)
	synth, err := New(append(cfg.synthOpts, WithClock(clock))...)
	if err != nil {
		return nil, err
	}
	monitor := voice.NewMonitor(synth.Voice())
	if cfg.channels != nil {
		monitor = voice.NewMonitorWithChannels(synth.Voice(), cfg.channels[0], cfg.channels[1])
	}
	return &Player{
		sampleRate: sampleRate,
		clock:      clock,
		synth:      synth,
		reader:     intaudio.NewStreamReader(&monitorSource{clock: clock, monitor: monitor, sampleTap: cfg.sampleTap}, clock),
	}, nil
}

func (p *Player) Synth() *Synth { return p.synth }

func (p *Player) SampleRate() int { return p.sampleRate }

// Play opens the audio stream if needed and starts the sequencer.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		backend, err := intaudio.NewPlayer(p.sampleRate, p.reader)
		if err != nil {
			return err
		}
		p.audio = backend
	}
	p.audio.Play()
	if !p.synth.Playing() {
		p.synth.StartStop()
	}
	return nil
}

// Stop halts the sequencer and closes the audio stream.
func (p *Player) Stop() error {
	p.synth.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	return err
}

// Latency returns how far the rendered stream runs ahead of what the
// listener hears. It is zero while no stream is open.
func (p *Player) Latency() float64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return p.clock.Now() - a.Position().Seconds()
}
