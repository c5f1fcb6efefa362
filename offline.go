package websynth

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/jurgenbelien/websynth-go/internal/transport"
	"github.com/jurgenbelien/websynth-go/internal/voice"
)

// offlineBlock is the number of blocks rendered per second. Steps due in a
// block are scheduled before the block is rendered.
const offlineBlock = 100

var ErrNotOffline = errors.New("websynth: synth is not on a manual transport")

// NewOffline returns a synth whose clock and scheduler only move while
// RenderAutomation runs.
func NewOffline(opts ...Option) (*Synth, error) {
	m := transport.NewManual()
	return New(append(opts, WithClock(m), WithScheduler(m))...)
}

// RenderAutomation plays s from its current position for seconds and
// returns the voice monitor's interleaved stereo signal. The result only
// depends on the synth's controls and pattern.
func RenderAutomation(s *Synth, seconds float64, sampleRate int) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return nil, fmt.Errorf("websynth: cannot render %v seconds", seconds)
	}
	m, ok := s.clock.(*transport.Manual)
	if !ok || s.scheduler != transport.Scheduler(m) {
		return nil, ErrNotOffline
	}
	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	monitor := voice.NewMonitor(s.Voice())
	block := sampleRate / offlineBlock
	if block < 1 {
		block = 1
	}
	base := m.Now()
	if !s.Playing() {
		s.StartStop()
	}
	for start := 0; start < frames; start += block {
		end := min(start+block, frames)
		m.Advance(frameTime(end, sampleRate) - frameTime(start, sampleRate))
		monitor.Render(out[start*2:end*2], base+float64(start)/float64(sampleRate), sampleRate)
	}
	s.Stop()
	return out, nil
}

func frameTime(frame, sampleRate int) time.Duration {
	return time.Duration(int64(frame) * int64(time.Second) / int64(sampleRate))
}

// wavHeader is the 44-byte RIFF header of a single-chunk IEEE float WAV.
type wavHeader struct {
	RIFF          [4]byte
	ChunkSize     uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

const wavFormatFloat = 3

// WriteWAV writes interleaved float32 samples to w as a WAV file.
func WriteWAV(w io.Writer, samples []float32, sampleRate, channels int) error {
	dataSize := uint32(len(samples) * 4)
	h := wavHeader{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		Format:        wavFormatFloat,
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * channels * 4),
		BlockAlign:    uint16(channels * 4),
		BitsPerSample: 32,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataSize,
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, samples)
}

// EncodeWAVFloat32LE returns samples as an in-memory WAV file.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	var buf bytes.Buffer
	buf.Grow(44 + len(samples)*4)
	// Writes to a bytes.Buffer cannot fail.
	_ = WriteWAV(&buf, samples, sampleRate, channels)
	return buf.Bytes()
}
