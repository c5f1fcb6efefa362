package param

import (
	"math"
	"testing"
	"time"
)

func TestTempoInterval(t *testing.T) {
	tempo := Must(NewTempo(120, 360, 10))
	if got := tempo.Interval(); got != 500 {
		t.Fatalf("interval = %v, want 500", got)
	}
	if got := tempo.StepInterval(); got != 125 {
		t.Fatalf("step interval = %v, want 125", got)
	}
	if got := tempo.StepDuration(); got != 125*time.Millisecond {
		t.Fatalf("step duration = %v, want 125ms", got)
	}
	if got := tempo.Frequency(); got != 2 {
		t.Fatalf("frequency = %v, want 2", got)
	}
}

func TestTempoStepDurationOutsideBounds(t *testing.T) {
	tempo := Must(NewTempo(120, 360, 10))
	for _, bpm := range []float64{0, -60, 5, 361, 1e9, math.Inf(1), math.NaN()} {
		tempo.SetValue(bpm)
		if tempo.Playable() {
			t.Fatalf("tempo %v reported playable", bpm)
		}
		if got := tempo.StepDuration(); got != 0 {
			t.Fatalf("StepDuration at %v = %v, want 0", bpm, got)
		}
	}
	tempo.SetValue(360)
	if !tempo.Playable() || tempo.StepDuration() != 41666667*time.Nanosecond {
		t.Fatalf("tempo 360: playable=%v step=%v", tempo.Playable(), tempo.StepDuration())
	}
}

func TestPitchToFrequency(t *testing.T) {
	cases := []struct {
		pitch, base, want float64
	}{
		{1, 440, 880},
		{-1, 440, 220},
		{0, 500, 500},
		{5, 500, 16000},
	}
	for _, tc := range cases {
		if got := PitchToFrequency(tc.pitch, tc.base); !almostEqual(got, tc.want) {
			t.Fatalf("PitchToFrequency(%v, %v) = %v, want %v", tc.pitch, tc.base, got, tc.want)
		}
		if got := FrequencyToPitch(tc.want, tc.base); !almostEqual(got, tc.pitch) {
			t.Fatalf("FrequencyToPitch(%v, %v) = %v, want %v", tc.want, tc.base, got, tc.pitch)
		}
	}
	p := Must(NewPitch(-1, 5, -5))
	if got := p.Frequency(440); !almostEqual(got, 220) {
		t.Fatalf("pitch frequency = %v, want 220", got)
	}
}

func TestDurationViews(t *testing.T) {
	d := Must(NewDuration(125, 1000, 0))
	if d.Seconds() != 0.125 || d.Milliseconds() != 125 {
		t.Fatalf("duration = %vs / %vms", d.Seconds(), d.Milliseconds())
	}
	if d.Time() != 125*time.Millisecond {
		t.Fatalf("time = %v", d.Time())
	}
	var notified float64
	d.OnChange(func(v float64) { notified = v })
	d.SetSeconds(0.5)
	if d.Milliseconds() != 500 || notified != 500 {
		t.Fatalf("SetSeconds stored %v, notified %v", d.Milliseconds(), notified)
	}
	d.SetMilliseconds(50)
	if d.Seconds() != 0.05 {
		t.Fatalf("seconds = %v, want 0.05", d.Seconds())
	}
}

func TestViewsShareTheUnderlyingParameter(t *testing.T) {
	d := Must(NewDuration(0, 1000, 0))
	d.SetRelative(0.5)
	if d.Milliseconds() != 500 {
		t.Fatalf("milliseconds = %v, want 500", d.Milliseconds())
	}
	if _, err := NewTempo(400, 360, 10); err == nil {
		t.Fatalf("expected error for tempo above max")
	}
}
