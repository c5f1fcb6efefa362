package envelope

import (
	"errors"
	"math"
	"testing"

	"github.com/jurgenbelien/websynth-go/internal/automation"
	"github.com/jurgenbelien/websynth-go/internal/param"
)

type call struct {
	op    string
	value float64
	at    float64
}

type recordingTarget struct {
	calls []call
}

func (r *recordingTarget) CancelScheduledValues(from float64) error {
	r.calls = append(r.calls, call{op: "cancel", at: from})
	return nil
}
func (r *recordingTarget) SetValueAtTime(v, at float64) error {
	r.calls = append(r.calls, call{op: "set", value: v, at: at})
	return nil
}
func (r *recordingTarget) LinearRampToValueAtTime(v, at float64) error {
	r.calls = append(r.calls, call{op: "linear", value: v, at: at})
	return nil
}
func (r *recordingTarget) ExponentialRampToValueAtTime(v, at float64) error {
	r.calls = append(r.calls, call{op: "exponential", value: v, at: at})
	return nil
}

func expectCalls(t *testing.T, got []call, want []call) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %+v, want %+v", got, want)
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.op != w.op || g.value != w.value || math.Abs(g.at-w.at) > 1e-12 {
			t.Fatalf("call %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestApplyStageLinear(t *testing.T) {
	r := &recordingTarget{}
	end, err := ApplyStage(r, Stage{From: 1, To: 0.5, Duration: 250}, 2)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if end != 2.25 {
		t.Fatalf("end = %v, want 2.25", end)
	}
	expectCalls(t, r.calls, []call{
		{op: "cancel", at: 2},
		{op: "set", value: 1, at: 2},
		{op: "linear", value: 0.5, at: 2.25},
		{op: "set", value: 0.5, at: 2.25},
	})
}

func TestApplyStageLogFloorsZero(t *testing.T) {
	r := &recordingTarget{}
	_, err := ApplyStage(r, Stage{From: 1, To: 0, Duration: 100, Taper: param.Logarithmic}, 0)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	expectCalls(t, r.calls, []call{
		{op: "cancel", at: 0},
		{op: "set", value: 1, at: 0},
		{op: "exponential", value: ExponentialFloor, at: 0.1},
		{op: "set", value: 0, at: 0.1},
	})
}

func TestApplyStageLogKeepsNonZero(t *testing.T) {
	r := &recordingTarget{}
	_, _ = ApplyStage(r, Stage{From: 8000, To: 20, Duration: 1000, Taper: param.Logarithmic}, 1)
	if r.calls[2].op != "exponential" || r.calls[2].value != 20 || r.calls[2].at != 2 {
		t.Fatalf("ramp call = %+v", r.calls[2])
	}
}

func TestApplyStageZeroDuration(t *testing.T) {
	p := automation.NewParam(0)
	end, err := ApplyStage(p, Stage{From: 3, To: 7, Duration: 0, Taper: param.Logarithmic}, 1)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if end != 1 {
		t.Fatalf("end = %v, want 1", end)
	}
	if got := p.ValueAt(1); got != 7 {
		t.Fatalf("value = %v, want 7", got)
	}
}

func TestApplyStageInvalidLeavesTargetUntouched(t *testing.T) {
	r := &recordingTarget{}
	_, err := ApplyStage(r, Stage{From: 1, To: 0, Duration: -5}, 0)
	if !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("err = %v, want ErrInvalidStage", err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("target received %+v", r.calls)
	}
}

func TestApplyEnvelopeChainsStages(t *testing.T) {
	r := &recordingTarget{}
	end, err := ApplyEnvelope(r, []Stage{
		{From: 1, To: 0, Duration: 100},
		{From: 0, To: 1, Duration: 50},
	}, 0)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if math.Abs(end-0.15) > 1e-12 {
		t.Fatalf("end = %v, want 0.15", end)
	}
	expectCalls(t, r.calls, []call{
		{op: "cancel", at: 0},
		{op: "set", value: 1, at: 0},
		{op: "linear", value: 0, at: 0.1},
		{op: "set", value: 0, at: 0.1},
		{op: "cancel", at: 0.1},
		{op: "set", value: 0, at: 0.1},
		{op: "linear", value: 1, at: 0.15},
		{op: "set", value: 1, at: 0.15},
	})
	if r.calls[4].at != r.calls[2].at {
		t.Fatalf("second stage starts at %v, first ends at %v", r.calls[4].at, r.calls[2].at)
	}
	if r.calls[7].at != end {
		t.Fatalf("last pin at %v, returned end %v", r.calls[7].at, end)
	}
}

func TestApplyEnvelopeValidatesAllStagesFirst(t *testing.T) {
	r := &recordingTarget{}
	_, err := ApplyEnvelope(r, []Stage{
		{From: 1, To: 0, Duration: 100},
		{From: 0, To: 1, Duration: -1},
	}, 0)
	if !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("err = %v, want ErrInvalidStage", err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("target received %+v", r.calls)
	}
}

func TestRetriggerCutsOffPreviousEnvelope(t *testing.T) {
	p := automation.NewParam(0)
	if _, err := ApplyEnvelope(p, Pluck(1, 0, 1000), 0); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := ApplyEnvelope(p, Pluck(0.5, 0, 100), 0.125); err != nil {
		t.Fatalf("second: %v", err)
	}
	if got := p.ValueAt(0.125); got != 0.5 {
		t.Fatalf("value at retrigger = %v, want 0.5", got)
	}
	if got := p.ValueAt(0.3); got != 0 {
		t.Fatalf("value after second decay = %v, want 0", got)
	}
}

func TestPluckOnAutomationParam(t *testing.T) {
	p := automation.NewParam(0)
	if _, err := ApplyEnvelope(p, Pluck(1, 0, 100), 1); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := p.ValueAt(1.05); got < 0.49 || got > 0.51 {
		t.Fatalf("midpoint = %v, want ~0.5", got)
	}
	if got := p.ValueAt(1.1); got != 0 {
		t.Fatalf("end = %v, want 0", got)
	}
}
