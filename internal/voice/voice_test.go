package voice

import (
	"testing"

	"github.com/jurgenbelien/websynth-go/internal/param"
)

func testDefaults() Defaults {
	var d Defaults
	d[Osc1Frequency] = 50
	d[Osc2Frequency] = 500
	d[FilterCutoff] = 20
	return d
}

func TestDefaultsApplyToTargets(t *testing.T) {
	v := New(testDefaults())
	if got := v.Param(Osc2Frequency).ValueAt(0); got != 500 {
		t.Fatalf("osc2 frequency = %v, want 500", got)
	}
	if got := v.Param(OutputLevel).ValueAt(10); got != 0 {
		t.Fatalf("output level = %v, want 0", got)
	}
}

func TestTargetNames(t *testing.T) {
	seen := map[string]bool{}
	for _, target := range Targets() {
		name := target.String()
		if name == "" || name == "unknown" || seen[name] {
			t.Fatalf("bad or duplicate name %q for %d", name, int(target))
		}
		seen[name] = true
	}
	if Target(99).String() != "unknown" {
		t.Fatalf("out of range target should be unknown")
	}
}

func TestMonitorRendersScaledChannels(t *testing.T) {
	v := New(testDefaults())
	_ = v.Param(OutputLevel).SetValueAtTime(0.5, 0)
	_ = v.Param(FilterCutoff).SetValueAtTime(20000, 0)
	m := NewMonitor(v)
	buf := make([]float32, 8)
	m.Render(buf, 0, 48000)
	for i := 0; i < 4; i++ {
		if buf[i*2] != 0.5 {
			t.Fatalf("left frame %d = %v, want 0.5", i, buf[i*2])
		}
		if buf[i*2+1] != 1 {
			t.Fatalf("right frame %d = %v, want 1", i, buf[i*2+1])
		}
	}
}

func TestMonitorClampsOutOfRange(t *testing.T) {
	v := New(testDefaults())
	_ = v.Param(NoiseLevel).SetValueAtTime(3, 0)
	m := NewMonitorWithChannels(v,
		Channel{Target: NoiseLevel, Min: 0, Max: 1, Taper: param.Linear},
		Channel{Target: OutputLevel, Min: 1, Max: 2, Taper: param.Logarithmic},
	)
	buf := make([]float32, 2)
	m.Render(buf, 0, 100)
	if buf[0] != 1 || buf[1] != 0 {
		t.Fatalf("frame = %v, want [1 0]", buf)
	}
}

func TestPrune(t *testing.T) {
	v := New(testDefaults())
	p := v.Param(OutputLevel)
	_ = p.SetValueAtTime(1, 0)
	_ = p.LinearRampToValueAtTime(0, 0.1)
	_ = p.SetValueAtTime(0, 0.1)
	v.Prune(1)
	if p.Len() != 1 || p.ValueAt(1) != 0 {
		t.Fatalf("after prune len=%d value=%v", p.Len(), p.ValueAt(1))
	}
}
