package transport

import (
	"testing"
	"time"
)

func TestManualRunsDueCallsInOrder(t *testing.T) {
	m := NewManual()
	var order []string
	var times []float64
	m.AfterFunc(20*time.Millisecond, func() { order = append(order, "b"); times = append(times, m.Now()) })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "a"); times = append(times, m.Now()) })
	m.AfterFunc(20*time.Millisecond, func() { order = append(order, "c") })
	m.AfterFunc(50*time.Millisecond, func() { order = append(order, "late") })

	m.Advance(30 * time.Millisecond)
	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("order = %v, want [a b c]", order)
	}
	if times[0] != 0.01 || times[1] != 0.02 {
		t.Fatalf("times = %v, want [0.01 0.02]", times)
	}
	if m.Now() != 0.03 {
		t.Fatalf("now = %v, want 0.03", m.Now())
	}
	if m.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", m.Pending())
	}
}

func TestManualRunsRescheduledCallsWithinWindow(t *testing.T) {
	m := NewManual()
	count := 0
	var tick func()
	tick = func() {
		count++
		m.AfterFunc(125*time.Millisecond, tick)
	}
	tick()
	m.Advance(time.Second)
	// Ticks at 0.125, 0.25, ..., 1.0 plus the direct call.
	if count != 9 {
		t.Fatalf("count = %d, want 9", count)
	}
}

func TestRealtimeAfterFunc(t *testing.T) {
	done := make(chan struct{})
	Realtime{}.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("callback did not run")
	}
}

func TestWallIsMonotonic(t *testing.T) {
	w := NewWall()
	a := w.Now()
	time.Sleep(time.Millisecond)
	if b := w.Now(); b <= a || a < 0 {
		t.Fatalf("wall clock went from %v to %v", a, b)
	}
}
