package transport

import (
	"sort"
	"sync"
	"time"
)

// Clock reports the transport time in seconds. It never goes backwards.
type Clock interface {
	Now() float64
}

// Scheduler runs f once after d. It must not block the caller.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Realtime schedules on the Go runtime's timers.
type Realtime struct{}

func (Realtime) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Wall is a Clock counting real time since it was created.
type Wall struct {
	start time.Time
}

func NewWall() *Wall {
	return &Wall{start: time.Now()}
}

func (w *Wall) Now() float64 {
	return time.Since(w.start).Seconds()
}

// Manual is a Clock and Scheduler that only moves when told to, for
// deterministic offline rendering and tests.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []pendingCall
}

type pendingCall struct {
	due time.Duration
	seq int
	f   func()
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now.Seconds()
}

func (m *Manual) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	m.pending = append(m.pending, pendingCall{due: m.now + d, seq: m.seq, f: f})
}

// Pending returns the number of calls waiting to run.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Advance moves the clock forward by d, running due calls in order. Each
// call sees Now() equal to its due time, and calls it schedules within the
// window run in the same Advance.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()
	for {
		m.mu.Lock()
		next, ok := m.popDue(target)
		if !ok {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.due
		m.mu.Unlock()
		next.f()
	}
}

func (m *Manual) popDue(target time.Duration) (pendingCall, bool) {
	if len(m.pending) == 0 {
		return pendingCall{}, false
	}
	sort.Slice(m.pending, func(i, j int) bool {
		if m.pending[i].due != m.pending[j].due {
			return m.pending[i].due < m.pending[j].due
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	next := m.pending[0]
	if next.due > target {
		return pendingCall{}, false
	}
	m.pending = m.pending[1:]
	return next, true
}
