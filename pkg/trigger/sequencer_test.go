package trigger

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"triggertest/pkg/loop"
	"triggertest/pkg/port"
)

var bitWalkValues = []byte{1, 2, 4, 8, 16, 32, 64, 128, 128, 64, 32, 16, 8, 4, 2, 1, 255}

type write struct {
	at    time.Duration
	value byte
}

// recorder is a port that records every write with its virtual time.
// After failAfter successful writes every write fails.
type recorder struct {
	sched     *loop.Manual
	w         io.ByteWriter
	writes    []write
	failAfter int
}

func newRecorder(m *loop.Manual) *recorder {
	return &recorder{sched: m, failAfter: -1}
}

func (r *recorder) WriteByte(b byte) error {
	if r.failAfter >= 0 && len(r.writes) >= r.failAfter {
		return fmt.Errorf("%w: device unplugged", port.ErrWrite)
	}
	if r.w != nil {
		if err := r.w.WriteByte(b); err != nil {
			return err
		}
	}
	r.writes = append(r.writes, write{at: r.sched.Now(), value: b})
	return nil
}

func (r *recorder) values() []byte {
	v := make([]byte, len(r.writes))
	for i, w := range r.writes {
		v[i] = w.value
	}
	return v
}

// statusLog collects the status lines.
type statusLog struct {
	lines []string
}

func (l *statusLog) Report(e Event) { l.lines = append(l.lines, StatusText(e)) }

func (l *statusLog) last() string {
	if len(l.lines) == 0 {
		return ""
	}
	return l.lines[len(l.lines)-1]
}

func (l *statusLog) count(s string) int {
	n := 0
	for _, line := range l.lines {
		if line == s {
			n++
		}
	}
	return n
}

func newTestSequencer(t *testing.T) (*Sequencer, *loop.Manual, *recorder, *statusLog) {
	t.Helper()
	m := loop.NewManual()
	r := newRecorder(m)
	log := &statusLog{}

	s, err := New(r, m, log, BitWalk(DefaultInterval, MaxValue))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, m, r, log
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBitWalk(t *testing.T) {
	p := BitWalk(DefaultInterval, MaxValue)

	if len(p.Steps) != len(bitWalkValues) {
		t.Fatalf("expected %d steps, got %d", len(bitWalkValues), len(p.Steps))
	}
	for i, step := range p.Steps {
		if step.Value != bitWalkValues[i] {
			t.Errorf("step %d: expected value %d, got %d", i, bitWalkValues[i], step.Value)
		}
		if step.Delay != DefaultInterval {
			t.Errorf("step %d: expected delay %v, got %v", i, DefaultInterval, step.Delay)
		}
	}
	if p.Settle != DefaultSettle {
		t.Errorf("expected settle %v, got %v", DefaultSettle, p.Settle)
	}
}

func TestPlanValidate(t *testing.T) {
	if err := (Plan{}).Validate(); err == nil {
		t.Error("expected empty plan to be invalid")
	}
	if err := (Plan{Steps: []Step{{Value: 1, Delay: -time.Millisecond}}}).Validate(); err == nil {
		t.Error("expected negative delay to be invalid")
	}
	if err := Values(time.Millisecond, 1, 2).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSequencer_FullRun(t *testing.T) {
	s, m, r, log := newTestSequencer(t)

	s.StartSequence()
	if got := s.State(); got.Phase != Running || got.Step != 0 {
		t.Fatalf("expected running(0), got %v", got)
	}
	if log.last() != "Starting..." {
		t.Errorf("expected status Starting..., got %q", log.last())
	}

	m.Advance(17 * DefaultInterval)

	if !equalBytes(r.values(), bitWalkValues) {
		t.Fatalf("expected writes %v, got %v", bitWalkValues, r.values())
	}
	for i, w := range r.writes {
		if want := time.Duration(i+1) * DefaultInterval; w.at != want {
			t.Errorf("write %d: expected at %v, got %v", i, want, w.at)
		}
	}
	if got := s.State(); got.Phase != Completing || got.Step != 17 {
		t.Errorf("expected completing(17) after terminal pulse, got %v", got)
	}
	if log.last() != "Sent 255" {
		t.Errorf("expected status Sent 255, got %q", log.last())
	}

	m.Advance(DefaultSettle - time.Millisecond)
	if s.State().Phase != Completing {
		t.Fatalf("settled too early")
	}
	m.Advance(time.Millisecond)
	if s.State().Phase != Idle {
		t.Errorf("expected idle after settle, got %v", s.State())
	}
	if log.last() != "Ready..." {
		t.Errorf("expected status Ready..., got %q", log.last())
	}

	m.Advance(10 * time.Second)
	if len(r.writes) != 17 {
		t.Errorf("expected exactly 17 writes, got %d", len(r.writes))
	}
	if m.Pending() != 0 {
		t.Errorf("expected no pending tasks, got %d", m.Pending())
	}
}

func TestSequencer_StopWhenIdle(t *testing.T) {
	s, m, r, log := newTestSequencer(t)

	s.Stop()
	s.Stop()
	m.Advance(time.Minute)

	if len(r.writes) != 0 {
		t.Errorf("expected no writes, got %v", r.values())
	}
	if log.last() != "Ready..." {
		t.Errorf("expected status Ready..., got %q", log.last())
	}
	if s.State().Phase != Idle {
		t.Errorf("expected idle, got %v", s.State())
	}
}

func TestSequencer_StopWhileRunning(t *testing.T) {
	s, m, r, _ := newTestSequencer(t)

	s.StartSequence()
	m.Advance(3 * DefaultInterval)
	s.Stop()
	m.Advance(time.Minute)

	if !equalBytes(r.values(), []byte{1, 2, 4}) {
		t.Errorf("expected writes [1 2 4], got %v", r.values())
	}
	if s.State().Phase != Idle {
		t.Errorf("expected idle, got %v", s.State())
	}
	if m.Pending() != 0 {
		t.Errorf("expected no pending tasks, got %d", m.Pending())
	}
}

func TestSequencer_RestartCancelsPriorRun(t *testing.T) {
	s, m, r, log := newTestSequencer(t)

	s.StartSequence()
	m.Advance(2*DefaultInterval + 100*time.Millisecond)
	restartAt := m.Now()

	s.StartSequence()
	if got := s.State(); got.Phase != Running || got.Step != 0 {
		t.Fatalf("expected running(0) after restart, got %v", got)
	}

	m.Advance(time.Minute)

	after := r.writes[2:]
	if len(after) != 17 {
		t.Fatalf("expected 17 writes after restart, got %d", len(after))
	}
	for i, w := range after {
		if w.value != bitWalkValues[i] {
			t.Errorf("write %d after restart: expected %d, got %d", i, bitWalkValues[i], w.value)
		}
		if want := restartAt + time.Duration(i+1)*DefaultInterval; w.at != want {
			t.Errorf("write %d after restart: expected at %v, got %v", i, want, w.at)
		}
	}
	if n := log.count("Starting..."); n != 2 {
		t.Errorf("expected 2 starts, got %d", n)
	}
	if n := log.count("Ready..."); n != 1 {
		t.Errorf("expected exactly one Ready..., got %d", n)
	}
}

func TestSequencer_SendImmediate(t *testing.T) {
	for v := 0; v <= 255; v++ {
		s, m, r, log := newTestSequencer(t)

		if err := s.SendImmediate(byte(v)); err != nil {
			t.Fatalf("SendImmediate(%d) failed: %v", v, err)
		}
		if len(r.writes) != 1 || r.writes[0].value != byte(v) || r.writes[0].at != 0 {
			t.Fatalf("SendImmediate(%d): expected one write at 0, got %v", v, r.writes)
		}
		if log.last() != fmt.Sprintf("Sent %d", v) {
			t.Errorf("expected status Sent %d, got %q", v, log.last())
		}
		if s.State().Phase != Settling {
			t.Errorf("expected settling, got %v", s.State())
		}

		m.Advance(time.Minute)

		if len(r.writes) != 1 {
			t.Errorf("SendImmediate(%d): expected one write, got %d", v, len(r.writes))
		}
		if n := log.count("Ready..."); n != 1 {
			t.Errorf("SendImmediate(%d): expected one settle, got %d", v, n)
		}
		if s.State().Phase != Idle {
			t.Errorf("expected idle, got %v", s.State())
		}
	}
}

func TestSequencer_SendImmediateCancelsSequence(t *testing.T) {
	s, m, r, _ := newTestSequencer(t)

	s.StartSequence()
	m.Advance(DefaultInterval)
	_ = s.SendImmediate(42)
	m.Advance(time.Minute)

	if !equalBytes(r.values(), []byte{1, 42}) {
		t.Errorf("expected writes [1 42], got %v", r.values())
	}
}

func TestSequencer_SendMax(t *testing.T) {
	s, m, r, log := newTestSequencer(t)

	if err := s.SendMax(); err != nil {
		t.Fatalf("SendMax failed: %v", err)
	}
	if !equalBytes(r.values(), []byte{255}) {
		t.Fatalf("expected writes [255], got %v", r.values())
	}
	if s.State().Phase != MaxSettling {
		t.Errorf("expected max marker, got %v", s.State())
	}

	m.Advance(DefaultSettle)
	if s.State().Phase != Idle || log.last() != "Ready..." {
		t.Errorf("expected idle and Ready..., got %v and %q", s.State(), log.last())
	}
}

func TestSequencer_WriteFailure(t *testing.T) {
	s, m, r, log := newTestSequencer(t)
	r.failAfter = 3

	s.StartSequence()
	m.Advance(time.Minute)

	if len(r.writes) != 3 {
		t.Errorf("expected 3 writes before the failure, got %d", len(r.writes))
	}
	if !errors.Is(s.Err(), port.ErrWrite) {
		t.Errorf("expected ErrWrite, got %v", s.Err())
	}
	if s.State().Phase != Idle {
		t.Errorf("expected idle after failure, got %v", s.State())
	}
	if m.Pending() != 0 {
		t.Errorf("expected pending tasks cancelled, got %d", m.Pending())
	}
	if n := log.count(StatusText(Event{Type: Failed, Err: s.Err()})); n != 1 {
		t.Errorf("expected one failure status, got %v", log.lines)
	}

	if err := s.SendImmediate(1); !errors.Is(err, port.ErrWrite) {
		t.Errorf("expected SendImmediate to return ErrWrite, got %v", err)
	}
}

// mockStream and mockLines emulate the two transports underneath the real backends.
type mockStream struct{ sent []byte }

func (m *mockStream) Write(p []byte) (int, error) {
	m.sent = append(m.sent, p...)
	return len(p), nil
}
func (m *mockStream) Close() error { return nil }

type mockLines struct{ levels []byte }

func (m *mockLines) SetData(b byte) error {
	m.levels = append(m.levels, b)
	return nil
}
func (m *mockLines) Close() error { return nil }

func TestSequencer_TransportEquivalence(t *testing.T) {
	run := func(backend func(m *loop.Manual) port.Port) []write {
		m := loop.NewManual()
		r := newRecorder(m)
		r.w = backend(m)

		s, err := New(r, m, nil, BitWalk(DefaultInterval, MaxValue))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		s.StartSequence()
		m.Advance(time.Minute)
		return r.writes
	}

	stream := &mockStream{}
	streaming := run(func(*loop.Manual) port.Port { return port.NewStream(stream) })

	lines := &mockLines{}
	latched := run(func(m *loop.Manual) port.Port { return port.NewLatch(lines, m, port.DefaultClearDelay) })

	if len(streaming) != 17 || len(latched) != 17 {
		t.Fatalf("expected 17 writes on both transports, got %d and %d", len(streaming), len(latched))
	}
	for i := range streaming {
		if streaming[i] != latched[i] {
			t.Errorf("write %d differs: streaming %v, latched %v", i, streaming[i], latched[i])
		}
	}

	if !equalBytes(stream.sent, bitWalkValues) {
		t.Errorf("expected serial bytes %v, got %v", bitWalkValues, stream.sent)
	}

	// every pulse on the latched lines is followed by a clear
	if len(lines.levels) != 34 {
		t.Fatalf("expected 34 line levels, got %d", len(lines.levels))
	}
	for i := 0; i < len(lines.levels); i += 2 {
		if lines.levels[i] != bitWalkValues[i/2] || lines.levels[i+1] != 0 {
			t.Errorf("pulse %d: expected %d then 0, got %d then %d", i/2, bitWalkValues[i/2], lines.levels[i], lines.levels[i+1])
		}
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{Event{Type: Starting}, "Starting..."},
		{Event{Type: Sent, Value: 16}, "Sent 16"},
		{Event{Type: BurstSent, Count: 3, Total: 10}, "Burst: sent 3/10"},
		{Event{Type: BurstDone, Wait: 2 * time.Minute}, "Burst done, waiting 120000ms..."},
		{Event{Type: Ready}, "Ready..."},
		{Event{Type: Failed, Err: errors.New("boom")}, "Error: boom"},
	}

	for _, tt := range tests {
		if got := StatusText(tt.event); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
