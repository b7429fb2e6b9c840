package loop

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by virtual time.
// Callbacks run synchronously inside Advance in due order, which makes timing
// deterministic in tests. Manual is not safe for concurrent use.
type Manual struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

// NewManual generates a manual scheduler at virtual time 0.
func NewManual() *Manual {
	return &Manual{}
}

type manualTask struct {
	due       time.Duration
	period    time.Duration
	seq       int
	fn        func()
	cancelled bool
}

func (t *manualTask) Cancel() { t.cancelled = true }

// Now returns the virtual time elapsed since NewManual.
func (m *Manual) Now() time.Duration { return m.now }

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Task {
	return m.add(d, 0, fn)
}

// Every implements Scheduler.
func (m *Manual) Every(d time.Duration, fn func()) Task {
	return m.add(d, d, fn)
}

func (m *Manual) add(d, period time.Duration, fn func()) *manualTask {
	m.seq++
	t := &manualTask{due: m.now + d, period: period, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Pending returns the number of tasks which are not cancelled and not yet finished.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward by d and runs every callback that becomes due.
// Callbacks scheduled by callbacks run in the same Advance if they are due.
func (m *Manual) Advance(d time.Duration) {
	end := m.now + d

	for {
		t := m.next(end)
		if t == nil {
			break
		}

		m.now = t.due
		if t.period > 0 {
			m.seq++
			t.due += t.period
			t.seq = m.seq
		} else {
			t.cancelled = true
		}
		t.fn()
	}

	m.now = end
}

// next removes cancelled tasks and returns the earliest task due until end.
func (m *Manual) next(end time.Duration) *manualTask {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.tasks = live

	if len(m.tasks) == 0 {
		return nil
	}

	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due != m.tasks[j].due {
			return m.tasks[i].due < m.tasks[j].due
		}
		return m.tasks[i].seq < m.tasks[j].seq
	})

	if t := m.tasks[0]; t.due <= end {
		return t
	}
	return nil
}
