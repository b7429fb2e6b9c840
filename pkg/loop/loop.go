// Package loop is a single goroutine event loop with cancellable scheduled tasks.
// Every callback runs on the loop goroutine, so state owned by loop callbacks
// needs no locking and port writes are serialized.
package loop

import (
	"sync"
	"sync/atomic"
	"time"
)

// Task is a handle to a scheduled callback.
type Task interface {
	// Cancel prevents any further invocation of the callback.
	// Calling Cancel more than once is allowed.
	Cancel()
}

// Scheduler schedules callbacks to run in the future.
type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func()) Task
	// Every runs fn every d until the task is cancelled. The first run is after d.
	Every(d time.Duration, fn func()) Task
}

// Loop executes posted jobs and timer callbacks one after another on one goroutine.
type Loop struct {
	// jobs receives the functions to execute
	jobs chan func()
	// quit stops the loop
	quit chan struct{}
	// done signals that Run returned
	done chan struct{}

	closeOnce sync.Once
}

// New generates a new loop. Run must be called to start executing jobs.
func New() *Loop {
	return &Loop{
		jobs: make(chan func(), 16),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Run executes jobs until Close is called.
// It's designed to run in a separate go function, e.g.: go loop.Run()
func (l *Loop) Run() {
	defer close(l.done)

	for {
		select {
		case <-l.quit:
			return
		case fn := <-l.jobs:
			fn()
		}
	}
}

// Close stops the loop and waits until the running job is finished.
// Jobs posted after Close are dropped.
func (l *Loop) Close() error {
	l.closeOnce.Do(func() { close(l.quit) })
	<-l.done
	return nil
}

// Post queues fn for execution and returns false if the loop is closed.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	case l.jobs <- fn:
		return true
	}
}

// Do runs fn on the loop and waits for it to return.
// Do must not be called from inside a loop callback.
func (l *Loop) Do(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}

	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// After implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) Task {
	t := &timerTask{}
	t.arm(d, func() {
		l.Post(func() {
			if t.cancelled.Swap(true) {
				return
			}
			fn()
		})
	})
	return t
}

// Every implements Scheduler. The next due time is computed from the previous one,
// so a slow callback doesn't shift the cadence.
func (l *Loop) Every(d time.Duration, fn func()) Task {
	t := &timerTask{}
	due := time.Now().Add(d)

	var fire func()
	fire = func() {
		l.Post(func() {
			if t.cancelled.Load() {
				return
			}
			due = due.Add(d)
			t.arm(time.Until(due), fire)
			fn()
		})
	}

	t.arm(d, fire)
	return t
}

// timerTask is the Task of Loop.After and Loop.Every.
type timerTask struct {
	mu        sync.Mutex
	timer     *time.Timer
	cancelled atomic.Bool
}

func (t *timerTask) arm(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelled.Load() {
		return
	}
	t.timer = time.AfterFunc(d, fn)
}

// Cancel implements Task. A callback already queued on the loop checks the
// cancelled flag before it runs, so nothing fires after Cancel returns.
func (t *timerTask) Cancel() {
	t.cancelled.Store(true)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
}
