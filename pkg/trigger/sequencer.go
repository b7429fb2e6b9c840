// Package trigger drives trigger test sequences and burst campaigns on a port.
//
// The Sequencer and the Burst are not safe for concurrent use. All methods and
// all callbacks of the scheduler must run on the same goroutine (see package loop),
// which also serializes the writes of a sequence and a burst on the one port.
package trigger

import (
	"errors"
	"fmt"
	"io"

	"github.com/womat/debug"

	"triggertest/pkg/loop"
)

// Phase is the phase of the sequencer state machine.
type Phase int

const (
	// Idle waits for an operation.
	Idle Phase = iota
	// Running steps through the plan.
	Running
	// Completing has written the last step and waits for the settle delay.
	// It is the post-terminal step of the bit-walk, Step is the number of steps written.
	Completing
	// Settling has sent a single trigger and waits for the settle delay.
	Settling
	// MaxSettling has sent a one-shot max pulse and waits for the settle delay.
	MaxSettling
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completing:
		return "completing"
	case Settling:
		return "settling"
	case MaxSettling:
		return "max"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is the sequencer state. Step is the index of the next plan step while
// Running and the number of steps while Completing.
type State struct {
	Phase Phase
	Step  int
}

func (s State) String() string {
	switch s.Phase {
	case Running, Completing:
		return fmt.Sprintf("%v(%d)", s.Phase, s.Step)
	default:
		return s.Phase.String()
	}
}

// Sequencer writes scripted trigger sequences and single triggers to a port.
// At most one sequence is active at a time.
type Sequencer struct {
	port  io.ByteWriter
	sched loop.Scheduler
	rep   Reporter
	plan  Plan

	state State
	// step is the pending next step of the running sequence
	step loop.Task
	// settle is the pending return to Idle
	settle loop.Task
	// err is the last write failure
	err error
}

// New generates a new Idle sequencer. rep may be nil.
func New(port io.ByteWriter, sched loop.Scheduler, rep Reporter, plan Plan) (*Sequencer, error) {
	if port == nil || sched == nil {
		return nil, errors.New("sequencer needs a port and a scheduler")
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if rep == nil {
		rep = ReporterFunc(func(Event) {})
	}

	return &Sequencer{port: port, sched: sched, rep: rep, plan: plan}, nil
}

// State returns the current state.
func (s *Sequencer) State() State { return s.state }

// Err returns the last write failure, nil if none happened.
func (s *Sequencer) Err() error { return s.err }

// Plan returns the scripted sequence.
func (s *Sequencer) Plan() Plan { return s.plan }

// StartSequence starts the plan at step 0. A running sequence is cancelled first.
func (s *Sequencer) StartSequence() {
	s.cancel()

	s.state = State{Phase: Running}
	s.rep.Report(Event{Type: Starting})
	s.scheduleStep(0)
}

// Stop cancels every pending step and settle and returns to Idle.
func (s *Sequencer) Stop() {
	s.cancel()
	s.reset()
}

// SendImmediate writes value once and returns to Idle after the settle delay.
// A running sequence is cancelled.
func (s *Sequencer) SendImmediate(value byte) error {
	return s.sendOne(value, Settling)
}

// SendMax writes the all lines high trigger once and returns to Idle after the
// settle delay.
func (s *Sequencer) SendMax() error {
	return s.sendOne(MaxValue, MaxSettling)
}

// Pulse writes value without touching state or pending tasks.
// Pulse is the write primitive of the burst campaign.
func (s *Sequencer) Pulse(value byte) error {
	return s.write(value)
}

func (s *Sequencer) sendOne(value byte, phase Phase) error {
	s.cancel()

	if err := s.write(value); err != nil {
		s.fail(err)
		return err
	}

	s.state = State{Phase: phase}
	s.scheduleSettle()
	return nil
}

func (s *Sequencer) scheduleStep(i int) {
	s.step = s.sched.After(s.plan.Steps[i].Delay, func() {
		s.step = nil
		s.runStep(i)
	})
}

func (s *Sequencer) runStep(i int) {
	if err := s.write(s.plan.Steps[i].Value); err != nil {
		s.fail(err)
		return
	}

	next := i + 1
	if next < len(s.plan.Steps) {
		s.state = State{Phase: Running, Step: next}
		s.scheduleStep(next)
		return
	}

	s.state = State{Phase: Completing, Step: next}
	s.scheduleSettle()
}

func (s *Sequencer) scheduleSettle() {
	s.settle = s.sched.After(s.plan.Settle, func() {
		s.settle = nil
		s.reset()
	})
}

func (s *Sequencer) write(value byte) error {
	if err := s.port.WriteByte(value); err != nil {
		return err
	}
	s.rep.Report(Event{Type: Sent, Value: value})
	return nil
}

// fail aborts the current operation. There is no automatic retry, the failure
// is what a trigger test is looking for.
func (s *Sequencer) fail(err error) {
	debug.ErrorLog.Printf("sequencer: %v", err)

	s.cancel()
	s.err = err
	s.state = State{Phase: Idle}
	s.rep.Report(Event{Type: Failed, Err: err})
}

func (s *Sequencer) reset() {
	s.state = State{Phase: Idle}
	s.rep.Report(Event{Type: Ready})
}

func (s *Sequencer) cancel() {
	if s.step != nil {
		s.step.Cancel()
		s.step = nil
	}
	if s.settle != nil {
		s.settle.Cancel()
		s.settle = nil
	}
}
