package trigger

import (
	"errors"

	"github.com/womat/debug"

	"triggertest/pkg/loop"
)

// Pulser writes a single trigger without settle semantics.
type Pulser interface {
	Pulse(value byte) error
}

// Burst repeats short bursts of triggers for soak testing: an outer task fires a
// burst every Inter, an inner task sends the pulses of one burst every Intra.
type Burst struct {
	pulser Pulser
	sched  loop.Scheduler
	rep    Reporter

	plan   BurstPlan
	active bool
	// outer fires the bursts
	outer loop.Task
	// inner sends the pulses of the current burst
	inner loop.Task
	// count is the number of pulses sent in the current burst
	count int
	// bursts is the number of bursts fired since Start
	bursts int
	err    error
}

// NewBurst generates an inactive burst scheduler. rep may be nil.
func NewBurst(p Pulser, sched loop.Scheduler, rep Reporter) (*Burst, error) {
	if p == nil || sched == nil {
		return nil, errors.New("burst needs a pulser and a scheduler")
	}
	if rep == nil {
		rep = ReporterFunc(func(Event) {})
	}
	return &Burst{pulser: p, sched: sched, rep: rep}, nil
}

// Start starts a campaign and fires the first burst at once.
// If a campaign is active, its cadence and plan are kept and one extra burst
// fires at once.
func (b *Burst) Start(plan BurstPlan) error {
	if b.active {
		b.fire()
		return nil
	}

	if err := plan.Validate(); err != nil {
		return err
	}

	b.plan = plan
	b.active = true
	b.bursts = 0
	b.err = nil
	b.outer = b.sched.Every(plan.Inter, b.fire)
	b.fire()
	return nil
}

// Stop cancels the campaign. Stop on an inactive campaign does nothing.
func (b *Burst) Stop() {
	if !b.active {
		return
	}

	b.cancel()
	b.rep.Report(Event{Type: Ready})
}

// Active reports whether a campaign is running.
func (b *Burst) Active() bool { return b.active }

// Plan returns the plan of the running or last campaign.
func (b *Burst) Plan() BurstPlan { return b.plan }

// Progress returns the pulses sent in the current burst and the bursts fired.
func (b *Burst) Progress() (pulses, bursts int) { return b.count, b.bursts }

// Err returns the write failure which ended the last campaign.
func (b *Burst) Err() error { return b.err }

func (b *Burst) fire() {
	if b.inner != nil {
		b.inner.Cancel()
	}

	b.count = 0
	b.bursts++
	debug.DebugLog.Printf("burst %d: %d x %d every %v", b.bursts, b.plan.Pulses, b.plan.Value, b.plan.Intra)
	b.inner = b.sched.Every(b.plan.Intra, b.tick)
}

func (b *Burst) tick() {
	if b.count >= b.plan.Pulses {
		b.inner.Cancel()
		b.inner = nil
		b.rep.Report(Event{Type: BurstDone, Wait: b.plan.Inter})
		return
	}

	if err := b.pulser.Pulse(b.plan.Value); err != nil {
		debug.ErrorLog.Printf("burst: %v", err)
		b.cancel()
		b.err = err
		b.rep.Report(Event{Type: Failed, Err: err})
		return
	}

	b.count++
	b.rep.Report(Event{Type: BurstSent, Count: b.count, Total: b.plan.Pulses})
}

func (b *Burst) cancel() {
	if b.outer != nil {
		b.outer.Cancel()
		b.outer = nil
	}
	if b.inner != nil {
		b.inner.Cancel()
		b.inner = nil
	}
	b.active = false
	b.count = 0
}
