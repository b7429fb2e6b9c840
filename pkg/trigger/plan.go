package trigger

import (
	"errors"
	"time"
)

const (
	// DefaultInterval is the time between two sequence steps.
	DefaultInterval = 250 * time.Millisecond
	// DefaultSettle is the time between the last write and "Ready...".
	DefaultSettle = 100 * time.Millisecond
	// MaxValue is the all lines high trigger.
	MaxValue byte = 255
)

// Step is one write of a sequence, Delay after the previous step.
type Step struct {
	Value byte
	Delay time.Duration
}

// Plan is the scripted sequence of a trigger test.
type Plan struct {
	Steps []Step
	// Settle is the time after the last step until the sequencer is Idle again.
	Settle time.Duration
}

// BitWalk raises each of the 8 trigger lines alone in ascending and then descending
// order, followed by an all lines high terminal pulse: 1,2,...,128,128,...,2,1,255.
func BitWalk(interval time.Duration, terminal byte) Plan {
	steps := make([]Step, 0, 17)
	for step := 0; step < 16; step++ {
		p := step
		if step >= 8 {
			p = 15 - step
		}
		steps = append(steps, Step{Value: 1 << p, Delay: interval})
	}
	steps = append(steps, Step{Value: terminal, Delay: interval})

	return Plan{Steps: steps, Settle: DefaultSettle}
}

// Values builds a plan writing values spaced by interval.
func Values(interval time.Duration, values ...byte) Plan {
	steps := make([]Step, len(values))
	for i, v := range values {
		steps[i] = Step{Value: v, Delay: interval}
	}
	return Plan{Steps: steps, Settle: DefaultSettle}
}

// Validate checks that the plan can be run.
func (p Plan) Validate() error {
	if len(p.Steps) == 0 {
		return errors.New("plan has no steps")
	}
	for _, s := range p.Steps {
		if s.Delay < 0 {
			return errors.New("plan has a negative step delay")
		}
	}
	if p.Settle < 0 {
		return errors.New("plan has a negative settle delay")
	}
	return nil
}

// BurstPlan is a burst campaign: Pulses triggers of Value spaced by Intra,
// repeated every Inter until stopped.
type BurstPlan struct {
	Pulses int
	Intra  time.Duration
	Inter  time.Duration
	Value  byte
}

// DefaultBurst is the soak test of 10 triggers every 2 minutes.
var DefaultBurst = BurstPlan{
	Pulses: 10,
	Intra:  time.Second,
	Inter:  2 * time.Minute,
	Value:  MaxValue,
}

// Validate checks that the campaign can be run.
func (b BurstPlan) Validate() error {
	switch {
	case b.Pulses <= 0:
		return errors.New("burst needs at least one pulse")
	case b.Intra <= 0:
		return errors.New("burst intra delay must be positive")
	case b.Inter <= 0:
		return errors.New("burst inter delay must be positive")
	}
	return nil
}
