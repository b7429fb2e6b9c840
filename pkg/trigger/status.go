package trigger

import (
	"fmt"
	"time"
)

// EventType is the kind of a state transition of the sequencer or the burst scheduler.
type EventType int

const (
	_ EventType = iota
	// Starting is reported when a sequence is started.
	Starting
	// Sent is reported after each trigger write.
	Sent
	// BurstSent is reported after each pulse of a burst.
	BurstSent
	// BurstDone is reported when a burst is complete.
	BurstDone
	// Ready is reported when the sequencer returns to Idle.
	Ready
	// Failed is reported when a write fails.
	Failed
)

// Event is a state transition.
type Event struct {
	Type EventType
	// Value is the written trigger value (Sent).
	Value byte
	// Count and Total are the burst progress (BurstSent).
	Count int
	Total int
	// Wait is the time until the next burst (BurstDone).
	Wait time.Duration
	// Err is the write error (Failed).
	Err error
}

// Reporter receives the state transitions.
type Reporter interface {
	Report(Event)
}

// ReporterFunc is an adapter to use an ordinary function as Reporter.
type ReporterFunc func(Event)

// Report calls f(e).
func (f ReporterFunc) Report(e Event) { f(e) }

// StatusText maps an event to the status line shown to the user.
func StatusText(e Event) string {
	switch e.Type {
	case Starting:
		return "Starting..."
	case Sent:
		return fmt.Sprintf("Sent %d", e.Value)
	case BurstSent:
		return fmt.Sprintf("Burst: sent %d/%d", e.Count, e.Total)
	case BurstDone:
		return fmt.Sprintf("Burst done, waiting %dms...", e.Wait.Milliseconds())
	case Ready:
		return "Ready..."
	case Failed:
		return fmt.Sprintf("Error: %v", e.Err)
	default:
		return ""
	}
}
