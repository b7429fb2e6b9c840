// Package port holds the trigger output port backends.
//
// A trigger is a single byte. Streaming ports (serial) send the byte as one
// discrete event. Latched ports (parallel port, GPIO lines) hold the written
// level, so the backend clears all lines again after a short delay to produce
// a pulse.
package port

import (
	"fmt"
	"io"
	"time"

	"github.com/womat/debug"

	"triggertest/pkg/loop"
)

// Kind is the transport kind of a port.
type Kind int

const (
	_ Kind = iota
	// Streaming is a byte stream transport (serial).
	Streaming
	// Latched is a transport with output lines that hold their level (parallel, gpio).
	Latched
)

func (k Kind) String() string {
	switch k {
	case Streaming:
		return "streaming"
	case Latched:
		return "latched"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DefaultClearDelay is the time latched lines stay asserted.
const DefaultClearDelay = 10 * time.Millisecond

// Port writes single trigger bytes.
type Port interface {
	io.ByteWriter
	io.Closer
	Kind() Kind
}

// Lines is a bank of 8 latched output lines; bit i of the data drives line i.
type Lines interface {
	SetData(b byte) error
	Close() error
}

// StreamPort is the Streaming port backend.
type StreamPort struct {
	w io.WriteCloser
}

// NewStream wraps an open byte stream, e.g. a serial port.
func NewStream(w io.WriteCloser) *StreamPort {
	return &StreamPort{w: w}
}

// Kind implements Port.
func (p *StreamPort) Kind() Kind { return Streaming }

// WriteByte hands exactly one byte to the transport.
func (p *StreamPort) WriteByte(b byte) error {
	n, err := p.w.Write([]byte{b})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if n != 1 {
		return fmt.Errorf("%w: %w", ErrWrite, io.ErrShortWrite)
	}

	debug.TraceLog.Printf("stream: wrote %d", b)
	return nil
}

// Close closes the underlying stream.
func (p *StreamPort) Close() error {
	return p.w.Close()
}

// LatchPort is the Latched port backend.
type LatchPort struct {
	lines Lines
	sched loop.Scheduler
	// clearDelay is the time the written level is held
	clearDelay time.Duration
	// clear is the pending auto clear of the last write
	clear loop.Task
}

// NewLatch wraps a line bank. The auto clear is scheduled on sched, which must be
// the scheduler of the goroutine that writes to the port.
func NewLatch(lines Lines, sched loop.Scheduler, clearDelay time.Duration) *LatchPort {
	if clearDelay <= 0 {
		clearDelay = DefaultClearDelay
	}
	return &LatchPort{lines: lines, sched: sched, clearDelay: clearDelay}
}

// Kind implements Port.
func (p *LatchPort) Kind() Kind { return Latched }

// WriteByte asserts the lines to b and schedules the clear.
// A write before the previous clear replaces that clear, so a pulse is never cut short.
// A failed write keeps the pending clear of the previous level.
func (p *LatchPort) WriteByte(b byte) error {
	if err := p.lines.SetData(b); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	debug.TraceLog.Printf("latch: set lines to %08b", b)

	if p.clear != nil {
		p.clear.Cancel()
		p.clear = nil
	}

	p.clear = p.sched.After(p.clearDelay, func() {
		p.clear = nil
		if err := p.lines.SetData(0); err != nil {
			debug.ErrorLog.Printf("latch: can't clear lines: %v", err)
		}
	})
	return nil
}

// Close cancels a pending clear, clears the lines and releases them.
func (p *LatchPort) Close() error {
	if p.clear != nil {
		p.clear.Cancel()
		p.clear = nil
	}
	_ = p.lines.SetData(0)
	return p.lines.Close()
}
