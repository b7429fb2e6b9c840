// Package raspberry drives 8 gpio output lines as a latched trigger port.
// Bit i of a trigger value drives the i-th configured line.
package raspberry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/womat/debug"
)

// Width is the number of trigger lines.
const Width = 8

var (
	ErrInvalidParam = errors.New("invalid parameters")
	ErrUnsupported  = errors.New("gpio is not supported on this platform")
)

// checkLines validates the configured line offsets.
func checkLines(lines []int) error {
	if len(lines) != Width {
		return fmt.Errorf("%w: need %d lines, got %d", ErrInvalidParam, Width, len(lines))
	}

	seen := map[int]bool{}
	for _, l := range lines {
		if l < 0 {
			return fmt.Errorf("%w: negative line %d", ErrInvalidParam, l)
		}
		if seen[l] {
			return fmt.Errorf("%w: line %d already used", ErrInvalidParam, l)
		}
		seen[l] = true
	}
	return nil
}

// levels splits b into one level per line, LSB first.
func levels(b byte) []int {
	v := make([]int, Width)
	for i := range v {
		v[i] = int(b>>i) & 1
	}
	return v
}

// EmuBank emulates a line bank, e.g. to dry-run a trigger test without hardware.
type EmuBank struct {
	sync.Mutex
	level  byte
	writes int
}

// NewEmuBank generates an emulated bank with all lines low.
func NewEmuBank() *EmuBank {
	return &EmuBank{}
}

// SetData sets the emulated lines.
func (e *EmuBank) SetData(b byte) error {
	e.Lock()
	defer e.Unlock()

	e.level = b
	e.writes++
	debug.TraceLog.Printf("emu lines: %v", levels(b))
	return nil
}

// Level returns the emulated level of line i.
func (e *EmuBank) Level(i int) bool {
	e.Lock()
	defer e.Unlock()
	return e.level&(1<<i) != 0
}

// Writes returns the number of SetData calls.
func (e *EmuBank) Writes() int {
	e.Lock()
	defer e.Unlock()
	return e.writes
}

// Close implements port.Lines.
func (e *EmuBank) Close() error { return nil }
