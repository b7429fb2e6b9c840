//go:build linux

package raspberry

import (
	"github.com/warthog618/gpiod"
)

const consumer = "triggertest"

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Bank is a set of 8 requested output lines of a gpio character device.
type Bank struct {
	gpiodLines *gpiod.Lines
}

// OpenChip opens a GPIO character device, e.g. gpiochip0.
func OpenChip(name string) (*Chip, error) {
	c, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c}, nil
}

// NewBank requests the lines as outputs, initially low.
// If granted, control is maintained until the Bank is closed.
func (c *Chip) NewBank(lines []int) (*Bank, error) {
	if err := checkLines(lines); err != nil {
		return nil, err
	}

	l, err := c.gpiodChip.RequestLines(lines, gpiod.AsOutput(levels(0)...))
	if err != nil {
		return nil, err
	}
	return &Bank{gpiodLines: l}, nil
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be closed
// independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// SetData sets all lines in one request.
func (b *Bank) SetData(v byte) error {
	return b.gpiodLines.SetValues(levels(v))
}

// Close releases all resources held by the requested lines.
func (b *Bank) Close() error {
	return b.gpiodLines.Close()
}
