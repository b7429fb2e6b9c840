//go:build linux

package raspberry

import (
	"github.com/warthog618/gpio"
)

// MemBank drives 8 pins through the GPIO memory range from /dev/gpiomem.
// Only one MemBank may be open at a time, the memory mapping is global.
type MemBank struct {
	pins []*gpio.Pin
}

// OpenMemBank maps the GPIO memory and sets the pins (BCM numbers) as outputs, initially low.
func OpenMemBank(pins []int) (*MemBank, error) {
	if err := checkLines(pins); err != nil {
		return nil, err
	}

	if err := gpio.Open(); err != nil {
		return nil, err
	}

	b := &MemBank{}
	for _, p := range pins {
		pin := gpio.NewPin(p)
		pin.Low()
		pin.Output()
		b.pins = append(b.pins, pin)
	}
	return b, nil
}

// SetData writes one level per pin. The memory mapped writes can't fail.
func (b *MemBank) SetData(v byte) error {
	for i, pin := range b.pins {
		pin.Write(gpio.Level(v&(1<<i) != 0))
	}
	return nil
}

// Close sets the pins low again and unmaps GPIO memory.
func (b *MemBank) Close() error {
	for _, pin := range b.pins {
		pin.Low()
	}
	return gpio.Close()
}
