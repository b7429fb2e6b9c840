//go:build !linux

package raspberry

// Chip is not available outside linux.
type Chip struct{}

// Bank is not available outside linux.
type Bank struct{}

// MemBank is not available outside linux.
type MemBank struct{}

func OpenChip(string) (*Chip, error) { return nil, ErrUnsupported }
func (c *Chip) NewBank([]int) (*Bank, error) { return nil, ErrUnsupported }
func (c *Chip) Close() error { return nil }
func (b *Bank) SetData(byte) error { return ErrUnsupported }
func (b *Bank) Close() error { return nil }
func OpenMemBank([]int) (*MemBank, error) { return nil, ErrUnsupported }
func (b *MemBank) SetData(byte) error { return ErrUnsupported }
func (b *MemBank) Close() error { return nil }
