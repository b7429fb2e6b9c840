//go:build !linux

package parport

// PPDev is not available outside linux.
type PPDev struct{}

// IOPort is not available outside linux.
type IOPort struct{}

func OpenPPDev(string) (*PPDev, error) { return nil, ErrUnsupported }
func (p *PPDev) SetData(byte) error { return ErrUnsupported }
func (p *PPDev) Close() error { return nil }
func OpenIOPort(Address) (*IOPort, error) { return nil, ErrUnsupported }
func (p *IOPort) SetData(byte) error { return ErrUnsupported }
func (p *IOPort) Close() error { return nil }
