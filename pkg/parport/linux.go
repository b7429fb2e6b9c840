//go:build linux

package parport

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl requests of linux/ppdev.h
const (
	ppClaim   = 0x708b     // _IO('p', 0x8b)
	ppRelease = 0x708c     // _IO('p', 0x8c)
	ppWData   = 0x40017086 // _IOW('p', 0x86, unsigned char)
)

// PPDev is a parallel port claimed through the ppdev driver.
type PPDev struct {
	file *os.File
}

// OpenPPDev opens and claims a ppdev device.
func OpenPPDev(device string) (*PPDev, error) {
	if device == "" {
		device = DefaultDevice
	}

	f, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	if err = ioctl(f.Fd(), ppClaim, 0); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("can't claim %s: %w", device, err)
	}
	return &PPDev{file: f}, nil
}

// SetData sets the 8 data lines.
func (p *PPDev) SetData(b byte) error {
	// the pointer conversion has to stay inside the Syscall expression
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, p.file.Fd(), ppWData, uintptr(unsafe.Pointer(&b))); errno != 0 {
		return errno
	}
	return nil
}

// Close releases and closes the device.
func (p *PPDev) Close() error {
	_ = ioctl(p.file.Fd(), ppRelease, 0)
	return p.file.Close()
}

func ioctl(fd, req, arg uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, arg); errno != 0 {
		return errno
	}
	return nil
}

// IOPort writes the data register of a parallel port at a raw I/O address.
type IOPort struct {
	file    *os.File
	address Address
}

// OpenIOPort opens /dev/port for the data register at address, e.g. 0x378.
func OpenIOPort(address Address) (*IOPort, error) {
	if address == 0 {
		return nil, fmt.Errorf("invalid parallel port address %v", address)
	}

	f, err := os.OpenFile("/dev/port", os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	return &IOPort{file: f, address: address}, nil
}

// SetData writes the data register.
func (p *IOPort) SetData(b byte) error {
	_, err := p.file.WriteAt([]byte{b}, int64(p.address))
	return err
}

// Close closes /dev/port.
func (p *IOPort) Close() error {
	return p.file.Close()
}
